package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/trilinos/status-table-cli/internal/config"
	"github.com/trilinos/status-table-cli/internal/derive"
	"github.com/trilinos/status-table-cli/internal/input"
	"github.com/trilinos/status-table-cli/internal/report"
)

// clock is replaced in tests
var clock derive.Clock = derive.SystemClock

// globalOptions holds the persistent flags shared by all commands
type globalOptions struct {
	noTitle bool
	verbose bool
	quiet   bool
}

func loadConfig(opts *globalOptions, concurrency int) (*config.Config, error) {
	return config.Load(config.Options{
		NoTitle:     opts.noTitle,
		Verbose:     opts.verbose,
		Quiet:       opts.quiet,
		Concurrency: concurrency,
	})
}

// setupLogger creates a logger configured for progress output
func setupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if cfg.Quiet {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	// Progress goes to stderr so stdout stays clean for the table
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time stamps for cleaner progress output
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// resolveDates loads the report timezone and computes the report days
func resolveDates(cfg *config.Config, logger *slog.Logger) (derive.Dates, error) {
	loc, err := derive.LoadLocation(cfg.Timezone)
	if err != nil {
		return derive.Dates{}, err
	}

	dates := derive.ResolveDates(clock(), loc)
	logger.Debug("Resolved report dates",
		"timezone", loc.String(),
		"today", derive.FormatDate(dates.Today),
		"yesterday", derive.FormatDate(dates.Yesterday),
		"last_friday", derive.FormatDate(dates.LastFriday))
	return dates, nil
}

// writeTable renders the whole table before writing anything
func writeTable(w io.Writer, args input.Args, dates derive.Dates, cfg *config.Config, logger *slog.Logger) error {
	table, err := report.Render(args, dates, cfg)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprint(w, table); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}

	logger.Info("Status table generated", "date", derive.FormatDate(dates.Today))
	return nil
}
