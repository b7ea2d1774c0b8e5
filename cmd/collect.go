package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/trilinos/status-table-cli/internal/config"
	"github.com/trilinos/status-table-cli/internal/derive"
	"github.com/trilinos/status-table-cli/internal/github"
	"github.com/trilinos/status-table-cli/internal/input"
	"github.com/trilinos/status-table-cli/internal/report"
)

type collectOptions struct {
	prStatus    string
	mmStatus    string
	ticket      string
	concurrency int
	printArgs   bool
}

func newCollectCmd(global *globalOptions) *cobra.Command {
	opts := &collectOptions{}

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Fill the status table counts from the GitHub search API",
		Long: `Collect runs the same pull request searches the table links point at and
renders the status table with the live totals. Status codes and the Jira
ticket still come from flags because they are a maintainer's judgement.

GITHUB_TOKEN is optional but raises the search rate limit. GITHUB_API_URL
points the search at a GitHub Enterprise server; the table links then open on
that server too.

Examples:
  trilinos-status collect --pr-status 0 --mm-status 0 --ticket 435

  # Also log the twelve positional values for re-rendering later
  trilinos-status collect --pr-status 1 --mm-status 0 --ticket 504 --print-args`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &usageError{
					err:  fmt.Errorf("%w: collect takes no positional values, got %q", input.ErrTooManyArguments, strings.Join(args, " ")),
					hint: cmd.UsageString(),
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd, global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.prStatus, "pr-status", "", "PR status code: 0 = success, 1 = warning, 2 = failure")
	cmd.Flags().StringVar(&opts.mmStatus, "mm-status", "", "Master merge status code: 0 = success, 1 = warning, 2 = failure")
	cmd.Flags().StringVar(&opts.ticket, "ticket", "", "Jira ticket number")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", config.DefaultConcurrency, "Number of concurrent searches")
	cmd.Flags().BoolVar(&opts.printArgs, "print-args", false, "Log the equivalent positional arguments")

	return cmd
}

func runCollect(cmd *cobra.Command, global *globalOptions, opts *collectOptions) error {
	prStatus, mmStatus, ticket, err := opts.parse()
	if err != nil {
		return &usageError{err: err, hint: cmd.UsageString()}
	}

	cfg, err := loadConfig(global, opts.concurrency)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg, cmd.ErrOrStderr())

	dates, err := resolveDates(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := github.New(ctx, cfg.GitHubToken, cfg.GitHubAPIURL, logger)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	queries := github.Queries(github.QueryConfig{
		DevelopBranch: cfg.DevelopBranch,
		MasterBranch:  cfg.MasterBranch,
		WIPLabel:      cfg.WIPLabel,
	}, dates)

	logger.Info("Searching GitHub...", "repo", cfg.Repo.String(), "queries", len(queries), "concurrency", cfg.Concurrency)
	counts, err := github.NewCounter(client, logger).CountAll(ctx, cfg.Repo, queries, cfg.Concurrency)
	if err != nil {
		return fmt.Errorf("failed to collect pull request counts: %w", err)
	}

	args, err := report.FromCounts(prStatus, mmStatus, ticket, counts)
	if err != nil {
		return err
	}

	if opts.printArgs {
		logger.Info("Positional arguments", "args", strings.Join(report.Positional(args), " "))
	}

	return writeTable(cmd.OutOrStdout(), args, dates, cfg, logger)
}

// parse validates the flag values in command-line order
func (o *collectOptions) parse() (derive.StatusCode, derive.StatusCode, int, error) {
	for _, flag := range []struct{ name, value string }{
		{"--pr-status", o.prStatus},
		{"--mm-status", o.mmStatus},
		{"--ticket", o.ticket},
	} {
		if strings.TrimSpace(flag.value) == "" {
			return 0, 0, 0, fmt.Errorf("%w: %s is required", input.ErrMissingArgument, flag.name)
		}
	}

	prStatus, err := derive.ParseStatusCode(o.prStatus)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w --pr-status: %w", input.ErrInvalidArgument, err)
	}
	mmStatus, err := derive.ParseStatusCode(o.mmStatus)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w --mm-status: %w", input.ErrInvalidArgument, err)
	}
	ticket, err := input.ParseCount(o.ticket)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w --ticket %q: %w", input.ErrInvalidArgument, o.ticket, err)
	}

	return prStatus, mmStatus, ticket, nil
}
