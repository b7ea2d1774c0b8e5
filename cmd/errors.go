package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/trilinos/status-table-cli/internal/derive"
	"github.com/trilinos/status-table-cli/internal/report"
)

// Exit codes
const (
	ExitFailure    = 1 // render, API or configuration failure
	ExitUsage      = 2 // missing or malformed arguments
	ExitDependency = 3 // calendar data unavailable
)

// usageError marks failures the user fixes by changing the invocation
type usageError struct {
	err  error
	hint string
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

const dependencyHint = `The report timezone could not be loaded. Install the IANA time zone
database (for example the tzdata package) or set STATUS_TIMEZONE to a zone
available on this machine, then run again.`

// ExitCode maps an error returned by Execute to a process exit status
func ExitCode(err error) int {
	var usageErr *usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &usageErr):
		return ExitUsage
	case errors.Is(err, derive.ErrDependencyUnavailable):
		return ExitDependency
	default:
		return ExitFailure
	}
}

// PrintFailure writes a human-readable explanation of err. Nothing is ever
// written to stdout on failure, so a partial table cannot be pasted.
func PrintFailure(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)
	// color checks stdout by default, but failures go to w
	enabled := useColor(w)
	for _, c := range []*color.Color{red, yellow} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var usageErr *usageError
	switch {
	case errors.As(err, &usageErr):
		red.Fprintf(w, "Error: %v\n", err)
		if usageErr.hint != "" {
			fmt.Fprintln(w)
			fmt.Fprintln(w, strings.TrimRight(usageErr.hint, "\n"))
		}
	case errors.Is(err, derive.ErrDependencyUnavailable):
		red.Fprintf(w, "Error: %v\n", err)
		fmt.Fprintln(w)
		yellow.Fprintln(w, dependencyHint)
	case errors.Is(err, report.ErrRenderFailure):
		red.Fprintf(w, "Cannot render the status table: %v\n", err)
	default:
		red.Fprintf(w, "Error: %v\n", err)
	}
}

// useColor reports whether w is a terminal that should receive ANSI colors
func useColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
