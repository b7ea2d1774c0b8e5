package cmd

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/trilinos/status-table-cli/internal/derive"
	"github.com/trilinos/status-table-cli/internal/input"
)

// useFixedClock pins the report date to Wednesday 2024-03-20 in UTC
func useFixedClock(t *testing.T) {
	t.Helper()
	t.Setenv("STATUS_TIMEZONE", "UTC")
	previous := clock
	clock = func() time.Time { return time.Date(2024, 3, 20, 18, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { clock = previous })
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	// A nil slice makes cobra fall back to os.Args
	if args == nil {
		args = []string{}
	}

	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func dataRow(t *testing.T, table string) []string {
	t.Helper()
	lines := strings.Split(strings.TrimSuffix(table, "\n"), "\n")
	last := strings.Trim(lines[len(lines)-1], "| ")
	return strings.Split(last, " | ")
}

func TestRenderSuccessExample(t *testing.T) {
	useFixedClock(t)

	stdout, _, err := execute(t, "--quiet", "0", "4", "6", "4", "72", "0", "4", "7", "8", "9", "10", "435")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Count(stdout, "# Trilinos Status Table") != 1 {
		t.Errorf("expected exactly one table heading:\n%s", stdout)
	}

	cells := dataRow(t, stdout)
	if len(cells) != 11 {
		t.Fatalf("expected 11 cells, got %d: %v", len(cells), cells)
	}
	if cells[0] != "2024-03-20" {
		t.Errorf("expected date 2024-03-20, got %s", cells[0])
	}
	if cells[1] != ":white_check_mark:" || cells[8] != ":white_check_mark:" {
		t.Errorf("expected success icons, got %s and %s", cells[1], cells[8])
	}
	if !strings.HasPrefix(cells[2], "[4](") {
		t.Errorf("expected merged link showing 4, got %s", cells[2])
	}
	if !strings.Contains(cells[2], "merged%3A2024-03-19T12%3A00%3A00%2B00%3A00..2024-03-20T12%3A00%3A00%2B00%3A00") {
		t.Errorf("expected merged range in report timezone, got %s", cells[2])
	}
	if !strings.HasPrefix(cells[10], "[TrilFrame-435](") {
		t.Errorf("expected ticket link TrilFrame-435, got %s", cells[10])
	}
}

func TestRenderWarningExample(t *testing.T) {
	useFixedClock(t)

	stdout, _, err := execute(t, "--quiet", "1", "3", "1", "22", "21", "0", "5", "5", "21", "58", "1", "504")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cells := dataRow(t, stdout)
	if cells[1] != ":warning:" {
		t.Errorf("expected warning icon, got %s", cells[1])
	}
	if cells[7] != "[58](https://github.com/trilinos/Trilinos/pulls)" {
		t.Errorf("expected open PR link showing 58, got %s", cells[7])
	}
}

func TestRenderIdempotent(t *testing.T) {
	useFixedClock(t)
	args := []string{"--quiet", "0", "4", "6", "4", "72", "0", "4", "7", "8", "9", "10", "435"}

	first, _, err := execute(t, args...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _, err := execute(t, args...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Error("identical invocations on the same day produced different output")
	}
}

func TestRenderNoTitleFlag(t *testing.T) {
	useFixedClock(t)

	stdout, _, err := execute(t, "--quiet", "--no-title", "0", "4", "6", "4", "72", "0", "4", "7", "8", "9", "10", "435")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(stdout, "| Date |") {
		t.Errorf("expected bare table, got:\n%s", stdout)
	}
}

func TestRenderUsageFailures(t *testing.T) {
	useFixedClock(t)

	tests := []struct {
		name     string
		args     []string
		sentinel error
	}{
		{name: "no arguments", args: nil, sentinel: input.ErrMissingArgument},
		{name: "historical short form", args: strings.Fields("0 4 6 4 72 0 4 435"), sentinel: input.ErrMissingArgument},
		{name: "status out of range", args: strings.Fields("3 4 6 4 72 0 4 7 8 9 10 435"), sentinel: input.ErrInvalidArgument},
		{name: "too many values", args: strings.Fields("0 4 6 4 72 0 4 7 8 9 10 435 9"), sentinel: input.ErrTooManyArguments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("expected %v, got %v", tt.sentinel, err)
			}
			if stdout != "" {
				t.Errorf("expected no table on failure, got:\n%s", stdout)
			}
			if ExitCode(err) != ExitUsage {
				t.Errorf("expected exit code %d, got %d", ExitUsage, ExitCode(err))
			}
		})
	}
}

func TestRenderNegativeValueIsUsageError(t *testing.T) {
	useFixedClock(t)

	stdout, _, err := execute(t, "0", "-4", "6", "4", "72", "0", "4", "7", "8", "9", "10", "435")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if stdout != "" {
		t.Errorf("expected no table on failure, got:\n%s", stdout)
	}
	if ExitCode(err) != ExitUsage {
		t.Errorf("expected exit code %d, got %d", ExitUsage, ExitCode(err))
	}
}

func TestRenderDependencyFailure(t *testing.T) {
	useFixedClock(t)
	t.Setenv("STATUS_TIMEZONE", "Nowhere/Nothing")

	stdout, _, err := execute(t, "0", "4", "6", "4", "72", "0", "4", "7", "8", "9", "10", "435")
	if !errors.Is(err, derive.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if stdout != "" {
		t.Errorf("expected no table on failure, got:\n%s", stdout)
	}
	if ExitCode(err) != ExitDependency {
		t.Errorf("expected exit code %d, got %d", ExitDependency, ExitCode(err))
	}
}

func TestPrintFailure(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "usage error prints usage",
			err:      &usageError{err: input.ErrMissingArgument, hint: input.Usage},
			contains: []string{"Error: missing argument", "Example: trilinos-status 0 4 6 4 72 0 4 7 8 9 10 435"},
		},
		{
			name:     "dependency error prints setup guidance",
			err:      derive.ErrDependencyUnavailable,
			contains: []string{"Error: date dependency unavailable", "STATUS_TIMEZONE"},
		},
		{
			name:     "other errors",
			err:      errors.New("boom"),
			contains: []string{"Error: boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintFailure(&buf, tt.err)
			for _, want := range tt.contains {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestPrintFailureColorFollowsWriter(t *testing.T) {
	previous := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = previous })

	var buf bytes.Buffer
	PrintFailure(&buf, errors.New("boom"))
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected no color codes outside a terminal, got %q", buf.String())
	}

	log, err := os.CreateTemp(t.TempDir(), "stderr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer log.Close()
	if useColor(log) {
		t.Error("expected no color for a redirected file")
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Errorf("expected 0 for nil error")
	}
	if ExitCode(errors.New("api down")) != ExitFailure {
		t.Errorf("expected %d for generic error", ExitFailure)
	}
}
