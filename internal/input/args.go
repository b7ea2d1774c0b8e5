package input

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/trilinos/status-table-cli/internal/derive"
)

// ArgCount is the number of positional values a report needs
const ArgCount = 12

// Usage describes the expected invocation shape
const Usage = `Usage: trilinos-status <pr_status> <merged> <failed> <wip> <review_required> <mm_status>
                       <change_requested> <review_approved> <waiting> <open> <master_merges> <jira_ticket>

  pr_status, mm_status: 0 = success, 1 = warning, 2 = failure
  all other values:     non-negative integers

Example: trilinos-status 0 4 6 4 72 0 4 7 8 9 10 435
         trilinos-status 1 3 1 22 21 0 5 5 21 58 1 504`

var (
	// ErrMissingArgument is returned when fewer than ArgCount values are given
	ErrMissingArgument = errors.New("missing argument")
	// ErrInvalidArgument is returned when a value cannot be parsed
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrTooManyArguments is returned when more than ArgCount values are given
	ErrTooManyArguments = errors.New("too many arguments")
)

// Field identifies a positional value by its index on the command line
type Field int

// Positional layout. MM status sits between review-required and
// change-requested; callers already depend on that order.
const (
	FieldPRStatus Field = iota
	FieldMerged
	FieldFailed
	FieldWIP
	FieldReviewRequired
	FieldMMStatus
	FieldChangeRequested
	FieldReviewApproved
	FieldWaiting
	FieldOpen
	FieldMasterMerges
	FieldJiraTicket
)

var fieldNames = [ArgCount]string{
	FieldPRStatus:        "pr_status",
	FieldMerged:          "merged",
	FieldFailed:          "failed",
	FieldWIP:             "wip",
	FieldReviewRequired:  "review_required",
	FieldMMStatus:        "mm_status",
	FieldChangeRequested: "change_requested",
	FieldReviewApproved:  "review_approved",
	FieldWaiting:         "waiting",
	FieldOpen:            "open",
	FieldMasterMerges:    "master_merges",
	FieldJiraTicket:      "jira_ticket",
}

// String returns the snake_case name used in usage text and errors
func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return "field(" + strconv.Itoa(int(f)) + ")"
	}
	return fieldNames[f]
}

// ArgError describes which positional value was missing or malformed
type ArgError struct {
	Field Field
	Value string
	Err   error // ErrMissingArgument or ErrInvalidArgument
	cause error
}

func (e *ArgError) Error() string {
	if errors.Is(e.Err, ErrMissingArgument) {
		return fmt.Sprintf("%s: %s (position %d)", e.Err, e.Field, int(e.Field)+1)
	}
	msg := fmt.Sprintf("%s %s (position %d): %q", e.Err, e.Field, int(e.Field)+1, e.Value)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *ArgError) Unwrap() error {
	return e.Err
}

// Counts holds the pull-request tallies for a report.
// Failed and Waiting are accepted for compatibility but not rendered.
type Counts struct {
	Merged          int
	Failed          int
	WIP             int
	ReviewRequired  int
	ChangeRequested int
	ReviewApproved  int
	Waiting         int
	Open            int
	MasterMerges    int
}

// Args is the validated form of the positional command line
type Args struct {
	PRStatus   derive.StatusCode
	MMStatus   derive.StatusCode
	Counts     Counts
	JiraTicket int
}

// ParseArgs validates exactly ArgCount positional values.
// The first missing or malformed field is reported as an *ArgError.
func ParseArgs(values []string) (Args, error) {
	if len(values) < ArgCount {
		return Args{}, &ArgError{Field: Field(len(values)), Err: ErrMissingArgument}
	}
	if len(values) > ArgCount {
		return Args{}, fmt.Errorf("%w: expected %d values, got %d", ErrTooManyArguments, ArgCount, len(values))
	}

	p := parser{values: values}
	var args Args
	args.PRStatus = p.status(FieldPRStatus)
	args.Counts.Merged = p.count(FieldMerged)
	args.Counts.Failed = p.count(FieldFailed)
	args.Counts.WIP = p.count(FieldWIP)
	args.Counts.ReviewRequired = p.count(FieldReviewRequired)
	args.MMStatus = p.status(FieldMMStatus)
	args.Counts.ChangeRequested = p.count(FieldChangeRequested)
	args.Counts.ReviewApproved = p.count(FieldReviewApproved)
	args.Counts.Waiting = p.count(FieldWaiting)
	args.Counts.Open = p.count(FieldOpen)
	args.Counts.MasterMerges = p.count(FieldMasterMerges)
	args.JiraTicket = p.count(FieldJiraTicket)
	if p.err != nil {
		return Args{}, p.err
	}
	return args, nil
}

// ParseCount parses a non-negative integer value
func ParseCount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("not a whole number")
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return n, nil
}

// parser keeps the first error so ParseArgs reads like the field layout
type parser struct {
	values []string
	err    error
}

func (p *parser) fail(f Field, cause error) {
	if p.err == nil {
		p.err = &ArgError{Field: f, Value: p.values[f], Err: ErrInvalidArgument, cause: cause}
	}
}

func (p *parser) status(f Field) derive.StatusCode {
	code, err := derive.ParseStatusCode(p.values[f])
	if err != nil {
		p.fail(f, err)
	}
	return code
}

func (p *parser) count(f Field) int {
	n, err := ParseCount(p.values[f])
	if err != nil {
		p.fail(f, err)
	}
	return n
}
