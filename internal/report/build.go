package report

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/trilinos/status-table-cli/internal/config"
	"github.com/trilinos/status-table-cli/internal/derive"
	"github.com/trilinos/status-table-cli/internal/format"
	"github.com/trilinos/status-table-cli/internal/github"
	"github.com/trilinos/status-table-cli/internal/input"
)

// ErrRenderFailure wraps any failure while assembling the status table
var ErrRenderFailure = errors.New("cannot render status table")

// Build assembles the status row for one day: icons for both status codes and
// a link behind every count that has a matching search
func Build(args input.Args, dates derive.Dates, cfg *config.Config) (format.StatusRow, error) {
	prIcon, err := args.PRStatus.Icon()
	if err != nil {
		return format.StatusRow{}, fmt.Errorf("%w: PR status: %w", ErrRenderFailure, err)
	}
	mmIcon, err := args.MMStatus.Icon()
	if err != nil {
		return format.StatusRow{}, fmt.Errorf("%w: MM status: %w", ErrRenderFailure, err)
	}

	queries := github.Queries(queryConfig(cfg), dates)
	searchLink := func(count int, category github.Category) string {
		return format.Link(strconv.Itoa(count), github.SearchURL(cfg.Repo, queries[category]))
	}

	c := args.Counts
	return format.StatusRow{
		Date:            derive.FormatDate(dates.Today),
		PRStatus:        prIcon,
		Merged:          searchLink(c.Merged, github.Merged),
		WIP:             searchLink(c.WIP, github.WIP),
		ReviewRequired:  searchLink(c.ReviewRequired, github.ReviewRequired),
		ChangeRequested: searchLink(c.ChangeRequested, github.ChangeRequested),
		ReviewApproved:  searchLink(c.ReviewApproved, github.ReviewApproved),
		Open:            format.Link(strconv.Itoa(c.Open), github.PullsURL(cfg.Repo)),
		MMStatus:        mmIcon,
		MasterMerges:    searchLink(c.MasterMerges, github.MasterMerges),
		JiraTicket:      JiraLink(cfg, args.JiraTicket),
	}, nil
}

// Render builds and renders the full table. On error the returned string is
// always empty, so callers never print a partial table.
func Render(args input.Args, dates derive.Dates, cfg *config.Config) (string, error) {
	row, err := Build(args, dates, cfg)
	if err != nil {
		return "", err
	}

	title := format.TableName
	if cfg.NoTitle {
		title = ""
	}

	table, err := format.RenderStatusTable(title, row)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRenderFailure, err)
	}
	return table, nil
}

// JiraLink links a ticket number to the issue tracker, e.g.
// [TrilFrame-435](https://.../browse/TRILFRAME-435)
func JiraLink(cfg *config.Config, ticket int) string {
	label := fmt.Sprintf("%s-%d", cfg.Jira.Label, ticket)
	target := fmt.Sprintf("%s/%s-%d", cfg.Jira.BaseURL, cfg.Jira.Project, ticket)
	return format.Link(label, target)
}

// FromCounts builds report arguments from search totals. Categories missing
// from counts are reported as an error rather than rendered as zero.
func FromCounts(prStatus, mmStatus derive.StatusCode, ticket int, counts map[github.Category]int) (input.Args, error) {
	get := func(category github.Category) (int, error) {
		n, ok := counts[category]
		if !ok {
			return 0, fmt.Errorf("%w: no count for %s", ErrRenderFailure, category)
		}
		return n, nil
	}

	var args input.Args
	args.PRStatus = prStatus
	args.MMStatus = mmStatus
	args.JiraTicket = ticket

	targets := map[github.Category]*int{
		github.Merged:          &args.Counts.Merged,
		github.Failed:          &args.Counts.Failed,
		github.WIP:             &args.Counts.WIP,
		github.ReviewRequired:  &args.Counts.ReviewRequired,
		github.ChangeRequested: &args.Counts.ChangeRequested,
		github.ReviewApproved:  &args.Counts.ReviewApproved,
		github.Waiting:         &args.Counts.Waiting,
		github.Open:            &args.Counts.Open,
		github.MasterMerges:    &args.Counts.MasterMerges,
	}
	for _, category := range github.Categories {
		n, err := get(category)
		if err != nil {
			return input.Args{}, err
		}
		*targets[category] = n
	}

	return args, nil
}

// Positional renders args back into the twelve command-line values, so a
// collected report can be re-rendered offline later
func Positional(args input.Args) []string {
	c := args.Counts
	values := []int{
		int(args.PRStatus), c.Merged, c.Failed, c.WIP, c.ReviewRequired, int(args.MMStatus),
		c.ChangeRequested, c.ReviewApproved, c.Waiting, c.Open, c.MasterMerges, args.JiraTicket,
	}

	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.Itoa(v)
	}
	return out
}

func queryConfig(cfg *config.Config) github.QueryConfig {
	return github.QueryConfig{
		DevelopBranch: cfg.DevelopBranch,
		MasterBranch:  cfg.MasterBranch,
		WIPLabel:      cfg.WIPLabel,
	}
}
