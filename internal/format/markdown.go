package format

import (
	"fmt"
	"strings"
)

// TableName is the heading printed above the status table
const TableName = "Trilinos Status Table"

// Headers are the status table columns in display order
var Headers = []string{
	"Date",
	"PR Status",
	"PRs Merged (Past 24 Hrs from 12pm)",
	"WIP PRs (@ 12pm)",
	"Review-Required PRs (@ 12pm)",
	"Change-Requested PRs (@ 12pm)",
	"Review-Approved PRs (@ 12pm)",
	"Total Open PRs (@ 12pm)",
	"MM Status",
	"Master Merges (Past 24 hrs from 12pm)",
	"Jira Ticket #",
}

// StatusRow holds the rendered cells of one day's status, one per header
type StatusRow struct {
	Date            string
	PRStatus        string // Icon shortcode (e.g., ":white_check_mark:")
	Merged          string // Markdown link
	WIP             string
	ReviewRequired  string
	ChangeRequested string
	ReviewApproved  string
	Open            string
	MMStatus        string
	MasterMerges    string
	JiraTicket      string
}

// Cells returns the row in header order
func (r StatusRow) Cells() []string {
	return []string{
		r.Date,
		r.PRStatus,
		r.Merged,
		r.WIP,
		r.ReviewRequired,
		r.ChangeRequested,
		r.ReviewApproved,
		r.Open,
		r.MMStatus,
		r.MasterMerges,
		r.JiraTicket,
	}
}

// Link formats an inline markdown link. The label is escaped for table cells;
// the URL is used verbatim.
func Link(label, url string) string {
	return fmt.Sprintf("[%s](%s)", escapeMarkdownTableCell(label), url)
}

// RenderStatusTable renders the headers and a single status row as a markdown
// table, preceded by a "# title" heading when title is non-empty
func RenderStatusTable(title string, row StatusRow) (string, error) {
	cells := row.Cells()
	if len(cells) != len(Headers) {
		return "", fmt.Errorf("status row has %d cells, expected %d", len(cells), len(Headers))
	}
	for i, cell := range cells {
		if strings.TrimSpace(cell) == "" {
			return "", fmt.Errorf("status row is missing a value for %q", Headers[i])
		}
	}

	var builder strings.Builder
	if title != "" {
		builder.WriteString(fmt.Sprintf("# %s\n\n", title))
	}

	writeTableLine(&builder, Headers)

	separators := make([]string, len(Headers))
	for i, header := range Headers {
		separators[i] = strings.Repeat("-", len(header))
	}
	writeTableLine(&builder, separators)

	escaped := make([]string, len(cells))
	for i, cell := range cells {
		escaped[i] = escapeRenderedCell(cell)
	}
	writeTableLine(&builder, escaped)

	return builder.String(), nil
}

func writeTableLine(builder *strings.Builder, cells []string) {
	builder.WriteString("| ")
	builder.WriteString(strings.Join(cells, " | "))
	builder.WriteString(" |\n")
}

// escapeMarkdownTableCell escapes pipe characters and other problematic content for table cells
func escapeMarkdownTableCell(content string) string {
	// First escape existing backslashes to prevent unintended escaping
	content = strings.ReplaceAll(content, "\\", "\\\\")

	// Then replace pipe characters that would break table formatting
	content = strings.ReplaceAll(content, "|", "\\|")

	return escapeRenderedCell(content)
}

// escapeRenderedCell flattens a cell that may already contain markdown.
// Backslashes are left alone so escaped link labels survive; bare pipes are escaped.
func escapeRenderedCell(content string) string {
	var builder strings.Builder
	for i := 0; i < len(content); i++ {
		c := content[i]
		if c == '|' && (i == 0 || content[i-1] != '\\') {
			builder.WriteString("\\|")
			continue
		}
		builder.WriteByte(c)
	}
	content = builder.String()

	content = strings.ReplaceAll(content, "\t", " ")
	return collapseNewlines(content)
}

// collapseNewlines replaces newlines with single spaces for table cell content
func collapseNewlines(content string) string {
	// Replace Windows line endings first to avoid double spaces
	content = strings.ReplaceAll(content, "\r\n", " ")
	// Then replace remaining Unix and Mac line endings
	content = strings.ReplaceAll(content, "\n", " ")
	content = strings.ReplaceAll(content, "\r", " ")

	// Collapse multiple spaces into single spaces
	for strings.Contains(content, "  ") {
		content = strings.ReplaceAll(content, "  ", " ")
	}

	return strings.TrimSpace(content)
}
