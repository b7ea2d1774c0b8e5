package github

import (
	"net/url"
	"strings"

	"github.com/trilinos/status-table-cli/internal/derive"
	"github.com/trilinos/status-table-cli/internal/input"
)

// Query is an ordered list of GitHub search qualifiers such as "is:pr" or
// `-label:"AT: WIP"`. Order is preserved so generated links stay stable.
type Query []string

// String returns the query the way it is typed into the search box
func (q Query) String() string {
	return strings.Join(q, " ")
}

// Encode returns the query as a q= parameter value. Each qualifier is
// query-escaped (":" -> %3A, " " -> +, `"` -> %22) and qualifiers are joined by "+".
func (q Query) Encode() string {
	parts := make([]string, len(q))
	for i, term := range q {
		parts[i] = url.QueryEscape(term)
	}
	return strings.Join(parts, "+")
}

// With returns a copy of q with extra qualifiers appended
func (q Query) With(terms ...string) Query {
	out := make(Query, 0, len(q)+len(terms))
	out = append(out, q...)
	return append(out, terms...)
}

// Label returns a label qualifier, quoting names that contain spaces
func Label(name string) string {
	return "label:" + quote(name)
}

// NotLabel returns a negated label qualifier
func NotLabel(name string) string {
	return "-" + Label(name)
}

func quote(value string) string {
	if strings.ContainsAny(value, " :") {
		return `"` + value + `"`
	}
	return value
}

// PullsURL returns the unfiltered pull request listing of a repository
func PullsURL(repo input.RepoRef) string {
	return repo.URL() + "/pulls"
}

// SearchURL returns the pull request listing filtered by q
func SearchURL(repo input.RepoRef, q Query) string {
	return PullsURL(repo) + "?q=" + q.Encode()
}

// Category identifies one of the pull request tallies on the status table
type Category int

// Categories in command-line order
const (
	Merged Category = iota
	Failed
	WIP
	ReviewRequired
	ChangeRequested
	ReviewApproved
	Waiting
	Open
	MasterMerges
)

// Categories lists every category in command-line order
var Categories = []Category{
	Merged, Failed, WIP, ReviewRequired, ChangeRequested, ReviewApproved, Waiting, Open, MasterMerges,
}

var categoryNames = map[Category]string{
	Merged:          "merged",
	Failed:          "failed",
	WIP:             "wip",
	ReviewRequired:  "review_required",
	ChangeRequested: "change_requested",
	ReviewApproved:  "review_approved",
	Waiting:         "waiting",
	Open:            "open",
	MasterMerges:    "master_merges",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// QueryConfig names the branches and label the queries filter on
type QueryConfig struct {
	DevelopBranch string
	MasterBranch  string
	WIPLabel      string
}

// Queries builds the search behind every category for the given report dates.
// Merged covers yesterday noon to today noon on the development branch;
// MasterMerges covers last Friday noon to today noon on the master branch.
func Queries(cfg QueryConfig, dates derive.Dates) map[Category]Query {
	base := Query{"is:pr"}
	openDevelop := base.With("is:open", "base:"+cfg.DevelopBranch)
	daily := derive.CutoffRange(dates.Yesterday, dates.Today)

	return map[Category]Query{
		Merged:          base.With("merged:"+daily, "base:"+cfg.DevelopBranch),
		Failed:          base.With("updated:"+daily, "base:"+cfg.DevelopBranch, "status:failure"),
		WIP:             openDevelop.With(Label(cfg.WIPLabel)),
		ReviewRequired:  openDevelop.With("review:required", NotLabel(cfg.WIPLabel)),
		ChangeRequested: openDevelop.With("review:changes-requested", NotLabel(cfg.WIPLabel)),
		ReviewApproved:  openDevelop.With("review:approved", "-status:failure", NotLabel(cfg.WIPLabel)),
		Waiting:         openDevelop.With("review:approved", "status:failure", NotLabel(cfg.WIPLabel)),
		Open:            base.With("is:open"),
		MasterMerges: base.With(
			"merged:"+derive.CutoffRange(dates.LastFriday, dates.Today),
			"base:"+cfg.MasterBranch,
		),
	}
}
