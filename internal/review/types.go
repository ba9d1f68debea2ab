package review

import (
	"fmt"
	"strings"

	"github.com/nayouta/pr-review-helper/internal/analyze"
	"github.com/nayouta/pr-review-helper/internal/github"
)

// Timing contains performance metrics.
type Timing struct {
	FetchMs   int64 `json:"fetchMs"`
	AnalyzeMs int64 `json:"analyzeMs"`
	TotalMs   int64 `json:"totalMs"`
}

// Report is the top-level result of reviewing a pull request.
type Report struct {
	Tool      string              `json:"tool"`
	Version   string              `json:"version"`
	RunID     string              `json:"runId"`
	Owner     string              `json:"owner"`
	Repo      string              `json:"repo"`
	PR        github.PullRequest  `json:"pr"`
	Commits   int                 `json:"commits"`
	Cancelled map[string][]string `json:"cancelled"`
	Findings  []analyze.Finding   `json:"findings"`
	GistURL   string              `json:"gistUrl,omitempty"`
	Timing    Timing              `json:"timing"`
}

// CancelledCount returns the total number of cancelled lines across all files.
func (r *Report) CancelledCount() int {
	n := 0
	for _, lines := range r.Cancelled {
		n += len(lines)
	}
	return n
}

// Summary renders a short human-readable digest of the report, suitable for
// chat notifications.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "PR #%d: %s\n", r.PR.Number, r.PR.Title)
	fmt.Fprintf(&b, "Author: %s\n", r.PR.Author)
	if r.PR.CreatedAt != "" {
		fmt.Fprintf(&b, "Created: %s\n", r.PR.CreatedAt)
	}
	fmt.Fprintf(&b, "Commits: %d, changed files: %d\n", r.Commits, r.PR.ChangedFiles)
	fmt.Fprintf(&b, "Cancelled lines: %d across %d files\n", r.CancelledCount(), len(r.Cancelled))
	fmt.Fprintf(&b, "Findings: %d", len(r.Findings))
	if r.GistURL != "" {
		fmt.Fprintf(&b, "\nFull report: %s", r.GistURL)
	}
	return b.String()
}
