package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/nayouta/pr-review-helper/internal/review"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}

	ew.printf("PR Review — %s/%s #%d\n", report.Owner, report.Repo, report.PR.Number)
	if report.PR.Title != "" {
		ew.printf("Title: %s\n", report.PR.Title)
	}
	if report.PR.Author != "" {
		ew.printf("Author: %s (created %s)\n", report.PR.Author, report.PR.CreatedAt)
	}
	ew.printf("Commits: %d, changed files: %d\n", report.Commits, report.PR.ChangedFiles)
	ew.println(strings.Repeat("─", 60))

	if len(report.Cancelled) > 0 {
		ew.printf("Cancelled lines (%d files):\n", len(report.Cancelled))
		for _, file := range sortedFiles(report.Cancelled) {
			ew.printf("\n  %s\n", file)
			for _, line := range report.Cancelled[file] {
				ew.printf("    - %s\n", line)
			}
		}
		ew.println(strings.Repeat("─", 60))
	}

	if len(report.Findings) == 0 {
		ew.println("\nNo debug code or best practice violations found.")
		return ew.err
	}

	ew.printf("Findings: %d\n", len(report.Findings))
	for _, f := range report.Findings {
		ew.printf("\n  %s:%d  %s\n", f.File, f.Line, f.Reason)
		if f.Snippet != "" {
			ew.printf("    %s\n", f.Snippet)
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Completed in %dms (fetch: %dms, analysis: %dms)\n",
		report.Timing.TotalMs, report.Timing.FetchMs, report.Timing.AnalyzeMs)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
