package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nayouta/pr-review-helper/internal/analyze"
	"github.com/nayouta/pr-review-helper/internal/github"
	"github.com/nayouta/pr-review-helper/internal/review"
)

func sampleReport() *review.Report {
	return &review.Report{
		Tool:    "prreview",
		Version: "1.0",
		Owner:   "alice",
		Repo:    "widgets",
		PR: github.PullRequest{
			Number:       42,
			Title:        "Refactor parser",
			Author:       "bob",
			CreatedAt:    "2024-05-01T12:00:00Z",
			ChangedFiles: 2,
		},
		Commits: 3,
		Cancelled: map[string][]string{
			"src/parser.py": {"x = 1", "y = compute()"},
		},
		Findings: []analyze.Finding{
			{File: "src/parser.py", Line: 3, Snippet: "print(result)", Reason: analyze.ReasonDebugCall},
			{File: "web/app.css", Line: 9, Snippet: "color: red !important;", Reason: "Overuse of !important"},
		},
	}
}

func TestMarkdownWriter_FullReport(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "# Pull Request Review Report - #42") {
		t.Error("Missing report heading")
	}
	if !strings.Contains(out, "## Detected Code Deletions") {
		t.Error("Missing deletions section")
	}
	if !strings.Contains(out, "### src/parser.py") {
		t.Error("Missing per-file deletion heading")
	}
	if !strings.Contains(out, "- `x = 1`") {
		t.Error("Missing cancelled line")
	}
	if !strings.Contains(out, "## Debug Code / Best Practice Violations") {
		t.Error("Missing findings section")
	}
	if !strings.Contains(out, "### src/parser.py (L3)") {
		t.Error("Missing finding heading with line number")
	}
	if !strings.Contains(out, "- **Type**: "+analyze.ReasonDebugCall) {
		t.Error("Missing finding reason")
	}
	if !strings.Contains(out, "```python\nprint(result)\n```") {
		t.Error("Missing fenced snippet with inferred language")
	}
	if !strings.Contains(out, "```css\ncolor: red !important;\n```") {
		t.Error("Missing css snippet")
	}
}

func TestMarkdownWriter_NoFindings(t *testing.T) {
	report := sampleReport()
	report.Findings = nil

	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "No debug code or best practice violations found.") {
		t.Error("Expected fallback message for clean report")
	}
	if strings.Contains(out, "## Debug Code / Best Practice Violations") {
		t.Error("Findings section should be omitted for clean report")
	}
}

func TestMarkdownWriter_NoDeletions(t *testing.T) {
	report := sampleReport()
	report.Cancelled = nil

	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if strings.Contains(buf.String(), "## Detected Code Deletions") {
		t.Error("Deletions section should be omitted when nothing was cancelled")
	}
}

func TestMarkdownWriter_FilesSorted(t *testing.T) {
	report := sampleReport()
	report.Cancelled = map[string][]string{
		"z.py": {"last"},
		"a.py": {"first"},
	}

	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	if strings.Index(out, "### a.py") > strings.Index(out, "### z.py") {
		t.Error("Deletion files should be rendered in sorted order")
	}
}

func TestInferLang(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.py", "python"},
		{"a.hpp", "cpp"},
		{"a.tf", "hcl"},
		{"a.unknown", ""},
	}
	for _, tt := range tests {
		if got := inferLang(tt.path); got != tt.want {
			t.Errorf("inferLang(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
