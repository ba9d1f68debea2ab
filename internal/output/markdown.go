package output

import (
	"io"
	"sort"
	"strings"

	"github.com/nayouta/pr-review-helper/internal/review"
)

// MarkdownWriter outputs the durable review report: the same document that
// is written to disk and uploaded as a gist.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}

	ew.printf("# Pull Request Review Report - #%d\n\n", report.PR.Number)

	if len(report.Cancelled) > 0 {
		ew.printf("## Detected Code Deletions\n\n")
		for _, file := range sortedFiles(report.Cancelled) {
			ew.printf("### %s\n", file)
			for _, line := range report.Cancelled[file] {
				ew.printf("- `%s`\n", line)
			}
			ew.println("")
		}
	}

	if len(report.Findings) > 0 {
		ew.printf("## Debug Code / Best Practice Violations\n\n")
		for _, f := range report.Findings {
			ew.printf("### %s (L%d)\n\n", f.File, f.Line)
			ew.printf("- **Type**: %s\n\n", f.Reason)
			if f.Snippet != "" {
				ew.printf("```%s\n%s\n```\n\n", inferLang(f.File), f.Snippet)
			}
		}
	} else {
		ew.println("No debug code or best practice violations found.")
	}

	return ew.err
}

func sortedFiles(m map[string][]string) []string {
	files := make([]string, 0, len(m))
	for f := range m {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

func inferLang(path string) string {
	langMap := map[string]string{
		".go":   "go",
		".py":   "python",
		".js":   "javascript",
		".ts":   "typescript",
		".tsx":  "tsx",
		".jsx":  "jsx",
		".rs":   "rust",
		".java": "java",
		".rb":   "ruby",
		".cpp":  "cpp",
		".hpp":  "cpp",
		".c":    "c",
		".html": "html",
		".css":  "css",
		".sh":   "bash",
		".yaml": "yaml",
		".yml":  "yaml",
		".json": "json",
		".tf":   "hcl",
	}
	for ext, lang := range langMap {
		if strings.HasSuffix(path, ext) {
			return lang
		}
	}
	return ""
}
