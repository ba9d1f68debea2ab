package analyze

import (
	"context"
	"os"
	"regexp"
	"strings"
)

// Check pairs a line pattern with the message reported when it matches.
type Check struct {
	Pattern *regexp.Regexp
	Message string
}

// Per-extension check lists for languages without a structural parser.
var (
	CPPChecks = []Check{
		{regexp.MustCompile(`\b(std::)?cout|printf\(`), "C++ debug output"},
		{regexp.MustCompile(`[^\w](\d+(\.\d+)?)[^\w]`), "Magic number"},
	}
	JavaChecks = []Check{
		{regexp.MustCompile(`System\.out\.println`), "Java debug output"},
		{regexp.MustCompile(`[^\w](\d+(\.\d+)?)[^\w]`), "Magic number"},
	}
	RustChecks = []Check{
		{regexp.MustCompile(`dbg!\(|println!\(`), "Rust debug output"},
	}
	HTMLChecks = []Check{
		{regexp.MustCompile(`<script|<style`), "Inline JS or CSS"},
	}
	CSSChecks = []Check{
		{regexp.MustCompile(`!important`), "Overuse of !important"},
	}
)

// HeuristicAnalyzer applies an ordered check list line-by-line over a file.
// Every (line, check) match yields its own finding; a line may trigger
// several checks independently.
type HeuristicAnalyzer struct {
	checks []Check
}

// NewHeuristicAnalyzer creates an analyzer with the given check list.
// Checks run in list order on each line.
func NewHeuristicAnalyzer(checks []Check) *HeuristicAnalyzer {
	return &HeuristicAnalyzer{checks: checks}
}

// Analyze reads the materialized file and scans it. An unreadable file
// yields a single diagnostic finding with line 0.
func (a *HeuristicAnalyzer) Analyze(_ context.Context, t Target) []Finding {
	data, err := os.ReadFile(t.Path)
	if err != nil {
		return []Finding{{File: t.File, Snippet: err.Error(), Reason: ReasonFileReadError}}
	}

	var findings []Finding
	for i, line := range strings.Split(string(data), "\n") {
		for _, check := range a.checks {
			if check.Pattern.MatchString(line) {
				findings = append(findings, Finding{
					File:    t.File,
					Line:    i + 1,
					Snippet: strings.TrimSpace(line),
					Reason:  check.Message,
				})
			}
		}
	}
	return findings
}
