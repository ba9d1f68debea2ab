package analyze

import (
	"context"
	"path/filepath"
	"strings"
	"time"
)

// Finding is one reported observation tied to a file and an optional line.
// Line is 0 when the observation has no line (whole-file diagnostics, tool
// output without positions). Duplicates are permitted and not deduplicated.
type Finding struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Snippet string `json:"snippet"`
	Reason  string `json:"reason"`
}

// Reason labels for findings produced by the built-in analyzers. External
// tool diagnostics carry their own tool-specific labels (see exttool.go).
const (
	ReasonDebugCall       = "Python debug function call"
	ReasonMagicNumber     = "Use of magic number"
	ReasonFunctionTooLong = "Function is too long"
	ReasonNestingTooDeep  = "Nesting too deep"
	ReasonParseFailure    = "Python parsing failed"
	ReasonFileReadError   = "File reading error"
)

// Target is one changed file prepared for analysis.
type Target struct {
	// File is the repo-relative filename from the diff; it selects the
	// strategy and labels every finding.
	File string
	// AddedCode is the file's newly-added lines with indentation preserved.
	AddedCode string
	// Path is a materialized on-disk copy of AddedCode for analyzers that
	// read files or invoke external tools.
	Path string
}

// Analyzer inspects one target and reports findings. Implementations catch
// their own failures and surface them as a diagnostic Finding; they never
// abort the batch.
type Analyzer interface {
	Analyze(ctx context.Context, t Target) []Finding
}

// Options configures the analyzer set behind a Router.
type Options struct {
	// DebugCalls are the resolved Python callee names reported as debug
	// output (e.g. "print", "pdb.set_trace", "logging.debug").
	DebugCalls []string
	// NodeScript is the path of the node script used for TypeScript and
	// JavaScript analysis.
	NodeScript string
	// ToolTimeout bounds each external tool invocation.
	ToolTimeout time.Duration
}

// DefaultDebugCalls is the debug-output call list used when none is configured.
var DefaultDebugCalls = []string{"print", "pdb.set_trace", "logging.debug"}

const defaultToolTimeout = 30 * time.Second

// Router selects exactly one analysis strategy per file extension.
type Router struct {
	byExt map[string]Analyzer
}

// NewRouter builds the extension-to-strategy mapping.
func NewRouter(opts Options) *Router {
	if len(opts.DebugCalls) == 0 {
		opts.DebugCalls = DefaultDebugCalls
	}
	if opts.ToolTimeout <= 0 {
		opts.ToolTimeout = defaultToolTimeout
	}

	python := NewPythonAnalyzer(opts.DebugCalls)
	node := NewNodeScriptAnalyzer(opts.NodeScript, opts.ToolTimeout)
	cpp := NewHeuristicAnalyzer(CPPChecks)
	vet := NewGoVetAnalyzer(opts.ToolTimeout)
	terraform := NewTerraformAnalyzer(opts.ToolTimeout)
	ruby := NewRubyAnalyzer(opts.ToolTimeout)

	return &Router{byExt: map[string]Analyzer{
		".py":   python,
		".ts":   node,
		".tsx":  node,
		".js":   node,
		".jsx":  node,
		".cpp":  cpp,
		".hpp":  cpp,
		".java": NewHeuristicAnalyzer(JavaChecks),
		".rs":   NewHeuristicAnalyzer(RustChecks),
		".html": NewHeuristicAnalyzer(HTMLChecks),
		".css":  NewHeuristicAnalyzer(CSSChecks),
		".tf":   terraform,
		".go":   vet,
		".rb":   ruby,
	}}
}

// For returns the analyzer registered for the file's extension.
func (r *Router) For(filename string) (Analyzer, bool) {
	a, ok := r.byExt[strings.ToLower(filepath.Ext(filename))]
	return a, ok
}

// Analyze routes the target to its strategy. Unrecognized extensions yield
// no findings and no error.
func (r *Router) Analyze(ctx context.Context, t Target) []Finding {
	a, ok := r.For(t.File)
	if !ok {
		return nil
	}
	return a.Analyze(ctx, t)
}
