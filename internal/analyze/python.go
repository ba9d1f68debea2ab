package analyze

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Thresholds for function size checks. A body of exactly maxBodyStatements
// statements is fine; one more is flagged. Likewise for nesting depth, where
// a flat statement sequence counts as depth 1.
const (
	maxBodyStatements = 50
	maxNestingDepth   = 4
)

// PythonAnalyzer parses added Python code into a tree-sitter syntax tree and
// walks it for debug calls, numeric literals, and oversized functions.
type PythonAnalyzer struct {
	debugCalls map[string]bool
}

// NewPythonAnalyzer creates a PythonAnalyzer flagging the given callee names
// as debug output. Names are resolved dotted-attribute chains ("a.b.c").
func NewPythonAnalyzer(debugCalls []string) *PythonAnalyzer {
	set := make(map[string]bool, len(debugCalls))
	for _, name := range debugCalls {
		set[name] = true
	}
	return &PythonAnalyzer{debugCalls: set}
}

// Analyze parses t.AddedCode. On parse failure it returns exactly one
// Finding with line 0 and performs no tree walk. Tree-sitter recovers from
// syntax errors instead of failing, so a tree containing error nodes counts
// as a parse failure too.
func (a *PythonAnalyzer) Analyze(ctx context.Context, t Target) []Finding {
	// Parsers are not safe for concurrent use; targets are analyzed in
	// parallel, so each call gets its own.
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	src := []byte(t.AddedCode)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return []Finding{{File: t.File, Snippet: err.Error(), Reason: ReasonParseFailure}}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return []Finding{{File: t.File, Snippet: "source contains syntax errors", Reason: ReasonParseFailure}}
	}

	w := &pyWalker{file: t.File, src: src, debugCalls: a.debugCalls}
	w.visit(root)
	return w.findings
}

// pyWalker collects all finding kinds in a single recursive pass.
type pyWalker struct {
	file       string
	src        []byte
	debugCalls map[string]bool
	findings   []Finding
}

func (w *pyWalker) visit(n *sitter.Node) {
	switch n.Type() {
	case "call":
		if fn := n.ChildByFieldName("function"); fn != nil {
			if name := w.calleeName(fn); w.debugCalls[name] {
				w.emit(n, name, ReasonDebugCall)
			}
		}
	case "integer", "float":
		w.emit(n, w.text(n), ReasonMagicNumber)
	case "function_definition":
		w.checkFunction(n)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.visit(n.NamedChild(i))
	}
}

// calleeName resolves a call's function expression to a dotted name,
// left-to-right ("logging.debug", "a.b.c"). Anything that is not a plain
// identifier or attribute chain resolves to "".
func (w *pyWalker) calleeName(n *sitter.Node) string {
	switch n.Type() {
	case "identifier":
		return w.text(n)
	case "attribute":
		obj := n.ChildByFieldName("object")
		attr := n.ChildByFieldName("attribute")
		if obj == nil || attr == nil {
			return ""
		}
		base := w.calleeName(obj)
		if base == "" {
			return ""
		}
		return base + "." + w.text(attr)
	default:
		return ""
	}
}

func (w *pyWalker) checkFunction(n *sitter.Node) {
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	name := ""
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		name = w.text(nameNode)
	}
	if statementCount(body) > maxBodyStatements {
		w.emit(n, name, ReasonFunctionTooLong)
	}
	if nestingDepth(body) > maxNestingDepth {
		w.emit(n, name, ReasonNestingTooDeep)
	}
}

func (w *pyWalker) emit(n *sitter.Node, snippet, reason string) {
	w.findings = append(w.findings, Finding{
		File:    w.file,
		Line:    int(n.StartPoint().Row) + 1,
		Snippet: snippet,
		Reason:  reason,
	})
}

func (w *pyWalker) text(n *sitter.Node) string {
	return string(w.src[n.StartByte():n.EndByte()])
}

// statementCount counts the statements directly in a block. Comments appear
// as named children in the tree but are not statements.
func statementCount(block *sitter.Node) int {
	count := 0
	for i := 0; i < int(block.NamedChildCount()); i++ {
		if block.NamedChild(i).Type() != "comment" {
			count++
		}
	}
	return count
}

// nestingDepth returns the maximum nesting depth of a block: a flat sequence
// is 1, and any statement carrying a nested block (if/for/while/try/with,
// nested def/class, match arms) contributes 1 + the depth of that block.
func nestingDepth(block *sitter.Node) int {
	depth := 1
	for i := 0; i < int(block.NamedChildCount()); i++ {
		stmt := block.NamedChild(i)
		for _, nested := range nestedBlocks(stmt) {
			if d := 1 + nestingDepth(nested); d > depth {
				depth = d
			}
		}
	}
	return depth
}

// nestedBlocks collects the blocks directly nested under a statement,
// including those wrapped in clauses (elif/else/except/finally/case).
func nestedBlocks(stmt *sitter.Node) []*sitter.Node {
	var blocks []*sitter.Node
	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		child := stmt.NamedChild(i)
		switch {
		case child.Type() == "block":
			blocks = append(blocks, child)
		case strings.HasSuffix(child.Type(), "_clause"):
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if inner := child.NamedChild(j); inner.Type() == "block" {
					blocks = append(blocks, inner)
				}
			}
		}
	}
	return blocks
}
