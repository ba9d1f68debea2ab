package analyze

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzePython(t *testing.T, source string) []Finding {
	t.Helper()
	a := NewPythonAnalyzer(DefaultDebugCalls)
	return a.Analyze(context.Background(), Target{File: "a.py", AddedCode: source})
}

func findingsWithReason(findings []Finding, reason string) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Reason == reason {
			out = append(out, f)
		}
	}
	return out
}

func TestPythonDebugCallAndMagicNumber(t *testing.T) {
	findings := analyzePython(t, "print(1)")

	require.Len(t, findings, 2)

	debug := findingsWithReason(findings, ReasonDebugCall)
	require.Len(t, debug, 1)
	assert.Equal(t, "print", debug[0].Snippet)
	assert.Equal(t, 1, debug[0].Line)

	magic := findingsWithReason(findings, ReasonMagicNumber)
	require.Len(t, magic, 1)
	assert.Equal(t, "1", magic[0].Snippet)
}

func TestPythonDottedDebugCall(t *testing.T) {
	findings := analyzePython(t, `logging.debug("starting")`)

	debug := findingsWithReason(findings, ReasonDebugCall)
	require.Len(t, debug, 1)
	assert.Equal(t, "logging.debug", debug[0].Snippet)
}

func TestPythonNonDebugCallNotFlagged(t *testing.T) {
	findings := analyzePython(t, `do_work("payload")`)

	assert.Empty(t, findingsWithReason(findings, ReasonDebugCall))
}

func TestPythonMagicNumberIsUnfiltered(t *testing.T) {
	// Even 0 and 1 are flagged; the check has no allow-list.
	findings := analyzePython(t, "x = 0\ny = 1\nz = 2.5\n")

	magic := findingsWithReason(findings, ReasonMagicNumber)
	require.Len(t, magic, 3)
	assert.Equal(t, "0", magic[0].Snippet)
	assert.Equal(t, 1, magic[0].Line)
	assert.Equal(t, "2.5", magic[2].Snippet)
	assert.Equal(t, 3, magic[2].Line)
}

func functionWithStatements(n int) string {
	var b strings.Builder
	b.WriteString("def f():\n")
	for i := 0; i < n; i++ {
		b.WriteString("    pass\n")
	}
	return b.String()
}

func TestPythonFunctionTooLongBoundary(t *testing.T) {
	atLimit := analyzePython(t, functionWithStatements(50))
	assert.Empty(t, findingsWithReason(atLimit, ReasonFunctionTooLong),
		"50 body statements is at the limit, not over it")

	overLimit := analyzePython(t, functionWithStatements(51))
	long := findingsWithReason(overLimit, ReasonFunctionTooLong)
	require.Len(t, long, 1)
	assert.Equal(t, "f", long[0].Snippet)
	assert.Equal(t, 1, long[0].Line)
}

// functionWithNesting builds a def whose body holds a chain of n nested ifs,
// giving a maximum nesting depth of n+1.
func functionWithNesting(n int) string {
	var b strings.Builder
	b.WriteString("def f():\n")
	indent := "    "
	for i := 0; i < n; i++ {
		b.WriteString(strings.Repeat(indent, i+1))
		b.WriteString(fmt.Sprintf("if cond%d:\n", i))
	}
	b.WriteString(strings.Repeat(indent, n+1))
	b.WriteString("pass\n")
	return b.String()
}

func TestPythonNestingDepthBoundary(t *testing.T) {
	depth4 := analyzePython(t, functionWithNesting(3))
	assert.Empty(t, findingsWithReason(depth4, ReasonNestingTooDeep),
		"depth 4 is at the limit, not over it")

	depth5 := analyzePython(t, functionWithNesting(4))
	deep := findingsWithReason(depth5, ReasonNestingTooDeep)
	require.Len(t, deep, 1)
	assert.Equal(t, "f", deep[0].Snippet)
}

func TestPythonNestingCountsElseBranches(t *testing.T) {
	source := `def f():
    if a:
        pass
    else:
        while b:
            with open(p) as fh:
                try:
                    pass
                except ValueError:
                    pass
`
	findings := analyzePython(t, source)

	// else -> while -> with -> try bodies: depth 5 from the function body.
	deep := findingsWithReason(findings, ReasonNestingTooDeep)
	require.Len(t, deep, 1)
}

func TestPythonParseFailure(t *testing.T) {
	findings := analyzePython(t, "def f(:\n    print(1)\n")

	require.Len(t, findings, 1, "parse failure must suppress the tree walk")
	assert.Equal(t, ReasonParseFailure, findings[0].Reason)
	assert.Equal(t, 0, findings[0].Line)
	assert.Equal(t, "a.py", findings[0].File)
}

func TestPythonEmptySource(t *testing.T) {
	assert.Empty(t, analyzePython(t, ""))
}

func TestPythonMethodInClass(t *testing.T) {
	source := `class Worker:
    def run(self):
        pdb.set_trace()
`
	findings := analyzePython(t, source)

	debug := findingsWithReason(findings, ReasonDebugCall)
	require.Len(t, debug, 1)
	assert.Equal(t, "pdb.set_trace", debug[0].Snippet)
	assert.Equal(t, 3, debug[0].Line)
}
