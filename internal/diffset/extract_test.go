package diffset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	patch := "@@ -1,4 +1,4 @@\n" +
		" import os\n" +
		"-x = 1\n" +
		"+x = 2\n" +
		"+  y = 3  \n" +
		" print(x)\n"

	added, removed := Extract(patch)

	assert.True(t, added.Contains("x = 2"))
	assert.True(t, added.Contains("y = 3"), "added lines should be whitespace-trimmed")
	assert.True(t, removed.Contains("x = 1"))
	assert.False(t, added.Contains("import os"), "context lines are not added lines")
	assert.Len(t, added, 2)
	assert.Len(t, removed, 1)
}

func TestExtractIgnoresFileHeaders(t *testing.T) {
	patch := "--- a/main.py\n+++ b/main.py\n@@ -1 +1 @@\n-old\n+new\n"

	added, removed := Extract(patch)

	assert.Equal(t, NewLineSet("new"), added)
	assert.Equal(t, NewLineSet("old"), removed)
}

func TestExtractEmptyPatch(t *testing.T) {
	added, removed := Extract("")

	assert.Empty(t, added)
	assert.Empty(t, removed)
	assert.NotNil(t, added)
	assert.NotNil(t, removed)
}

func TestExtractIdempotent(t *testing.T) {
	patch := "+a\n+b\n-c\n a\n"

	a1, r1 := Extract(patch)
	a2, r2 := Extract(patch)

	assert.Equal(t, a1, a2)
	assert.Equal(t, r1, r2)
}

func TestExtractDuplicateLinesCollapse(t *testing.T) {
	patch := "+same\n+same\n+  same\n"

	added, _ := Extract(patch)

	assert.Len(t, added, 1)
}

func TestAddedCodePreservesIndentation(t *testing.T) {
	patch := "@@ -0,0 +1,2 @@\n+def f():\n+    return 1\n-gone\n"

	got := AddedCode(patch)

	assert.Equal(t, "def f():\n    return 1", got)
}

func TestAddedCodeEmptyPatch(t *testing.T) {
	assert.Equal(t, "", AddedCode(""))
}

func TestLineSetIntersect(t *testing.T) {
	a := NewLineSet("x", "y", "z")
	b := NewLineSet("y", "z", "w")

	assert.Equal(t, NewLineSet("y", "z"), a.Intersect(b))
	assert.Empty(t, a.Intersect(NewLineSet()))
}
