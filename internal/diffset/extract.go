package diffset

import "strings"

// LineSet is a set of normalized line contents.
type LineSet map[string]struct{}

// NewLineSet builds a LineSet from the given lines.
func NewLineSet(lines ...string) LineSet {
	s := make(LineSet, len(lines))
	for _, l := range lines {
		s[l] = struct{}{}
	}
	return s
}

// Contains reports whether the set holds the given line.
func (s LineSet) Contains(line string) bool {
	_, ok := s[line]
	return ok
}

// Add inserts a line into the set.
func (s LineSet) Add(line string) {
	s[line] = struct{}{}
}

// Merge adds every line of other into s.
func (s LineSet) Merge(other LineSet) {
	for l := range other {
		s[l] = struct{}{}
	}
}

// Intersect returns the lines present in both sets.
func (s LineSet) Intersect(other LineSet) LineSet {
	out := make(LineSet)
	for l := range s {
		if other.Contains(l) {
			out.Add(l)
		}
	}
	return out
}

// Lines returns the set contents as an unordered slice.
func (s LineSet) Lines() []string {
	out := make([]string, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	return out
}

// Extract parses a unified-diff patch body into the sets of added and removed
// line contents. A line starting with "+" (but not the "+++" file header)
// contributes its remainder, whitespace-trimmed, to the added set; "-" lines
// (but not "---") contribute to the removed set. Context lines and hunk
// headers are ignored. An empty patch yields two empty sets.
//
// Trimming means two lines differing only in surrounding whitespace are
// treated as the same line. That is a deliberate heuristic: reindented code
// reads as added-and-removed, i.e. cancelled.
func Extract(patch string) (added, removed LineSet) {
	added = make(LineSet)
	removed = make(LineSet)
	if patch == "" {
		return added, removed
	}
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			added.Add(strings.TrimSpace(line[1:]))
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			removed.Add(strings.TrimSpace(line[1:]))
		}
	}
	return added, removed
}

// AddedCode returns the added lines of a patch in their original order with
// the "+" marker stripped but otherwise untouched. This is the text the
// analyzers run against; unlike Extract it must preserve indentation, since
// at least Python is whitespace-sensitive.
func AddedCode(patch string) string {
	if patch == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(patch, "\n") {
		if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
			b.WriteString(line[1:])
			b.WriteString("\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
