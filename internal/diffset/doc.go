// Package diffset reconstructs the set of source lines a pull request adds
// and removes from its per-commit unified-diff patches.
//
// Lines are tracked as normalized strings (diff marker stripped, surrounding
// whitespace trimmed) in per-file sets; the Reconciler folds the per-commit
// sets into running unions and reports the intersection per file — lines that
// were both added and removed somewhere within the same pull request.
//
// Only set membership is tracked. A line added in the newest commit and
// removed in an older one still counts as cancelled; ordering and repetition
// are deliberately ignored.
package diffset
