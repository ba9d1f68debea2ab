// Package analyze inspects the newly-added code of each changed file and
// reports findings: debug statements, magic numbers, oversized or over-nested
// functions, and diagnostics from external format/vet/lint tools.
//
// A Router maps the file extension to exactly one strategy: Python gets a
// tree-sitter syntax-tree walk, several languages get ordered regex check
// lists, and the rest shell out to their native tooling (go vet, terraform,
// ruby/rubocop, a node analysis script). Unrecognized extensions produce no
// findings.
//
// Analyzers never fail the batch: a parse error, an unreadable file, or a
// missing external binary degrades to a single diagnostic Finding for that
// file and analysis of the remaining files continues.
package analyze
