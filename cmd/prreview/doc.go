// Prreview is a CLI for reviewing GitHub pull requests without an LLM.
//
// It walks every commit in a PR, reconstructs which added lines were later
// removed (cancelled) across the PR's history, and scans the added code for
// debug statements and best-practice violations: a tree-sitter structural
// pass for Python, regex heuristics for C++, Java, Rust, HTML, and CSS, and
// external tools (go vet, terraform, ruby, rubocop, node) for the rest.
//
// Usage:
//
//	prreview review <pr-number>        # review a pull request
//	prreview config init               # create a default config file
//	prreview cache clear               # drop cached API responses
//
// The markdown report is written to the output directory, uploaded as a
// private gist, and summarized to a Discord webhook when one is configured.
package main
