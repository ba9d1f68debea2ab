// Package cli wires together the Cobra command tree for the prreview binary.
//
// It defines the root command and all subcommands (review, config, cache,
// version), binds flags, reads configuration, invokes the review engine,
// publishes the report (file, gist, Discord), and returns deterministic exit
// codes for CI gating.
package cli
