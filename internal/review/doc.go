// Package review contains the engine that turns a pull request into a Report.
//
// The engine fetches the PR's metadata and commits, extracts added and
// removed line sets from every per-commit patch, and reconciles them into
// per-file cancelled sets (lines both added and removed somewhere in the
// PR's history). Added code from each file is materialized to a scratch file
// and dispatched to the per-language analyzers with bounded concurrency.
//
// Fetch failures abort the run; per-file analysis failures are demoted to
// findings so one unreadable file cannot sink the whole review.
package review
