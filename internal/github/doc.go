// Package github provides a minimal GitHub REST API client for the data the
// review needs: pull-request metadata, the PR's commit list, each commit's
// file diffs, and private gist creation for publishing the finished report.
//
// It detects owner/repo from the local git remote when not configured and
// authenticates with the GITHUB_TOKEN environment variable. Commit diffs are
// immutable, so responses for them can be memoized in an optional disk cache.
package github
