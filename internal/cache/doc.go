// Package cache provides a file-based cache for GitHub API responses.
//
// Commit diffs are immutable once fetched, so re-running a review of the same
// pull request can serve them from disk instead of spending API quota.
// Entries are keyed by a SHA-256 hash of owner/repo/sha, store the raw
// response body with a fetch timestamp and TTL (in seconds), and are skipped
// on read once expired.
//
// The default cache directory is $XDG_CACHE_HOME/prreview (or the
// OS-appropriate equivalent).
package cache
