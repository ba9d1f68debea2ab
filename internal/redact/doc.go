// Package redact removes secrets from report content before it leaves the
// machine (gist upload, chat notification).
//
// Detection uses regex heuristics covering common secret shapes: API keys,
// JWTs, private keys, AWS access key IDs and secret access keys, bearer
// tokens, GitHub and Slack tokens, and Discord webhook URLs.
//
// Path-based redaction is also supported: files whose paths match configured
// glob patterns have their entire content replaced with [REDACTED] rather than
// being scanned line by line.
package redact
