// Package notify delivers review summaries to chat sinks.
//
// Delivery is best-effort: callers log failures and keep going, since the
// durable report on disk is the source of truth.
package notify
