// Package config loads and merges prreview configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (PRREVIEW_OWNER, PRREVIEW_REPO, DISCORD_WEBHOOK_URL, etc.)
//  3. Config file ($XDG_CONFIG_HOME/prreview/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write the config file,
// and [SetField] to update a single key.
package config
