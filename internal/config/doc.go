// Package config loads and merges revq configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (REVQ_REPOS_ROOT, REVQ_POLL_SECONDS, etc.)
//  3. Config file ($XDG_CONFIG_HOME/revq/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config] and [Save] to persist changes such
// as newly excluded directories.
package config
