// Revq is a terminal review queue for GitHub pull requests.
//
// It scans a directory of local git checkouts, lists the open pull
// requests waiting on your review, and opens each one in an interactive
// viewer with a syntax-highlighted word-level diff, inline commenting,
// and approve/close/merge actions. A daemon mode watches for new pull
// requests and starts review sessions automatically.
//
// Usage:
//
//	revq                       # review queue for checkouts under the configured root
//	revq --my                  # your own open pull requests
//	revq --drafts              # include draft pull requests
//	revq daemon init           # seed the watcher state
//	revq daemon run --once     # poll once for new pull requests
//	revq config show           # print effective configuration
package main
