// Package ui implements the interactive review interface: a pull request
// list and a detail view with description, diff, and comment tabs.
//
// The Model follows the bubbletea update loop. Every slow operation
// (listing PRs, fetching diffs and comments, submitting reviews, running
// delta) is dispatched as a tea.Cmd and reports back with a typed message
// tagged by the pull request it belongs to; results for a PR that is no
// longer selected are dropped, so switching selections quickly never shows
// another PR's data.
package ui
