// Package gh wraps the GitHub CLI for pull request review operations:
// listing reviewable PRs across local checkouts, fetching diffs and
// comments, and submitting reviews, comments, merges, and worktrees.
//
// All calls shell out to gh so authentication and host selection stay
// with the user's existing gh login.
package gh
