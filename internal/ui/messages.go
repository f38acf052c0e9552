package ui

import (
	"time"

	"github.com/dshills/revq/internal/gh"
)

// statusTickMsg drives status line expiry.
type statusTickMsg time.Time

// prsLoadedMsg delivers a refreshed pull request list.
type prsLoadedMsg struct {
	prs []gh.PullRequest
	err error
}

// diffLoadedMsg delivers the raw diff for one PR. key tags the PR the
// result belongs to.
type diffLoadedMsg struct {
	key  string
	diff string
	err  error
}

// deltaRenderedMsg delivers delta's colorized output for one PR's diff.
// raw echoes the diff the run was given so a result for an outdated
// buffer can be dropped. ok is false when delta was skipped or failed,
// which keeps the built-in rendering.
type deltaRenderedMsg struct {
	key string
	raw string
	out string
	ok  bool
}

// commentsLoadedMsg delivers the comment thread for one PR.
type commentsLoadedMsg struct {
	key      string
	comments []gh.Comment
	err      error
}

// actionDoneMsg reports a submitted review action. removes indicates the
// PR leaves the review queue on success.
type actionDoneMsg struct {
	key     string
	verb    string
	removes bool
	err     error
}

// mergeStatusMsg delivers mergeability and thread resolution for the PR
// awaiting merge confirmation.
type mergeStatusMsg struct {
	key  string
	info gh.MergeInfo
	err  error
}

// sessionStartedMsg reports a review session launch attempt.
type sessionStartedMsg struct {
	key string
	err error
}
