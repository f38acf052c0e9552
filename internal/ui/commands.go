package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dshills/revq/internal/diff"
	"github.com/dshills/revq/internal/gh"
)

func (m Model) fetchPRs() tea.Cmd {
	dirs := m.dirs
	user := m.user
	drafts := m.drafts
	if m.mine {
		return func() tea.Msg {
			prs, err := gh.MyPRs(drafts)
			return prsLoadedMsg{prs: prs, err: err}
		}
	}
	return func() tea.Msg {
		prs, err := gh.FetchAll(dirs, user, drafts)
		return prsLoadedMsg{prs: prs, err: err}
	}
}

func fetchDiff(pr gh.PullRequest) tea.Cmd {
	return func() tea.Msg {
		out, err := gh.Diff(pr)
		return diffLoadedMsg{key: pr.Key(), diff: out, err: err}
	}
}

func renderDelta(key, rawDiff string, width int) tea.Cmd {
	return func() tea.Msg {
		out, ok := diff.RenderWithDelta(rawDiff, width)
		return deltaRenderedMsg{key: key, raw: rawDiff, out: out, ok: ok}
	}
}

func fetchComments(pr gh.PullRequest) tea.Cmd {
	return func() tea.Msg {
		comments, err := gh.Comments(pr)
		return commentsLoadedMsg{key: pr.Key(), comments: comments, err: err}
	}
}

func postComment(pr gh.PullRequest, body string) tea.Cmd {
	return func() tea.Msg {
		err := gh.AddComment(pr, body)
		return actionDoneMsg{key: pr.Key(), verb: "comment posted", err: err}
	}
}

func postLineComment(pr gh.PullRequest, target gh.CommentTarget, body string) tea.Cmd {
	return func() tea.Msg {
		err := gh.AddLineComment(pr, target, body)
		return actionDoneMsg{key: pr.Key(), verb: "line comment posted", err: err}
	}
}

func approvePR(pr gh.PullRequest, body string) tea.Cmd {
	return func() tea.Msg {
		err := gh.Approve(pr, body)
		return actionDoneMsg{key: pr.Key(), verb: "approved", removes: true, err: err}
	}
}

func closePR(pr gh.PullRequest, body string) tea.Cmd {
	return func() tea.Msg {
		err := gh.Close(pr, body)
		return actionDoneMsg{key: pr.Key(), verb: "closed", removes: true, err: err}
	}
}

func fetchMergeStatus(pr gh.PullRequest) tea.Cmd {
	return func() tea.Msg {
		info, err := gh.MergeStatus(pr)
		return mergeStatusMsg{key: pr.Key(), info: info, err: err}
	}
}

func mergePR(pr gh.PullRequest) tea.Cmd {
	return func() tea.Msg {
		err := gh.Merge(pr)
		return actionDoneMsg{key: pr.Key(), verb: "merged", removes: true, err: err}
	}
}

func launchSession(pr gh.PullRequest, command string) tea.Cmd {
	return func() tea.Msg {
		err := gh.LaunchReviewSession(pr, command)
		return sessionStartedMsg{key: pr.Key(), err: err}
	}
}
