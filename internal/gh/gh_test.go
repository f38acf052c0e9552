package gh

import (
	"testing"
	"time"
)

func TestReviewState(t *testing.T) {
	tests := []struct {
		name string
		pr   PullRequest
		want ReviewState
	}{
		{"draft wins over decision", PullRequest{IsDraft: true, ReviewDecision: "APPROVED"}, StateDraft},
		{"approved", PullRequest{ReviewDecision: "APPROVED"}, StateApproved},
		{"changes requested", PullRequest{ReviewDecision: "CHANGES_REQUESTED"}, StateChangesRequested},
		{"review required", PullRequest{ReviewDecision: "REVIEW_REQUIRED"}, StatePending},
		{"no decision", PullRequest{}, StatePending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pr.State(); got != tt.want {
				t.Errorf("State() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApprovedBy(t *testing.T) {
	pr := PullRequest{Reviews: []Review{
		{Author: Actor{Login: "alice"}, State: "APPROVED"},
		{Author: Actor{Login: "bob"}, State: "COMMENTED"},
	}}
	if !pr.ApprovedBy("alice") {
		t.Error("alice's approval not found")
	}
	if pr.ApprovedBy("bob") {
		t.Error("bob only commented")
	}
	if pr.ApprovedBy("carol") {
		t.Error("carol never reviewed")
	}
}

func TestFilterReviewable(t *testing.T) {
	prs := []PullRequest{
		{Number: 1, Author: Actor{Login: "me"}},
		{Number: 2, Author: Actor{Login: "alice"}},
		{Number: 3, Author: Actor{Login: "alice"}, IsDraft: true},
		{Number: 4, Author: Actor{Login: "bob"}, Reviews: []Review{
			{Author: Actor{Login: "me"}, State: "APPROVED"},
		}},
	}

	t.Run("default", func(t *testing.T) {
		got := FilterReviewable(prs, "me", false)
		if len(got) != 1 || got[0].Number != 2 {
			t.Fatalf("got %v, want only #2", numbers(got))
		}
	})
	t.Run("with drafts", func(t *testing.T) {
		got := FilterReviewable(prs, "me", true)
		if len(got) != 2 || got[0].Number != 2 || got[1].Number != 3 {
			t.Fatalf("got %v, want #2 and #3", numbers(got))
		}
	})
}

func TestDropDrafts(t *testing.T) {
	prs := []PullRequest{
		{Number: 1},
		{Number: 2, IsDraft: true},
		{Number: 3},
	}

	got := DropDrafts(prs, false)
	if len(got) != 2 || got[0].Number != 1 || got[1].Number != 3 {
		t.Errorf("got %v, want #1 and #3", numbers(got))
	}

	got = DropDrafts(prs, true)
	if len(got) != 3 {
		t.Errorf("got %v, want all three kept", numbers(got))
	}
}

func TestSortByUpdated(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	prs := []PullRequest{
		{Number: 1, UpdatedAt: base},
		{Number: 2, UpdatedAt: base.Add(2 * time.Hour)},
		{Number: 3, UpdatedAt: base.Add(time.Hour)},
	}
	SortByUpdated(prs)
	want := []int{2, 3, 1}
	for i, n := range want {
		if prs[i].Number != n {
			t.Fatalf("position %d = #%d, want #%d", i, prs[i].Number, n)
		}
	}
}

func TestKey(t *testing.T) {
	pr := PullRequest{Number: 42, Repo: "owner/repo"}
	if got := pr.Key(); got != "owner/repo#42" {
		t.Errorf("Key() = %q, want %q", got, "owner/repo#42")
	}
}

func TestLineCommentPayload(t *testing.T) {
	p := lineCommentPayload(CommentTarget{Path: "src/a.go", Line: 12, Side: "RIGHT"}, "nit")
	if p["event"] != "COMMENT" {
		t.Errorf("event = %v, want COMMENT", p["event"])
	}
	comments, ok := p["comments"].([]map[string]any)
	if !ok || len(comments) != 1 {
		t.Fatalf("comments = %v, want one entry", p["comments"])
	}
	c := comments[0]
	if c["path"] != "src/a.go" || c["line"] != 12 || c["side"] != "RIGHT" || c["body"] != "nit" {
		t.Errorf("comment entry = %v", c)
	}
}

func TestPRArgs(t *testing.T) {
	t.Run("local checkout", func(t *testing.T) {
		pr := PullRequest{Number: 7, Repo: "o/r", Dir: "/tmp/r"}
		got := prArgs(pr, "pr", "view", "7")
		if len(got) != 3 {
			t.Fatalf("got %v, want no --repo", got)
		}
	})
	t.Run("search result", func(t *testing.T) {
		pr := PullRequest{Number: 7, Repo: "o/r"}
		got := prArgs(pr, "pr", "view", "7")
		if len(got) != 5 || got[3] != "--repo" || got[4] != "o/r" {
			t.Fatalf("got %v, want trailing --repo o/r", got)
		}
	})
}

func TestWorktreePath(t *testing.T) {
	pr := PullRequest{Number: 9, Dir: "/home/dev/src/widget"}
	want := "/home/dev/src/.worktrees/widget-pr-9"
	if got := WorktreePath(pr); got != want {
		t.Errorf("WorktreePath = %q, want %q", got, want)
	}
}

func TestReviewStateString(t *testing.T) {
	tests := []struct {
		state ReviewState
		want  string
	}{
		{StatePending, "pending"},
		{StateApproved, "approved"},
		{StateChangesRequested, "changes requested"},
		{StateDraft, "draft"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestMergeInfoReady(t *testing.T) {
	tests := []struct {
		name string
		info MergeInfo
		want bool
	}{
		{"clean", MergeInfo{Mergeable: "MERGEABLE"}, true},
		{"conflicting", MergeInfo{Mergeable: "CONFLICTING"}, false},
		{"unresolved thread", MergeInfo{Mergeable: "MERGEABLE", TotalThreads: 1, UnresolvedThreads: 1}, false},
		{"all resolved", MergeInfo{Mergeable: "MERGEABLE", TotalThreads: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Ready(); got != tt.want {
				t.Errorf("Ready() = %v, want %v", got, tt.want)
			}
		})
	}
}

func numbers(prs []PullRequest) []int {
	out := make([]int, len(prs))
	for i, pr := range prs {
		out[i] = pr.Number
	}
	return out
}
