package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dshills/revq/internal/config"
	"github.com/dshills/revq/internal/gh"
)

func testModel(prs ...gh.PullRequest) Model {
	m := New(Options{Config: config.Default(), User: "me"})
	m.loading = false
	m.prs = prs
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	got, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return got
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func samplePRs() []gh.PullRequest {
	return []gh.PullRequest{
		{Number: 1, Repo: "org/a", Title: "first"},
		{Number: 2, Repo: "org/b", Title: "second"},
		{Number: 3, Repo: "org/c", Title: "third"},
	}
}

func TestListNavigationClamps(t *testing.T) {
	m := testModel(samplePRs()...)

	m = update(t, m, key("k"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want clamp at 0", m.cursor)
	}
	m = update(t, m, key("j"))
	m = update(t, m, key("j"))
	m = update(t, m, key("j"))
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want clamp at 2", m.cursor)
	}
}

func TestStaleDiffResultDropped(t *testing.T) {
	m := testModel(samplePRs()...)
	m.view = viewDetail
	m.diffLoading = true

	m = update(t, m, diffLoadedMsg{key: "org/b#2", diff: "+x\n"})
	if m.diffRaw != "" {
		t.Error("diff for an unselected PR was applied")
	}
	if !m.diffLoading {
		t.Error("loading flag cleared by stale result")
	}

	m = update(t, m, diffLoadedMsg{key: "org/a#1", diff: "+x\n"})
	if m.diffRaw != "+x\n" {
		t.Errorf("diffRaw = %q, want the selected PR's diff", m.diffRaw)
	}
	if m.diffLoading {
		t.Error("loading flag still set after matching result")
	}
	if len(m.rendered) != len(m.diffLines) {
		t.Errorf("%d rendered lines for %d parsed", len(m.rendered), len(m.diffLines))
	}
}

func TestStaleDeltaResultDropped(t *testing.T) {
	m := testModel(samplePRs()...)
	m.view = viewDetail
	m.diffRaw = "+x\n"

	m = update(t, m, deltaRenderedMsg{key: "org/c#3", raw: "+x\n", out: "styled\n", ok: true})
	if m.useDelta {
		t.Error("delta output for an unselected PR was applied")
	}

	m = update(t, m, deltaRenderedMsg{key: "org/a#1", raw: "+x\n", out: "styled\n", ok: true})
	if !m.useDelta || len(m.deltaLines) != 1 {
		t.Errorf("useDelta = %v, deltaLines = %v", m.useDelta, m.deltaLines)
	}
}

func TestDeltaResultForOutdatedDiffDropped(t *testing.T) {
	m := testModel(samplePRs()...)
	m.view = viewDetail
	m.diffRaw = "+new\n"

	// Same PR, but the output was rendered from a diff fetched on an
	// earlier visit.
	m = update(t, m, deltaRenderedMsg{key: "org/a#1", raw: "+old\n", out: "styled\n", ok: true})
	if m.useDelta {
		t.Error("delta output for an outdated diff was applied")
	}
}

func TestFailedDeltaKeepsBuiltinRendering(t *testing.T) {
	m := testModel(samplePRs()...)
	m.view = viewDetail

	m = update(t, m, deltaRenderedMsg{key: "org/a#1", ok: false})
	if m.useDelta {
		t.Error("failed delta run must not switch renderer")
	}
}

func TestTabChangeLazyLoads(t *testing.T) {
	m := testModel(samplePRs()...)

	next, cmd := m.Update(key("enter"))
	m = next.(Model)
	if m.view != viewDetail || m.tab != tabDescription {
		t.Fatalf("view = %v, tab = %v", m.view, m.tab)
	}
	if m.diffLoading || m.commentsLoad {
		t.Error("opening the description tab should fetch nothing")
	}

	next, cmd = m.Update(key("2"))
	m = next.(Model)
	if !m.diffLoading {
		t.Error("switching to an uncached diff tab should start a fetch")
	}
	if cmd == nil {
		t.Error("switching to an uncached diff tab dispatched no command")
	}

	// A second switch while the fetch is in flight must not refetch.
	next, cmd = m.Update(key("2"))
	m = next.(Model)
	if cmd != nil {
		t.Error("tab change refetched while a fetch was in flight")
	}

	next, cmd = m.Update(key("3"))
	m = next.(Model)
	if !m.commentsLoad || cmd == nil {
		t.Error("switching to an uncached comments tab should start a fetch")
	}
}

func TestDiffFetchErrorShowsInBody(t *testing.T) {
	m := testModel(samplePRs()...)
	m.view = viewDetail
	m.tab = tabDiff
	m.diffLoading = true

	m = update(t, m, diffLoadedMsg{key: "org/a#1", err: errors.New("boom")})
	if m.diffLoading {
		t.Error("loading flag still set after failed fetch")
	}
	if len(m.rendered) != 1 || !strings.Contains(m.rendered[0], "boom") {
		t.Errorf("rendered = %v, want the error text as content", m.rendered)
	}

	// The error is cached like content; tab changes must not refetch.
	next, cmd := m.Update(key("2"))
	m = next.(Model)
	if cmd != nil || m.diffLoading {
		t.Error("failed fetch result should be treated as cached")
	}
}

func TestCommentsFetchErrorShowsInBody(t *testing.T) {
	m := testModel(samplePRs()...)
	m.view = viewDetail
	m.tab = tabComments
	m.commentsLoad = true

	m = update(t, m, commentsLoadedMsg{key: "org/a#1", err: errors.New("boom")})
	if m.commentsLoad {
		t.Error("loading flag still set after failed fetch")
	}
	lines := m.commentLines()
	if len(lines) != 1 || !strings.Contains(lines[0], "boom") {
		t.Errorf("commentLines = %v, want the error text as content", lines)
	}
}

func TestStaleCommentsDropped(t *testing.T) {
	m := testModel(samplePRs()...)
	m.view = viewDetail
	m.commentsLoad = true

	m = update(t, m, commentsLoadedMsg{key: "org/b#2", comments: []gh.Comment{{Body: "hi"}}})
	if m.commentsOK {
		t.Error("comments for an unselected PR were applied")
	}
	m = update(t, m, commentsLoadedMsg{key: "org/a#1", comments: []gh.Comment{{Body: "hi"}}})
	if !m.commentsOK || len(m.comments) != 1 {
		t.Error("comments for the selected PR were not applied")
	}
}

func TestActionRemovesPRAndReturnsToList(t *testing.T) {
	m := testModel(samplePRs()...)
	m.view = viewDetail
	m.diffRaw = "+x\n"

	m = update(t, m, actionDoneMsg{key: "org/a#1", verb: "approved", removes: true})
	if m.view != viewList {
		t.Error("should return to list after approval")
	}
	if len(m.prs) != 2 || m.prs[0].Number != 2 {
		t.Errorf("prs = %v, want #1 removed", m.prs)
	}
	if m.diffRaw != "" {
		t.Error("detail caches should be cleared")
	}
	if m.status != "approved" {
		t.Errorf("status = %q, want approved", m.status)
	}
}

func TestActionErrorKeepsPR(t *testing.T) {
	m := testModel(samplePRs()...)
	m.view = viewDetail

	m = update(t, m, actionDoneMsg{key: "org/a#1", verb: "merged", removes: true, err: errors.New("merge conflict")})
	if len(m.prs) != 3 {
		t.Error("failed action must not remove the PR")
	}
	if m.view != viewDetail {
		t.Error("failed action must not change view")
	}
	if m.status != "error: merge conflict" {
		t.Errorf("status = %q", m.status)
	}
}

func TestRemoveLastPRClampsCursor(t *testing.T) {
	m := testModel(samplePRs()...)
	m.cursor = 2
	m.view = viewDetail

	m = update(t, m, actionDoneMsg{key: "org/c#3", verb: "closed", removes: true})
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
}

func TestConfirmFlow(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		m := testModel(samplePRs()...)
		m.view = viewDetail
		m = update(t, m, key("a"))
		if m.mode != modeConfirmApprove {
			t.Fatal("a should ask for confirmation")
		}
		m = update(t, m, key("n"))
		if m.mode != modeNormal {
			t.Error("n should cancel")
		}
		if len(m.prs) != 3 {
			t.Error("declined confirmation must not act")
		}
	})
	t.Run("accepted dispatches", func(t *testing.T) {
		m := testModel(samplePRs()...)
		m.view = viewDetail
		m = update(t, m, key("M"))
		if m.mode != modeConfirmMerge {
			t.Fatal("M should ask for confirmation")
		}
		next, cmd := m.Update(key("y"))
		m = next.(Model)
		if m.mode != modeNormal {
			t.Error("confirmation should return to normal mode")
		}
		if cmd == nil {
			t.Error("accepted confirmation should dispatch the action")
		}
	})
}

func TestCloseBuffersOptionalComment(t *testing.T) {
	m := testModel(samplePRs()...)
	m.view = viewDetail

	m = update(t, m, key("x"))
	if m.mode != modeConfirmClose {
		t.Fatal("x should ask for an optional close comment")
	}

	// Esc abandons the close entirely.
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeNormal {
		t.Error("esc should cancel the close")
	}

	m = update(t, m, key("x"))
	next, cmd := m.submitInput(modeConfirmClose, "superseded by #9")
	m = next.(Model)
	if cmd == nil {
		t.Error("submitting a close comment should dispatch the close")
	}
	if m.status != "closing" {
		t.Errorf("status = %q, want closing", m.status)
	}

	// The comment is optional; an empty buffer still closes.
	if _, cmd := m.submitInput(modeConfirmClose, ""); cmd == nil {
		t.Error("empty close comment should still dispatch the close")
	}
}

func TestDiffLoadDispatchesDeltaRender(t *testing.T) {
	m := testModel(samplePRs()...)
	m.view = viewDetail
	m.tab = tabDiff
	m.diffLoading = true

	next, cmd := m.Update(diffLoadedMsg{key: "org/a#1", diff: "+x\n"})
	m = next.(Model)
	if cmd == nil {
		t.Error("a loaded diff should hand off to the background delta run")
	}
	if m.useDelta {
		t.Error("renderer must stay built-in until delta reports back")
	}
}

func TestLineCommentNeedsAddressableLine(t *testing.T) {
	m := testModel(samplePRs()...)
	m.view = viewDetail
	m.tab = tabDiff
	m = update(t, m, diffLoadedMsg{key: "org/a#1", diff: "diff --git a/f.go b/f.go\n@@ -1,1 +1,1 @@\n-old\n+new\n"})

	// Cursor starts on the file header, which cannot take a comment.
	m = update(t, m, key("C"))
	if m.mode != modeNormal {
		t.Fatal("header line should not enter comment mode")
	}
	if m.status != "cannot comment on this line" {
		t.Errorf("status = %q", m.status)
	}

	// The added line can.
	m.lineCursor = 3
	m = update(t, m, key("C"))
	if m.mode != modeLineComment {
		t.Fatal("added line should enter line comment mode")
	}
	if m.pendingTarget.Path != "f.go" || m.pendingTarget.Line != 1 || m.pendingTarget.Side != "RIGHT" {
		t.Errorf("target = %+v", m.pendingTarget)
	}
}

func TestSearchSubmitJumpsToFirstMatch(t *testing.T) {
	m := testModel(samplePRs()...)
	m.view = viewDetail
	m.tab = tabDiff
	m.rendered = []string{"alpha", "beta", "gamma beta"}

	next, _ := m.submitInput(modeSearch, "beta")
	m = next.(Model)
	if len(m.matches) != 2 {
		t.Fatalf("matches = %v, want 2", m.matches)
	}
	if m.lineCursor != 1 {
		t.Errorf("cursor = %d, want first match", m.lineCursor)
	}
	if m.status != "Match 1/2 for 'beta'" {
		t.Errorf("status = %q", m.status)
	}
}

func TestGotoSubmitRejectsNonNumbers(t *testing.T) {
	m := testModel(samplePRs()...)
	m.view = viewDetail
	m.tab = tabDiff
	m.rendered = []string{"a", "b"}

	next, _ := m.submitInput(modeGotoLine, "abc")
	m = next.(Model)
	if m.lineCursor != 0 {
		t.Error("bad input must not move the cursor")
	}
}

func TestListFilterNarrowsSelection(t *testing.T) {
	m := testModel(samplePRs()...)
	m.listQuery = "third"
	visible := m.visiblePRs()
	if len(visible) != 1 || visible[0] != 2 {
		t.Fatalf("visible = %v, want [2]", visible)
	}
	pr, ok := m.selected()
	if !ok || pr.Number != 3 {
		t.Errorf("selected = %+v, want #3", pr)
	}
}

func TestEnsureVisibleScrolls(t *testing.T) {
	m := testModel(samplePRs()...)
	m.height = 16 // body height 10
	m.rendered = make([]string, 100)
	m.view = viewDetail
	m.tab = tabDiff

	m.lineCursor = 50
	m.ensureVisible()
	if m.lineCursor < m.scroll || m.lineCursor >= m.scroll+m.bodyHeight() {
		t.Errorf("cursor %d not within [%d, %d)", m.lineCursor, m.scroll, m.scroll+m.bodyHeight())
	}

	m.lineCursor = 0
	m.ensureVisible()
	if m.scroll != 0 {
		t.Errorf("scroll = %d, want 0", m.scroll)
	}
}

func TestMergeConfirmShowsStatus(t *testing.T) {
	m := testModel(samplePRs()...)
	m.view = viewDetail
	m = update(t, m, key("M"))
	if m.mode != modeConfirmMerge {
		t.Fatal("M should ask for confirmation")
	}

	m = update(t, m, mergeStatusMsg{key: "org/a#1", info: gh.MergeInfo{Mergeable: "MERGEABLE"}})
	if m.status != "ready to merge" {
		t.Errorf("status = %q", m.status)
	}

	// A status for another PR is ignored.
	m = update(t, m, mergeStatusMsg{key: "org/b#2", info: gh.MergeInfo{Mergeable: "CONFLICTING"}})
	if m.status != "ready to merge" {
		t.Errorf("stale merge status applied, got %q", m.status)
	}
}

func TestMergeReadout(t *testing.T) {
	tests := []struct {
		name string
		info gh.MergeInfo
		want string
	}{
		{"ready", gh.MergeInfo{Mergeable: "MERGEABLE"}, "ready to merge"},
		{"conflicting", gh.MergeInfo{Mergeable: "CONFLICTING"}, "not ready: conflicting"},
		{
			"unresolved threads",
			gh.MergeInfo{Mergeable: "MERGEABLE", TotalThreads: 3, UnresolvedThreads: 2},
			"not ready: 2/3 threads unresolved",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mergeReadout(tt.info); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapLines(t *testing.T) {
	got := wrapLines("one two three four", 9)
	want := []string{"one two", "three", "four"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStatusExpiry(t *testing.T) {
	m := testModel(samplePRs()...)
	m.setStatus("3 pull requests")

	m = update(t, m, statusTickMsg(time.Now()))
	if m.status == "" {
		t.Error("status cleared before its deadline")
	}

	m = update(t, m, statusTickMsg(time.Now().Add(statusTTL+time.Second)))
	if m.status != "" {
		t.Errorf("status = %q, want cleared after deadline", m.status)
	}
}
