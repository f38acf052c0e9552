package ui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dshills/revq/internal/diff"
	"github.com/dshills/revq/internal/gh"
)

// Update is the bubbletea message loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statusTickMsg:
		m.expireStatus(time.Time(msg))
		return m, statusTick()

	case spinner.TickMsg:
		if !m.loading && !m.diffLoading && !m.commentsLoad {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case prsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.setStatus("error: " + msg.err.Error())
			return m, nil
		}
		m.prs = msg.prs
		if visible := m.visiblePRs(); m.cursor >= len(visible) {
			m.cursor = max(0, len(visible)-1)
		}
		m.setStatus(strconv.Itoa(len(m.prs)) + " pull requests")
		return m, nil

	case diffLoadedMsg:
		if msg.key != m.selectedKey() {
			return m, nil
		}
		m.diffLoading = false
		m.diffOK = true
		if msg.err != nil {
			// The error text becomes the tab content, and stays until
			// the detail view is left and reopened.
			m.diffRaw = ""
			m.diffLines = nil
			m.rendered = []string{errorStyle.Render("error: " + msg.err.Error())}
			return m, nil
		}
		m.diffRaw = msg.diff
		m.diffLines = diff.Parse(msg.diff)
		m.rendered = renderParsed(m.diffLines, m.highlighter)
		return m, renderDelta(msg.key, msg.diff, m.width)

	case deltaRenderedMsg:
		if msg.key != m.selectedKey() || !msg.ok || msg.raw != m.diffRaw {
			return m, nil
		}
		m.deltaLines = diff.SplitOutput(msg.out)
		m.deltaInfo = diff.ParseDeltaLines(msg.out, m.diffRaw)
		m.useDelta = true
		m.clearSearch()
		return m, nil

	case commentsLoadedMsg:
		if msg.key != m.selectedKey() {
			return m, nil
		}
		m.commentsLoad = false
		m.commentsOK = true
		if msg.err != nil {
			m.commentsErr = "error: " + msg.err.Error()
			return m, nil
		}
		m.comments = msg.comments
		m.commentsErr = ""
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.setStatus("error: " + msg.err.Error())
			return m, nil
		}
		m.setStatus(msg.verb)
		if msg.key != m.selectedKey() {
			return m, nil
		}
		if msg.removes {
			m.removeSelected()
			m.clearDetail()
			m.view = viewList
			return m, nil
		}
		// A new comment should show up in the thread.
		if pr, ok := m.selected(); ok {
			m.commentsLoad = true
			return m, fetchComments(pr)
		}
		return m, nil

	case mergeStatusMsg:
		if msg.key != m.selectedKey() || m.mode != modeConfirmMerge {
			return m, nil
		}
		if msg.err != nil {
			m.setStatus("merge status unavailable: " + msg.err.Error())
			return m, nil
		}
		m.setStatus(mergeReadout(msg.info))
		return m, nil

	case sessionStartedMsg:
		if msg.err != nil {
			m.setStatus("error: " + msg.err.Error())
		} else {
			m.setStatus("review session started")
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.mode {
	case modeNormal:
		if m.view == viewList {
			return m.handleListKey(msg)
		}
		return m.handleDetailKey(msg)
	case modeConfirmApprove, modeConfirmMerge:
		return m.handleConfirmKey(msg)
	default:
		return m.handleInputKey(msg)
	}
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visiblePRs()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case "g":
		m.cursor = 0
	case "G":
		m.cursor = max(0, len(visible)-1)
	case "enter", "l":
		if _, ok := m.selected(); !ok {
			return m, nil
		}
		m.clearDetail()
		m.view = viewDetail
		m.tab = tabDescription
		return m, m.loadTab()
	case "r":
		m.loading = true
		m.setStatus("refreshing")
		return m, tea.Batch(m.spinner.Tick, m.fetchPRs())
	case "/":
		m.mode = modeListSearch
		m.input.Placeholder = "filter"
		m.input.SetValue(m.listQuery)
		m.input.Focus()
		return m, nil
	case "esc":
		if m.listQuery != "" {
			m.listQuery = ""
			m.cursor = 0
		}
	case "d":
		m.drafts = !m.drafts
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.fetchPRs())
	case "m":
		m.mine = !m.mine
		m.cursor = 0
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.fetchPRs())
	case "w":
		if pr, ok := m.selected(); ok {
			m.setStatus("starting review session")
			return m, launchSession(pr, m.opts.ReviewCommand)
		}
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace", "h":
		m.clearDetail()
		m.view = viewList
		m.mode = modeNormal
		return m, nil
	case "tab":
		m.tab = (m.tab + 1) % 3
		m.scroll = 0
		return m, m.loadTab()
	case "1":
		m.tab = tabDescription
		m.scroll = 0
		return m, m.loadTab()
	case "2":
		m.tab = tabDiff
		m.scroll = 0
		return m, m.loadTab()
	case "3":
		m.tab = tabComments
		m.scroll = 0
		return m, m.loadTab()
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "ctrl+u":
		m.moveCursor(-m.bodyHeight() / 2)
	case "ctrl+d":
		m.moveCursor(m.bodyHeight() / 2)
	case "g":
		m.lineCursor = 0
		m.scroll = 0
	case "G":
		m.lineCursor = max(0, len(m.bodyLines())-1)
		m.ensureVisible()
	case "t":
		if len(m.deltaLines) > 0 {
			m.useDelta = !m.useDelta
			m.clearSearch()
			m.lineCursor = 0
			m.scroll = 0
		}
	case "/":
		if m.tab == tabDiff {
			m.mode = modeSearch
			m.input.Placeholder = "search"
			m.input.SetValue("")
			m.input.Focus()
		}
	case "n":
		m.jumpMatch(advanceMatch)
	case "N":
		m.jumpMatch(retreatMatch)
	case ":":
		if m.tab == tabDiff {
			m.mode = modeGotoLine
			m.input.Placeholder = "line"
			m.input.SetValue("")
			m.input.Focus()
		}
	case "c":
		m.mode = modeComment
		m.input.Placeholder = "comment"
		m.input.SetValue("")
		m.input.Focus()
	case "C":
		if m.tab != tabDiff {
			return m, nil
		}
		target, ok := m.cursorTarget()
		if !ok {
			m.setStatus("cannot comment on this line")
			return m, nil
		}
		m.pendingTarget = target
		m.mode = modeLineComment
		m.input.Placeholder = target.Path + ":" + strconv.Itoa(target.Line)
		m.input.SetValue("")
		m.input.Focus()
	case "a":
		m.mode = modeConfirmApprove
	case "x":
		m.mode = modeConfirmClose
		m.input.Placeholder = "close reason (optional, enter closes)"
		m.input.SetValue("")
		m.input.Focus()
	case "M":
		m.mode = modeConfirmMerge
		if pr, ok := m.selected(); ok {
			m.setStatus("checking merge status")
			return m, fetchMergeStatus(pr)
		}
	case "w":
		if pr, ok := m.selected(); ok {
			m.setStatus("starting review session")
			return m, launchSession(pr, m.opts.ReviewCommand)
		}
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pr, ok := m.selected()
	if !ok {
		m.mode = modeNormal
		return m, nil
	}
	switch msg.String() {
	case "y", "enter":
		mode := m.mode
		m.mode = modeNormal
		switch mode {
		case modeConfirmApprove:
			m.setStatus("approving")
			return m, approvePR(pr, "")
		case modeConfirmMerge:
			m.setStatus("merging")
			return m, mergePR(pr)
		}
	case "n", "esc":
		m.mode = modeNormal
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		value := m.input.Value()
		mode := m.mode
		m.mode = modeNormal
		m.input.Blur()
		return m.submitInput(mode, value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitInput(mode inputMode, value string) (tea.Model, tea.Cmd) {
	switch mode {
	case modeComment:
		pr, ok := m.selected()
		if !ok || strings.TrimSpace(value) == "" {
			return m, nil
		}
		m.setStatus("posting comment")
		return m, postComment(pr, value)
	case modeLineComment:
		pr, ok := m.selected()
		if !ok || strings.TrimSpace(value) == "" {
			return m, nil
		}
		m.setStatus("posting line comment")
		return m, postLineComment(pr, m.pendingTarget, value)
	case modeConfirmClose:
		pr, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.setStatus("closing")
		return m, closePR(pr, strings.TrimSpace(value))
	case modeSearch:
		m.searchQuery = value
		m.matches = findMatches(m.displayBuffer(), value)
		m.matchIdx = 0
		if len(m.matches) > 0 {
			m.lineCursor = m.matches[0]
			m.ensureVisible()
		}
		m.setStatus(searchStatus(m.matchIdx, len(m.matches), value))
		return m, nil
	case modeListSearch:
		m.listQuery = value
		m.cursor = 0
		return m, nil
	case modeGotoLine:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 1 {
			m.setStatus("not a line number: " + value)
			return m, nil
		}
		total := len(m.displayBuffer())
		if m.useDelta {
			m.lineCursor = gotoDeltaLine(m.deltaInfo, total, n)
		} else {
			m.lineCursor = gotoLine(m.diffLines, total, n)
		}
		m.ensureVisible()
		return m, nil
	}
	return m, nil
}

// loadTab fetches the active tab's content when it has no cached result
// and no fetch is already in flight. The description comes with the PR
// listing and never needs a fetch.
func (m *Model) loadTab() tea.Cmd {
	pr, ok := m.selected()
	if !ok {
		return nil
	}
	switch m.tab {
	case tabDiff:
		if m.diffOK || m.diffLoading {
			return nil
		}
		m.diffLoading = true
		return tea.Batch(m.spinner.Tick, fetchDiff(pr))
	case tabComments:
		if m.commentsOK || m.commentsLoad {
			return nil
		}
		m.commentsLoad = true
		return tea.Batch(m.spinner.Tick, fetchComments(pr))
	}
	return nil
}

// cursorTarget resolves the inline comment target under the diff cursor
// for whichever renderer is active.
func (m Model) cursorTarget() (target gh.CommentTarget, ok bool) {
	if m.useDelta {
		if m.lineCursor < 0 || m.lineCursor >= len(m.deltaInfo) {
			return target, false
		}
		return deltaTarget(m.deltaInfo[m.lineCursor])
	}
	if m.lineCursor < 0 || m.lineCursor >= len(m.diffLines) {
		return target, false
	}
	return lineTarget(m.diffLines[m.lineCursor])
}

// jumpMatch moves to another search match and updates the readout.
func (m *Model) jumpMatch(step func(idx, total int) int) {
	if len(m.matches) == 0 {
		return
	}
	m.matchIdx = step(m.matchIdx, len(m.matches))
	m.lineCursor = m.matches[m.matchIdx]
	m.ensureVisible()
	m.setStatus(searchStatus(m.matchIdx, len(m.matches), m.searchQuery))
}

// bodyLines is the scrollable content for the active tab.
func (m Model) bodyLines() []string {
	switch m.tab {
	case tabDiff:
		return m.displayBuffer()
	case tabComments:
		return m.commentLines()
	default:
		return m.descriptionLines()
	}
}

func (m *Model) moveCursor(delta int) {
	total := len(m.bodyLines())
	if total == 0 {
		return
	}
	m.lineCursor = clamp(m.lineCursor+delta, 0, total-1)
	m.ensureVisible()
}

// ensureVisible scrolls just enough to keep the cursor on screen.
func (m *Model) ensureVisible() {
	body := m.bodyHeight()
	if body < 1 {
		body = 1
	}
	if m.lineCursor < m.scroll {
		m.scroll = m.lineCursor
	}
	if m.lineCursor >= m.scroll+body {
		m.scroll = m.lineCursor - body + 1
	}
}
