package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dshills/revq/internal/config"
	"github.com/dshills/revq/internal/diff"
	"github.com/dshills/revq/internal/gh"
)

type view int

const (
	viewList view = iota
	viewDetail
)

type tab int

const (
	tabDescription tab = iota
	tabDiff
	tabComments
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeComment
	modeLineComment
	modeConfirmApprove
	modeConfirmClose
	modeConfirmMerge
	modeSearch
	modeListSearch
	modeGotoLine
)

// Options configures the interface at startup.
type Options struct {
	Config        config.Config
	User          string
	Dirs          []string
	IncludeDrafts bool
	MyPRs         bool
}

// Model holds the entire interface state.
type Model struct {
	opts        config.Config
	user        string
	dirs        []string
	drafts      bool
	mine        bool
	highlighter *diff.Highlighter

	prs         []gh.PullRequest
	cursor      int
	loading     bool
	status      string
	statusUntil time.Time

	view view
	tab  tab
	mode inputMode

	// Detail state, rebuilt per selection.
	diffRaw      string
	diffLines    []diff.Line
	rendered     []string
	deltaLines   []string
	deltaInfo    []diff.DeltaLine
	useDelta     bool
	diffOK       bool
	diffLoading  bool
	scroll       int
	lineCursor   int
	comments     []gh.Comment
	commentsOK   bool
	commentsErr  string
	commentsLoad bool

	// Pending line comment target while composing.
	pendingTarget gh.CommentTarget

	// Search over the active diff buffer.
	searchQuery string
	matches     []int
	matchIdx    int

	// List filter.
	listQuery string

	input   textinput.Model
	spinner spinner.Model
	width   int
	height  int
}

// New builds the initial model.
func New(opts Options) Model {
	input := textinput.New()
	input.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		opts:        opts.Config,
		user:        opts.User,
		dirs:        opts.Dirs,
		drafts:      opts.IncludeDrafts,
		mine:        opts.MyPRs,
		highlighter: diff.NewHighlighter(),
		loading:     true,
		input:       input,
		spinner:     sp,
		width:       80,
		height:      24,
	}
}

// Init starts the spinner, the status expiry ticker, and the first fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, statusTick(), m.fetchPRs())
}

// statusTTL is how long a transient status message stays on screen.
const statusTTL = 8 * time.Second

func statusTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

// setStatus replaces the status line and arms its expiry.
func (m *Model) setStatus(s string) {
	m.status = s
	m.statusUntil = time.Now().Add(statusTTL)
}

// expireStatus clears the status line once its deadline passes.
func (m *Model) expireStatus(now time.Time) {
	if m.status != "" && now.After(m.statusUntil) {
		m.status = ""
	}
}

// selected returns the PR under the cursor, if any.
func (m Model) selected() (gh.PullRequest, bool) {
	visible := m.visiblePRs()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return gh.PullRequest{}, false
	}
	return m.prs[visible[m.cursor]], true
}

// selectedKey is the stale-result tag for the current selection.
func (m Model) selectedKey() string {
	pr, ok := m.selected()
	if !ok {
		return ""
	}
	return pr.Key()
}

// visiblePRs returns indices into prs that survive the list filter.
func (m Model) visiblePRs() []int {
	if m.listQuery == "" {
		idx := make([]int, len(m.prs))
		for i := range m.prs {
			idx[i] = i
		}
		return idx
	}
	return filterPRs(m.prs, m.listQuery)
}

// displayBuffer is the diff buffer currently on screen.
func (m Model) displayBuffer() []string {
	if m.useDelta {
		return m.deltaLines
	}
	return m.rendered
}

// clearDetail drops all per-PR state when leaving a detail view or
// changing selection.
func (m *Model) clearDetail() {
	m.diffRaw = ""
	m.diffLines = nil
	m.rendered = nil
	m.deltaLines = nil
	m.deltaInfo = nil
	m.useDelta = false
	m.diffOK = false
	m.diffLoading = false
	m.scroll = 0
	m.lineCursor = 0
	m.comments = nil
	m.commentsOK = false
	m.commentsErr = ""
	m.commentsLoad = false
	m.clearSearch()
}

func (m *Model) clearSearch() {
	m.searchQuery = ""
	m.matches = nil
	m.matchIdx = 0
}

// removeSelected drops the current PR from the list after a terminal
// action and clamps the cursor.
func (m *Model) removeSelected() {
	visible := m.visiblePRs()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return
	}
	i := visible[m.cursor]
	m.prs = append(m.prs[:i], m.prs[i+1:]...)
	if remaining := len(m.visiblePRs()); m.cursor >= remaining && m.cursor > 0 {
		m.cursor = remaining - 1
	}
}
