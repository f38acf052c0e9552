package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/revq/internal/diff"
	"github.com/dshills/revq/internal/gh"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	tabStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Padding(0, 1)
	tabActive     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).Padding(0, 1)
	cursorStyle   = lipgloss.NewStyle().Background(lipgloss.Color("236"))

	badgeStyles = map[gh.ReviewState]lipgloss.Style{
		gh.StatePending:          lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		gh.StateApproved:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		gh.StateChangesRequested: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		gh.StateDraft:            lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
)

// View renders the whole screen.
func (m Model) View() string {
	var b strings.Builder
	switch m.view {
	case viewDetail:
		b.WriteString(m.viewDetail())
	default:
		b.WriteString(m.viewList())
	}
	b.WriteString("\n")
	b.WriteString(m.viewFooter())
	return b.String()
}

func (m Model) viewList() string {
	var b strings.Builder
	header := "Pull Requests"
	if m.mine {
		header = "My Pull Requests"
	}
	if m.listQuery != "" {
		header += "  (filter: " + m.listQuery + ")"
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spinner.View() + " loading\n")
		return b.String()
	}

	visible := m.visiblePRs()
	if len(visible) == 0 {
		b.WriteString(dimStyle.Render("nothing to review"))
		b.WriteString("\n")
		return b.String()
	}

	rows := m.bodyHeight()
	start := clamp(m.cursor-rows/2, 0, max(0, len(visible)-rows))
	end := min(len(visible), start+rows)
	for row := start; row < end; row++ {
		pr := m.prs[visible[row]]
		line := m.listRow(pr)
		if row == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) listRow(pr gh.PullRequest) string {
	state := pr.State()
	badge := badgeStyles[state].Render("[" + state.String() + "]")
	meta := dimStyle.Render(fmt.Sprintf("%s #%d by %s", pr.Repo, pr.Number, pr.Author.Login))
	churn := fmt.Sprintf("+%d -%d", pr.Additions, pr.Deletions)
	title := runewidth.Truncate(pr.Title, max(20, m.width-40), "…")
	return fmt.Sprintf("%s %s %s %s", badge, title, meta, dimStyle.Render(churn))
}

func (m Model) viewDetail() string {
	pr, ok := m.selected()
	if !ok {
		return dimStyle.Render("no selection")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("#%d %s", pr.Number, pr.Title)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(pr.URL))
	b.WriteString("\n")
	b.WriteString(m.viewTabs())
	b.WriteString("\n")

	lines := m.bodyLines()
	if m.tab == tabDiff && m.diffLoading {
		b.WriteString(m.spinner.View() + " loading diff\n")
		return b.String()
	}
	if m.tab == tabComments && m.commentsLoad {
		b.WriteString(m.spinner.View() + " loading comments\n")
		return b.String()
	}

	body := m.bodyHeight()
	endIdx := min(len(lines), m.scroll+body)
	for i := m.scroll; i < endIdx; i++ {
		line := lines[i]
		if m.tab == tabDiff && i == m.lineCursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewTabs() string {
	names := []string{"description", "diff", "comments"}
	parts := make([]string, len(names))
	for i, name := range names {
		if tab(i) == m.tab {
			parts[i] = tabActive.Render(name)
		} else {
			parts[i] = tabStyle.Render(name)
		}
	}
	renderer := ""
	if m.view == viewDetail && m.tab == tabDiff {
		if m.useDelta {
			renderer = dimStyle.Render("  [delta]")
		} else {
			renderer = dimStyle.Render("  [built-in]")
		}
	}
	return strings.Join(parts, " ") + renderer
}

func (m Model) viewFooter() string {
	switch m.mode {
	case modeComment, modeLineComment, modeSearch, modeListSearch, modeGotoLine:
		return m.input.View()
	case modeConfirmClose:
		return statusStyle.Render("close: ") + m.input.View()
	case modeConfirmApprove:
		return statusStyle.Render("approve this pull request? (y/n)")
	case modeConfirmMerge:
		prompt := "merge this pull request? (y/n)"
		if m.status != "" {
			prompt += " · " + m.status
		}
		return statusStyle.Render(prompt)
	}
	if strings.HasPrefix(m.status, "error: ") {
		return errorStyle.Render(m.status)
	}
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	if m.view == viewList {
		return dimStyle.Render("j/k move · enter open · r refresh · / filter · w session · q quit")
	}
	return dimStyle.Render("tab switch · j/k scroll · / search · : goto · c comment · C line comment · a approve · M merge")
}

// mergeReadout summarizes merge readiness for the confirmation prompt.
func mergeReadout(info gh.MergeInfo) string {
	if info.Ready() {
		return "ready to merge"
	}
	parts := []string{}
	if info.Mergeable != "MERGEABLE" {
		parts = append(parts, strings.ToLower(info.Mergeable))
	}
	if info.UnresolvedThreads > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d threads unresolved", info.UnresolvedThreads, info.TotalThreads))
	}
	return "not ready: " + strings.Join(parts, ", ")
}

// bodyHeight is the number of content rows between header and footer.
func (m Model) bodyHeight() int {
	return max(1, m.height-6)
}

// descriptionLines wraps the PR body for the description tab.
func (m Model) descriptionLines() []string {
	pr, ok := m.selected()
	if !ok {
		return nil
	}
	body := pr.Body
	if strings.TrimSpace(body) == "" {
		return []string{dimStyle.Render("no description")}
	}
	return wrapLines(body, max(20, m.width-2))
}

// commentLines flattens the comment thread for display.
func (m Model) commentLines() []string {
	if m.commentsErr != "" {
		return []string{errorStyle.Render(m.commentsErr)}
	}
	if m.commentsOK && len(m.comments) == 0 {
		return []string{dimStyle.Render("no comments")}
	}
	var out []string
	for i, c := range m.comments {
		if i > 0 {
			out = append(out, "")
		}
		header := fmt.Sprintf("%s · %s", c.Author.Login, c.CreatedAt.Format("2006-01-02 15:04"))
		out = append(out, titleStyle.Render(header))
		out = append(out, wrapLines(c.Body, max(20, m.width-2))...)
	}
	return out
}

// renderParsed styles an already-parsed diff with the built-in renderer.
func renderParsed(lines []diff.Line, h *diff.Highlighter) []string {
	width := diff.GutterWidth(lines)
	out := make([]string, len(lines))
	for i, ln := range lines {
		out[i] = diff.RenderLine(ln, h, width)
	}
	return out
}

// wrapLines splits text into display lines no wider than width.
func wrapLines(text string, width int) []string {
	var out []string
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if runewidth.StringWidth(raw) <= width {
			out = append(out, raw)
			continue
		}
		var line strings.Builder
		w := 0
		for _, word := range strings.Fields(raw) {
			ww := runewidth.StringWidth(word)
			if w > 0 && w+1+ww > width {
				out = append(out, line.String())
				line.Reset()
				w = 0
			}
			if w > 0 {
				line.WriteString(" ")
				w++
			}
			line.WriteString(word)
			w += ww
		}
		out = append(out, line.String())
	}
	return out
}
