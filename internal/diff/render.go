package diff

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	fileHeaderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	fileMarkerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	hunkStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	gutterStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	noNewlineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	addedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	addedEmphStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("22")).Bold(true)
	removedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	removedEmphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("52")).Bold(true)
)

const (
	addedTint   = "\x1b[48;5;22m"
	removedTint = "\x1b[48;5;52m"
)

// Render builds the full styled line buffer for a diff using the built-in
// renderer. Output lines correspond 1:1 with the parsed lines.
func Render(text string, h *Highlighter) []string {
	lines := Parse(text)
	width := GutterWidth(lines)
	out := make([]string, len(lines))
	for i, ln := range lines {
		out[i] = RenderLine(ln, h, width)
	}
	return out
}

// RenderLine composes the gutter, change marker, and styled content for one
// parsed line. Word-level emphasis takes precedence over syntax coloring;
// changed lines without spans are syntax highlighted under a uniform tint.
func RenderLine(ln Line, h *Highlighter, gutterWidth int) string {
	switch ln.Kind {
	case FileHeader:
		return fileHeaderStyle.Render(ln.Text)
	case OldFileMarker, NewFileMarker:
		return fileMarkerStyle.Render(ln.Text)
	case Hunk:
		return hunkStyle.Render(ln.Text)
	case NoNewlineMarker:
		return noNewlineStyle.Render(ln.Text)
	case Added:
		return gutter(nil, ln.NewLine, gutterWidth) +
			addedStyle.Render("+") +
			changedContent(ln, h, addedStyle, addedEmphStyle, addedTint)
	case Removed:
		return gutter(ln.OldLine, nil, gutterWidth) +
			removedStyle.Render("-") +
			changedContent(ln, h, removedStyle, removedEmphStyle, removedTint)
	default:
		return gutter(ln.OldLine, ln.NewLine, gutterWidth) + " " +
			h.Line(ln.Content(), ln.FilePath)
	}
}

func changedContent(ln Line, h *Highlighter, base, emph lipgloss.Style, tint string) string {
	content := ln.Content()
	if len(ln.Words) == 0 {
		return tintBackground(h.Line(content, ln.FilePath), tint)
	}
	var sb strings.Builder
	last := 0
	for _, sp := range ln.Words {
		start := min(sp.Start, len(content))
		end := min(sp.End, len(content))
		if start > last {
			sb.WriteString(base.Render(content[last:start]))
		}
		if start < end {
			if sp.Emphasized {
				sb.WriteString(emph.Render(content[start:end]))
			} else {
				sb.WriteString(base.Render(content[start:end]))
			}
		}
		last = end
	}
	if last < len(content) {
		sb.WriteString(base.Render(content[last:]))
	}
	return sb.String()
}

// gutter prints right-aligned old and new numbers, blank where absent, in a
// fixed-width two-column margin.
func gutter(oldNum, newNum *int, width int) string {
	oldCol := strings.Repeat(" ", width)
	if oldNum != nil {
		oldCol = fmt.Sprintf("%*d", width, *oldNum)
	}
	newCol := strings.Repeat(" ", width)
	if newNum != nil {
		newCol = fmt.Sprintf("%*d", width, *newNum)
	}
	return gutterStyle.Render(oldCol+" "+newCol) + " "
}

// tintBackground lays a background color under already-styled content.
// Chroma emits a full reset after each token, which would clear the tint,
// so full resets are first narrowed to foreground-only resets.
func tintBackground(s, tint string) string {
	s = strings.ReplaceAll(s, "\x1b[0m", "\x1b[39m")
	return tint + s + "\x1b[0m"
}
