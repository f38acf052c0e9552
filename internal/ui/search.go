package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/dshills/revq/internal/diff"
	"github.com/dshills/revq/internal/gh"
)

// findMatches returns the indices of display lines containing query,
// case-insensitively and ignoring colors, in ascending order.
func findMatches(lines []string, query string) []int {
	if query == "" {
		return nil
	}
	needle := strings.ToLower(query)
	var out []int
	for i, line := range lines {
		if strings.Contains(strings.ToLower(ansi.Strip(line)), needle) {
			out = append(out, i)
		}
	}
	return out
}

// advanceMatch moves to the next match, wrapping past the end.
func advanceMatch(idx, total int) int {
	if total == 0 {
		return 0
	}
	return (idx + 1) % total
}

// retreatMatch moves to the previous match, wrapping past the start.
func retreatMatch(idx, total int) int {
	if total == 0 {
		return 0
	}
	return (idx - 1 + total) % total
}

// searchStatus formats the match position readout.
func searchStatus(idx, total int, query string) string {
	if total == 0 {
		return fmt.Sprintf("No matches for '%s'", query)
	}
	return fmt.Sprintf("Match %d/%d for '%s'", idx+1, total, query)
}

// filterPRs returns indices of PRs whose title, repo, or author contains
// query, case-insensitively.
func filterPRs(prs []gh.PullRequest, query string) []int {
	needle := strings.ToLower(query)
	var out []int
	for i, pr := range prs {
		hay := strings.ToLower(pr.Title + " " + pr.Repo + " " + pr.Author.Login)
		if strings.Contains(hay, needle) {
			out = append(out, i)
		}
	}
	return out
}

// gotoLine finds the display index for a source line number: the first
// parsed line whose new-file number matches, falling back to treating the
// number as a display offset when no line matches.
func gotoLine(lines []diff.Line, total, n int) int {
	for i, ln := range lines {
		if ln.NewLine != nil && *ln.NewLine == n {
			return i
		}
	}
	return clamp(n-1, 0, total-1)
}

// gotoDeltaLine is gotoLine against delta's recovered associations.
func gotoDeltaLine(info []diff.DeltaLine, total, n int) int {
	for i, dl := range info {
		if dl.NewLine != nil && *dl.NewLine == n {
			return i
		}
	}
	return clamp(n-1, 0, total-1)
}

// lineTarget resolves the comment target for a parsed diff line. The new
// side is preferred; a removed line targets the old side. Lines without a
// file or number cannot take a comment.
func lineTarget(ln diff.Line) (gh.CommentTarget, bool) {
	if ln.FilePath == "" {
		return gh.CommentTarget{}, false
	}
	if ln.NewLine != nil {
		return gh.CommentTarget{Path: ln.FilePath, Line: *ln.NewLine, Side: "RIGHT"}, true
	}
	if ln.OldLine != nil {
		return gh.CommentTarget{Path: ln.FilePath, Line: *ln.OldLine, Side: "LEFT"}, true
	}
	return gh.CommentTarget{}, false
}

// deltaTarget resolves the comment target for a delta display line.
func deltaTarget(dl diff.DeltaLine) (gh.CommentTarget, bool) {
	if dl.FilePath == "" {
		return gh.CommentTarget{}, false
	}
	if dl.NewLine != nil {
		return gh.CommentTarget{Path: dl.FilePath, Line: *dl.NewLine, Side: "RIGHT"}, true
	}
	if dl.OldLine != nil {
		return gh.CommentTarget{Path: dl.FilePath, Line: *dl.OldLine, Side: "LEFT"}, true
	}
	return gh.CommentTarget{}, false
}

func clamp(n, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
