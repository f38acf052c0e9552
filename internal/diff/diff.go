package diff

import (
	"strconv"
	"strings"
)

// Kind classifies a single line of unified diff text.
type Kind int

const (
	FileHeader Kind = iota
	OldFileMarker
	NewFileMarker
	Hunk
	Added
	Removed
	Context
	NoNewlineMarker
)

// Line is one raw diff line with its resolved location. Added lines carry
// only NewLine, Removed lines only OldLine, Context lines both; headers,
// hunk markers, and no-newline markers carry neither. FilePath is the
// post-change path of the enclosing file, empty before the first header.
type Line struct {
	Text     string
	Kind     Kind
	FilePath string
	OldLine  *int
	NewLine  *int
	Words    []WordSpan
}

// WordSpan is a half-open byte range [Start, End) into a line's content,
// the text after the +/- marker. A line's spans are ordered,
// non-overlapping, and together cover the content exactly.
type WordSpan struct {
	Start      int
	End        int
	Emphasized bool
}

// Content returns the line text without its leading diff marker.
func (l Line) Content() string {
	switch l.Kind {
	case Added, Removed:
		return l.Text[1:]
	case Context:
		if strings.HasPrefix(l.Text, " ") {
			return l.Text[1:]
		}
		return l.Text
	default:
		return l.Text
	}
}

// Parse builds the display model for a unified diff. It never fails:
// malformed hunk headers fall back to line 1 and unrecognized lines are
// treated as context, so a damaged diff still renders as plain text.
//
// Word-level emphasis is computed per run of consecutive removed and added
// lines, and only when the run is exactly one removed line against one
// added line. Anything else is shown whole-line; aligning tokens across
// uneven runs guesses more than it knows.
func Parse(text string) []Line {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	raw := strings.Split(text, "\n")

	var (
		result  []Line
		file    string
		oldNum  = 1
		newNum  = 1
		removed []int
		added   []int
	)
	flush := func() {
		applyWordSpans(result, removed, added)
		removed = removed[:0]
		added = added[:0]
	}

	for i, line := range raw {
		ln := Line{Text: line}
		switch {
		case strings.HasPrefix(line, "diff --git"):
			flush()
			if _, after, ok := strings.Cut(line, " b/"); ok {
				file = after
			}
			ln.Kind = FileHeader
		case strings.HasPrefix(line, "---"):
			flush()
			ln.Kind = OldFileMarker
		case strings.HasPrefix(line, "+++"):
			ln.Kind = NewFileMarker
		case strings.HasPrefix(line, "@@"):
			flush()
			if o, n, ok := parseHunkHeader(line); ok {
				oldNum, newNum = o, n
			}
			ln.Kind = Hunk
		case strings.HasPrefix(line, "+"):
			ln.Kind = Added
			ln.NewLine = intPtr(newNum)
			newNum++
			added = append(added, len(result))
		case strings.HasPrefix(line, "-"):
			ln.Kind = Removed
			ln.OldLine = intPtr(oldNum)
			oldNum++
			removed = append(removed, len(result))
		case strings.HasPrefix(line, `\`):
			ln.Kind = NoNewlineMarker
		default:
			flush()
			ln.Kind = Context
			ln.OldLine = intPtr(oldNum)
			ln.NewLine = intPtr(newNum)
			oldNum++
			newNum++
		}
		ln.FilePath = file
		result = append(result, ln)

		// A run ends as soon as the next line is not a change line.
		if i+1 < len(raw) {
			next := raw[i+1]
			if !strings.HasPrefix(next, "+") && !strings.HasPrefix(next, "-") {
				flush()
			}
		}
	}
	flush()
	return result
}

// parseHunkHeader reads the starting line numbers from an
// "@@ -old,count +new,count @@" header. Unparseable numbers default to 1.
func parseHunkHeader(line string) (oldStart, newStart int, ok bool) {
	parts := strings.Fields(line)
	if len(parts) < 3 {
		return 0, 0, false
	}
	return hunkStart(strings.TrimPrefix(parts[1], "-")),
		hunkStart(strings.TrimPrefix(parts[2], "+")),
		true
}

func hunkStart(s string) int {
	s, _, _ = strings.Cut(s, ",")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return n
}

// GutterWidth returns the digit count needed to print the widest line
// number in lines, with a floor of 3.
func GutterWidth(lines []Line) int {
	widest := 1
	for _, ln := range lines {
		n := ln.NewLine
		if n == nil {
			n = ln.OldLine
		}
		if n != nil && *n > widest {
			widest = *n
		}
	}
	w := len(strconv.Itoa(widest))
	if w < 3 {
		w = 3
	}
	return w
}

// FilePaths returns the post-change paths named by the diff's file
// headers, in order of appearance.
func FilePaths(text string) []string {
	var files []string
	for _, line := range strings.Split(text, "\n") {
		if !strings.HasPrefix(line, "diff --git") {
			continue
		}
		if _, after, ok := strings.Cut(line, " b/"); ok {
			files = append(files, after)
		}
	}
	return files
}

func intPtr(n int) *int { return &n }
