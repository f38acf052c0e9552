package diff

import (
	"strings"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// applyWordSpans attaches intra-line emphasis to a finished run of removed
// and added lines. Only an exact one-for-one substitution qualifies.
func applyWordSpans(lines []Line, removed, added []int) {
	if len(removed) != 1 || len(added) != 1 {
		return
	}
	rem, add := wordSpans(lines[removed[0]].Content(), lines[added[0]].Content())
	lines[removed[0]].Words = rem
	lines[added[0]].Words = add
}

// wordSpans diffs two lines at word granularity and returns covering spans
// for each side with the changed tokens marked emphasized. A side with no
// tokens gets no spans.
func wordSpans(removed, added string) ([]WordSpan, []WordSpan) {
	encRem, encAdd, tokens := tokensToRunes(removed, added)
	diffs := diffmatchpatch.New().DiffMain(encRem, encAdd, false)

	var remSpans, addSpans []WordSpan
	remPos, addPos := 0, 0
	for _, d := range diffs {
		n := 0
		for _, r := range d.Text {
			n += len(tokens[r])
		}
		if n == 0 {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			remSpans = append(remSpans, WordSpan{remPos, remPos + n, false})
			addSpans = append(addSpans, WordSpan{addPos, addPos + n, false})
			remPos += n
			addPos += n
		case diffmatchpatch.DiffDelete:
			remSpans = append(remSpans, WordSpan{remPos, remPos + n, true})
			remPos += n
		case diffmatchpatch.DiffInsert:
			addSpans = append(addSpans, WordSpan{addPos, addPos + n, true})
			addPos += n
		}
	}
	return remSpans, addSpans
}

// tokensToRunes encodes each distinct word or whitespace token as a
// private rune so the character differ operates on whole tokens, the same
// trick diffmatchpatch uses for its line mode.
func tokensToRunes(a, b string) (string, string, map[rune]string) {
	byToken := make(map[string]rune)
	byRune := make(map[rune]string)
	next := rune(1)
	encode := func(s string) string {
		var sb strings.Builder
		for _, tok := range splitWords(s) {
			r, ok := byToken[tok]
			if !ok {
				r = next
				next++
				if next == 0xD800 {
					next = 0xE000
				}
				byToken[tok] = r
				byRune[r] = tok
			}
			sb.WriteRune(r)
		}
		return sb.String()
	}
	return encode(a), encode(b), byRune
}

// splitWords splits s into alternating runs of whitespace and
// non-whitespace, preserving every byte.
func splitWords(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	var inSpace bool
	for i, r := range s {
		space := unicode.IsSpace(r)
		if i == 0 {
			inSpace = space
			continue
		}
		if space != inSpace {
			out = append(out, s[start:i])
			start = i
			inSpace = space
		}
	}
	out = append(out, s[start:])
	return out
}
