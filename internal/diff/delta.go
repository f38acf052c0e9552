package diff

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
)

// DeltaSizeLimit caps the diff text handed to delta. Larger diffs fall
// back to the built-in renderer.
const DeltaSizeLimit = 100_000

const deltaTimeout = 10 * time.Second

var (
	deltaOnce      sync.Once
	deltaInstalled bool
)

// DeltaAvailable reports whether the delta pretty-printer is on PATH.
// Probed once per process.
func DeltaAvailable() bool {
	deltaOnce.Do(func() {
		deltaInstalled = exec.Command("delta", "--version").Run() == nil
	})
	return deltaInstalled
}

// RenderWithDelta pipes diff text through delta and returns its colorized
// output. ok is false when the input exceeds DeltaSizeLimit, delta is not
// installed, it exits nonzero, or it does not finish within 10 seconds.
// On timeout the child is left to finish on its own and its output dropped.
func RenderWithDelta(diff string, width int) (out string, ok bool) {
	if len(diff) > DeltaSizeLimit || !DeltaAvailable() {
		return "", false
	}
	cmd := exec.Command("delta",
		"--dark",
		"--paging=never",
		"--line-numbers",
		"--side-by-side",
		fmt.Sprintf("--width=%d", width),
	)
	cmd.Stdin = strings.NewReader(diff)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Start(); err != nil {
		return "", false
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			return "", false
		}
		return stdout.String(), true
	case <-time.After(deltaTimeout):
		return "", false
	}
}

// DeltaLine is the file and line-number association recovered for one line
// of delta output.
type DeltaLine struct {
	FilePath string
	OldLine  *int
	NewLine  *int
}

const (
	deltaNumSep    = "⋮"
	deltaColumnSep = "│"
)

// SplitOutput breaks renderer output into display lines. ParseDeltaLines
// indexes line up 1:1 with the lines this returns.
func SplitOutput(out string) []string {
	out = strings.TrimSuffix(out, "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// ParseDeltaLines scans delta's output and recovers per-display-line file
// and line-number associations so comments can be addressed against it.
// Delta publishes no machine-readable format, so this reads its visual
// layout: "NNN ⋮ MMM" gutters in unified mode, "│ NNN │ ... │ MMM │"
// columns in side-by-side mode, and a leading "NNN:" as a last resort.
// rawDiff supplies the file paths to recognize in header lines. Lines that
// match nothing are left unassociated.
func ParseDeltaLines(deltaOut, rawDiff string) []DeltaLine {
	knownFiles := FilePaths(rawDiff)

	var result []DeltaLine
	var current string
	for _, raw := range SplitOutput(deltaOut) {
		clean := ansi.Strip(raw)
		trimmed := strings.TrimSpace(clean)

		for _, f := range knownFiles {
			if trimmed == f || strings.HasSuffix(trimmed, f) {
				current = f
				break
			}
		}

		var oldNum, newNum *int
		if pos := strings.Index(clean, deltaNumSep); pos >= 0 {
			before := clean[:pos]
			after := clean[pos+len(deltaNumSep):]
			if fields := strings.Fields(before); len(fields) > 0 {
				oldNum = parseNum(fields[len(fields)-1])
			}
			numPart := after
			if pipe := strings.Index(after, deltaColumnSep); pipe >= 0 {
				numPart = after[:pipe]
			}
			if fields := strings.Fields(numPart); len(fields) > 0 {
				newNum = parseNum(fields[0])
			}
		} else if strings.HasPrefix(clean, deltaColumnSep) {
			parts := strings.Split(clean, deltaColumnSep)
			if len(parts) >= 2 {
				oldNum = parseNum(strings.TrimSpace(parts[1]))
			}
			if len(parts) >= 4 {
				newNum = parseNum(strings.TrimSpace(parts[3]))
			}
		} else if pos := strings.Index(clean, ":"); pos >= 0 {
			if n := parseNum(strings.TrimSpace(clean[:pos])); n != nil {
				oldNum = n
				m := *n
				newNum = &m
			}
		}

		result = append(result, DeltaLine{FilePath: current, OldLine: oldNum, NewLine: newNum})
	}
	return result
}

func parseNum(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
