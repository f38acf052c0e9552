package gh

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// WorktreePath is where a PR's review worktree lives, next to the
// checkout it belongs to.
func WorktreePath(pr PullRequest) string {
	return filepath.Join(filepath.Dir(pr.Dir), ".worktrees",
		fmt.Sprintf("%s-pr-%d", filepath.Base(pr.Dir), pr.Number))
}

// CreateWorktree checks out the PR head into a dedicated worktree and
// returns its path. An existing worktree for the PR is reused as is.
func CreateWorktree(pr PullRequest) (string, error) {
	if pr.Dir == "" {
		return "", fmt.Errorf("no local checkout for %s", pr.Key())
	}
	path := WorktreePath(pr)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	ref := fmt.Sprintf("refs/pull/%d/head", pr.Number)
	if _, err := gitOutput(pr.Dir, "fetch", "origin", ref); err != nil {
		return "", fmt.Errorf("fetching %s head: %w", pr.Key(), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating worktree parent: %w", err)
	}
	if _, err := gitOutput(pr.Dir, "worktree", "add", path, "FETCH_HEAD"); err != nil {
		return "", fmt.Errorf("adding worktree for %s: %w", pr.Key(), err)
	}
	return path, nil
}

// terminalCandidates lists launchers to try in order when opening a
// review session window on Linux.
var terminalCandidates = []string{
	"x-terminal-emulator",
	"gnome-terminal",
	"konsole",
	"alacritty",
	"kitty",
	"xterm",
}

// LaunchReviewSession opens a new terminal window running command inside
// the PR's worktree, creating the worktree first. command is run through
// the shell so configured values can carry arguments.
func LaunchReviewSession(pr PullRequest, command string) error {
	dir, err := CreateWorktree(pr)
	if err != nil {
		return err
	}
	if command == "" {
		command = os.Getenv("SHELL")
		if command == "" {
			command = "sh"
		}
	}
	if runtime.GOOS == "darwin" {
		script := fmt.Sprintf("cd %q && %s", dir, command)
		cmd := exec.Command("osascript", "-e",
			fmt.Sprintf(`tell application "Terminal" to do script %q`, script))
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("opening Terminal: %w", err)
		}
		return nil
	}
	for _, term := range terminalCandidates {
		if _, err := exec.LookPath(term); err != nil {
			continue
		}
		cmd := exec.Command(term, "-e", "sh", "-c", command)
		cmd.Dir = dir
		if err := cmd.Start(); err == nil {
			return nil
		}
	}
	return fmt.Errorf("no terminal emulator found (tried %s)", strings.Join(terminalCandidates, ", "))
}
