// Package daemon watches for new pull requests in the background and
// starts review sessions for them.
//
// Seen PRs are tracked in a JSON state file next to the config, keyed by
// repo and number, so restarts do not re-trigger sessions for PRs that
// were already known.
package daemon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/revq/internal/config"
	"github.com/dshills/revq/internal/gh"
	"github.com/dshills/revq/internal/repos"
)

// Record is one previously seen pull request.
type Record struct {
	Repo   string    `json:"repo"`
	Number int       `json:"number"`
	Title  string    `json:"title"`
	SeenAt time.Time `json:"seenAt"`
}

// State is the daemon's persisted memory of the review queue.
type State struct {
	Seen      map[string]Record `json:"seen"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// StatePath returns the location of the daemon state file.
func StatePath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "daemon-state.json"), nil
}

// LoadState reads the state file. A missing file yields an empty state.
func LoadState() (State, error) {
	path, err := StatePath()
	if err != nil {
		return State{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{Seen: map[string]Record{}}, nil
		}
		return State{}, fmt.Errorf("reading daemon state: %w", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("parsing daemon state: %w", err)
	}
	if st.Seen == nil {
		st.Seen = map[string]Record{}
	}
	return st, nil
}

// SaveState writes the state file.
func SaveState(st State) error {
	path, err := StatePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	st.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling daemon state: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Unseen returns the PRs not yet recorded in the state.
func Unseen(st State, prs []gh.PullRequest) []gh.PullRequest {
	var out []gh.PullRequest
	for _, pr := range prs {
		if _, ok := st.Seen[pr.Key()]; !ok {
			out = append(out, pr)
		}
	}
	return out
}

// Mark records PRs as seen.
func Mark(st *State, prs []gh.PullRequest) {
	if st.Seen == nil {
		st.Seen = map[string]Record{}
	}
	now := time.Now()
	for _, pr := range prs {
		st.Seen[pr.Key()] = Record{
			Repo:   pr.Repo,
			Number: pr.Number,
			Title:  pr.Title,
			SeenAt: now,
		}
	}
}

// FilterDirs drops checkouts whose base name is excluded from watching.
func FilterDirs(dirs, exclude []string) []string {
	if len(exclude) == 0 {
		return dirs
	}
	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}
	var out []string
	for _, dir := range dirs {
		if !excluded[filepath.Base(dir)] {
			out = append(out, dir)
		}
	}
	return out
}

// scanDirs discovers the watched checkouts for a config.
func scanDirs(cfg config.Config) ([]string, error) {
	dirs, err := repos.Scan(cfg.ReposRoot, cfg.Exclude)
	if err != nil {
		return nil, err
	}
	return FilterDirs(dirs, cfg.Daemon.Exclude), nil
}

// Init seeds the state with every currently open PR so the first poll
// only reacts to PRs opened afterwards.
func Init(cfg config.Config) (int, error) {
	user, err := gh.CurrentUser()
	if err != nil {
		return 0, err
	}
	dirs, err := scanDirs(cfg)
	if err != nil {
		return 0, err
	}
	prs, err := gh.FetchAll(dirs, user, false)
	if err != nil {
		return 0, err
	}
	st := State{Seen: map[string]Record{}}
	Mark(&st, prs)
	if err := SaveState(st); err != nil {
		return 0, err
	}
	return len(prs), nil
}

// PollOnce fetches the review queue, starts sessions for unseen PRs, and
// persists the updated state. It returns the PRs it acted on.
func PollOnce(cfg config.Config, user string) ([]gh.PullRequest, error) {
	dirs, err := scanDirs(cfg)
	if err != nil {
		return nil, err
	}
	prs, err := gh.FetchAll(dirs, user, false)
	if err != nil {
		return nil, err
	}
	st, err := LoadState()
	if err != nil {
		return nil, err
	}
	fresh := Unseen(st, prs)
	for _, pr := range fresh {
		if err := gh.LaunchReviewSession(pr, cfg.ReviewCommand); err != nil {
			fmt.Fprintf(os.Stderr, "revq daemon: session for %s: %v\n", pr.Key(), err)
		}
	}
	Mark(&st, prs)
	if err := SaveState(st); err != nil {
		return fresh, err
	}
	return fresh, nil
}

// Run polls on an interval until interrupted. With once set it polls a
// single time and returns.
func Run(cfg config.Config, once bool, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Duration(cfg.Daemon.PollSeconds) * time.Second
	}
	user, err := gh.CurrentUser()
	if err != nil {
		return err
	}

	poll := func() {
		fresh, err := PollOnce(cfg, user)
		switch {
		case err != nil:
			fmt.Fprintf(os.Stderr, "revq daemon: poll: %v\n", err)
		case len(fresh) > 0:
			for _, pr := range fresh {
				fmt.Printf("new pull request %s: %s\n", pr.Key(), pr.Title)
			}
		}
	}

	poll()
	if once {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		poll()
	}
	return nil
}

// Status summarizes the persisted state.
type Status struct {
	TrackedPRs int
	UpdatedAt  time.Time
	StateFile  string
}

// CurrentStatus reads the state file and reports what the daemon knows.
func CurrentStatus() (Status, error) {
	path, err := StatePath()
	if err != nil {
		return Status{}, err
	}
	st, err := LoadState()
	if err != nil {
		return Status{}, err
	}
	return Status{
		TrackedPRs: len(st.Seen),
		UpdatedAt:  st.UpdatedAt,
		StateFile:  path,
	}, nil
}
