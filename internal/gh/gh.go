package gh

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

const prListFields = "number,title,author,body,url,updatedAt,additions,deletions,reviews,isDraft,reviewDecision"

// CurrentUser returns the login of the authenticated gh user.
func CurrentUser() (string, error) {
	out, err := output("", "api", "user", "--jq", ".login")
	if err != nil {
		return "", fmt.Errorf("resolving current user: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// RepoName returns the owner/name slug for the checkout at dir.
func RepoName(dir string) (string, error) {
	out, err := output(dir, "repo", "view", "--json", "nameWithOwner", "--jq", ".nameWithOwner")
	if err != nil {
		return "", fmt.Errorf("resolving repo for %s: %w", dir, err)
	}
	return strings.TrimSpace(out), nil
}

// ListPRs returns all open pull requests for the checkout at dir, with
// Repo and Dir attached. No filtering is applied.
func ListPRs(dir string) ([]PullRequest, error) {
	repo, err := RepoName(dir)
	if err != nil {
		return nil, err
	}
	out, err := output(dir, "pr", "list", "--json", prListFields, "--limit", "100")
	if err != nil {
		return nil, fmt.Errorf("listing PRs for %s: %w", repo, err)
	}
	var prs []PullRequest
	if err := json.Unmarshal([]byte(out), &prs); err != nil {
		return nil, fmt.Errorf("parsing PR list for %s: %w", repo, err)
	}
	for i := range prs {
		prs[i].Repo = repo
		prs[i].Dir = dir
	}
	return prs, nil
}

// FetchAll lists reviewable PRs across every checkout in parallel and
// returns them most recently updated first. A repo whose listing fails
// fails the whole fetch; partial views of the review queue mislead.
func FetchAll(dirs []string, user string, includeDrafts bool) ([]PullRequest, error) {
	results := make([][]PullRequest, len(dirs))
	var g errgroup.Group
	for i, dir := range dirs {
		g.Go(func() error {
			prs, err := ListPRs(dir)
			if err != nil {
				return err
			}
			results[i] = FilterReviewable(prs, user, includeDrafts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var all []PullRequest
	for _, prs := range results {
		all = append(all, prs...)
	}
	SortByUpdated(all)
	return all, nil
}

// MyPRs returns the current user's open pull requests across all repos,
// drafts included only when asked for. Search results have no local
// checkout, so Dir is left empty and later operations address them with
// --repo.
func MyPRs(includeDrafts bool) ([]PullRequest, error) {
	out, err := output("", "search", "prs",
		"--state=open", "--author=@me",
		"--json", "number,title,author,body,url,updatedAt,isDraft,repository",
		"--limit", "100")
	if err != nil {
		return nil, fmt.Errorf("searching own PRs: %w", err)
	}
	var found []struct {
		PullRequest
		Repository struct {
			NameWithOwner string `json:"nameWithOwner"`
		} `json:"repository"`
	}
	if err := json.Unmarshal([]byte(out), &found); err != nil {
		return nil, fmt.Errorf("parsing PR search results: %w", err)
	}
	prs := make([]PullRequest, 0, len(found))
	for _, f := range found {
		pr := f.PullRequest
		pr.Repo = f.Repository.NameWithOwner
		prs = append(prs, pr)
	}
	prs = DropDrafts(prs, includeDrafts)
	enrichReviews(prs)
	SortByUpdated(prs)
	return prs, nil
}

// enrichReviews fills in the review fields the search endpoint does not
// return. A PR whose lookup fails keeps an empty review list and shows
// as pending.
func enrichReviews(prs []PullRequest) {
	var g errgroup.Group
	for i := range prs {
		g.Go(func() error {
			out, err := output("", "pr", "view", strconv.Itoa(prs[i].Number),
				"--repo", prs[i].Repo,
				"--json", "reviews,reviewDecision")
			if err != nil {
				return nil
			}
			var detail struct {
				Reviews        []Review `json:"reviews"`
				ReviewDecision string   `json:"reviewDecision"`
			}
			if json.Unmarshal([]byte(out), &detail) == nil {
				prs[i].Reviews = detail.Reviews
				prs[i].ReviewDecision = detail.ReviewDecision
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Diff returns the unified diff for a pull request. When the API refuses
// because the diff is too large, it falls back to fetching the PR head
// locally and diffing against the merge base.
func Diff(pr PullRequest) (string, error) {
	out, err := output(pr.Dir, prArgs(pr, "pr", "diff", strconv.Itoa(pr.Number))...)
	if err == nil {
		return out, nil
	}
	msg := err.Error()
	if pr.Dir == "" || !(strings.Contains(msg, "too_large") || strings.Contains(msg, "diff exceeded")) {
		return "", fmt.Errorf("fetching diff for %s: %w", pr.Key(), err)
	}
	return localDiff(pr)
}

// localDiff reproduces the PR diff with plain git when the API will not
// serve it.
func localDiff(pr PullRequest) (string, error) {
	base, err := output(pr.Dir, "pr", "view", strconv.Itoa(pr.Number), "--json", "baseRefName", "--jq", ".baseRefName")
	if err != nil {
		return "", fmt.Errorf("resolving base branch for %s: %w", pr.Key(), err)
	}
	base = strings.TrimSpace(base)
	ref := fmt.Sprintf("refs/pull/%d/head", pr.Number)
	if _, err := gitOutput(pr.Dir, "fetch", "origin", base, ref); err != nil {
		return "", fmt.Errorf("fetching %s: %w", ref, err)
	}
	diff, err := gitOutput(pr.Dir, "diff", "origin/"+base+"...FETCH_HEAD")
	if err != nil {
		return "", fmt.Errorf("diffing %s locally: %w", pr.Key(), err)
	}
	return diff, nil
}

// Comments returns the top-level comments on a pull request.
func Comments(pr PullRequest) ([]Comment, error) {
	out, err := output(pr.Dir, prArgs(pr, "pr", "view", strconv.Itoa(pr.Number), "--json", "comments", "--jq", ".comments")...)
	if err != nil {
		return nil, fmt.Errorf("fetching comments for %s: %w", pr.Key(), err)
	}
	var comments []Comment
	if err := json.Unmarshal([]byte(out), &comments); err != nil {
		return nil, fmt.Errorf("parsing comments for %s: %w", pr.Key(), err)
	}
	return comments, nil
}

// AddComment posts a top-level comment.
func AddComment(pr PullRequest, body string) error {
	_, err := output(pr.Dir, prArgs(pr, "pr", "comment", strconv.Itoa(pr.Number), "--body", body)...)
	if err != nil {
		return fmt.Errorf("commenting on %s: %w", pr.Key(), err)
	}
	return nil
}

// AddLineComment attaches a comment to a specific diff line through the
// review API. If the API rejects the position it falls back to a
// top-level comment naming the location.
func AddLineComment(pr PullRequest, target CommentTarget, body string) error {
	payload, err := json.Marshal(lineCommentPayload(target, body))
	if err != nil {
		return fmt.Errorf("encoding line comment: %w", err)
	}
	endpoint := fmt.Sprintf("repos/%s/pulls/%d/reviews", pr.Repo, pr.Number)
	_, err = outputStdin(pr.Dir, payload, "api", endpoint, "-X", "POST", "--input", "-")
	if err == nil {
		return nil
	}
	fallback := fmt.Sprintf("**%s:%d**\n\n%s", target.Path, target.Line, body)
	if ferr := AddComment(pr, fallback); ferr != nil {
		return fmt.Errorf("line comment on %s: %w", pr.Key(), err)
	}
	return nil
}

func lineCommentPayload(target CommentTarget, body string) map[string]any {
	return map[string]any{
		"event": "COMMENT",
		"body":  "",
		"comments": []map[string]any{{
			"path": target.Path,
			"line": target.Line,
			"side": target.Side,
			"body": body,
		}},
	}
}

// Approve submits an approving review, with an optional comment body.
func Approve(pr PullRequest, body string) error {
	args := prArgs(pr, "pr", "review", strconv.Itoa(pr.Number), "--approve")
	if body != "" {
		args = append(args, "--body", body)
	}
	if _, err := output(pr.Dir, args...); err != nil {
		return fmt.Errorf("approving %s: %w", pr.Key(), err)
	}
	return nil
}

// Close closes a pull request, posting the reason as a comment first when
// one is given.
func Close(pr PullRequest, body string) error {
	if body != "" {
		if err := AddComment(pr, body); err != nil {
			return err
		}
	}
	if _, err := output(pr.Dir, prArgs(pr, "pr", "close", strconv.Itoa(pr.Number))...); err != nil {
		return fmt.Errorf("closing %s: %w", pr.Key(), err)
	}
	return nil
}

// Merge merges a pull request, preferring squash and falling back to a
// merge commit when the repo forbids squashing. The head branch is
// deleted either way.
func Merge(pr PullRequest) error {
	merge := func(strategy string) error {
		args := prArgs(pr, "pr", "merge", strconv.Itoa(pr.Number), "--delete-branch", strategy)
		_, err := output(pr.Dir, args...)
		return err
	}
	if err := merge("--squash"); err == nil {
		return nil
	}
	if err := merge("--merge"); err != nil {
		return fmt.Errorf("merging %s: %w", pr.Key(), err)
	}
	return nil
}

// MergeInfo summarizes whether a pull request is ready to merge.
type MergeInfo struct {
	Mergeable         string
	TotalThreads      int
	UnresolvedThreads int
}

// Ready reports a clean merge state with every review thread resolved.
func (m MergeInfo) Ready() bool {
	return m.Mergeable == "MERGEABLE" && m.UnresolvedThreads == 0
}

const mergeStatusQuery = `query($owner: String!, $name: String!, $number: Int!) {
  repository(owner: $owner, name: $name) {
    pullRequest(number: $number) {
      mergeable
      reviewThreads(first: 100) { nodes { isResolved } }
    }
  }
}`

// MergeStatus asks GraphQL for mergeability and review thread resolution.
func MergeStatus(pr PullRequest) (MergeInfo, error) {
	owner, name, ok := strings.Cut(pr.Repo, "/")
	if !ok {
		return MergeInfo{}, fmt.Errorf("malformed repo slug %q", pr.Repo)
	}
	out, err := output(pr.Dir, "api", "graphql",
		"-f", "query="+mergeStatusQuery,
		"-F", "owner="+owner,
		"-F", "name="+name,
		"-F", "number="+strconv.Itoa(pr.Number))
	if err != nil {
		return MergeInfo{}, fmt.Errorf("merge status for %s: %w", pr.Key(), err)
	}
	var resp struct {
		Data struct {
			Repository struct {
				PullRequest struct {
					Mergeable     string `json:"mergeable"`
					ReviewThreads struct {
						Nodes []struct {
							IsResolved bool `json:"isResolved"`
						} `json:"nodes"`
					} `json:"reviewThreads"`
				} `json:"pullRequest"`
			} `json:"repository"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		return MergeInfo{}, fmt.Errorf("parsing merge status for %s: %w", pr.Key(), err)
	}
	info := MergeInfo{Mergeable: resp.Data.Repository.PullRequest.Mergeable}
	for _, n := range resp.Data.Repository.PullRequest.ReviewThreads.Nodes {
		info.TotalThreads++
		if !n.IsResolved {
			info.UnresolvedThreads++
		}
	}
	return info, nil
}

// prArgs appends --repo for PRs without a local checkout.
func prArgs(pr PullRequest, args ...string) []string {
	if pr.Dir == "" && pr.Repo != "" {
		args = append(args, "--repo", pr.Repo)
	}
	return args
}

func output(dir string, args ...string) (string, error) {
	cmd := exec.Command("gh", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("gh %s: %s: %s", args[0], err, bytes.TrimSpace(exitErr.Stderr))
		}
		return "", fmt.Errorf("gh %s: %w", args[0], err)
	}
	return string(out), nil
}

func outputStdin(dir string, stdin []byte, args ...string) (string, error) {
	cmd := exec.Command("gh", args...)
	cmd.Dir = dir
	cmd.Stdin = bytes.NewReader(stdin)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("gh %s: %s: %s", args[0], err, bytes.TrimSpace(exitErr.Stderr))
		}
		return "", fmt.Errorf("gh %s: %w", args[0], err)
	}
	return string(out), nil
}

func gitOutput(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("git %s: %s: %s", args[0], err, bytes.TrimSpace(exitErr.Stderr))
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}
