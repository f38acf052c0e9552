package gh

import (
	"sort"
	"strconv"
	"time"
)

// Actor is a GitHub user reference as gh reports it.
type Actor struct {
	Login string `json:"login"`
}

// Review is one submitted review on a pull request.
type Review struct {
	Author Actor  `json:"author"`
	State  string `json:"state"`
}

// PullRequest is a pull request as listed by gh, plus where it was found.
type PullRequest struct {
	Number         int       `json:"number"`
	Title          string    `json:"title"`
	Author         Actor     `json:"author"`
	Body           string    `json:"body"`
	URL            string    `json:"url"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Additions      int       `json:"additions"`
	Deletions      int       `json:"deletions"`
	Reviews        []Review  `json:"reviews"`
	IsDraft        bool      `json:"isDraft"`
	ReviewDecision string    `json:"reviewDecision"`

	// Repo is the owner/name slug; Dir is the local checkout the PR was
	// discovered in, empty for PRs found by search.
	Repo string `json:"-"`
	Dir  string `json:"-"`
}

// Comment is a top-level pull request comment.
type Comment struct {
	Author    Actor     `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommentTarget addresses a single diff line for an inline comment.
// Side is "RIGHT" for the new version of the file, "LEFT" for the old.
type CommentTarget struct {
	Path string
	Line int
	Side string
}

// ReviewState is the reviewer-facing status of a pull request.
type ReviewState int

const (
	StatePending ReviewState = iota
	StateApproved
	StateChangesRequested
	StateDraft
)

func (s ReviewState) String() string {
	switch s {
	case StateApproved:
		return "approved"
	case StateChangesRequested:
		return "changes requested"
	case StateDraft:
		return "draft"
	default:
		return "pending"
	}
}

// State derives the review status from draft flag and review decision.
func (pr PullRequest) State() ReviewState {
	if pr.IsDraft {
		return StateDraft
	}
	switch pr.ReviewDecision {
	case "APPROVED":
		return StateApproved
	case "CHANGES_REQUESTED":
		return StateChangesRequested
	default:
		return StatePending
	}
}

// ApprovedBy reports whether the named user has an approving review on
// this pull request.
func (pr PullRequest) ApprovedBy(login string) bool {
	for _, r := range pr.Reviews {
		if r.State == "APPROVED" && r.Author.Login == login {
			return true
		}
	}
	return false
}

// FilterReviewable drops PRs the given user would not review: their own,
// those they already approved, and drafts unless includeDrafts is set.
func FilterReviewable(prs []PullRequest, user string, includeDrafts bool) []PullRequest {
	var out []PullRequest
	for _, pr := range prs {
		if pr.Author.Login == user {
			continue
		}
		if pr.ApprovedBy(user) {
			continue
		}
		if pr.IsDraft && !includeDrafts {
			continue
		}
		out = append(out, pr)
	}
	return out
}

// DropDrafts removes draft PRs unless they were asked for.
func DropDrafts(prs []PullRequest, includeDrafts bool) []PullRequest {
	if includeDrafts {
		return prs
	}
	var out []PullRequest
	for _, pr := range prs {
		if pr.IsDraft {
			continue
		}
		out = append(out, pr)
	}
	return out
}

// SortByUpdated orders PRs most recently updated first.
func SortByUpdated(prs []PullRequest) {
	sort.SliceStable(prs, func(i, j int) bool {
		return prs[i].UpdatedAt.After(prs[j].UpdatedAt)
	})
}

// Key identifies a PR across fetches.
func (pr PullRequest) Key() string {
	return pr.Repo + "#" + strconv.Itoa(pr.Number)
}
