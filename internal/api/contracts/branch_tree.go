package contracts

import (
	"time"

	"github.com/angrygoose0/gitvis-sub000/internal/analyzer"
)

// BranchTreeResponse is the API response for
// GET /api/repos/{owner}/{repo}/tree.
type BranchTreeResponse struct {
	Repo          string                `json:"repo"`
	DefaultBranch string                `json:"default_branch"`
	Branches      []*analyzer.Branch    `json:"branches"`
	Connections   []analyzer.Connection `json:"connections"`
	RunID         string                `json:"run_id"`
	GeneratedAt   time.Time             `json:"generated_at"`
}

// AnalysisEvent is one progress update streamed over /ws/analysis while
// a tree analysis is running.
type AnalysisEvent struct {
	RunID  string    `json:"run_id"`
	Repo   string    `json:"repo"`
	Phase  string    `json:"phase"`
	Branch string    `json:"branch,omitempty"`
	Time   time.Time `json:"time"`
}

// CreateBranchRequest is the body for POST /api/repos/{owner}/{repo}/branches.
type CreateBranchRequest struct {
	Name string `json:"name"`
	From string `json:"from"`
}

// CreatePullRequest is the body for POST /api/repos/{owner}/{repo}/pulls.
type CreatePullRequest struct {
	Title string `json:"title"`
	Head  string `json:"head"`
	Base  string `json:"base"`
	Body  string `json:"body,omitempty"`
}
