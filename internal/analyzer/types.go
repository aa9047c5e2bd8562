package analyzer

import "context"

// Branch is one branch in the inferred topology. The engine rebuilds the
// full set from scratch on every analysis run; only the relationship map
// persists across runs.
type Branch struct {
	Name      string   `json:"name"`
	CommitSHA string   `json:"commit_sha"`
	Protected bool     `json:"protected"`
	Parent    string   `json:"parent,omitempty"`
	Depth     int      `json:"depth"`
	Children  []string `json:"children"`
	// AheadBy is the number of commits this branch has that its resolved
	// parent does not. nil means the comparison failed, which is distinct
	// from a known zero.
	AheadBy *int `json:"ahead_by,omitempty"`
}

// CompareResult is the three fields of a two-ref comparison that the
// engine depends on.
type CompareResult struct {
	AheadBy  int    `json:"ahead_by"`
	BehindBy int    `json:"behind_by"`
	Status   string `json:"status"`
}

// Connection is one child→parent edge for rendering. CommitCount is
// filled in later by commit fetching and defaults to zero.
type Connection struct {
	From        string `json:"from"`
	To          string `json:"to"`
	CommitCount int    `json:"commit_count"`
}

// Comparator issues a single two-ref comparison. Implementations may
// fail per call; the engine treats each failure as "unknown" and moves on.
// Callers sequence invocations; the engine inserts its own courtesy delay
// between calls.
type Comparator interface {
	Compare(ctx context.Context, base, head string) (*CompareResult, error)
}

// Result is everything one analysis run produces: the enriched branch
// set, the connection edges, and the refreshed child→parent map for the
// caller to persist. A degraded result came from the name heuristic and
// carries no relationship map, so guessed parents never reach the cache.
type Result struct {
	Branches      []*Branch         `json:"branches"`
	Connections   []Connection      `json:"connections"`
	Relationships map[string]string `json:"relationships,omitempty"`
	Degraded      bool              `json:"degraded,omitempty"`
}

// resolutionContext threads the shared state of one analysis pass through
// the phases, instead of each phase closing over ad hoc maps.
type resolutionContext struct {
	trunk    string
	branches []*Branch          // alphabetical by name
	byName   map[string]*Branch
	merged   map[string]string  // branch → branch it is fully merged into
	parents  map[string]string  // child → resolved parent
	cached   map[string]string  // incoming relationship cache
}

// Progress is emitted as the engine moves through phases and branches.
type Progress struct {
	Phase  string `json:"phase"`
	Branch string `json:"branch,omitempty"`
}

// Phase names reported via Progress.
const (
	PhaseMergeDetection = "merge-detection"
	PhaseResolution     = "resolution"
	PhaseFinalization   = "finalization"
	PhaseTreeBuild      = "tree-build"
	PhaseFallback       = "fallback"
	PhaseDone           = "done"
)
