// Package analyzer infers a branch tree (parent, depth, ahead-count,
// merge status) from a flat branch list using pairwise ahead/behind
// comparisons. Git records no branch ancestry, so the tree is a
// heuristic nearest-ancestor approximation, biased toward previously
// resolved relationships via a caller-supplied cache.
package analyzer

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// compareDelay is the courtesy spacing between comparison calls to
	// stay under the upstream API's rate limit.
	compareDelay = 50 * time.Millisecond

	// maxDepth caps the depth of any descendant regardless of true
	// chain length.
	maxDepth = 5

	// trunkAheadSentinel marks the trunk branch as "always ahead".
	trunkAheadSentinel = 1
)

// Analyzer runs branch tree analysis over a Comparator. One Analyzer
// must not run concurrent analyses for the same repository; the caller
// serializes runs.
type Analyzer struct {
	comp   Comparator
	delay  time.Duration
	sleep  func(time.Duration)
	logger *log.Logger

	// Progress, when set, receives phase and per-branch updates.
	Progress func(Progress)
}

// New returns an Analyzer with the default courtesy delay.
func New(comp Comparator) *Analyzer {
	return &Analyzer{
		comp:   comp,
		delay:  compareDelay,
		sleep:  time.Sleep,
		logger: log.WithPrefix("analyzer"),
	}
}

// SetDelay overrides the spacing between comparison calls.
func (a *Analyzer) SetDelay(d time.Duration) {
	a.delay = d
}

// CalculateBranchTree runs the full pipeline: merge detection, ancestor
// resolution (consulting the cached relationships), ahead-by
// finalization, and tree building. It never fails: any unrecovered
// failure discards partial results and falls back to the name-pattern
// heuristic over the original branch list, so every branch always comes
// back with a parent and depth. Fallback results are marked Degraded
// and carry no relationship map, since guessed parents must not be
// persisted as resolved ones.
func (a *Analyzer) CalculateBranchTree(ctx context.Context, branches []Branch, trunk string, cached map[string]string) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("analysis failed, using name heuristic", "trunk", trunk, "panic", r)
			a.report(Progress{Phase: PhaseFallback})
			result = a.fallbackTree(branches, trunk)
			a.report(Progress{Phase: PhaseDone})
		}
	}()

	rctx := newResolutionContext(branches, trunk, cached)

	a.report(Progress{Phase: PhaseMergeDetection})
	a.detectMerged(ctx, rctx)

	a.report(Progress{Phase: PhaseResolution})
	a.resolveParents(ctx, rctx)

	a.report(Progress{Phase: PhaseFinalization})
	a.finalizeAheadBy(ctx, rctx)

	a.report(Progress{Phase: PhaseTreeBuild})
	connections := buildTree(rctx)

	a.report(Progress{Phase: PhaseDone})

	relationships := make(map[string]string, len(rctx.parents))
	for child, parent := range rctx.parents {
		relationships[child] = parent
	}

	return &Result{
		Branches:      rctx.branches,
		Connections:   connections,
		Relationships: relationships,
	}
}

// newResolutionContext copies the input set into fresh working records,
// sorted alphabetically so every phase iterates in a deterministic,
// reproducible order.
func newResolutionContext(branches []Branch, trunk string, cached map[string]string) *resolutionContext {
	rctx := &resolutionContext{
		trunk:   trunk,
		byName:  make(map[string]*Branch, len(branches)),
		merged:  make(map[string]string),
		parents: make(map[string]string),
		cached:  cached,
	}

	for i := range branches {
		b := branches[i] // copy; input records stay untouched
		b.Parent = ""
		b.Depth = 0
		b.Children = nil
		b.AheadBy = nil
		rctx.branches = append(rctx.branches, &b)
		rctx.byName[b.Name] = &b
	}

	sort.Slice(rctx.branches, func(i, j int) bool {
		return rctx.branches[i].Name < rctx.branches[j].Name
	})

	return rctx
}

// compare issues one comparison followed by the courtesy delay.
func (a *Analyzer) compare(ctx context.Context, base, head string) (*CompareResult, error) {
	res, err := a.comp.Compare(ctx, base, head)
	a.sleep(a.delay)
	return res, err
}

func (a *Analyzer) report(p Progress) {
	if a.Progress != nil {
		a.Progress(p)
	}
}
