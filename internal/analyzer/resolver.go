package analyzer

import (
	"context"
	"math"
)

// resolveParents finds the best parent for every non-trunk branch.
//
// Branches are processed alphabetically. A cached relationship whose
// parent still exists in the current branch set is accepted without any
// network calls; a stale one is silently discarded. Otherwise every
// other non-merged branch is a candidate: a candidate the branch is
// strictly ahead of (ahead > 0, behind 0) competes on smallest ahead
// count, while a candidate that fully contains the branch (ahead 0)
// wins immediately. Candidates are scanned in alphabetical order, so an
// ahead-count tie goes to the lexically smallest name. Branches with no
// qualifying candidate are attached to the trunk.
func (a *Analyzer) resolveParents(ctx context.Context, rctx *resolutionContext) {
	for _, b := range rctx.branches {
		if b.Name == rctx.trunk {
			continue
		}

		a.report(Progress{Phase: PhaseResolution, Branch: b.Name})

		if parent, ok := rctx.cached[b.Name]; ok && parent != b.Name {
			if _, exists := rctx.byName[parent]; exists {
				rctx.parents[b.Name] = parent
				a.logger.Debug("cached parent reused", "branch", b.Name, "parent", parent)
				continue
			}
		}

		rctx.parents[b.Name] = a.findBestParent(ctx, rctx, b)
	}
}

// findBestParent scans all candidates for one branch and returns the
// resolved parent, defaulting to the trunk.
func (a *Analyzer) findBestParent(ctx context.Context, rctx *resolutionContext, b *Branch) string {
	best := ""
	bestAhead := math.MaxInt

	for _, candidate := range rctx.branches {
		if candidate.Name == b.Name {
			continue
		}
		if _, isMerged := rctx.merged[candidate.Name]; isMerged {
			continue
		}

		res, err := a.compare(ctx, candidate.Name, b.Name)
		if err != nil {
			// Not a relationship we can see; skip the candidate.
			a.logger.Warn("compare failed", "base", candidate.Name, "head", b.Name, "err", err)
			continue
		}

		if res.AheadBy > 0 && res.BehindBy == 0 {
			// Proper descendant: nearest ancestor wins.
			if res.AheadBy < bestAhead {
				best = candidate.Name
				bestAhead = res.AheadBy
			}
			continue
		}

		if res.AheadBy == 0 && res.BehindBy >= 0 {
			if _, isMerged := rctx.merged[b.Name]; !isMerged {
				// Fully contained in the candidate: the merge
				// relationship beats any distance reasoning.
				return candidate.Name
			}
		}
	}

	if best == "" {
		return rctx.trunk
	}
	return best
}
