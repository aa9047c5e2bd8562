package analyzer

import "context"

// detectMerged classifies which branches are fully merged into the
// trunk: a branch with no commits the trunk lacks (ahead 0, behind >= 0)
// has been absorbed. Comparisons run sequentially to respect rate
// limiting; a failed comparison means "not merged", never a failed run.
func (a *Analyzer) detectMerged(ctx context.Context, rctx *resolutionContext) {
	for _, b := range rctx.branches {
		if b.Name == rctx.trunk {
			continue
		}

		res, err := a.compare(ctx, rctx.trunk, b.Name)
		if err != nil {
			a.logger.Warn("merge check failed", "branch", b.Name, "err", err)
			continue
		}

		if res.AheadBy == 0 && res.BehindBy >= 0 {
			rctx.merged[b.Name] = rctx.trunk
			a.logger.Debug("branch merged into trunk", "branch", b.Name, "behind", res.BehindBy)
		}
	}
}
