package analyzer

import "context"

// finalizeAheadBy recomputes each branch's ahead count against its
// resolved parent, overwriting any provisional value from merge
// detection. A failed comparison leaves AheadBy nil so downstream
// rendering can tell "known zero" from "unknown".
func (a *Analyzer) finalizeAheadBy(ctx context.Context, rctx *resolutionContext) {
	for _, b := range rctx.branches {
		if b.Name == rctx.trunk {
			sentinel := trunkAheadSentinel
			b.AheadBy = &sentinel
			continue
		}

		parent, ok := rctx.parents[b.Name]
		if !ok {
			continue
		}

		res, err := a.compare(ctx, parent, b.Name)
		if err != nil {
			a.logger.Warn("ahead-by finalization failed", "branch", b.Name, "parent", parent, "err", err)
			b.AheadBy = nil
			continue
		}

		ahead := res.AheadBy
		b.AheadBy = &ahead
	}
}

// buildTree turns the resolved parent map into depth values, children
// lists, and connection edges. Branches are processed alphabetically so
// sibling order is deterministic.
func buildTree(rctx *resolutionContext) []Connection {
	var connections []Connection

	for _, b := range rctx.branches {
		if b.Name == rctx.trunk {
			b.Depth = 0
			continue
		}

		parent := rctx.parents[b.Name]
		b.Parent = parent
		b.Depth = depthOf(rctx, b.Name)

		if p, ok := rctx.byName[parent]; ok {
			p.Children = append(p.Children, b.Name)
		}

		connections = append(connections, Connection{From: b.Name, To: parent})
	}

	return connections
}

// depthOf walks the parent chain until the trunk or an already-visited
// node, counting steps. The visited set guards against cycles from
// pathological cached relationships; on a cycle the walk stops and the
// partial depth is returned, capped like everything else.
func depthOf(rctx *resolutionContext, name string) int {
	depth := 0
	visited := map[string]bool{name: true}

	current := name
	for current != rctx.trunk {
		parent, ok := rctx.parents[current]
		if !ok {
			break
		}
		depth++
		if depth >= maxDepth {
			return maxDepth
		}
		if visited[parent] {
			break
		}
		visited[parent] = true
		current = parent
	}

	return depth
}
