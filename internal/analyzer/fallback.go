package analyzer

import "strings"

// developNames are the branch names recognized as an integration branch
// by the name heuristic.
var developNames = map[string]bool{
	"develop":     true,
	"dev":         true,
	"development": true,
}

// fallbackTree assigns parents purely from branch name patterns. It is
// used when the comparison-based pipeline fails outright (systemic
// network failure, corrupted cache) and makes no network calls:
// feature/* and bugfix/* branches attach under a develop branch when one
// exists, everything else under the trunk. AheadBy defaults to 1 since
// no real comparison happened.
func (a *Analyzer) fallbackTree(branches []Branch, trunk string) *Result {
	rctx := newResolutionContext(branches, trunk, nil)

	develop := ""
	for _, b := range rctx.branches {
		if developNames[b.Name] {
			develop = b.Name
			break
		}
	}

	for _, b := range rctx.branches {
		if b.Name == rctx.trunk {
			continue
		}

		parent := rctx.trunk
		if develop != "" && b.Name != develop && isFeatureName(b.Name) {
			parent = develop
		}
		rctx.parents[b.Name] = parent
	}

	connections := buildTree(rctx)

	for _, b := range rctx.branches {
		ahead := 1 // optimistic: assume unique work
		b.AheadBy = &ahead
	}

	// Guessed parents are for rendering only; the result carries no
	// relationship map so they are never persisted as resolved.
	return &Result{
		Branches:    rctx.branches,
		Connections: connections,
		Degraded:    true,
	}
}

func isFeatureName(name string) bool {
	return strings.HasPrefix(name, "feature/") || strings.HasPrefix(name, "bugfix/")
}
