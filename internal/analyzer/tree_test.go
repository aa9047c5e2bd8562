package analyzer

import (
	"context"
	"testing"
)

func TestDepthCappedOnLongChain(t *testing.T) {
	// A fully cached chain main <- c1 <- ... <- c7: no comparisons are
	// needed for resolution, and depth must cap at maxDepth.
	names := []string{"main", "c1", "c2", "c3", "c4", "c5", "c6", "c7"}
	cached := map[string]string{"c1": "main"}
	for i := 2; i <= 7; i++ {
		cached[names[i]] = names[i-1]
	}

	comp := &fakeComparator{} // finalization calls fail, which is fine
	a := newTestAnalyzer(comp)
	result := a.CalculateBranchTree(context.Background(), branchSet(names...), "main", cached)

	wantDepths := map[string]int{
		"main": 0, "c1": 1, "c2": 2, "c3": 3, "c4": 4,
		"c5": 5, "c6": 5, "c7": 5,
	}
	for name, want := range wantDepths {
		if got := findBranch(t, result, name).Depth; got != want {
			t.Errorf("%s depth = %d, want %d", name, got, want)
		}
	}
}

func TestChildrenOrderIsAlphabetical(t *testing.T) {
	cached := map[string]string{"zeta": "main", "alpha": "main", "mid": "main"}

	comp := &fakeComparator{}
	a := newTestAnalyzer(comp)
	result := a.CalculateBranchTree(context.Background(), branchSet("main", "zeta", "alpha", "mid"), "main", cached)

	main := findBranch(t, result, "main")
	want := []string{"alpha", "mid", "zeta"}
	if len(main.Children) != len(want) {
		t.Fatalf("children = %v, want %v", main.Children, want)
	}
	for i, name := range want {
		if main.Children[i] != name {
			t.Fatalf("children = %v, want %v", main.Children, want)
		}
	}
}

func TestInputBranchesNotMutated(t *testing.T) {
	input := branchSet("main", "a")
	cached := map[string]string{"a": "main"}

	a := newTestAnalyzer(&fakeComparator{})
	a.CalculateBranchTree(context.Background(), input, "main", cached)

	for _, b := range input {
		if b.Parent != "" || b.Depth != 0 || b.Children != nil || b.AheadBy != nil {
			t.Errorf("input branch %s mutated: %+v", b.Name, b)
		}
	}
}
