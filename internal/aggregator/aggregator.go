// Package aggregator folds per-process CPU load up the process forest
// into per-subtree load for a set of query-root PIDs, in a single pass
// over an adjacency map rebuilt fresh from each tick's snapshot.
package aggregator

import "github.com/ja7ad/pidtree_mon/internal/forest"

// children is the parent -> direct-children adjacency built once per
// tick and discarded at tick end (spec's "arena+index" rationale,
// minus the arena: a plain map is cheap enough at process-forest scale).
type children map[int][]int

func buildChildren(snap forest.Snapshot) children {
	c := make(children, len(snap.Entries))
	for pid, entry := range snap.Entries {
		if entry.Parent == 0 || entry.Parent == pid {
			continue // forest root, or self-parented (treated as root)
		}
		c[entry.Parent] = append(c[entry.Parent], pid)
	}
	return c
}

// SubtreeLoads computes, for each root in roots (in the order given),
// the sum of load over that root and all of its transitive descendants
// in snap. A root absent from snap contributes 0. Roots are independent:
// overlapping subtrees (only possible from a torn/inconsistent snapshot)
// are each summed separately, with no cross-root deduplication.
func SubtreeLoads(snap forest.Snapshot, loads map[int]float64, roots []int) []float64 {
	c := buildChildren(snap)
	out := make([]float64, len(roots))
	for i, root := range roots {
		out[i] = subtreeSum(root, snap, loads, c)
	}
	return out
}

func subtreeSum(root int, snap forest.Snapshot, loads map[int]float64, c children) float64 {
	if _, ok := snap.Entries[root]; !ok {
		return 0
	}
	visited := make(map[int]bool)
	var total float64
	stack := []int{root}
	for len(stack) > 0 {
		pid := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[pid] {
			continue // pathological cycle from a torn snapshot; refuse to re-enter
		}
		visited[pid] = true
		total += loads[pid]
		stack = append(stack, c[pid]...)
	}
	return total
}
