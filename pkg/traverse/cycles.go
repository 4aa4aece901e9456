// Cycle detection.
//
// Cycles are found by anchored DFS: from a given node, follow outgoing edges
// and record any edge that closes back on the anchor. The search is bounded
// by a maximum cycle length (edge count), so termination is structural.

package traverse

import "github.com/workgraphdb/workgraph/pkg/graph"

// FindCycles detects directed cycles.
//
// With a non-empty anchor, the search runs from that node only and returns
// every cycle through it up to maxLen edges; self-loops count as cycles of
// length 1. With an empty anchor, the search runs from every node and
// deduplicates cycles that are rotations of each other (the cycle is
// normalized by rotating its smallest id to the front). A cycle and its
// direction-reversed mirror remain distinct results.
//
// A zero maxLen falls back to DefaultMaxCycleLength. Unknown anchors yield
// no cycles.
//
// Example:
//
//	// Ring A -> B -> C -> A
//	cycles := finder.FindCycles("A", nil, 0)
//	// one CycleResult: Nodes [A B C A], Length 3, Anchor A
func (f *Finder) FindCycles(anchor graph.NodeID, rels []string, maxLen int) []CycleResult {
	if maxLen <= 0 {
		maxLen = DefaultMaxCycleLength
	}

	if anchor != "" {
		if _, ok := f.store.Get(anchor); !ok {
			return nil
		}
		return f.cyclesFrom(anchor, rels, maxLen)
	}

	var results []CycleResult
	seen := make(map[string]bool)
	for _, node := range f.store.All() {
		for _, cycle := range f.cyclesFrom(node.ID, rels, maxLen) {
			key := cycleKey(cycle.Nodes)
			if seen[key] {
				continue
			}
			seen[key] = true
			results = append(results, cycle)
		}
	}
	return results
}

// cyclesFrom runs the anchored DFS for a single node.
func (f *Finder) cyclesFrom(anchor graph.NodeID, rels []string, maxLen int) []CycleResult {
	search := &cycleSearch{
		finder:  f,
		anchor:  anchor,
		rels:    rels,
		maxLen:  maxLen,
		visited: make(map[graph.NodeID]bool),
	}
	search.dfs(anchor, []graph.NodeID{anchor}, 0)
	return search.results
}

// cycleSearch tracks DFS state for one anchor. The visited set holds
// intermediate nodes only - never the anchor itself, so edges back to the
// anchor always close a cycle.
type cycleSearch struct {
	finder  *Finder
	anchor  graph.NodeID
	rels    []string
	maxLen  int
	visited map[graph.NodeID]bool
	results []CycleResult
}

func (s *cycleSearch) dfs(cur graph.NodeID, path []graph.NodeID, depth int) {
	for _, edge := range s.finder.store.Outgoing(cur, s.rels...) {
		next := edge.To

		if next == s.anchor {
			if depth+1 <= s.maxLen {
				cycle := make([]graph.NodeID, 0, len(path)+1)
				cycle = append(cycle, path...)
				cycle = append(cycle, s.anchor)
				s.results = append(s.results, CycleResult{
					Nodes:  cycle,
					Length: depth + 1,
					Anchor: s.anchor,
				})
			}
			continue
		}

		// Need at least one more edge to close; stop descending when the
		// budget cannot cover it.
		if depth+1 >= s.maxLen {
			continue
		}
		if s.visited[next] {
			continue
		}

		s.visited[next] = true
		s.dfs(next, append(path, next), depth+1)
		s.visited[next] = false
	}
}
