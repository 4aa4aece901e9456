// Package traverse implements bounded path finding over the work-item graph.
//
// Every operation terminates structurally - by depth bound, result-count
// bound, or exhausted search space - never by wall-clock timeout. Unknown
// node ids, unreachable targets, and empty graphs produce empty results,
// not errors.
//
// Algorithms:
//   - AnyShortest: single-visit BFS, O(V+E)
//   - AllShortest: BFS with full-predecessor tracking, then backtrack
//   - BoundedPaths: DFS with per-path visited sets (simple paths only)
//   - FindCycles: anchored DFS with rotation-normalized deduplication
//   - ReachableSet: level-by-level BFS, forward or reverse
//
// Example:
//
//	finder := traverse.NewFinder(store)
//
//	if p := finder.AnyShortest("F1", "F9", nil); p != nil {
//		fmt.Printf("%d hops via %v\n", p.Length, p.Nodes)
//	}
//
//	for _, c := range finder.FindCycles("", []string{"blocked_by"}, 0) {
//		fmt.Printf("cycle of length %d at %s\n", c.Length, c.Anchor)
//	}
package traverse

import (
	"strings"

	"github.com/workgraphdb/workgraph/pkg/graph"
)

// Defaults applied when a caller passes a zero bound.
const (
	DefaultMaxDepth       = 20
	DefaultMaxResults     = 100
	DefaultMaxCycleLength = 10
)

// PathResult is an ordered walk through the graph.
//
// Invariant: len(Nodes) == len(Edges)+1. A zero-length path holds the single
// endpoint and no edges. Rels is the distinct set of relationship types seen,
// in first-seen order.
type PathResult struct {
	Nodes  []graph.NodeID  `json:"nodes"`
	Edges  []graph.EdgeRef `json:"edges"`
	Rels   []string        `json:"rels,omitempty"`
	Length int             `json:"length"`
}

// CycleResult is a closed walk: Nodes[0] == Nodes[len-1], Length counts
// edges (a self-loop has Length 1). Anchor is the node the search started
// from.
type CycleResult struct {
	Nodes  []graph.NodeID `json:"nodes"`
	Length int            `json:"length"`
	Anchor graph.NodeID   `json:"anchor"`
}

// Finder runs bounded traversals against a loaded store snapshot.
//
// A Finder holds no mutable state between calls; every traversal allocates
// its own visited sets, queues, and accumulators, so independent queries may
// run concurrently against the same snapshot.
type Finder struct {
	store    graph.Store
	maxDepth int
}

// NewFinder creates a Finder with the default depth bound.
func NewFinder(store graph.Store) *Finder {
	return NewFinderWithDepth(store, DefaultMaxDepth)
}

// NewFinderWithDepth creates a Finder whose default depth bound is maxDepth.
// The bound applies whenever a caller passes a zero or negative depth.
func NewFinderWithDepth(store graph.Store, maxDepth int) *Finder {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Finder{store: store, maxDepth: maxDepth}
}

// AnyShortest returns one shortest path from from to to following outgoing
// edges, optionally restricted to the given relationship types. Returns nil
// when either endpoint is unknown or the target is unreachable.
//
// from == to returns a zero-length path immediately without touching the
// edge index. Each node is visited at most once: O(V+E).
func (f *Finder) AnyShortest(from, to graph.NodeID, rels []string) *PathResult {
	if _, ok := f.store.Get(from); !ok {
		return nil
	}
	if _, ok := f.store.Get(to); !ok {
		return nil
	}
	if from == to {
		return zeroPath(from)
	}

	// BFS, remembering the edge that first reached each node.
	parent := make(map[graph.NodeID]graph.EdgeRef)
	visited := map[graph.NodeID]bool{from: true}
	queue := []graph.NodeID{from}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, edge := range f.store.Outgoing(cur, rels...) {
			next := edge.To
			if visited[next] {
				continue
			}
			visited[next] = true
			parent[next] = edge

			if next == to {
				return f.rebuild(from, to, parent)
			}
			queue = append(queue, next)
		}
	}

	return nil
}

// rebuild walks the BFS parent map back from to and assembles the path.
func (f *Finder) rebuild(from, to graph.NodeID, parent map[graph.NodeID]graph.EdgeRef) *PathResult {
	var edges []graph.EdgeRef
	for cur := to; cur != from; {
		edge := parent[cur]
		edges = append(edges, edge)
		cur = edge.From
	}

	// Reverse into forward order.
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	return newPath(from, edges)
}

// AllShortest returns every path of minimum length from from to to.
//
// Phase 1 is a BFS recording, for each node, its distance from from and all
// predecessor edges achieving that distance. Phase 2 backtracks from to
// through the predecessor map, enumerating every minimum-length path.
// Returns nil when to is unreached.
func (f *Finder) AllShortest(from, to graph.NodeID, rels []string) []PathResult {
	if _, ok := f.store.Get(from); !ok {
		return nil
	}
	if _, ok := f.store.Get(to); !ok {
		return nil
	}
	if from == to {
		return []PathResult{*zeroPath(from)}
	}

	dist := map[graph.NodeID]int{from: 0}
	preds := make(map[graph.NodeID][]graph.EdgeRef)
	queue := []graph.NodeID{from}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		d := dist[cur]

		// No path through to can be shorter than reaching to itself.
		if target, found := dist[to]; found && d >= target {
			continue
		}

		for _, edge := range f.store.Outgoing(cur, rels...) {
			next := edge.To
			nd, seen := dist[next]
			switch {
			case !seen:
				dist[next] = d + 1
				preds[next] = []graph.EdgeRef{edge}
				queue = append(queue, next)
			case nd == d+1:
				preds[next] = append(preds[next], edge)
			}
		}
	}

	if _, found := dist[to]; !found {
		return nil
	}

	var results []PathResult
	for _, edges := range f.backtrack(from, to, preds) {
		results = append(results, *newPath(from, edges))
	}
	return results
}

// backtrack enumerates every predecessor chain from to back to from,
// returning edge sequences in forward order.
func (f *Finder) backtrack(from, cur graph.NodeID, preds map[graph.NodeID][]graph.EdgeRef) [][]graph.EdgeRef {
	if cur == from {
		return [][]graph.EdgeRef{{}}
	}

	var chains [][]graph.EdgeRef
	for _, edge := range preds[cur] {
		for _, prefix := range f.backtrack(from, edge.From, preds) {
			chain := make([]graph.EdgeRef, 0, len(prefix)+1)
			chain = append(chain, prefix...)
			chain = append(chain, edge)
			chains = append(chains, chain)
		}
	}
	return chains
}

// BoundedPaths enumerates all simple paths (no repeated node within a single
// path) from from to to with at most maxDepth edges, stopping once
// maxResults paths are collected.
//
// Zero bounds fall back to the Finder's depth default and DefaultMaxResults.
// Cycle avoidance is per-path: a node visited on one branch may legally be
// revisited on a sibling branch.
func (f *Finder) BoundedPaths(from, to graph.NodeID, maxDepth, maxResults int, rels []string) []PathResult {
	if maxDepth <= 0 {
		maxDepth = f.maxDepth
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	if _, ok := f.store.Get(from); !ok {
		return nil
	}
	if _, ok := f.store.Get(to); !ok {
		return nil
	}

	state := &pathSearch{
		finder:     f,
		to:         to,
		maxDepth:   maxDepth,
		maxResults: maxResults,
		rels:       rels,
		visited:    map[graph.NodeID]bool{from: true},
	}
	state.dfs(from, []graph.NodeID{from}, nil)
	return state.results
}

// pathSearch carries the DFS accumulators for BoundedPaths. The visited set
// is mutated on descent and restored before return, so sibling branches see
// a clean slate.
type pathSearch struct {
	finder     *Finder
	to         graph.NodeID
	maxDepth   int
	maxResults int
	rels       []string
	visited    map[graph.NodeID]bool
	results    []PathResult
}

func (s *pathSearch) dfs(cur graph.NodeID, nodes []graph.NodeID, edges []graph.EdgeRef) {
	if len(s.results) >= s.maxResults {
		return
	}

	if cur == s.to {
		// A simple path ends the first time it touches the target.
		s.results = append(s.results, *newPathCopy(nodes, edges))
		return
	}

	if len(edges) >= s.maxDepth {
		return
	}

	for _, edge := range s.finder.store.Outgoing(cur, s.rels...) {
		next := edge.To
		if s.visited[next] {
			continue
		}
		s.visited[next] = true
		s.dfs(next, append(nodes, next), append(edges, edge))
		s.visited[next] = false

		if len(s.results) >= s.maxResults {
			return
		}
	}
}

// ReachableSet returns every node reachable from from within maxDepth hops,
// excluding from itself. Direction selects the adjacency index: Outgoing
// follows edges forward, Incoming walks them in reverse, Both unions the
// two. A zero maxDepth falls back to the Finder's default.
func (f *Finder) ReachableSet(from graph.NodeID, rels []string, dir graph.Direction, maxDepth int) map[graph.NodeID]struct{} {
	reached := make(map[graph.NodeID]struct{})
	if _, ok := f.store.Get(from); !ok {
		return reached
	}
	if maxDepth <= 0 {
		maxDepth = f.maxDepth
	}

	visited := map[graph.NodeID]bool{from: true}
	frontier := []graph.NodeID{from}

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []graph.NodeID
		for _, cur := range frontier {
			for _, nb := range f.neighbors(cur, rels, dir) {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				reached[nb] = struct{}{}
				next = append(next, nb)
			}
		}
		frontier = next
	}

	return reached
}

// neighbors resolves one hop in the requested direction.
func (f *Finder) neighbors(id graph.NodeID, rels []string, dir graph.Direction) []graph.NodeID {
	var out []graph.NodeID
	if dir == graph.Outgoing || dir == graph.Both || dir == "" {
		for _, edge := range f.store.Outgoing(id, rels...) {
			out = append(out, edge.To)
		}
	}
	if dir == graph.Incoming || dir == graph.Both {
		for _, edge := range f.store.Incoming(id, rels...) {
			out = append(out, edge.From)
		}
	}
	return out
}

func zeroPath(id graph.NodeID) *PathResult {
	return &PathResult{Nodes: []graph.NodeID{id}, Edges: []graph.EdgeRef{}, Length: 0}
}

// newPath assembles a PathResult from a start node and a forward edge
// sequence, deriving the node sequence and distinct relationship set.
func newPath(from graph.NodeID, edges []graph.EdgeRef) *PathResult {
	nodes := make([]graph.NodeID, 0, len(edges)+1)
	nodes = append(nodes, from)
	for _, e := range edges {
		nodes = append(nodes, e.To)
	}
	return &PathResult{
		Nodes:  nodes,
		Edges:  edges,
		Rels:   distinctRels(edges),
		Length: len(edges),
	}
}

// newPathCopy snapshots DFS working slices that will be mutated after return.
func newPathCopy(nodes []graph.NodeID, edges []graph.EdgeRef) *PathResult {
	ns := make([]graph.NodeID, len(nodes))
	copy(ns, nodes)
	es := make([]graph.EdgeRef, len(edges))
	copy(es, edges)
	return &PathResult{
		Nodes:  ns,
		Edges:  es,
		Rels:   distinctRels(es),
		Length: len(es),
	}
}

func distinctRels(edges []graph.EdgeRef) []string {
	if len(edges) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(edges))
	var rels []string
	for _, e := range edges {
		if !seen[e.Rel] {
			seen[e.Rel] = true
			rels = append(rels, e.Rel)
		}
	}
	return rels
}

// cycleKey normalizes a cycle to a rotation-invariant string: drop the
// closing repeat, rotate the smallest id to the front, join. Direction is
// deliberately preserved - a cycle and its reverse are distinct.
func cycleKey(nodes []graph.NodeID) string {
	ring := nodes[:len(nodes)-1]

	smallest := 0
	for i := 1; i < len(ring); i++ {
		if ring[i] < ring[smallest] {
			smallest = i
		}
	}

	parts := make([]string, 0, len(ring))
	for i := 0; i < len(ring); i++ {
		parts = append(parts, string(ring[(smallest+i)%len(ring)]))
	}
	return strings.Join(parts, "\x00")
}
