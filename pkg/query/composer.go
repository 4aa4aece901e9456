// Staged pipeline execution.
//
// Builder calls record stages; Execute (and the other terminals) replays
// them against the store. Consecutive filter calls coalesce into a single
// pending filter that is flushed before any traversal stage, so
// Where().Where() costs one scan, not two.

package query

import (
	"sort"

	"github.com/workgraphdb/workgraph/pkg/graph"
	"github.com/workgraphdb/workgraph/pkg/traverse"
)

type stageKind int

const (
	stageFilter stageKind = iota
	stageTraverse
	stageTraverseRecursive
	stageReachableFrom
)

// stage is one recorded pipeline step.
type stage struct {
	kind   stageKind
	filter *Filter
	rel    string
	depth  int
	anchor graph.NodeID
}

// Builder accumulates stages lazily. The zero store scan happens only when a
// terminal runs, so building a query is free.
//
// Builders are single-use and not safe for concurrent mutation; run a
// terminal, then build a new one.
type Builder struct {
	store   graph.Store
	finder  *traverse.Finder
	stages  []stage
	pending *Filter
}

// New starts a query over the given store.
func New(store graph.Store) *Builder {
	return &Builder{store: store, finder: traverse.NewFinder(store)}
}

// NewWithFinder starts a query reusing a caller-configured finder.
func NewWithFinder(store graph.Store, finder *traverse.Finder) *Builder {
	return &Builder{store: store, finder: finder}
}

// Where narrows the working set to nodes whose attribute equals value.
func (b *Builder) Where(field string, value any) *Builder {
	b.ensurePending().Where(field, value)
	return b
}

// OrWhere widens the current filter with an OR equality condition.
func (b *Builder) OrWhere(field string, value any) *Builder {
	b.ensurePending().OrWhere(field, value)
	return b
}

// WhereNotNull narrows the working set to nodes carrying the attribute.
func (b *Builder) WhereNotNull(field string) *Builder {
	b.ensurePending().WhereNotNull(field)
	return b
}

// Traverse replaces the working set with the one-hop targets of the given
// relationship, unioned over every member.
func (b *Builder) Traverse(rel string) *Builder {
	b.flush()
	b.stages = append(b.stages, stage{kind: stageTraverse, rel: rel})
	return b
}

// TraverseRecursive replaces the working set with every node reachable over
// the relationship within maxDepth hops (zero means the default bound),
// unioned over every member. Members themselves drop out unless re-reached.
func (b *Builder) TraverseRecursive(rel string, maxDepth int) *Builder {
	b.flush()
	b.stages = append(b.stages, stage{kind: stageTraverseRecursive, rel: rel, depth: maxDepth})
	return b
}

// ReachableFrom keeps only working-set members reachable from anchor over
// the relationship (any relationship when rel is empty).
func (b *Builder) ReachableFrom(anchor graph.NodeID, rel string) *Builder {
	b.flush()
	b.stages = append(b.stages, stage{kind: stageReachableFrom, rel: rel, anchor: anchor})
	return b
}

// BlockedByChain follows blocked_by edges transitively: everything directly
// or indirectly blocking the working set.
func (b *Builder) BlockedByChain() *Builder {
	return b.TraverseRecursive("blocked_by", 0)
}

// DependencyChain follows depends_on edges transitively.
func (b *Builder) DependencyChain() *Builder {
	return b.TraverseRecursive("depends_on", 0)
}

// Execute runs the staged pipeline and returns the working set ordered by
// node id. Empty intermediate sets short-circuit to an empty result.
func (b *Builder) Execute() []*graph.Node {
	ids := b.run()

	out := make([]*graph.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := b.store.Get(id); ok {
			out = append(out, n)
		}
	}
	return out
}

// IDs runs the pipeline and returns the working set's ids, sorted.
func (b *Builder) IDs() []graph.NodeID {
	return b.run()
}

// Count runs the pipeline and returns the working set's size.
func (b *Builder) Count() int {
	return len(b.run())
}

// First runs the pipeline and returns the smallest-id member, or nil when
// the result is empty.
func (b *Builder) First() *graph.Node {
	ids := b.run()
	if len(ids) == 0 {
		return nil
	}
	n, _ := b.store.Get(ids[0])
	return n
}

func (b *Builder) ensurePending() *Filter {
	if b.pending == nil {
		b.pending = NewFilter()
	}
	return b.pending
}

// flush converts the pending filter into a recorded stage.
func (b *Builder) flush() {
	if b.pending == nil {
		return
	}
	b.stages = append(b.stages, stage{kind: stageFilter, filter: b.pending})
	b.pending = nil
}

// run replays the recorded stages and returns the final working set, sorted
// by id for deterministic output.
func (b *Builder) run() []graph.NodeID {
	b.flush()

	// Start from the full node set.
	working := make(map[graph.NodeID]struct{})
	for _, n := range b.store.All() {
		working[n.ID] = struct{}{}
	}

	for _, s := range b.stages {
		if len(working) == 0 {
			break
		}
		switch s.kind {
		case stageFilter:
			working = b.applyFilter(working, s.filter)
		case stageTraverse:
			working = b.applyTraverse(working, s.rel)
		case stageTraverseRecursive:
			working = b.applyRecursive(working, s.rel, s.depth)
		case stageReachableFrom:
			working = b.applyReachableFrom(working, s.rel, s.anchor)
		}
	}

	ids := make([]graph.NodeID, 0, len(working))
	for id := range working {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (b *Builder) applyFilter(working map[graph.NodeID]struct{}, f *Filter) map[graph.NodeID]struct{} {
	next := make(map[graph.NodeID]struct{})
	for id := range working {
		n, ok := b.store.Get(id)
		if ok && f.Matches(n) {
			next[id] = struct{}{}
		}
	}
	return next
}

func (b *Builder) applyTraverse(working map[graph.NodeID]struct{}, rel string) map[graph.NodeID]struct{} {
	next := make(map[graph.NodeID]struct{})
	for id := range working {
		for _, edge := range b.store.Outgoing(id, relFilter(rel)...) {
			next[edge.To] = struct{}{}
		}
	}
	return next
}

func (b *Builder) applyRecursive(working map[graph.NodeID]struct{}, rel string, depth int) map[graph.NodeID]struct{} {
	next := make(map[graph.NodeID]struct{})
	for id := range working {
		for target := range b.finder.ReachableSet(id, relFilter(rel), graph.Outgoing, depth) {
			next[target] = struct{}{}
		}
	}
	return next
}

func (b *Builder) applyReachableFrom(working map[graph.NodeID]struct{}, rel string, anchor graph.NodeID) map[graph.NodeID]struct{} {
	reached := b.finder.ReachableSet(anchor, relFilter(rel), graph.Outgoing, 0)

	next := make(map[graph.NodeID]struct{})
	for id := range working {
		if _, ok := reached[id]; ok {
			next[id] = struct{}{}
		}
	}
	return next
}

func relFilter(rel string) []string {
	if rel == "" {
		return nil
	}
	return []string{rel}
}
