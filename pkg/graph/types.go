// Package graph provides the work-item graph data model and storage engines
// for WorkGraph.
//
// The graph is a directed, typed, attributed property graph. Nodes represent
// work items (features, tasks, bugs) with a small set of well-known scalar
// attributes plus an open property map. Edges are directed, labeled
// relationships ("blocked_by", "depends_on", ...) with an open string
// vocabulary - unknown relationship types are never rejected.
//
// Design Principles:
//   - Schema-less relationship and type vocabulary (plain strings)
//   - O(1) amortized outgoing/incoming edge lookup via adjacency indexes
//   - Query layers operate on a fully-loaded in-memory snapshot
//   - Thread-safe store implementations
//
// Example Usage:
//
//	store := graph.NewMemoryStore()
//
//	store.AddNode(&graph.Node{
//		ID:     "F1",
//		Type:   "feature",
//		Status: "blocked",
//		Title:  "Checkout flow",
//	})
//	store.AddNode(&graph.Node{ID: "F2", Type: "feature"})
//
//	store.AddEdge(graph.EdgeRef{From: "F1", To: "F2", Rel: "blocked_by"})
//
//	// O(1) edge index lookup, optionally filtered by relationship
//	for _, e := range store.Outgoing("F1", "blocked_by") {
//		fmt.Printf("%s -%s-> %s\n", e.From, e.Rel, e.To)
//	}
package graph

import "errors"

// Common errors
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidID     = errors.New("invalid id")
	ErrInvalidEdge   = errors.New("invalid edge: source or target node not found")
	ErrStoreClosed   = errors.New("store closed")
)

// NodeID is a strongly-typed unique identifier for graph nodes.
//
// Using a custom type keeps node ids from being confused with relationship
// names or free-form property strings in traversal code.
type NodeID string

// Node represents a single work item in the graph.
//
// Well-known scalar attributes (Type, Status, Priority, Title) are promoted
// to struct fields; everything else lives in the open Properties map, which
// supports nested values addressed by dotted paths (see Attr).
//
// Example:
//
//	node := &graph.Node{
//		ID:       "T-42",
//		Type:     "task",
//		Status:   "in_progress",
//		Priority: "high",
//		Title:    "Wire up payment retries",
//		Properties: map[string]any{
//			"effort": 3,
//			"owner":  map[string]any{"team": "payments"},
//		},
//	}
//
// Thread Safety:
//
//	Node structs are NOT thread-safe. The store handles concurrency.
type Node struct {
	ID       NodeID `json:"id"`
	Type     string `json:"type"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
	Title    string `json:"title,omitempty"`

	Properties map[string]any `json:"properties,omitempty"`
}

// Clone returns a copy of the node with a shallowly-copied property map.
// Nested property values are shared; traversal code never mutates them.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Properties != nil {
		c.Properties = make(map[string]any, len(n.Properties))
		for k, v := range n.Properties {
			c.Properties[k] = v
		}
	}
	return &c
}

// EdgeRef is a directed, labeled connection between two nodes.
//
// Edges are immutable once created. An edge is owned by its source node but
// indexed for both forward (outgoing) and reverse (incoming) lookup. The
// relationship type is an open string - no enforced vocabulary.
type EdgeRef struct {
	ID     string  `json:"id,omitempty"`
	From   NodeID  `json:"from"`
	To     NodeID  `json:"to"`
	Rel    string  `json:"rel"`
	Weight float64 `json:"weight,omitempty"`
}

// Direction selects which adjacency index a traversal follows.
type Direction string

const (
	// Outgoing follows edges from source to target.
	Outgoing Direction = "outgoing"
	// Incoming follows edges from target back to source.
	Incoming Direction = "incoming"
	// Both follows edges in either direction.
	Both Direction = "both"
)

// Store is the read surface every query component runs against.
//
// Implementations guarantee that after EnsureLoaded returns, Get/All and the
// edge index lookups are served from a fully-populated in-memory snapshot and
// never block on I/O. EnsureLoaded is idempotent.
//
// Outgoing and Incoming are O(1) amortized: with no relationship filter they
// return the node's full adjacency list; with filters they concatenate the
// per-relationship buckets.
//
// Concurrent readers are safe as long as the snapshot is not mutated during
// a query; the engine assumes an externally-enforced read discipline at this
// boundary.
type Store interface {
	// EnsureLoaded populates the in-memory snapshot. Idempotent; must be
	// called before any query touches node data.
	EnsureLoaded() error

	// Get returns the node with the given id, or false if unknown.
	Get(id NodeID) (*Node, bool)

	// All returns every node in the snapshot. Order is unspecified.
	All() []*Node

	// Outgoing returns edge references leaving the node, optionally filtered
	// to the given relationship types.
	Outgoing(id NodeID, rels ...string) []EdgeRef

	// Incoming returns edge references arriving at the node, optionally
	// filtered to the given relationship types.
	Incoming(id NodeID, rels ...string) []EdgeRef

	// Edges returns every edge in the snapshot. Order is unspecified.
	Edges() []EdgeRef

	// NodeCount and EdgeCount report snapshot sizes.
	NodeCount() int
	EdgeCount() int
}
