// In-memory store implementation.
//
// MemoryStore is the reference Store: everything lives in maps guarded by a
// RWMutex, with per-node adjacency lists plus per-relationship buckets so
// filtered edge lookups stay O(1) amortized.

package graph

import (
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a thread-safe in-memory graph store.
//
// Use Cases:
//   - Unit testing (no disk I/O, fast cleanup)
//   - Loading JSON exports into memory for analysis
//   - Backing snapshot for the persistent BadgerStore
//
// Performance Characteristics:
//   - Node lookup by id: O(1)
//   - Outgoing/incoming edges: O(degree), O(filtered degree) with filters
//   - Memory: nodes and edges held once, indexes hold references
//
// Thread Safety:
//
//	All public methods are safe for concurrent use. Queries that span
//	multiple calls assume the snapshot is not mutated while they run.
type MemoryStore struct {
	mu    sync.RWMutex
	nodes map[NodeID]*Node
	edges []EdgeRef

	outgoing      map[NodeID][]EdgeRef
	incoming      map[NodeID][]EdgeRef
	outgoingByRel map[NodeID]map[string][]EdgeRef
	incomingByRel map[NodeID]map[string][]EdgeRef

	closed bool
}

// NewMemoryStore creates an empty in-memory store ready for use.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:         make(map[NodeID]*Node),
		outgoing:      make(map[NodeID][]EdgeRef),
		incoming:      make(map[NodeID][]EdgeRef),
		outgoingByRel: make(map[NodeID]map[string][]EdgeRef),
		incomingByRel: make(map[NodeID]map[string][]EdgeRef),
	}
}

// EnsureLoaded is a no-op for the in-memory store; the snapshot is always
// live. Present to satisfy the Store contract.
func (s *MemoryStore) EnsureLoaded() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// AddNode inserts a node. The id must be non-empty and unique.
func (s *MemoryStore) AddNode(node *Node) error {
	if node == nil {
		return ErrInvalidID
	}
	if node.ID == "" {
		return ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if _, exists := s.nodes[node.ID]; exists {
		return ErrAlreadyExists
	}

	s.nodes[node.ID] = node.Clone()
	return nil
}

// AddEdge inserts a directed edge. Both endpoints must already exist.
// An empty edge ID is auto-assigned.
func (s *MemoryStore) AddEdge(edge EdgeRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if _, ok := s.nodes[edge.From]; !ok {
		return ErrInvalidEdge
	}
	if _, ok := s.nodes[edge.To]; !ok {
		return ErrInvalidEdge
	}
	if edge.ID == "" {
		edge.ID = uuid.NewString()
	}

	s.addEdgeLocked(edge)
	return nil
}

func (s *MemoryStore) addEdgeLocked(edge EdgeRef) {
	s.edges = append(s.edges, edge)

	s.outgoing[edge.From] = append(s.outgoing[edge.From], edge)
	s.incoming[edge.To] = append(s.incoming[edge.To], edge)

	if s.outgoingByRel[edge.From] == nil {
		s.outgoingByRel[edge.From] = make(map[string][]EdgeRef)
	}
	s.outgoingByRel[edge.From][edge.Rel] = append(s.outgoingByRel[edge.From][edge.Rel], edge)

	if s.incomingByRel[edge.To] == nil {
		s.incomingByRel[edge.To] = make(map[string][]EdgeRef)
	}
	s.incomingByRel[edge.To][edge.Rel] = append(s.incomingByRel[edge.To][edge.Rel], edge)
}

// Get returns the node with the given id.
func (s *MemoryStore) Get(id NodeID) (*Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[id]
	return node, ok
}

// All returns every node. Order is unspecified.
func (s *MemoryStore) All() []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		nodes = append(nodes, n)
	}
	return nodes
}

// Outgoing returns the edges leaving id, optionally filtered by relationship.
func (s *MemoryStore) Outgoing(id NodeID, rels ...string) []EdgeRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filteredEdges(s.outgoing, s.outgoingByRel, id, rels)
}

// Incoming returns the edges arriving at id, optionally filtered by
// relationship.
func (s *MemoryStore) Incoming(id NodeID, rels ...string) []EdgeRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filteredEdges(s.incoming, s.incomingByRel, id, rels)
}

func filteredEdges(all map[NodeID][]EdgeRef, byRel map[NodeID]map[string][]EdgeRef, id NodeID, rels []string) []EdgeRef {
	if len(rels) == 0 {
		src := all[id]
		out := make([]EdgeRef, len(src))
		copy(out, src)
		return out
	}

	buckets := byRel[id]
	if buckets == nil {
		return nil
	}
	var out []EdgeRef
	for _, rel := range rels {
		out = append(out, buckets[rel]...)
	}
	return out
}

// Edges returns every edge. Order is unspecified.
func (s *MemoryStore) Edges() []EdgeRef {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]EdgeRef, len(s.edges))
	copy(out, s.edges)
	return out
}

// NodeCount returns the number of nodes in the snapshot.
func (s *MemoryStore) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// EdgeCount returns the number of edges in the snapshot.
func (s *MemoryStore) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

// Close marks the store closed; subsequent writes fail with ErrStoreClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
