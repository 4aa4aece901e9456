// Persistent store implementation backed by BadgerDB.
//
// BadgerStore keeps the durable copy of the graph in Badger and serves every
// query from an in-memory MemoryStore snapshot built by EnsureLoaded. Writes
// go to Badger first, then mirror into the snapshot when it is live.

package graph

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Key prefixes for BadgerDB storage organization.
// Single-byte prefixes keep keys compact.
const (
	prefixNode = byte(0x01) // 0x01 + nodeID -> JSON(Node)
	prefixEdge = byte(0x02) // 0x02 + edgeID -> JSON(EdgeRef)
)

// BadgerStore provides persistent graph storage using BadgerDB.
//
// Queries never touch Badger directly: EnsureLoaded scans the node and edge
// keyspaces once, builds a MemoryStore snapshot with full adjacency indexes,
// and all Store reads delegate to that snapshot. Subsequent EnsureLoaded
// calls are no-ops.
//
// Example:
//
//	store, err := graph.NewBadgerStore("./data/workgraph")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	if err := store.EnsureLoaded(); err != nil {
//		log.Fatal(err)
//	}
//	node, ok := store.Get("F1")
type BadgerStore struct {
	db *badger.DB

	mu     sync.Mutex
	snap   *MemoryStore
	loaded bool
	closed bool
}

// BadgerOptions configures the BadgerDB store.
type BadgerOptions struct {
	// DataDir is the directory for data files. Required unless InMemory.
	DataDir string

	// InMemory runs BadgerDB without persistence. Useful for tests that
	// want persistent-store semantics without disk I/O.
	InMemory bool

	// SyncWrites forces fsync after each write. Slower but more durable.
	SyncWrites bool
}

// NewBadgerStore opens (or creates) a persistent store in dataDir.
func NewBadgerStore(dataDir string) (*BadgerStore, error) {
	return NewBadgerStoreWithOptions(BadgerOptions{DataDir: dataDir})
}

// NewBadgerStoreInMemory creates a Badger-backed store that keeps everything
// in RAM. Data is lost on Close.
func NewBadgerStoreInMemory() (*BadgerStore, error) {
	return NewBadgerStoreWithOptions(BadgerOptions{InMemory: true})
}

// NewBadgerStoreWithOptions opens a store with custom configuration.
func NewBadgerStoreWithOptions(opts BadgerOptions) (*BadgerStore, error) {
	badgerOpts := badger.DefaultOptions(opts.DataDir)

	if opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	if opts.SyncWrites {
		badgerOpts = badgerOpts.WithSyncWrites(true)
	}

	// Modest buffer sizes; work-item graphs are small relative to Badger's
	// defaults, which assume multi-GB value logs.
	badgerOpts = badgerOpts.
		WithLogger(nil).
		WithMemTableSize(16 << 20).
		WithValueLogFileSize(64 << 20).
		WithNumMemtables(2).
		WithBlockCacheSize(32 << 20)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

// EnsureLoaded builds the in-memory snapshot from the durable keyspace.
// Idempotent: the scan runs once per process; later calls return nil.
func (s *BadgerStore) EnsureLoaded() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if s.loaded {
		return nil
	}

	snap := NewMemoryStore()

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true

		// Nodes first so edge endpoint validation holds.
		it := txn.NewIterator(opts)
		defer it.Close()

		nodePrefix := []byte{prefixNode}
		for it.Seek(nodePrefix); it.ValidForPrefix(nodePrefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var node Node
				if err := json.Unmarshal(val, &node); err != nil {
					return fmt.Errorf("decode node %q: %w", it.Item().Key(), err)
				}
				return snap.AddNode(&node)
			})
			if err != nil {
				return err
			}
		}

		edgePrefix := []byte{prefixEdge}
		for it.Seek(edgePrefix); it.ValidForPrefix(edgePrefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var edge EdgeRef
				if err := json.Unmarshal(val, &edge); err != nil {
					return fmt.Errorf("decode edge %q: %w", it.Item().Key(), err)
				}
				return snap.AddEdge(edge)
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	s.snap = snap
	s.loaded = true
	return nil
}

// AddNode persists a node and mirrors it into the live snapshot.
func (s *BadgerStore) AddNode(node *Node) error {
	if node == nil || node.ID == "" {
		return ErrInvalidID
	}

	data, err := json.Marshal(node)
	if err != nil {
		return fmt.Errorf("encode node %s: %w", node.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	if s.loaded {
		if _, exists := s.snap.Get(node.ID); exists {
			return ErrAlreadyExists
		}
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(nodeKey(node.ID), data)
	})
	if err != nil {
		return fmt.Errorf("persist node %s: %w", node.ID, err)
	}

	if s.loaded {
		return s.snap.AddNode(node)
	}
	return nil
}

// AddEdge persists an edge and mirrors it into the live snapshot.
// An empty edge ID is auto-assigned before persisting.
func (s *BadgerStore) AddEdge(edge EdgeRef) error {
	if edge.ID == "" {
		edge.ID = uuid.NewString()
	}

	data, err := json.Marshal(edge)
	if err != nil {
		return fmt.Errorf("encode edge %s: %w", edge.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	if s.loaded {
		if _, ok := s.snap.Get(edge.From); !ok {
			return ErrInvalidEdge
		}
		if _, ok := s.snap.Get(edge.To); !ok {
			return ErrInvalidEdge
		}
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(edgeKey(edge.ID), data)
	})
	if err != nil {
		return fmt.Errorf("persist edge %s: %w", edge.ID, err)
	}

	if s.loaded {
		return s.snap.AddEdge(edge)
	}
	return nil
}

// Get returns a node from the loaded snapshot.
func (s *BadgerStore) Get(id NodeID) (*Node, bool) {
	if snap := s.snapshot(); snap != nil {
		return snap.Get(id)
	}
	return nil, false
}

// All returns every node in the loaded snapshot.
func (s *BadgerStore) All() []*Node {
	if snap := s.snapshot(); snap != nil {
		return snap.All()
	}
	return nil
}

// Outgoing returns the snapshot's outgoing edge index for id.
func (s *BadgerStore) Outgoing(id NodeID, rels ...string) []EdgeRef {
	if snap := s.snapshot(); snap != nil {
		return snap.Outgoing(id, rels...)
	}
	return nil
}

// Incoming returns the snapshot's incoming edge index for id.
func (s *BadgerStore) Incoming(id NodeID, rels ...string) []EdgeRef {
	if snap := s.snapshot(); snap != nil {
		return snap.Incoming(id, rels...)
	}
	return nil
}

// Edges returns every edge in the loaded snapshot.
func (s *BadgerStore) Edges() []EdgeRef {
	if snap := s.snapshot(); snap != nil {
		return snap.Edges()
	}
	return nil
}

// NodeCount returns the snapshot node count.
func (s *BadgerStore) NodeCount() int {
	if snap := s.snapshot(); snap != nil {
		return snap.NodeCount()
	}
	return 0
}

// EdgeCount returns the snapshot edge count.
func (s *BadgerStore) EdgeCount() int {
	if snap := s.snapshot(); snap != nil {
		return snap.EdgeCount()
	}
	return 0
}

// Close closes the underlying BadgerDB.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *BadgerStore) snapshot() *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil
	}
	return s.snap
}

func nodeKey(id NodeID) []byte {
	return append([]byte{prefixNode}, []byte(id)...)
}

func edgeKey(id string) []byte {
	return append([]byte{prefixEdge}, []byte(id)...)
}
