// JSON export/import for graph snapshots.
//
// The export format is the obvious one: a flat node list plus a flat edge
// list. It is the interchange format the CLI uses to seed stores and what
// hosts typically serialize query results against.

package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// GraphExport is the JSON interchange representation of a full graph.
type GraphExport struct {
	Nodes []*Node   `json:"nodes"`
	Edges []EdgeRef `json:"edges"`
}

// Export captures the store's current snapshot.
func Export(s Store) *GraphExport {
	return &GraphExport{
		Nodes: s.All(),
		Edges: s.Edges(),
	}
}

// Import bulk-loads an export into a memory store. Nodes are created before
// edges so edge endpoint validation holds.
func Import(s *MemoryStore, export *GraphExport) error {
	for _, n := range export.Nodes {
		if err := s.AddNode(n); err != nil {
			return fmt.Errorf("import node %s: %w", n.ID, err)
		}
	}
	for _, e := range export.Edges {
		if err := s.AddEdge(e); err != nil {
			return fmt.Errorf("import edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return nil
}

// LoadExport reads a JSON export file into a fresh memory store.
func LoadExport(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	var export GraphExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}

	store := NewMemoryStore()
	if err := Import(store, &export); err != nil {
		return nil, err
	}
	return store, nil
}

// SaveExport writes the store's snapshot to a JSON file.
func SaveExport(s Store, path string) error {
	data, err := json.MarshalIndent(Export(s), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
