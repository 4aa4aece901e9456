package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	require.NoError(t, s.AddNode(&Node{ID: "F1", Type: "feature", Status: "blocked", Priority: "high", Title: "Search"}))
	require.NoError(t, s.AddNode(&Node{ID: "F2", Type: "feature", Status: "active", Priority: "low", Title: "Auth"}))
	require.NoError(t, s.AddNode(&Node{ID: "T1", Type: "task", Status: "done"}))
	require.NoError(t, s.AddEdge(EdgeRef{ID: "e1", From: "F1", To: "F2", Rel: "blocked_by"}))
	require.NoError(t, s.AddEdge(EdgeRef{ID: "e2", From: "F1", To: "T1", Rel: "depends_on"}))
	return s
}

func TestMemoryStoreAddNode(t *testing.T) {
	s := NewMemoryStore()

	err := s.AddNode(&Node{ID: "F1", Type: "feature"})
	require.NoError(t, err)

	t.Run("duplicate id rejected", func(t *testing.T) {
		err := s.AddNode(&Node{ID: "F1", Type: "task"})
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("empty id rejected", func(t *testing.T) {
		err := s.AddNode(&Node{ID: ""})
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("stored node is a copy", func(t *testing.T) {
		n := &Node{ID: "F9", Properties: map[string]any{"effort": 3}}
		require.NoError(t, s.AddNode(n))
		n.Properties["effort"] = 99

		got, ok := s.Get("F9")
		require.True(t, ok)
		assert.Equal(t, 3, got.Properties["effort"])
	})
}

func TestMemoryStoreAddEdge(t *testing.T) {
	s := newTestStore(t)

	t.Run("unknown endpoint rejected", func(t *testing.T) {
		err := s.AddEdge(EdgeRef{From: "F1", To: "missing", Rel: "blocked_by"})
		assert.ErrorIs(t, err, ErrInvalidEdge)

		err = s.AddEdge(EdgeRef{From: "missing", To: "F1", Rel: "blocked_by"})
		assert.ErrorIs(t, err, ErrInvalidEdge)
	})

	t.Run("empty id auto-assigned", func(t *testing.T) {
		require.NoError(t, s.AddEdge(EdgeRef{From: "F2", To: "T1", Rel: "depends_on"}))
		for _, e := range s.Outgoing("F2") {
			assert.NotEmpty(t, e.ID)
		}
	})

	t.Run("self loop allowed", func(t *testing.T) {
		assert.NoError(t, s.AddEdge(EdgeRef{ID: "loop", From: "T1", To: "T1", Rel: "relates_to"}))
	})
}

func TestMemoryStoreIndexes(t *testing.T) {
	s := newTestStore(t)

	t.Run("outgoing unfiltered", func(t *testing.T) {
		assert.Len(t, s.Outgoing("F1"), 2)
	})

	t.Run("outgoing filtered by rel", func(t *testing.T) {
		edges := s.Outgoing("F1", "blocked_by")
		require.Len(t, edges, 1)
		assert.Equal(t, NodeID("F2"), edges[0].To)
	})

	t.Run("incoming", func(t *testing.T) {
		edges := s.Incoming("F2")
		require.Len(t, edges, 1)
		assert.Equal(t, NodeID("F1"), edges[0].From)
	})

	t.Run("unknown node yields empty not error", func(t *testing.T) {
		assert.Empty(t, s.Outgoing("nope"))
		assert.Empty(t, s.Incoming("nope"))
	})

	t.Run("counts", func(t *testing.T) {
		assert.Equal(t, 3, s.NodeCount())
		assert.Equal(t, 2, s.EdgeCount())
	})
}

func TestMemoryStoreClosed(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.AddNode(&Node{ID: "X"}), ErrStoreClosed)
	assert.ErrorIs(t, s.AddEdge(EdgeRef{From: "F1", To: "F2"}), ErrStoreClosed)
}

func TestAttr(t *testing.T) {
	n := &Node{
		ID:       "F1",
		Type:     "feature",
		Status:   "blocked",
		Priority: "high",
		Title:    "Search",
		Properties: map[string]any{
			"effort": 5,
			"owner":  map[string]any{"team": "core"},
		},
	}

	tests := []struct {
		path string
		want any
		ok   bool
	}{
		{"id", "F1", true},
		{"type", "feature", true},
		{"status", "blocked", true},
		{"effort", 5, true},
		{"properties.effort", 5, true},
		{"owner.team", "core", true},
		{"missing", nil, false},
		{"owner.missing", nil, false},
		{"effort.too.deep", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := Attr(n, tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}

	t.Run("loose numeric equality", func(t *testing.T) {
		assert.True(t, AttrEquals(n, "effort", 5))
		assert.True(t, AttrEquals(n, "effort", 5.0))
		assert.True(t, AttrEquals(n, "effort", int64(5)))
		assert.False(t, AttrEquals(n, "effort", 6))
	})
}

func TestExportRoundTrip(t *testing.T) {
	s := newTestStore(t)

	export := Export(s)
	assert.Len(t, export.Nodes, 3)
	assert.Len(t, export.Edges, 2)

	restored := NewMemoryStore()
	require.NoError(t, Import(restored, export))

	assert.Equal(t, s.NodeCount(), restored.NodeCount())
	assert.Equal(t, s.EdgeCount(), restored.EdgeCount())

	n, ok := restored.Get("F1")
	require.True(t, ok)
	assert.Equal(t, "blocked", n.Status)
}
