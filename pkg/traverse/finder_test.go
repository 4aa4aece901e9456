package traverse

import (
	"testing"

	"github.com/workgraphdb/workgraph/pkg/graph"
)

// buildGraph assembles a store from node ids and from->to edge pairs, all
// with the given relationship type.
func buildGraph(t *testing.T, rel string, nodes []string, edges [][2]string) *graph.MemoryStore {
	t.Helper()
	s := graph.NewMemoryStore()
	for _, id := range nodes {
		if err := s.AddNode(&graph.Node{ID: graph.NodeID(id), Type: "task"}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	for _, e := range edges {
		err := s.AddEdge(graph.EdgeRef{From: graph.NodeID(e[0]), To: graph.NodeID(e[1]), Rel: rel})
		if err != nil {
			t.Fatalf("AddEdge(%s->%s): %v", e[0], e[1], err)
		}
	}
	return s
}

func TestAnyShortest(t *testing.T) {
	// A -> B -> D and A -> C -> D, plus a long detour A -> X -> Y -> D.
	s := buildGraph(t, "depends_on",
		[]string{"A", "B", "C", "D", "X", "Y"},
		[][2]string{{"A", "B"}, {"B", "D"}, {"A", "C"}, {"C", "D"}, {"A", "X"}, {"X", "Y"}, {"Y", "D"}})
	f := NewFinder(s)

	t.Run("finds a minimum-length path", func(t *testing.T) {
		p := f.AnyShortest("A", "D", nil)
		if p == nil {
			t.Fatal("expected a path")
		}
		if p.Length != 2 {
			t.Errorf("Length = %d, want 2", p.Length)
		}
		if len(p.Nodes) != len(p.Edges)+1 {
			t.Errorf("len(Nodes)=%d, len(Edges)=%d; want nodes = edges+1", len(p.Nodes), len(p.Edges))
		}
		if p.Nodes[0] != "A" || p.Nodes[len(p.Nodes)-1] != "D" {
			t.Errorf("endpoints = %v, want A..D", p.Nodes)
		}
	})

	t.Run("self path has zero length", func(t *testing.T) {
		p := f.AnyShortest("A", "A", nil)
		if p == nil || p.Length != 0 || len(p.Nodes) != 1 {
			t.Fatalf("got %+v, want zero-length path [A]", p)
		}
	})

	t.Run("unknown endpoints yield nil", func(t *testing.T) {
		if p := f.AnyShortest("A", "nope", nil); p != nil {
			t.Errorf("unknown target: got %+v, want nil", p)
		}
		if p := f.AnyShortest("nope", "A", nil); p != nil {
			t.Errorf("unknown source: got %+v, want nil", p)
		}
	})

	t.Run("unreachable target yields nil", func(t *testing.T) {
		if p := f.AnyShortest("D", "A", nil); p != nil {
			t.Errorf("got %+v, want nil", p)
		}
	})

	t.Run("rel filter excludes paths", func(t *testing.T) {
		if p := f.AnyShortest("A", "D", []string{"blocked_by"}); p != nil {
			t.Errorf("got %+v, want nil for non-existent rel", p)
		}
	})
}

func TestAllShortest(t *testing.T) {
	// Diamond: two distinct length-2 paths A->D, plus a length-3 detour that
	// must not appear.
	s := buildGraph(t, "depends_on",
		[]string{"A", "B", "C", "D", "X", "Y"},
		[][2]string{{"A", "B"}, {"B", "D"}, {"A", "C"}, {"C", "D"}, {"A", "X"}, {"X", "Y"}, {"Y", "D"}})
	f := NewFinder(s)

	paths := f.AllShortest("A", "D", nil)
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}
	for _, p := range paths {
		if p.Length != 2 {
			t.Errorf("path %v has length %d, want 2", p.Nodes, p.Length)
		}
	}

	t.Run("agrees with AnyShortest length", func(t *testing.T) {
		any := f.AnyShortest("A", "D", nil)
		if any == nil || any.Length != paths[0].Length {
			t.Errorf("AnyShortest length %v != AllShortest length %d", any, paths[0].Length)
		}
	})

	t.Run("identical endpoints", func(t *testing.T) {
		paths := f.AllShortest("A", "A", nil)
		if len(paths) != 1 || paths[0].Length != 0 {
			t.Fatalf("got %+v, want single zero-length path", paths)
		}
	})

	t.Run("unreachable yields nil", func(t *testing.T) {
		if paths := f.AllShortest("D", "A", nil); paths != nil {
			t.Errorf("got %+v, want nil", paths)
		}
	})
}

func TestBoundedPaths(t *testing.T) {
	s := buildGraph(t, "depends_on",
		[]string{"A", "B", "C", "D", "X", "Y"},
		[][2]string{{"A", "B"}, {"B", "D"}, {"A", "C"}, {"C", "D"}, {"A", "X"}, {"X", "Y"}, {"Y", "D"}})
	f := NewFinder(s)

	t.Run("enumerates all simple paths", func(t *testing.T) {
		paths := f.BoundedPaths("A", "D", 0, 0, nil)
		if len(paths) != 3 {
			t.Fatalf("got %d paths, want 3", len(paths))
		}
		for _, p := range paths {
			seen := make(map[graph.NodeID]bool)
			for _, n := range p.Nodes {
				if seen[n] {
					t.Errorf("path %v repeats node %s", p.Nodes, n)
				}
				seen[n] = true
			}
		}
	})

	t.Run("depth bound excludes long paths", func(t *testing.T) {
		paths := f.BoundedPaths("A", "D", 2, 0, nil)
		if len(paths) != 2 {
			t.Fatalf("got %d paths, want 2 within depth 2", len(paths))
		}
	})

	t.Run("shortest is the minimum of bounded", func(t *testing.T) {
		paths := f.BoundedPaths("A", "D", 0, 0, nil)
		min := paths[0].Length
		for _, p := range paths {
			if p.Length < min {
				min = p.Length
			}
		}
		any := f.AnyShortest("A", "D", nil)
		if any == nil || any.Length != min {
			t.Errorf("AnyShortest = %v, want length %d", any, min)
		}
	})

	t.Run("result bound truncates", func(t *testing.T) {
		paths := f.BoundedPaths("A", "D", 0, 1, nil)
		if len(paths) != 1 {
			t.Fatalf("got %d paths, want 1", len(paths))
		}
	})

	t.Run("cycle does not hang enumeration", func(t *testing.T) {
		s := buildGraph(t, "depends_on",
			[]string{"A", "B", "C"},
			[][2]string{{"A", "B"}, {"B", "A"}, {"B", "C"}})
		paths := NewFinder(s).BoundedPaths("A", "C", 0, 0, nil)
		if len(paths) != 1 {
			t.Fatalf("got %d paths, want 1", len(paths))
		}
	})
}

func TestFindCycles(t *testing.T) {
	t.Run("ring yields one cycle per anchor", func(t *testing.T) {
		s := buildGraph(t, "blocked_by",
			[]string{"A", "B", "C"},
			[][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}})
		f := NewFinder(s)

		cycles := f.FindCycles("A", nil, 0)
		if len(cycles) != 1 {
			t.Fatalf("got %d cycles, want 1", len(cycles))
		}
		c := cycles[0]
		if c.Length != 3 {
			t.Errorf("Length = %d, want 3", c.Length)
		}
		if c.Nodes[0] != c.Nodes[len(c.Nodes)-1] {
			t.Errorf("cycle %v does not close", c.Nodes)
		}
		if c.Anchor != "A" {
			t.Errorf("Anchor = %s, want A", c.Anchor)
		}
	})

	t.Run("whole-graph search deduplicates rotations", func(t *testing.T) {
		s := buildGraph(t, "blocked_by",
			[]string{"A", "B", "C"},
			[][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}})
		cycles := NewFinder(s).FindCycles("", nil, 0)
		if len(cycles) != 1 {
			t.Fatalf("got %d cycles, want 1 after rotation dedup", len(cycles))
		}
	})

	t.Run("length bound excludes long cycles", func(t *testing.T) {
		s := buildGraph(t, "blocked_by",
			[]string{"A", "B", "C", "D"},
			[][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}, {"D", "A"}})
		if cycles := NewFinder(s).FindCycles("", nil, 3); len(cycles) != 0 {
			t.Fatalf("got %d cycles, want 0 with maxLen 3", len(cycles))
		}
	})

	t.Run("self loop is a cycle of length 1", func(t *testing.T) {
		s := buildGraph(t, "blocked_by", []string{"A"}, [][2]string{{"A", "A"}})
		cycles := NewFinder(s).FindCycles("A", nil, 0)
		if len(cycles) != 1 || cycles[0].Length != 1 {
			t.Fatalf("got %+v, want one length-1 cycle", cycles)
		}
	})

	t.Run("acyclic graph yields none", func(t *testing.T) {
		s := buildGraph(t, "blocked_by",
			[]string{"A", "B"},
			[][2]string{{"A", "B"}})
		if cycles := NewFinder(s).FindCycles("", nil, 0); len(cycles) != 0 {
			t.Fatalf("got %+v, want none", cycles)
		}
	})

	t.Run("unknown anchor yields none", func(t *testing.T) {
		s := buildGraph(t, "blocked_by", []string{"A"}, nil)
		if cycles := NewFinder(s).FindCycles("nope", nil, 0); cycles != nil {
			t.Fatalf("got %+v, want nil", cycles)
		}
	})

	t.Run("opposite directions stay distinct", func(t *testing.T) {
		// A <-> B: two 2-cycles that are reverses of each other collapse to
		// one ring set but keep direction, so dedup leaves a single entry
		// only when rotations coincide.
		s := buildGraph(t, "blocked_by",
			[]string{"A", "B", "C"},
			[][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}, {"A", "C"}, {"C", "B"}, {"B", "A"}})
		cycles := NewFinder(s).FindCycles("", nil, 0)
		// Forward ring, reverse ring, and three 2-cycles.
		if len(cycles) != 5 {
			t.Fatalf("got %d cycles, want 5", len(cycles))
		}
	})
}

func TestReachableSet(t *testing.T) {
	s := buildGraph(t, "depends_on",
		[]string{"A", "B", "C", "D", "Z"},
		[][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}})
	f := NewFinder(s)

	t.Run("excludes the origin", func(t *testing.T) {
		reached := f.ReachableSet("A", nil, graph.Outgoing, 0)
		if _, ok := reached["A"]; ok {
			t.Error("origin must not appear in its own reachable set")
		}
		if len(reached) != 3 {
			t.Errorf("got %d nodes, want 3", len(reached))
		}
	})

	t.Run("monotonic in depth", func(t *testing.T) {
		prev := -1
		for depth := 1; depth <= 4; depth++ {
			n := len(f.ReachableSet("A", nil, graph.Outgoing, depth))
			if n < prev {
				t.Fatalf("reachable set shrank from %d to %d at depth %d", prev, n, depth)
			}
			prev = n
		}
	})

	t.Run("incoming walks edges in reverse", func(t *testing.T) {
		reached := f.ReachableSet("D", nil, graph.Incoming, 0)
		if len(reached) != 3 {
			t.Errorf("got %d nodes, want 3", len(reached))
		}
		if _, ok := reached["A"]; !ok {
			t.Error("A should reach D, so D should reverse-reach A")
		}
	})

	t.Run("origin excluded even inside a cycle", func(t *testing.T) {
		s := buildGraph(t, "depends_on",
			[]string{"A", "B"},
			[][2]string{{"A", "B"}, {"B", "A"}})
		reached := NewFinder(s).ReachableSet("A", nil, graph.Outgoing, 0)
		if _, ok := reached["A"]; ok {
			t.Error("origin must be excluded even when a cycle returns to it")
		}
	})

	t.Run("unknown origin yields empty", func(t *testing.T) {
		if reached := f.ReachableSet("nope", nil, graph.Outgoing, 0); len(reached) != 0 {
			t.Errorf("got %v, want empty", reached)
		}
	})
}
