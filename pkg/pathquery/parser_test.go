package pathquery

import (
	"errors"
	"testing"

	"github.com/workgraphdb/workgraph/pkg/graph"
	"github.com/workgraphdb/workgraph/pkg/pattern"
)

func TestParseSingleNode(t *testing.T) {
	expr, err := Parse("(Feature)")
	if err != nil {
		t.Fatal(err)
	}
	if len(expr.Nodes) != 1 || len(expr.Edges) != 0 {
		t.Fatalf("got %d nodes, %d edges; want 1, 0", len(expr.Nodes), len(expr.Edges))
	}
	if expr.Nodes[0].Type != "Feature" {
		t.Errorf("Type = %q, want Feature", expr.Nodes[0].Type)
	}
}

func TestParseUntypedNode(t *testing.T) {
	expr, err := Parse("()")
	if err != nil {
		t.Fatal(err)
	}
	if expr.Nodes[0].Type != "" {
		t.Errorf("Type = %q, want empty", expr.Nodes[0].Type)
	}
}

func TestParseWhereClause(t *testing.T) {
	expr, err := Parse("(Feature WHERE status='blocked' AND priority='high')")
	if err != nil {
		t.Fatal(err)
	}
	where := expr.Nodes[0].Where
	if where["status"] != "blocked" || where["priority"] != "high" {
		t.Errorf("Where = %v", where)
	}

	t.Run("dotted attribute", func(t *testing.T) {
		expr, err := Parse("(Task WHERE owner.team='core')")
		if err != nil {
			t.Fatal(err)
		}
		if expr.Nodes[0].Where["owner.team"] != "core" {
			t.Errorf("Where = %v", expr.Nodes[0].Where)
		}
	})

	t.Run("value may contain parens", func(t *testing.T) {
		expr, err := Parse("(Task WHERE title='launch (phase 2)')")
		if err != nil {
			t.Fatal(err)
		}
		if expr.Nodes[0].Where["title"] != "launch (phase 2)" {
			t.Errorf("Where = %v", expr.Nodes[0].Where)
		}
	})
}

func TestParseEdges(t *testing.T) {
	tests := []struct {
		name  string
		input string
		rel   string
		dir   graph.Direction
		quant pattern.Quantifier
	}{
		{"outgoing", "(A)-[blocked_by]->(B)", "blocked_by", graph.Outgoing, pattern.One},
		{"incoming", "(A)<-[depends_on]-(B)", "depends_on", graph.Incoming, pattern.One},
		{"any rel", "(A)-[]->(B)", "", graph.Outgoing, pattern.One},
		{"one or more", "(A)-[depends_on]->+(B)", "depends_on", graph.Outgoing, pattern.OneOrMore},
		{"zero or more", "(A)-[depends_on]->*(B)", "depends_on", graph.Outgoing, pattern.ZeroOrMore},
		{"zero or one", "(A)-[blocked_by]->?(B)", "blocked_by", graph.Outgoing, pattern.ZeroOrOne},
		{"incoming quantified", "(A)<-[depends_on]-+(B)", "depends_on", graph.Incoming, pattern.OneOrMore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Parse(tt.input)
			if err != nil {
				t.Fatal(err)
			}
			if len(expr.Edges) != 1 {
				t.Fatalf("got %d edges, want 1", len(expr.Edges))
			}
			e := expr.Edges[0]
			if e.Rel != tt.rel || e.Direction != tt.dir || e.Quantifier != tt.quant {
				t.Errorf("edge = %+v", e)
			}
		})
	}
}

func TestParseChain(t *testing.T) {
	expr, err := Parse("(Epic)-[contains]->(Feature WHERE status='blocked')-[blocked_by]->(Task)")
	if err != nil {
		t.Fatal(err)
	}
	if len(expr.Nodes) != 3 || len(expr.Edges) != 2 {
		t.Fatalf("got %d nodes, %d edges; want 3, 2", len(expr.Nodes), len(expr.Edges))
	}
	if expr.Nodes[1].Where["status"] != "blocked" {
		t.Errorf("middle node Where = %v", expr.Nodes[1].Where)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"no parens", "Feature"},
		{"unterminated node", "(Feature"},
		{"dangling edge", "(A)-[blocked_by]->"},
		{"bad edge token", "(A)-blocked_by-(B)"},
		{"bad where", "(A WHERE status=blocked)"},
		{"missing and", "(A WHERE a='1' b='2')"},
		{"garbage between", "(A) nonsense (B)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("got %T, want *ParseError", err)
			}
		})
	}
}
