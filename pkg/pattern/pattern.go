// Package pattern implements declarative structural matching over the
// work-item graph.
//
// A Pattern declares named node shapes and the edges connecting them; Match
// walks the store and returns every assignment of graph nodes (and edges) to
// pattern variables that satisfies the declared shape.
//
// Example:
//
//	p := pattern.New()
//	p.AddNode("a", pattern.Node("feature").Where("status", "blocked"))
//	p.AddNode("b", pattern.Node("feature"))
//	p.AddEdge(pattern.Edge("a", "b", "blocked_by"))
//
//	for _, m := range p.Match(store) {
//		blocked := m.Bindings["a"].Node
//		blocker := m.Bindings["b"].Node
//		fmt.Printf("%s blocked by %s\n", blocked.ID, blocker.ID)
//	}
package pattern

import (
	"errors"

	"github.com/workgraphdb/workgraph/pkg/graph"
)

// Build-time pattern errors.
var (
	// ErrDuplicateVariable is returned when a node variable is declared twice.
	ErrDuplicateVariable = errors.New("duplicate pattern variable")
	// ErrUnknownVariable is returned when an edge references a variable that
	// was never declared with AddNode.
	ErrUnknownVariable = errors.New("unknown pattern variable")
)

// Quantifier controls hop cardinality on an edge pattern. The base matcher
// executes One; the other values are carried for the path query engine,
// which shares this vocabulary.
type Quantifier int

const (
	// One matches exactly one hop.
	One Quantifier = iota
	// OneOrMore matches a chain of one or more hops (+).
	OneOrMore
	// ZeroOrMore matches a chain of zero or more hops (*).
	ZeroOrMore
	// ZeroOrOne matches an optional single hop (?).
	ZeroOrOne
)

// NodePattern describes the shape a single variable must match: an optional
// type label plus attribute-equality filters. Pure value object; carries no
// graph state.
type NodePattern struct {
	Type  string
	Props map[string]any
}

// Node starts a fluent node pattern for the given type label. An empty
// label matches any node type.
func Node(nodeType string) *NodePattern {
	return &NodePattern{Type: nodeType, Props: make(map[string]any)}
}

// Where adds an attribute-equality filter. The field accepts dotted paths
// ("properties.effort", "owner.team").
func (p *NodePattern) Where(field string, value any) *NodePattern {
	p.Props[field] = value
	return p
}

// Matches reports whether a node satisfies the pattern.
func (p *NodePattern) Matches(n *graph.Node) bool {
	if n == nil {
		return false
	}
	if p.Type != "" && n.Type != p.Type {
		return false
	}
	for field, want := range p.Props {
		if !graph.AttrEquals(n, field, want) {
			return false
		}
	}
	return true
}

// EdgePattern connects two declared variables. Direction is relative to the
// Src variable: Outgoing requires an edge Src->Dst, Incoming an edge
// Dst->Src, Both accepts either. An empty Rels list matches any
// relationship type.
type EdgePattern struct {
	Src        string
	Dst        string
	Var        string // optional: binds the matched edge in results
	Rels       []string
	Direction  graph.Direction
	Quantifier Quantifier
}

// Edge builds an outgoing, exactly-one edge pattern between two variables.
func Edge(src, dst string, rels ...string) EdgePattern {
	return EdgePattern{Src: src, Dst: dst, Rels: rels, Direction: graph.Outgoing}
}

// WithDirection returns a copy with the given direction.
func (e EdgePattern) WithDirection(dir graph.Direction) EdgePattern {
	e.Direction = dir
	return e
}

// WithVar returns a copy that binds the matched edge under name.
func (e EdgePattern) WithVar(name string) EdgePattern {
	e.Var = name
	return e
}

// Pattern accumulates node and edge declarations. Declaration order is
// significant: the traversal plan follows edges in the order they were
// added.
type Pattern struct {
	nodes map[string]*NodePattern
	order []string
	edges []EdgePattern
}

// New creates an empty pattern.
func New() *Pattern {
	return &Pattern{nodes: make(map[string]*NodePattern)}
}

// AddNode declares a variable with its node shape. Redeclaring a variable
// is a build-time error.
func (p *Pattern) AddNode(name string, np *NodePattern) error {
	if _, exists := p.nodes[name]; exists {
		return ErrDuplicateVariable
	}
	if np == nil {
		np = Node("")
	}
	p.nodes[name] = np
	p.order = append(p.order, name)
	return nil
}

// AddEdge declares an edge between two previously-declared variables.
// Referencing an undeclared variable is a build-time error, so matching
// never sees a dangling endpoint.
func (p *Pattern) AddEdge(e EdgePattern) error {
	if _, ok := p.nodes[e.Src]; !ok {
		return ErrUnknownVariable
	}
	if _, ok := p.nodes[e.Dst]; !ok {
		return ErrUnknownVariable
	}
	if e.Direction == "" {
		e.Direction = graph.Outgoing
	}
	p.edges = append(p.edges, e)
	return nil
}

// Binding holds the graph element a variable matched: exactly one of Node
// or Edge is set.
type Binding struct {
	Node *graph.Node
	Edge *graph.EdgeRef
}

// MatchResult is one complete assignment of variables to graph elements.
// PathLength counts the edges consumed producing the match. Results are
// immutable once returned and hold no back-references into the store.
type MatchResult struct {
	Bindings   map[string]Binding
	PathLength int
}

// Project strips every binding not named in vars. Applied after all results
// are collected, so projection never affects matching.
func Project(results []MatchResult, vars []string) []MatchResult {
	keep := make(map[string]bool, len(vars))
	for _, v := range vars {
		keep[v] = true
	}

	out := make([]MatchResult, len(results))
	for i, r := range results {
		projected := make(map[string]Binding)
		for name, b := range r.Bindings {
			if keep[name] {
				projected[name] = b
			}
		}
		out[i] = MatchResult{Bindings: projected, PathLength: r.PathLength}
	}
	return out
}
