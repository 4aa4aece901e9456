// Query execution: parsed expressions are evaluated left to right, growing
// partial chains one edge step at a time. Single hops use the store's edge
// indexes directly; quantified hops (+ * ?) delegate to the traverse package
// for reachability and hop counting.

package pathquery

import (
	"github.com/workgraphdb/workgraph/pkg/graph"
	"github.com/workgraphdb/workgraph/pkg/pattern"
	"github.com/workgraphdb/workgraph/pkg/traverse"
)

// Result is one chain of nodes satisfying a path expression, position by
// position. Nodes holds one id per node pattern, Bindings maps pattern
// position to the bound id, and Hops counts the total edges traversed
// (quantified steps may contribute more than one, zero-hop steps none).
type Result struct {
	Nodes    []graph.NodeID       `json:"nodes"`
	Hops     int                  `json:"hops"`
	Bindings map[int]graph.NodeID `json:"bindings"`
}

// Engine evaluates path expressions against a loaded store.
type Engine struct {
	store  graph.Store
	finder *traverse.Finder
}

// NewEngine creates an engine with default traversal bounds.
func NewEngine(store graph.Store) *Engine {
	return &Engine{store: store, finder: traverse.NewFinder(store)}
}

// NewEngineWithFinder creates an engine reusing a caller-configured finder.
func NewEngineWithFinder(store graph.Store, finder *traverse.Finder) *Engine {
	return &Engine{store: store, finder: finder}
}

// Query parses and executes an expression in one call.
func (e *Engine) Query(input string) ([]Result, error) {
	expr, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return e.Execute(expr), nil
}

// Execute evaluates a parsed expression and returns every matching chain.
// Expressions that match nothing return an empty slice, not an error.
func (e *Engine) Execute(expr *Expr) []Result {
	if expr == nil || len(expr.Nodes) == 0 {
		return nil
	}

	// Seed: every node matching the first pattern starts a chain.
	var chains []chain
	first := expr.Nodes[0]
	for _, node := range e.store.All() {
		if nodeMatches(node, first) {
			chains = append(chains, chain{nodes: []graph.NodeID{node.ID}})
		}
	}

	for i, step := range expr.Edges {
		next := expr.Nodes[i+1]
		var extended []chain
		for _, c := range chains {
			extended = append(extended, e.extend(c, step, next)...)
		}
		chains = extended
		if len(chains) == 0 {
			break
		}
	}

	results := make([]Result, 0, len(chains))
	for _, c := range chains {
		bindings := make(map[int]graph.NodeID, len(c.nodes))
		for i, id := range c.nodes {
			bindings[i] = id
		}
		results = append(results, Result{Nodes: c.nodes, Hops: c.hops, Bindings: bindings})
	}
	return results
}

// chain is a partial evaluation: one bound node per pattern position seen so
// far, plus the edges spent reaching it.
type chain struct {
	nodes []graph.NodeID
	hops  int
}

// grow returns a copy of c extended by one node and a hop count. Copying
// keeps sibling extensions from aliasing the same backing array.
func (c chain) grow(id graph.NodeID, hops int) chain {
	nodes := make([]graph.NodeID, 0, len(c.nodes)+1)
	nodes = append(nodes, c.nodes...)
	nodes = append(nodes, id)
	return chain{nodes: nodes, hops: c.hops + hops}
}

// extend applies one edge step to a chain, producing every valid extension.
func (e *Engine) extend(c chain, step EdgeStep, next NodeStep) []chain {
	cur := c.nodes[len(c.nodes)-1]

	switch step.Quantifier {
	case pattern.OneOrMore:
		return e.extendMulti(c, cur, step, next, false)
	case pattern.ZeroOrMore:
		return e.extendMulti(c, cur, step, next, true)
	case pattern.ZeroOrOne:
		out := e.extendSingle(c, cur, step, next)
		if n, ok := e.store.Get(cur); ok && nodeMatches(n, next) {
			out = append(out, c.grow(cur, 0))
		}
		return out
	default:
		return e.extendSingle(c, cur, step, next)
	}
}

// extendSingle follows exactly one edge in the step's direction.
func (e *Engine) extendSingle(c chain, cur graph.NodeID, step EdgeStep, next NodeStep) []chain {
	var out []chain
	for _, target := range e.hop(cur, step) {
		n, ok := e.store.Get(target)
		if !ok || !nodeMatches(n, next) {
			continue
		}
		out = append(out, c.grow(target, 1))
	}
	return out
}

// extendMulti handles + and *: every node reachable over the step's
// relationship (within the finder's depth bound) that matches the next
// pattern extends the chain, with hop count taken from the shortest
// connecting path. * additionally admits the zero-hop extension when the
// current node itself matches.
func (e *Engine) extendMulti(c chain, cur graph.NodeID, step EdgeStep, next NodeStep, allowZero bool) []chain {
	var out []chain

	if allowZero {
		if n, ok := e.store.Get(cur); ok && nodeMatches(n, next) {
			out = append(out, c.grow(cur, 0))
		}
	}

	rels := step.rels()
	reached := e.finder.ReachableSet(cur, rels, step.Direction, 0)
	for target := range reached {
		if allowZero && target == cur {
			continue
		}
		n, ok := e.store.Get(target)
		if !ok || !nodeMatches(n, next) {
			continue
		}

		// Shortest connecting path gives the hop count. Incoming steps
		// reverse the endpoints: the stored edges run target -> cur.
		var p *traverse.PathResult
		if step.Direction == graph.Incoming {
			p = e.finder.AnyShortest(target, cur, rels)
		} else {
			p = e.finder.AnyShortest(cur, target, rels)
		}
		if p == nil {
			continue
		}
		out = append(out, c.grow(target, p.Length))
	}
	return out
}

// hop resolves the one-edge neighbors for a step.
func (e *Engine) hop(cur graph.NodeID, step EdgeStep) []graph.NodeID {
	var out []graph.NodeID
	if step.Direction == graph.Incoming {
		for _, edge := range e.store.Incoming(cur, step.rels()...) {
			out = append(out, edge.From)
		}
	} else {
		for _, edge := range e.store.Outgoing(cur, step.rels()...) {
			out = append(out, edge.To)
		}
	}
	return out
}

// rels converts the step's single optional relationship into the variadic
// filter shape the store indexes take.
func (s EdgeStep) rels() []string {
	if s.Rel == "" {
		return nil
	}
	return []string{s.Rel}
}

// nodeMatches checks a node against a parsed node step.
func nodeMatches(n *graph.Node, step NodeStep) bool {
	if n == nil {
		return false
	}
	if step.Type != "" && n.Type != step.Type {
		return false
	}
	for field, want := range step.Where {
		if !graph.AttrEquals(n, field, want) {
			return false
		}
	}
	return true
}
