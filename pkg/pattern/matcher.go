// Pattern execution: plan construction and recursive expansion.
//
// Matching is two-phase. First the declared edges are ordered into a
// traversal plan - each step names the variable it binds and the edge used
// to reach it from an already-bound endpoint. Then the plan is expanded
// recursively, copying the binding map on every extension so backtracking
// never aliases partial state across branches.

package pattern

import "github.com/workgraphdb/workgraph/pkg/graph"

// planStep binds one variable. A nil edge means "scan all matching nodes"
// (the seed step and disconnected variables). An empty variable with a
// non-nil edge is a constraint check between two already-bound variables.
type planStep struct {
	variable string
	edge     *EdgePattern
}

// plan orders the pattern into executable steps by walking edges in
// declaration order and growing the bound-variable set. Variables no edge
// touches are appended as independent scan steps.
func (p *Pattern) plan() []planStep {
	bound := make(map[string]bool)
	var steps []planStep

	for i := range p.edges {
		e := &p.edges[i]
		switch {
		case !bound[e.Src] && !bound[e.Dst]:
			steps = append(steps, planStep{variable: e.Src})
			bound[e.Src] = true
			// Src == Dst is now bound: a self-referential edge only
			// constrains, it must not rebind the variable.
			if bound[e.Dst] {
				steps = append(steps, planStep{edge: e})
				continue
			}
			steps = append(steps, planStep{variable: e.Dst, edge: e})
			bound[e.Dst] = true
		case bound[e.Src] && !bound[e.Dst]:
			steps = append(steps, planStep{variable: e.Dst, edge: e})
			bound[e.Dst] = true
		case !bound[e.Src] && bound[e.Dst]:
			steps = append(steps, planStep{variable: e.Src, edge: e})
			bound[e.Src] = true
		default:
			// Both endpoints already bound: the edge only constrains.
			steps = append(steps, planStep{edge: e})
		}
	}

	for _, name := range p.order {
		if !bound[name] {
			steps = append(steps, planStep{variable: name})
			bound[name] = true
		}
	}

	return steps
}

// Match executes the pattern against a loaded store and returns every
// complete assignment. An empty pattern yields no results; relationship
// filters that match nothing yield no results, not an error.
func (p *Pattern) Match(store graph.Store) []MatchResult {
	if len(p.nodes) == 0 {
		return nil
	}

	m := &matcher{pattern: p, store: store, steps: p.plan()}
	m.expand(0, map[string]Binding{}, 0)
	return m.results
}

type matcher struct {
	pattern *Pattern
	store   graph.Store
	steps   []planStep
	results []MatchResult
}

// expand advances one plan step with the bindings accumulated so far.
// Bindings are extended copy-on-recurse; callers never observe mutation.
func (m *matcher) expand(idx int, bindings map[string]Binding, edgesUsed int) {
	if idx == len(m.steps) {
		m.results = append(m.results, MatchResult{Bindings: bindings, PathLength: edgesUsed})
		return
	}

	step := m.steps[idx]

	switch {
	case step.edge == nil:
		m.expandScan(idx, step, bindings, edgesUsed)
	case step.variable == "":
		m.expandCheck(idx, step, bindings, edgesUsed)
	default:
		m.expandEdge(idx, step, bindings, edgesUsed)
	}
}

// expandScan seeds a variable from the full node set. Two variables never
// bind the identical node on independent scan steps.
func (m *matcher) expandScan(idx int, step planStep, bindings map[string]Binding, edgesUsed int) {
	np := m.pattern.nodes[step.variable]

	for _, node := range m.store.All() {
		if !np.Matches(node) {
			continue
		}
		if boundElsewhere(bindings, node.ID) {
			continue
		}
		m.expand(idx+1, extend(bindings, step.variable, Binding{Node: node}), edgesUsed)
	}
}

// expandEdge binds a new variable by following the step's edge from its
// already-bound endpoint, forward or reverse depending on which end is
// bound.
func (m *matcher) expandEdge(idx int, step planStep, bindings map[string]Binding, edgesUsed int) {
	e := step.edge
	np := m.pattern.nodes[step.variable]

	var anchorVar string
	if step.variable == e.Dst {
		anchorVar = e.Src
	} else {
		anchorVar = e.Dst
	}
	anchor := bindings[anchorVar].Node
	if anchor == nil {
		return
	}

	for _, cand := range m.candidates(e, anchor.ID, step.variable == e.Dst) {
		node, ok := m.store.Get(cand.neighbor)
		if !ok || !np.Matches(node) {
			continue
		}

		next := extend(bindings, step.variable, Binding{Node: node})
		if e.Var != "" {
			edge := cand.edge
			next[e.Var] = Binding{Edge: &edge}
		}
		m.expand(idx+1, next, edgesUsed+1)
	}
}

// expandCheck verifies an edge between two bound endpoints and consumes it.
func (m *matcher) expandCheck(idx int, step planStep, bindings map[string]Binding, edgesUsed int) {
	e := step.edge
	src := bindings[e.Src].Node
	dst := bindings[e.Dst].Node
	if src == nil || dst == nil {
		return
	}

	for _, cand := range m.candidates(e, src.ID, true) {
		if cand.neighbor != dst.ID {
			continue
		}
		next := bindings
		if e.Var != "" {
			edge := cand.edge
			next = extend(bindings, e.Var, Binding{Edge: &edge})
		}
		m.expand(idx+1, next, edgesUsed+1)
		return
	}
}

// candidate pairs an index edge with the node it leads to.
type candidate struct {
	neighbor graph.NodeID
	edge     graph.EdgeRef
}

// candidates resolves the edge-index lookup for an edge pattern anchored at
// anchor. fromSrc is true when the anchor is the pattern's Src endpoint.
func (m *matcher) candidates(e *EdgePattern, anchor graph.NodeID, fromSrc bool) []candidate {
	var out []candidate

	forward := func() {
		for _, edge := range m.store.Outgoing(anchor, e.Rels...) {
			out = append(out, candidate{neighbor: edge.To, edge: edge})
		}
	}
	reverse := func() {
		for _, edge := range m.store.Incoming(anchor, e.Rels...) {
			out = append(out, candidate{neighbor: edge.From, edge: edge})
		}
	}

	switch e.Direction {
	case graph.Outgoing:
		if fromSrc {
			forward()
		} else {
			reverse()
		}
	case graph.Incoming:
		if fromSrc {
			reverse()
		} else {
			forward()
		}
	default: // Both
		forward()
		reverse()
	}

	return out
}

// extend copies the binding map with one addition.
func extend(bindings map[string]Binding, name string, b Binding) map[string]Binding {
	next := make(map[string]Binding, len(bindings)+1)
	for k, v := range bindings {
		next[k] = v
	}
	next[name] = b
	return next
}

func boundElsewhere(bindings map[string]Binding, id graph.NodeID) bool {
	for _, b := range bindings {
		if b.Node != nil && b.Node.ID == id {
			return true
		}
	}
	return false
}
