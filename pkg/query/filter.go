// Package query provides a lazy, composable query builder over the
// work-item graph: attribute filters and graph traversals are staged
// fluently and nothing executes until a terminal is called.
//
// Example:
//
//	ids := query.New(store).
//		Where("status", "blocked").
//		Traverse("blocked_by").
//		IDs()
package query

import (
	"github.com/workgraphdb/workgraph/pkg/graph"
)

// Op is a filter comparison operator.
type Op int

const (
	// OpEqual matches attribute == value (loose numeric equality).
	OpEqual Op = iota
	// OpNotNull matches any node where the attribute resolves at all.
	OpNotNull
)

// Condition is one comparison in a filter. Or marks the condition as
// OR-joined to the running result instead of AND-joined.
type Condition struct {
	Field string
	Op    Op
	Value any
	Or    bool
}

// Filter is an ordered list of conditions evaluated left to right:
// each AND condition narrows the running truth value, each OR condition
// widens it.
type Filter struct {
	conds []Condition
}

// NewFilter creates an empty filter, which matches every node.
func NewFilter() *Filter {
	return &Filter{}
}

// Where appends an AND equality condition.
func (f *Filter) Where(field string, value any) *Filter {
	f.conds = append(f.conds, Condition{Field: field, Op: OpEqual, Value: value})
	return f
}

// OrWhere appends an OR equality condition.
func (f *Filter) OrWhere(field string, value any) *Filter {
	f.conds = append(f.conds, Condition{Field: field, Op: OpEqual, Value: value, Or: true})
	return f
}

// WhereNotNull appends an AND presence condition.
func (f *Filter) WhereNotNull(field string) *Filter {
	f.conds = append(f.conds, Condition{Field: field, Op: OpNotNull})
	return f
}

// Matches evaluates the filter against one node. An empty filter matches.
func (f *Filter) Matches(n *graph.Node) bool {
	if len(f.conds) == 0 {
		return true
	}

	result := true
	for i, c := range f.conds {
		hit := c.matches(n)
		if i == 0 {
			result = hit
			continue
		}
		if c.Or {
			result = result || hit
		} else {
			result = result && hit
		}
	}
	return result
}

func (c Condition) matches(n *graph.Node) bool {
	switch c.Op {
	case OpNotNull:
		_, ok := graph.Attr(n, c.Field)
		return ok
	default:
		return graph.AttrEquals(n, c.Field, c.Value)
	}
}

// Apply scans the store and returns every matching node.
func (f *Filter) Apply(store graph.Store) []*graph.Node {
	var out []*graph.Node
	for _, n := range store.All() {
		if f.Matches(n) {
			out = append(out, n)
		}
	}
	return out
}
