// Dotted-path attribute resolution for nodes.
//
// Filters address attributes by path: "status" hits the well-known scalar
// field, "properties.effort" (or just "effort") walks the open property map,
// and "owner.team" descends into nested maps. Resolution is total - it never
// panics and reports absence with an explicit boolean instead of an error.

package graph

import (
	"fmt"
	"strings"
)

// Attr resolves a dotted attribute path against a node.
//
// The first path segment is checked against the well-known scalar fields
// (id, type, status, priority, title). A leading "properties" segment is
// stripped, so "properties.effort" and "effort" are equivalent. Remaining
// segments descend through nested map[string]any values.
//
// Returns the resolved value and true, or (nil, false) when any segment is
// missing or a non-map value is descended into.
//
// Example:
//
//	v, ok := graph.Attr(node, "status")            // "blocked", true
//	v, ok = graph.Attr(node, "properties.effort")  // 3, true
//	v, ok = graph.Attr(node, "owner.team")         // "payments", true
//	v, ok = graph.Attr(node, "no.such.path")       // nil, false
func Attr(n *Node, path string) (any, bool) {
	if n == nil || path == "" {
		return nil, false
	}

	parts := strings.Split(path, ".")

	switch parts[0] {
	case "id":
		if len(parts) == 1 {
			return string(n.ID), true
		}
		return nil, false
	case "type":
		if len(parts) == 1 {
			return n.Type, true
		}
		return nil, false
	case "status":
		if len(parts) == 1 {
			return n.Status, true
		}
		return nil, false
	case "priority":
		if len(parts) == 1 {
			return n.Priority, true
		}
		return nil, false
	case "title":
		if len(parts) == 1 {
			return n.Title, true
		}
		return nil, false
	case "properties":
		if len(parts) == 1 {
			return n.Properties, n.Properties != nil
		}
		return lookupPath(n.Properties, parts[1:])
	}

	return lookupPath(n.Properties, parts)
}

// AttrEquals reports whether the attribute at path resolves and equals want.
// An unresolvable path is never equal to anything, including nil.
func AttrEquals(n *Node, path string, want any) bool {
	got, ok := Attr(n, path)
	if !ok {
		return false
	}
	return looseEqual(got, want)
}

// lookupPath descends through nested map[string]any values.
func lookupPath(m map[string]any, parts []string) (any, bool) {
	if m == nil || len(parts) == 0 {
		return nil, false
	}

	var cur any = m
	for _, part := range parts {
		asMap, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = asMap[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// looseEqual compares attribute values across the numeric types JSON
// round-trips produce (an int written as 3 comes back as float64(3)).
// Non-numeric values compare by their string form.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
