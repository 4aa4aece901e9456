// Package pathquery compiles a small textual path-expression language into
// traversals over the work-item graph.
//
// # Syntax
//
// An expression alternates parenthesized node patterns with edge patterns:
//
//	(Feature)-[blocked_by]->(Feature)
//	(Feature WHERE status='blocked')-[blocked_by]->(Feature WHERE priority='high')
//	(Task)<-[depends_on]-(Task)
//	(Feature)-[depends_on]->+(Feature)     one-or-more hops
//	(Feature)-[depends_on]->*(Feature)     zero-or-more hops
//	(Feature)-[blocked_by]->?(Feature)     zero-or-one hop
//
// Node patterns carry an optional type label and WHERE clauses of
// single-quoted equality conditions joined by AND. Edge patterns name one
// relationship (empty brackets match any) and read left-to-right:
// -[r]-> follows outgoing edges, <-[r]- incoming ones.
//
// The parser tokenizes left to right, alternating node and edge
// expectations, and returns a *ParseError on empty input, a malformed
// pattern at the current position, or an expression that ends after an edge
// (edge count must be node count minus one).
package pathquery

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/workgraphdb/workgraph/pkg/graph"
	"github.com/workgraphdb/workgraph/pkg/pattern"
)

// ParseError reports a syntax failure with the byte offset it occurred at.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}

// NodeStep is one parsed node pattern: an optional type label and
// attribute-equality conditions.
type NodeStep struct {
	Type  string
	Where map[string]string
}

// EdgeStep is one parsed edge pattern.
type EdgeStep struct {
	Rel        string
	Direction  graph.Direction
	Quantifier pattern.Quantifier
}

// Expr is a parsed path expression. Invariant: len(Edges) == len(Nodes)-1.
type Expr struct {
	Nodes []NodeStep
	Edges []EdgeStep
}

// Pre-compiled token patterns; these run once per token on hot query paths.
var (
	// -[rel]-> or <-[rel]- with an optional trailing quantifier
	edgeTokenRe = regexp.MustCompile(`^(?:-\[\s*([A-Za-z_][A-Za-z0-9_]*)?\s*\]->|(<-)\[\s*([A-Za-z_][A-Za-z0-9_]*)?\s*\]-)([+*?])?`)

	// attr='value' with dotted attribute paths
	whereCondRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.]*)\s*=\s*'([^']*)'`)

	// optional leading type label inside a node pattern
	nodeLabelRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)`)
)

// Parse compiles a path expression.
func Parse(input string) (*Expr, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return nil, &ParseError{Pos: 0, Msg: "empty query"}
	}

	p := &parser{input: text}
	expr := &Expr{}

	node, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	expr.Nodes = append(expr.Nodes, node)

	for {
		p.skipSpaces()
		if p.pos >= len(p.input) {
			break
		}

		edge, err := p.parseEdge()
		if err != nil {
			return nil, err
		}
		expr.Edges = append(expr.Edges, edge)

		p.skipSpaces()
		if p.pos >= len(p.input) {
			return nil, &ParseError{Pos: p.pos, Msg: "expected node pattern after edge"}
		}

		node, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		expr.Nodes = append(expr.Nodes, node)
	}

	return expr, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

// parseNode consumes "( ... )" and parses the inner pattern. The closing
// paren is located by scanning, not regex, so quoted values may contain
// parentheses.
func (p *parser) parseNode() (NodeStep, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) || p.input[p.pos] != '(' {
		return NodeStep{}, &ParseError{Pos: p.pos, Msg: "expected node pattern"}
	}

	end := p.closingParen(p.pos)
	if end < 0 {
		return NodeStep{}, &ParseError{Pos: p.pos, Msg: "unterminated node pattern"}
	}

	inner := strings.TrimSpace(p.input[p.pos+1 : end])
	innerPos := p.pos + 1
	p.pos = end + 1

	return parseNodeInner(inner, innerPos)
}

// closingParen finds the matching ')' for the '(' at start, skipping
// single-quoted content.
func (p *parser) closingParen(start int) int {
	inQuote := false
	for i := start + 1; i < len(p.input); i++ {
		switch p.input[i] {
		case '\'':
			inQuote = !inQuote
		case ')':
			if !inQuote {
				return i
			}
		}
	}
	return -1
}

func parseNodeInner(inner string, basePos int) (NodeStep, error) {
	step := NodeStep{Where: make(map[string]string)}
	rest := inner

	if m := nodeLabelRe.FindString(rest); m != "" && !strings.EqualFold(m, "where") {
		step.Type = m
		rest = strings.TrimSpace(rest[len(m):])
	}

	if rest == "" {
		return step, nil
	}

	if len(rest) < 5 || !strings.EqualFold(rest[:5], "where") {
		return NodeStep{}, &ParseError{Pos: basePos, Msg: fmt.Sprintf("invalid node pattern %q", inner)}
	}
	rest = strings.TrimSpace(rest[5:])

	for {
		m := whereCondRe.FindStringSubmatch(rest)
		if m == nil {
			return NodeStep{}, &ParseError{Pos: basePos, Msg: fmt.Sprintf("invalid WHERE clause %q", rest)}
		}
		step.Where[m[1]] = m[2]
		rest = strings.TrimSpace(rest[len(m[0]):])

		if rest == "" {
			return step, nil
		}
		if len(rest) < 3 || !strings.EqualFold(rest[:3], "and") {
			return NodeStep{}, &ParseError{Pos: basePos, Msg: fmt.Sprintf("expected AND in WHERE clause, got %q", rest)}
		}
		rest = strings.TrimSpace(rest[3:])
	}
}

func (p *parser) parseEdge() (EdgeStep, error) {
	m := edgeTokenRe.FindStringSubmatch(p.input[p.pos:])
	if m == nil {
		return EdgeStep{}, &ParseError{Pos: p.pos, Msg: "expected edge pattern"}
	}
	p.pos += len(m[0])

	step := EdgeStep{Direction: graph.Outgoing, Quantifier: pattern.One}
	if m[2] == "<-" {
		step.Direction = graph.Incoming
		step.Rel = m[3]
	} else {
		step.Rel = m[1]
	}

	switch m[4] {
	case "+":
		step.Quantifier = pattern.OneOrMore
	case "*":
		step.Quantifier = pattern.ZeroOrMore
	case "?":
		step.Quantifier = pattern.ZeroOrOne
	}

	return step, nil
}
