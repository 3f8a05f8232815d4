// Package dot reads the version graphs the BTS renders in the DOT language.
// Only the subset emitted by the BTS is understood.
package dot

import (
	"sort"
	"strings"

	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"github.com/Tomas-vilte/dbts/internal/regex"
	"github.com/Tomas-vilte/dbts/internal/ui"
)

type Node struct {
	Name  string
	attrs map[string]string
}

// Label returns the label attribute, or the node name.
func (n Node) Label() string {
	if label, ok := n.attrs["label"]; ok {
		return label
	}
	return n.Name
}

// Get returns the value of attr, or "" when the node has no such attribute.
func (n Node) Get(attr string) string {
	return n.attrs[attr]
}

type Graph struct {
	Nodes map[string]Node
	edges map[string]map[string]bool
}

// Parse reads a graph of the form
//
//	digraph G {
//	"1.0-1" [label="1.0-1",fillcolor="chartreuse"]
//	"1.0-2" [label="1.0-2",fillcolor="salmon"]
//	"1.0-2"->"1.0-1" [dir="back"]
//	}
//
// Edges point backwards: the line above means 1.0-1 -> 1.0-2.
func Parse(data string) (*Graph, error) {
	m := regex.DotDigraph.FindStringSubmatch(data)
	if m == nil {
		return nil, apperrors.ErrDotSyntax.WithContext("line", firstLine(data))
	}

	g := &Graph{
		Nodes: make(map[string]Node),
		edges: make(map[string]map[string]bool),
	}
	type edge struct{ from, to string }
	var edges []edge

	for _, line := range strings.Split(m[1], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if nm := regex.DotNode.FindStringSubmatch(line); nm != nil {
			g.Nodes[nm[1]] = Node{Name: nm[1], attrs: parseAttrs(nm[2])}
			continue
		}
		if em := regex.DotEdge.FindStringSubmatch(line); em != nil {
			edges = append(edges, edge{from: em[2], to: em[1]})
			continue
		}
		return nil, apperrors.ErrDotSyntax.WithContext("line", line)
	}

	for _, e := range edges {
		for _, name := range []string{e.from, e.to} {
			if _, ok := g.Nodes[name]; !ok {
				return nil, apperrors.ErrDotSyntax.WithContext("node", name)
			}
		}
		if g.edges[e.from] == nil {
			g.edges[e.from] = make(map[string]bool)
		}
		g.edges[e.from][e.to] = true
	}
	return g, nil
}

func parseAttrs(s string) map[string]string {
	attrs := make(map[string]string)
	for _, attr := range regex.DotAttr.FindAllString(s, -1) {
		name, value, _ := strings.Cut(attr, "=")
		value = strings.Trim(value, `"`)
		attrs[name] = strings.ReplaceAll(value, `\n`, "\n")
	}
	return attrs
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

// Children returns the sorted names of the nodes derived from name.
func (g *Graph) Children(name string) []string {
	children := make([]string, 0, len(g.edges[name]))
	for child := range g.edges[name] {
		children = append(children, child)
	}
	sort.Strings(children)
	return children
}

// Roots returns the sorted names of the nodes with no incoming edges.
func (g *Graph) Roots() []string {
	incoming := make(map[string]bool)
	for _, dsts := range g.edges {
		for dst := range dsts {
			incoming[dst] = true
		}
	}
	var roots []string
	for name := range g.Nodes {
		if !incoming[name] {
			roots = append(roots, name)
		}
	}
	sort.Strings(roots)
	return roots
}

// Format renders the graph as an indented tree, depth first. Every node is
// printed once, two spaces deeper than its parent, with bullet in front.
func (g *Graph) Format(render func(Node) string, bullet string) string {
	var b strings.Builder
	seen := make(map[string]bool)
	var walk func(name string, level int)
	walk = func(name string, level int) {
		if seen[name] {
			return
		}
		seen[name] = true
		b.WriteString(ui.Indent(render(g.Nodes[name]), level*2, bullet+" "))
		b.WriteString("\n")
		for _, child := range g.Children(name) {
			walk(child, level+1)
		}
	}
	for _, root := range g.Roots() {
		walk(root, 0)
	}
	return b.String()
}
