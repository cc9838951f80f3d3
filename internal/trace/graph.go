// Package trace implements metric traceability over a directed graph of KPIs,
// design parameters and models. It computes the upstream and downstream
// closure of a selected node, classifies every node and edge for rendering,
// and owns the per-view selection and layout state.
package trace

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnknownNode is returned when an operation names a node id that is not
// part of the graph.
var ErrUnknownNode = errors.New("unknown node")

// Category tags a node for styling. It never affects graph semantics.
type Category string

// Node categories.
const (
	CategoryKPI   Category = "kpi"
	CategoryParam Category = "param"
	CategoryModel Category = "model"
)

// Categories returns every known category in display order.
func Categories() []Category {
	return []Category{CategoryKPI, CategoryParam, CategoryModel}
}

// ParseCategory converts a string to a Category.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryKPI, CategoryParam, CategoryModel:
		return c, nil
	default:
		return "", fmt.Errorf("unknown category %q (want one of kpi, param, model)", s)
	}
}

// Title returns the display name of the category.
func (c Category) Title() string {
	switch c {
	case CategoryKPI:
		return "KPI"
	case CategoryParam:
		return "Parameter"
	case CategoryModel:
		return "Model"
	default:
		return cases.Title(language.English).String(string(c))
	}
}

// Payload is display data carried by a node. The core never interprets it.
type Payload struct {
	Label       string `json:"label"`
	Value       string `json:"value,omitempty"`
	Target      string `json:"target,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Description string `json:"description,omitempty"`
}

// Node is a vertex of the traceability graph.
type Node struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Payload  Payload  `json:"payload"`
}

// Label returns the payload label, falling back to the id.
func (n Node) Label() string {
	if n.Payload.Label != "" {
		return n.Payload.Label
	}
	return n.ID
}

// Edge is a directed edge from Source to Target.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// DanglingEdgeError reports an edge whose endpoint is not a node of the graph.
type DanglingEdgeError struct {
	EdgeID string
	NodeID string
	End    string // "source" or "target"
}

func (e *DanglingEdgeError) Error() string {
	return fmt.Sprintf("edge %q references missing %s node %q", e.EdgeID, e.End, e.NodeID)
}

// Unwrap lets errors.Is match ErrUnknownNode.
func (e *DanglingEdgeError) Unwrap() error {
	return ErrUnknownNode
}

// Graph is an immutable set of nodes and directed edges.
// Nodes and edges keep their authoring order.
type Graph struct {
	nodes []Node
	edges []Edge
	index map[string]int
	out   map[string][]int // node id -> indexes into edges with that source
	in    map[string][]int // node id -> indexes into edges with that target
}

// NewGraph builds a graph. Every edge endpoint must name an existing node,
// and node and edge ids must be unique.
func NewGraph(nodes []Node, edges []Edge) (*Graph, error) {
	g := &Graph{
		nodes: make([]Node, 0, len(nodes)),
		edges: make([]Edge, 0, len(edges)),
		index: make(map[string]int, len(nodes)),
		out:   make(map[string][]int),
		in:    make(map[string][]int),
	}

	for _, n := range nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node at position %d has an empty id", len(g.nodes))
		}
		if _, exists := g.index[n.ID]; exists {
			return nil, fmt.Errorf("duplicate node id %q", n.ID)
		}
		g.index[n.ID] = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}

	edgeIDs := make(map[string]struct{}, len(edges))
	for _, e := range edges {
		if e.ID == "" {
			return nil, fmt.Errorf("edge %s->%s has an empty id", e.Source, e.Target)
		}
		if _, exists := edgeIDs[e.ID]; exists {
			return nil, fmt.Errorf("duplicate edge id %q", e.ID)
		}
		if _, ok := g.index[e.Source]; !ok {
			return nil, &DanglingEdgeError{EdgeID: e.ID, NodeID: e.Source, End: "source"}
		}
		if _, ok := g.index[e.Target]; !ok {
			return nil, &DanglingEdgeError{EdgeID: e.ID, NodeID: e.Target, End: "target"}
		}
		edgeIDs[e.ID] = struct{}{}

		i := len(g.edges)
		g.edges = append(g.edges, e)
		g.out[e.Source] = append(g.out[e.Source], i)
		g.in[e.Target] = append(g.in[e.Target], i)
	}

	return g, nil
}

// Nodes returns the nodes in authoring order.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// Edges returns the edges in authoring order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Has reports whether id names a node of the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// EdgesFrom returns the edges whose source is id.
func (g *Graph) EdgesFrom(id string) []Edge {
	return g.pick(g.out[id])
}

// EdgesTo returns the edges whose target is id.
func (g *Graph) EdgesTo(id string) []Edge {
	return g.pick(g.in[id])
}

func (g *Graph) pick(idx []int) []Edge {
	result := make([]Edge, 0, len(idx))
	for _, i := range idx {
		result = append(result, g.edges[i])
	}
	return result
}
