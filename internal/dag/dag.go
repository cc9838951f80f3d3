// Package dag provides directed graph analysis for traceability datasets.
// It supports cycle detection, dependency levels, roots and leaves, all in
// the order nodes were added.
package dag

import (
	"fmt"

	"github.com/leapstack-labs/simtrace/internal/trace"
)

// Graph is a directed graph over string ids.
type Graph struct {
	order   []string
	nodes   map[string]struct{}
	edges   map[string][]string // source -> targets
	parents map[string][]string // target -> sources
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]struct{}),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// FromTrace copies the topology of a traceability graph.
func FromTrace(tg *trace.Graph) *Graph {
	g := NewGraph()
	for _, n := range tg.Nodes() {
		g.AddNode(n.ID)
	}
	for _, e := range tg.Edges() {
		// Endpoints were validated by trace.NewGraph.
		_ = g.AddEdge(e.Source, e.Target)
	}
	return g
}

// AddNode adds a node. Adding an existing id is a no-op.
func (g *Graph) AddNode(id string) {
	if _, exists := g.nodes[id]; exists {
		return
	}
	g.nodes[id] = struct{}{}
	g.order = append(g.order, id)
}

// AddEdge adds a directed edge from source to target. Self-loops are kept;
// HasCycle reports them.
func (g *Graph) AddEdge(source, target string) error {
	if _, exists := g.nodes[source]; !exists {
		return fmt.Errorf("source node %q does not exist", source)
	}
	if _, exists := g.nodes[target]; !exists {
		return fmt.Errorf("target node %q does not exist", target)
	}

	// Parallel edges collapse into one
	if !contains(g.edges[source], target) {
		g.edges[source] = append(g.edges[source], target)
	}
	if !contains(g.parents[target], source) {
		g.parents[target] = append(g.parents[target], source)
	}
	return nil
}

// Parents returns the direct sources of edges into id.
func (g *Graph) Parents(id string) []string {
	return g.parents[id]
}

// Children returns the direct targets of edges out of id.
func (g *Graph) Children(id string) []string {
	return g.edges[id]
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.order)
}

// EdgeCount returns the number of distinct source/target pairs.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.edges {
		count += len(children)
	}
	return count
}

// HasCycle returns true if the graph contains a cycle, along with the cycle path.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make(map[string]string)

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		recStack[id] = true

		for _, childID := range g.edges[id] {
			if !visited[childID] {
				path[childID] = id
				if dfs(childID) {
					return true
				}
			} else if recStack[childID] {
				cyclePath = []string{childID}
				for curr := id; curr != childID; curr = path[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{childID}, cyclePath...)
				return true
			}
		}

		recStack[id] = false
		return false
	}

	for _, id := range g.order {
		if !visited[id] {
			if dfs(id) {
				return true, cyclePath
			}
		}
	}

	return false, nil
}

// Levels groups nodes by dependency depth. Level 0 holds nodes without
// parents; a node sits one level below its deepest parent. Nodes keep the
// order they were added in. Returns an error if the graph contains a cycle.
func (g *Graph) Levels() ([][]string, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("cycle detected: %v", cyclePath)
	}

	assigned := make(map[string]int, len(g.order))

	var getLevel func(id string) int
	getLevel = func(id string) int {
		if level, ok := assigned[id]; ok {
			return level
		}

		level := 0
		for _, parentID := range g.parents[id] {
			if l := getLevel(parentID) + 1; l > level {
				level = l
			}
		}
		assigned[id] = level
		return level
	}

	maxLevel := -1
	for _, id := range g.order {
		if level := getLevel(id); level > maxLevel {
			maxLevel = level
		}
	}

	levels := make([][]string, maxLevel+1)
	for _, id := range g.order {
		level := assigned[id]
		levels[level] = append(levels[level], id)
	}
	return levels, nil
}

// Roots returns nodes with no parents.
func (g *Graph) Roots() []string {
	var roots []string
	for _, id := range g.order {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// Leaves returns nodes with no children.
func (g *Graph) Leaves() []string {
	var leaves []string
	for _, id := range g.order {
		if len(g.edges[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

// contains checks if a slice contains a string.
func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
