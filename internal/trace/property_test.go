package trace

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

const propertyNodes = 8

// randomGraph decodes each code into an edge between two of propertyNodes
// nodes. Codes may produce self-loops and cycles.
func randomGraph(codes []int) (*Graph, error) {
	nodes := make([]Node, propertyNodes)
	for i := range nodes {
		nodes[i] = Node{ID: fmt.Sprintf("n%d", i), Category: Categories()[i%3]}
	}

	edges := make([]Edge, 0, len(codes))
	for i, code := range codes {
		src, dst := code/propertyNodes, code%propertyNodes
		edges = append(edges, Edge{
			ID:     fmt.Sprintf("e%d", i),
			Source: nodes[src].ID,
			Target: nodes[dst].ID,
		})
	}
	return NewGraph(nodes, edges)
}

func randomLayout() map[string]Position {
	layout := make(map[string]Position, propertyNodes)
	for i := 0; i < propertyNodes; i++ {
		layout[fmt.Sprintf("n%d", i)] = Position{X: float64(i * 100), Y: float64(i % 3 * 80)}
	}
	return layout
}

func subset(a, b Set) bool {
	for id := range a {
		if !b.Has(id) {
			return false
		}
	}
	return true
}

// TestTraceInvariants checks the traceability properties over random graphs.
func TestTraceInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	edgeCodes := gen.SliceOf(gen.IntRange(0, propertyNodes*propertyNodes-1))
	nodeIndex := gen.IntRange(0, propertyNodes-1)

	properties.Property("selected node is in both of its closures", prop.ForAll(
		func(codes []int, sel int) bool {
			g, err := randomGraph(codes)
			if err != nil {
				return false
			}
			id := fmt.Sprintf("n%d", sel)
			r := Reach(g, id)
			return r.Upstream.Has(id) && r.Downstream.Has(id)
		},
		edgeCodes, nodeIndex,
	))

	properties.Property("no selection classifies everything neutral", prop.ForAll(
		func(codes []int) bool {
			g, err := randomGraph(codes)
			if err != nil {
				return false
			}
			c := Classify(g, Selection{})
			for _, s := range c.Nodes {
				if s != NodeNormal {
					return false
				}
			}
			for _, ec := range c.Edges {
				if ec.State != EdgeNeutral || ec.Animated {
					return false
				}
			}
			return true
		},
		edgeCodes,
	))

	properties.Property("adding an edge never shrinks a closure", prop.ForAll(
		func(codes []int, extra int, sel int) bool {
			before, err := randomGraph(codes)
			if err != nil {
				return false
			}
			after, err := randomGraph(append(append([]int(nil), codes...), extra))
			if err != nil {
				return false
			}
			id := fmt.Sprintf("n%d", sel)
			rb, ra := Reach(before, id), Reach(after, id)
			return subset(rb.Upstream, ra.Upstream) &&
				subset(rb.Downstream, ra.Downstream) &&
				subset(rb.RelatedEdges, ra.RelatedEdges)
		},
		edgeCodes, gen.IntRange(0, propertyNodes*propertyNodes-1), nodeIndex,
	))

	properties.Property("related edges have both endpoints in the closures", prop.ForAll(
		func(codes []int, sel int) bool {
			g, err := randomGraph(codes)
			if err != nil {
				return false
			}
			r := Reach(g, fmt.Sprintf("n%d", sel))
			for _, e := range g.Edges() {
				want := r.Related(e.Source) && r.Related(e.Target)
				if r.RelatedEdges.Has(e.ID) != want {
					return false
				}
			}
			return true
		},
		edgeCodes, nodeIndex,
	))

	properties.Property("clicking a node twice restores the initial selection", prop.ForAll(
		func(codes []int, sel int) bool {
			g, err := randomGraph(codes)
			if err != nil {
				return false
			}
			v := NewView(g, randomLayout())
			id := fmt.Sprintf("n%d", sel)
			if v.Click(id) != nil || v.Click(id) != nil {
				return false
			}
			return v.Selection() == Selection{}
		},
		edgeCodes, nodeIndex,
	))

	properties.Property("reset restores the default layout and clears the selection", prop.ForAll(
		func(ops []int) bool {
			g, err := randomGraph(nil)
			if err != nil {
				return false
			}
			v := NewView(g, randomLayout())
			for i, op := range ops {
				id := fmt.Sprintf("n%d", op%propertyNodes)
				if i%2 == 0 {
					_ = v.Move(id, Position{X: float64(op), Y: float64(-op)})
				} else {
					_ = v.Click(id)
				}
			}
			v.ResetLayout()

			positions := v.Layout().Positions()
			for id, want := range randomLayout() {
				if positions[id] != want {
					return false
				}
			}
			_, selected := v.Selection().Current()
			return !selected
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}
