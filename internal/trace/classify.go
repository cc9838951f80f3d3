package trace

// NodeState is the visual state of a node.
type NodeState string

// Node states.
const (
	NodeNormal      NodeState = "normal"
	NodeSelected    NodeState = "selected"
	NodeHighlighted NodeState = "highlighted"
	NodeDimmed      NodeState = "dimmed"
)

// EdgeState is the visual state of an edge.
type EdgeState string

// Edge states.
const (
	EdgeNeutral EdgeState = "neutral"
	EdgeRelated EdgeState = "related"
)

// EdgeClass is the classification of one edge.
type EdgeClass struct {
	State    EdgeState `json:"state"`
	Animated bool      `json:"animated"`
}

// Classification maps every node and edge id to its visual state.
type Classification struct {
	Reach Reachability
	Nodes map[string]NodeState
	Edges map[string]EdgeClass
}

// Classify derives the visual state of every node and edge from the current
// selection. It has no side effects and may be recomputed at any time.
func Classify(g *Graph, sel Selection) Classification {
	id, ok := sel.Current()
	if !ok {
		id = ""
	}
	r := Reach(g, id)

	c := Classification{
		Reach: r,
		Nodes: make(map[string]NodeState, len(g.nodes)),
		Edges: make(map[string]EdgeClass, len(g.edges)),
	}

	for _, n := range g.nodes {
		c.Nodes[n.ID] = nodeState(n.ID, r)
	}
	for _, e := range g.edges {
		if r.RelatedEdges.Has(e.ID) {
			c.Edges[e.ID] = EdgeClass{State: EdgeRelated, Animated: true}
		} else {
			c.Edges[e.ID] = EdgeClass{State: EdgeNeutral}
		}
	}

	return c
}

func nodeState(id string, r Reachability) NodeState {
	switch {
	case r.Selected == "":
		return NodeNormal
	case id == r.Selected:
		return NodeSelected
	case r.Related(id):
		return NodeHighlighted
	default:
		return NodeDimmed
	}
}
