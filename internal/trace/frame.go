package trace

// NodeView is a node ready for rendering.
type NodeView struct {
	Node
	State    NodeState `json:"state"`
	Position Position  `json:"position"`
}

// EdgeView is an edge ready for rendering.
type EdgeView struct {
	Edge
	State    EdgeState `json:"state"`
	Animated bool      `json:"animated"`
}

// Frame is everything a renderer needs to draw a view.
type Frame struct {
	Selected   string     `json:"selected,omitempty"`
	Upstream   []string   `json:"upstream"`
	Downstream []string   `json:"downstream"`
	Nodes      []NodeView `json:"nodes"`
	Edges      []EdgeView `json:"edges"`
	Hint       string     `json:"hint"`
	Visible    bool       `json:"visible"`
}

// HasSelection reports whether the frame was produced with a node selected.
func (f Frame) HasSelection() bool {
	return f.Selected != ""
}

// Frame classifies the graph and assembles the render state in authoring
// order.
func (v *View) Frame() Frame {
	c := Classify(v.graph, v.selection)

	f := Frame{
		Selected:   c.Reach.Selected,
		Upstream:   c.Reach.Upstream.Sorted(),
		Downstream: c.Reach.Downstream.Sorted(),
		Nodes:      make([]NodeView, 0, len(v.graph.nodes)),
		Edges:      make([]EdgeView, 0, len(v.graph.edges)),
		Hint:       hint(v.graph, c),
		Visible:    v.visible,
	}

	for _, n := range v.graph.nodes {
		p, _ := v.layout.Position(n.ID)
		f.Nodes = append(f.Nodes, NodeView{Node: n, State: c.Nodes[n.ID], Position: p})
	}
	for _, e := range v.graph.edges {
		ec := c.Edges[e.ID]
		f.Edges = append(f.Edges, EdgeView{Edge: e, State: ec.State, Animated: ec.Animated})
	}

	return f
}
