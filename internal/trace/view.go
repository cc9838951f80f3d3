package trace

import "fmt"

// View is one traceability view instance. It owns the selection, the layout
// and the visibility flag for a graph. A View is not safe for concurrent use;
// callers that share one across goroutines must serialise access.
type View struct {
	graph     *Graph
	selection Selection
	layout    *Layout
	visible   bool
}

// NewView creates a visible view with nothing selected. Default positions for
// ids outside the graph are ignored; nodes missing from defaults start at the
// origin.
func NewView(g *Graph, defaults map[string]Position) *View {
	table := make(map[string]Position, g.Len())
	for _, n := range g.nodes {
		table[n.ID] = defaults[n.ID]
	}
	return &View{
		graph:   g,
		layout:  NewLayout(table),
		visible: true,
	}
}

// Graph returns the graph the view renders.
func (v *View) Graph() *Graph {
	return v.graph
}

// Selection returns the current selection.
func (v *View) Selection() Selection {
	return v.selection
}

// Layout returns the layout state.
func (v *View) Layout() *Layout {
	return v.layout
}

// Click routes a pointer click on a node to the selection. Clicking the
// selected node clears the selection. An unknown id leaves the selection
// unchanged and returns ErrUnknownNode.
func (v *View) Click(id string) error {
	if !v.graph.Has(id) {
		return fmt.Errorf("select %q: %w", id, ErrUnknownNode)
	}
	v.selection.Toggle(id)
	return nil
}

// ClearSelection removes the selection.
func (v *View) ClearSelection() {
	v.selection.Clear()
}

// Move places a node at p.
func (v *View) Move(id string, p Position) error {
	return v.layout.Move(id, p)
}

// Drag translates a node by delta.
func (v *View) Drag(id string, delta Position) error {
	return v.layout.Drag(id, delta)
}

// ResetLayout restores the default layout and clears the selection, returning
// the view to its neutral starting state.
func (v *View) ResetLayout() {
	v.layout.Reset()
	v.selection.Clear()
}

// Open shows the view.
func (v *View) Open() {
	v.visible = true
}

// Close hides the view. Selection and layout are kept.
func (v *View) Close() {
	v.visible = false
}

// Visible reports whether the view is shown.
func (v *View) Visible() bool {
	return v.visible
}

// Classify classifies the graph against the current selection.
func (v *View) Classify() Classification {
	return Classify(v.graph, v.selection)
}

// Hint returns the contextual help line for the current selection.
func (v *View) Hint() string {
	return hint(v.graph, Classify(v.graph, v.selection))
}

func hint(g *Graph, c Classification) string {
	id := c.Reach.Selected
	if id == "" {
		return "Click a node to trace its upstream and downstream dependencies."
	}
	n, _ := g.Node(id)
	return fmt.Sprintf("%s: %d upstream, %d downstream. Click it again to clear the selection.",
		n.Label(), len(c.Reach.Upstream)-1, len(c.Reach.Downstream)-1)
}
