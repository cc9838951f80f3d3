package trace

import "sort"

// Set is a set of node or edge ids.
type Set map[string]struct{}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Reachability is the closure of one selected node.
type Reachability struct {
	// Selected is the node the closures were computed from. Empty when
	// nothing is selected.
	Selected string
	// Upstream holds every node that reaches Selected, Selected included.
	Upstream Set
	// Downstream holds every node reachable from Selected, Selected included.
	Downstream Set
	// RelatedEdges holds the ids of edges whose endpoints both lie in
	// Upstream or Downstream.
	RelatedEdges Set
}

// Related reports whether id is in the upstream or downstream closure.
func (r Reachability) Related(id string) bool {
	return r.Upstream.Has(id) || r.Downstream.Has(id)
}

// Reach computes the upstream and downstream closure of id.
//
// The closures grow by repeated full passes over the edge list until a pass
// adds nothing. Membership only grows and is bounded by the node count, so
// the loop ends after at most Len() passes even when the graph has cycles.
// An unknown or empty id yields empty closures.
func Reach(g *Graph, id string) Reachability {
	r := Reachability{
		Upstream:     Set{},
		Downstream:   Set{},
		RelatedEdges: Set{},
	}
	if id == "" || !g.Has(id) {
		return r
	}

	r.Selected = id
	r.Upstream[id] = struct{}{}
	r.Downstream[id] = struct{}{}

	for changed := true; changed; {
		changed = false
		for _, e := range g.edges {
			if r.Upstream.Has(e.Target) && !r.Upstream.Has(e.Source) {
				r.Upstream[e.Source] = struct{}{}
				changed = true
			}
			if r.Downstream.Has(e.Source) && !r.Downstream.Has(e.Target) {
				r.Downstream[e.Target] = struct{}{}
				changed = true
			}
		}
	}

	for _, e := range g.edges {
		if r.Related(e.Source) && r.Related(e.Target) {
			r.RelatedEdges[e.ID] = struct{}{}
		}
	}

	return r
}
