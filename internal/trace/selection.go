package trace

// Selection is a single-slot selection. The zero value selects nothing.
type Selection struct {
	id string
	ok bool
}

// Selected returns a selection holding id.
func Selected(id string) Selection {
	return Selection{id: id, ok: true}
}

// Current returns the selected id and whether anything is selected.
func (s Selection) Current() (string, bool) {
	return s.id, s.ok
}

// Is reports whether id is the selected node.
func (s Selection) Is(id string) bool {
	return s.ok && s.id == id
}

// Toggle selects id, or clears the selection when id is already selected.
// A different id replaces the previous selection.
func (s *Selection) Toggle(id string) {
	if s.Is(id) {
		s.Clear()
		return
	}
	s.id, s.ok = id, true
}

// Clear removes the selection.
func (s *Selection) Clear() {
	s.id, s.ok = "", false
}
