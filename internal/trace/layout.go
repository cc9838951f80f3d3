package trace

import "fmt"

// Position is a point on the canvas. No bounds apply.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns p translated by d.
func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// Layout tracks the current position of every node, seeded from an
// immutable default table.
type Layout struct {
	defaults map[string]Position
	current  map[string]Position
}

// NewLayout creates a layout whose current positions equal defaults.
// The table is copied.
func NewLayout(defaults map[string]Position) *Layout {
	l := &Layout{
		defaults: make(map[string]Position, len(defaults)),
		current:  make(map[string]Position, len(defaults)),
	}
	for id, p := range defaults {
		l.defaults[id] = p
		l.current[id] = p
	}
	return l
}

// Position returns the current position of id.
func (l *Layout) Position(id string) (Position, bool) {
	p, ok := l.current[id]
	return p, ok
}

// Default returns the default position of id.
func (l *Layout) Default(id string) (Position, bool) {
	p, ok := l.defaults[id]
	return p, ok
}

// Positions returns a copy of the current positions.
func (l *Layout) Positions() map[string]Position {
	out := make(map[string]Position, len(l.current))
	for id, p := range l.current {
		out[id] = p
	}
	return out
}

// Move overwrites the position of id.
func (l *Layout) Move(id string, p Position) error {
	if _, ok := l.defaults[id]; !ok {
		return fmt.Errorf("move %q: %w", id, ErrUnknownNode)
	}
	l.current[id] = p
	return nil
}

// Drag translates the position of id by delta.
func (l *Layout) Drag(id string, delta Position) error {
	p, ok := l.current[id]
	if !ok {
		return fmt.Errorf("drag %q: %w", id, ErrUnknownNode)
	}
	l.current[id] = p.Add(delta)
	return nil
}

// Reset restores every position to its default.
func (l *Layout) Reset() {
	l.current = make(map[string]Position, len(l.defaults))
	for id, p := range l.defaults {
		l.current[id] = p
	}
}
