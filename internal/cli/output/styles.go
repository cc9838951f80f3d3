package output

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/simtrace/internal/trace"
)

// Colors shared by the CLI and the terminal explorer.
var (
	ColorKPI   = lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#f59e0b"}
	ColorParam = lipgloss.AdaptiveColor{Light: "#1d4ed8", Dark: "#60a5fa"}
	ColorModel = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34d399"}
	ColorMuted = lipgloss.AdaptiveColor{Light: "#9ca3af", Dark: "#6b7280"}
	ColorFocus = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#c084fc"}
)

// Styles holds the lipgloss styles used for rendering.
type Styles struct {
	Header  lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	ID      lipgloss.Style

	KPI   lipgloss.Style
	Param lipgloss.Style
	Model lipgloss.Style

	Selected    lipgloss.Style
	Highlighted lipgloss.Style
	Dimmed      lipgloss.Style
	Related     lipgloss.Style
}

// NewStyles builds styles bound to a lipgloss renderer.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header:  r.NewStyle().Bold(true).Underline(true),
		Header2: r.NewStyle().Bold(true),
		Bold:    r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(ColorMuted),
		Success: r.NewStyle().Foreground(lipgloss.Color("2")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("3")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		ID:      r.NewStyle().Foreground(ColorMuted).Italic(true),

		KPI:   r.NewStyle().Foreground(ColorKPI),
		Param: r.NewStyle().Foreground(ColorParam),
		Model: r.NewStyle().Foreground(ColorModel),

		Selected:    r.NewStyle().Bold(true).Reverse(true),
		Highlighted: r.NewStyle().Bold(true),
		Dimmed:      r.NewStyle().Faint(true),
		Related:     r.NewStyle().Foreground(ColorFocus),
	}
}

// Category returns the style for a node category.
func (s *Styles) Category(c trace.Category) lipgloss.Style {
	switch c {
	case trace.CategoryKPI:
		return s.KPI
	case trace.CategoryParam:
		return s.Param
	case trace.CategoryModel:
		return s.Model
	default:
		return s.Bold
	}
}

// Node renders a node label with its category color and visual state.
func (s *Styles) Node(n trace.NodeView) string {
	style := s.Category(n.Category)
	switch n.State {
	case trace.NodeSelected:
		style = style.Inherit(s.Selected)
	case trace.NodeHighlighted:
		style = style.Inherit(s.Highlighted)
	case trace.NodeDimmed:
		style = s.Dimmed
	}
	return style.Render(n.Label())
}
