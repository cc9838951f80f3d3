// Package tui is a terminal explorer over one trace view.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/leapstack-labs/simtrace/internal/cli/output"
	"github.com/leapstack-labs/simtrace/internal/config"
	"github.com/leapstack-labs/simtrace/internal/trace"
)

// Model is the bubbletea model for the explorer.
type Model struct {
	name     string
	view     *trace.View
	styles   *output.Styles
	keys     keyMap
	help     help.Model
	cursor   int
	width    int
	quitting bool
}

// New creates an explorer for v. name is shown in the title.
func New(name string, v *trace.View, styles *output.Styles) Model {
	return Model{
		name:   name,
		view:   v,
		styles: styles,
		keys:   newKeyMap(),
		help:   help.New(),
		width:  80,
	}
}

// Run starts the explorer and blocks until the user quits or ctx ends.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Cursor returns the id of the node under the cursor.
func (m Model) Cursor() string {
	nodes := m.view.Graph().Nodes()
	if len(nodes) == 0 {
		return ""
	}
	return nodes[m.cursor].ID
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Panel) {
		if m.view.Visible() {
			m.view.Close()
		} else {
			m.view.Open()
		}
		return m, nil
	}
	if !m.view.Visible() {
		return m, nil
	}

	last := m.view.Graph().Len() - 1
	step := config.DefaultGridStep

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < last {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		_ = m.view.Click(m.Cursor())
	case key.Matches(msg, m.keys.Left):
		_ = m.view.Drag(m.Cursor(), trace.Position{X: -step})
	case key.Matches(msg, m.keys.Right):
		_ = m.view.Drag(m.Cursor(), trace.Position{X: step})
	case key.Matches(msg, m.keys.Raise):
		_ = m.view.Drag(m.Cursor(), trace.Position{Y: -step})
	case key.Matches(msg, m.keys.Lower):
		_ = m.view.Drag(m.Cursor(), trace.Position{Y: step})
	case key.Matches(msg, m.keys.Reset):
		m.view.ResetLayout()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Header.Render(m.name))
	b.WriteString("\n\n")

	if !m.view.Visible() {
		b.WriteString(m.styles.Muted.Render("Trace panel closed."))
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keys))
		return b.String()
	}

	f := m.view.Frame()
	for i, n := range f.Nodes {
		marker := "  "
		if i == m.cursor {
			marker = m.styles.Related.Render("> ")
		}
		fmt.Fprintf(&b, "%s%-8s %s %s\n",
			marker,
			m.styles.Category(n.Category).Render(n.Category.Title()),
			m.styles.Node(n),
			m.styles.Muted.Render(fmt.Sprintf("(%g, %g) %s", n.Position.X, n.Position.Y, n.State)),
		)
	}

	var related []string
	for _, e := range f.Edges {
		if e.State == trace.EdgeRelated {
			related = append(related, e.Source+" -> "+e.Target)
		}
	}
	b.WriteString("\n")
	if len(related) > 0 {
		b.WriteString(m.styles.Header2.Render("Related edges"))
		b.WriteString("\n")
		for _, r := range related {
			b.WriteString("  " + m.styles.Related.Render(r) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Muted.Render(f.Hint))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
