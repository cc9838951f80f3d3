package tui

import (
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/simtrace/internal/cli/output"
	"github.com/leapstack-labs/simtrace/internal/testutil"
	"github.com/leapstack-labs/simtrace/internal/trace"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	c := testutil.CompileScenario(t)
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return New(c.Name, trace.NewView(c.Graph, c.Layout), output.NewStyles(r))
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func TestModel_CursorMovement(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, "K", m.Cursor())

	m = send(t, m, runes("k"))
	assert.Equal(t, "K", m.Cursor(), "cursor stops at the first node")

	m = send(t, m, runes("j"), tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "P2", m.Cursor())

	m = send(t, m, runes("j"), runes("j"), runes("j"))
	assert.Equal(t, "M", m.Cursor(), "cursor stops at the last node")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "P2", m.Cursor())
}

func TestModel_ToggleSelection(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, runes("j"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.view.Selection().Is("P1"))

	f := m.view.Frame()
	assert.Equal(t, []string{"K", "P1"}, f.Upstream)
	assert.Equal(t, []string{"M", "P1"}, f.Downstream)

	view := m.View()
	assert.Contains(t, view, "Related edges")
	assert.Contains(t, view, "K -> P1")
	assert.Contains(t, view, "P1 -> M")
	assert.NotContains(t, view, "K -> P2")
	assert.Contains(t, view, "Motor power: 1 upstream, 1 downstream")

	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	_, ok := m.view.Selection().Current()
	assert.False(t, ok, "second toggle clears the selection")
	assert.NotContains(t, m.View(), "Related edges")
}

func TestModel_DragAndReset(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, runes("L"), runes("L"), runes("J"))
	p, _ := m.view.Layout().Position("K")
	assert.Equal(t, trace.Position{X: 20, Y: 110}, p)

	m = send(t, m, runes("H"), runes("K"), runes("K"))
	p, _ = m.view.Layout().Position("K")
	assert.Equal(t, trace.Position{X: 10, Y: 90}, p)
	assert.Contains(t, m.View(), "(10, 90)")

	m = send(t, m, runes("r"))
	p, _ = m.view.Layout().Position("K")
	assert.Equal(t, trace.Position{X: 0, Y: 100}, p)
}

func TestModel_PanelToggleKeepsState(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter}, runes("x"))

	assert.False(t, m.view.Visible())
	assert.Contains(t, m.View(), "Trace panel closed.")

	// Navigation is ignored while closed.
	m = send(t, m, runes("j"), runes("L"))
	assert.Equal(t, "K", m.Cursor())
	p, _ := m.view.Layout().Position("K")
	assert.Equal(t, trace.Position{X: 0, Y: 100}, p)

	m = send(t, m, runes("x"))
	assert.True(t, m.view.Visible())
	assert.True(t, m.view.Selection().Is("K"), "selection survives close and open")
}

func TestModel_Quit(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{"q", runes("q")},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)
			next, cmd := m.Update(tt.msg)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
			assert.Empty(t, next.View())
		})
	}
}

func TestModel_WindowSizeAndHelp(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.width)
	assert.Contains(t, m.View(), "quit")
	assert.NotContains(t, m.View(), "move left")

	m = send(t, m, runes("?"))
	assert.Contains(t, m.View(), "move left")
	assert.Nil(t, m.Init())
}
