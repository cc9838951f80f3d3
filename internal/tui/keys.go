package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Left   key.Binding
	Right  key.Binding
	Raise  key.Binding
	Lower  key.Binding
	Reset  key.Binding
	Panel  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func (km keyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.Up, km.Down, km.Toggle, km.Reset, km.Help, km.Quit}
}

func (km keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{km.Up, km.Down, km.Toggle},
		{km.Left, km.Right, km.Raise, km.Lower},
		{km.Reset, km.Panel, km.Help, km.Quit},
	}
}

func newKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev node"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next node"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Left: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "move left"),
		),
		Right: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "move right"),
		),
		Raise: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "move up"),
		),
		Lower: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "move down"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset layout"),
		),
		Panel: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "close/open"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
