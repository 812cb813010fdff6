package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Iris     key.Binding
	Banknote key.Binding
	Standard key.Binding
	CrossVal key.Binding
	Predict  key.Binding
	Up       key.Binding
	Down     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Iris:     key.NewBinding(key.WithKeys("i", "1"), key.WithHelp("i", "iris")),
		Banknote: key.NewBinding(key.WithKeys("b", "2"), key.WithHelp("b", "banknote")),
		Standard: key.NewBinding(key.WithKeys("s", "3"), key.WithHelp("s", "standard")),
		CrossVal: key.NewBinding(key.WithKeys("c", "4"), key.WithHelp("c", "5-fold")),
		Predict:  key.NewBinding(key.WithKeys("enter", "p"), key.WithHelp("enter", "predict")),
		Up:       key.NewBinding(key.WithKeys("up", "k", "pgup"), key.WithHelp("↑/k", "scroll up")),
		Down:     key.NewBinding(key.WithKeys("down", "j", "pgdown"), key.WithHelp("↓/j", "scroll down")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Iris, k.Banknote, k.Standard, k.CrossVal, k.Predict, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Iris, k.Banknote},
		{k.Standard, k.CrossVal},
		{k.Predict, k.Up, k.Down, k.Quit},
	}
}
