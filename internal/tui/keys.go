package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Submit   key.Binding
	Up       key.Binding
	Down     key.Binding
	Complete key.Binding
	Copy     key.Binding
	Close    key.Binding
	Open     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
		Up:       key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "older input")),
		Down:     key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "newer input")),
		Complete: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "complete")),
		Copy:     key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy result")),
		Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Open:     key.NewBinding(key.WithKeys("`", "f1"), key.WithHelp("` / f1", "open console")),
		Help:     key.NewBinding(key.WithKeys("f2"), key.WithHelp("f2", "help")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Up, k.Complete, k.Close, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Up, k.Down, k.Complete},
		{k.Copy, k.Close, k.Open, k.Help, k.Quit},
	}
}
