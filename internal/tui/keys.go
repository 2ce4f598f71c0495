package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Panel   key.Binding
	Refresh key.Binding
	Sort    key.Binding
	Order   key.Binding
	Search  key.Binding
	Clear   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	Panel:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch panel")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh now")),
	Sort:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle sort field")),
	Order:   key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "toggle sort order")),
	Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Clear:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
