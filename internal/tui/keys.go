package tui

import "github.com/charmbracelet/bubbles/key"

type homeKeyMap struct {
	Save key.Binding
	Open key.Binding
	Quit key.Binding
}

func (k homeKeyMap) ShortHelp() []key.Binding { return []key.Binding{k.Save, k.Open, k.Quit} }
func (k homeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type panelKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Copy   key.Binding
	Delete key.Binding
	Save   key.Binding
	View   key.Binding
	Close  key.Binding
	Toggle key.Binding
	Quit   key.Binding
}

func (k panelKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Copy, k.Delete, k.Save, k.View, k.Close}
}

func (k panelKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Copy, k.Delete, k.Save, k.View},
		{k.Close, k.Toggle, k.Quit},
	}
}

var homeKeys = homeKeyMap{
	Save: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save clipboard")),
	Open: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open manager")),
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

var panelKeys = panelKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Copy:   key.NewBinding(key.WithKeys("enter", "c"), key.WithHelp("enter/c", "copy")),
	Delete: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	Save:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save current")),
	View:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view full")),
	Close:  key.NewBinding(key.WithKeys("esc", "x"), key.WithHelp("esc/x", "close")),
	Toggle: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "toggle panel")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
