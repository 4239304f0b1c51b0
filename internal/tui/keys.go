package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Start  key.Binding
	Break  key.Binding
	Resume key.Binding
	LogOut key.Binding
	Submit key.Binding
	Close  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Start: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start"),
	),
	Break: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "take break"),
	),
	Resume: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "end break"),
	),
	LogOut: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "log out"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "submit"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// timerHelp lists the bindings of the timer screen.
type timerHelp keyMap

func (k timerHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Break, k.Resume, k.LogOut, k.Quit}
}

func (k timerHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Break, k.Resume},
		{k.LogOut, k.Help, k.Quit},
	}
}

// modalHelp lists the bindings of the end-of-session dialog.
type modalHelp keyMap

func (k modalHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Close}
}

func (k modalHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.Close}}
}
