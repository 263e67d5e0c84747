package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Pause    key.Binding
	Stop     key.Binding
	Next     key.Binding
	Prev     key.Binding
	SeekBack key.Binding
	SeekFwd  key.Binding
	VolUp    key.Binding
	VolDown  key.Binding
	Repeat   key.Binding
	Open     key.Binding
	Parent   key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Pause:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		Stop:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n/p", "track")),
		Prev:     key.NewBinding(key.WithKeys("p")),
		SeekBack: key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "seek")),
		SeekFwd:  key.NewBinding(key.WithKeys("right")),
		VolUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "volume")),
		VolDown:  key.NewBinding(key.WithKeys("-")),
		Repeat:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repeat")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play/open")),
		Parent:   key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "up")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Stop, k.Next, k.SeekBack, k.VolUp, k.Repeat, k.Open, k.Parent, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
