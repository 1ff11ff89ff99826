package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keyboard bindings for the console.
type KeyMap struct {
	Templates     key.Binding
	Notifications key.Binding
	Composer      key.Binding
	NextTab       key.Binding
	Reconnect     key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Templates: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "templates"),
		),
		Notifications: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "notifications"),
		),
		Composer: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "broadcast"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next screen"),
		),
		Reconnect: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reconnect"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
