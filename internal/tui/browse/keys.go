package browse

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	cycleSort  key.Binding
	cycleGroup key.Binding
	toggleNSFW key.Binding
	copy       key.Binding
	refresh    key.Binding
	quit       key.Binding
	up         key.Binding
	down       key.Binding
	pageUp     key.Binding
	pageDown   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		cycleSort: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "sort"),
		),
		cycleGroup: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "group"),
		),
		toggleNSFW: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "nsfw"),
		),
		copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy activation"),
		),
		refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh"),
		),
		quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
		up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		pageUp: key.NewBinding(
			key.WithKeys("pgup"),
		),
		pageDown: key.NewBinding(
			key.WithKeys("pgdown"),
		),
	}
}

func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.up, k.down, k.cycleSort, k.cycleGroup, k.toggleNSFW, k.copy, k.refresh, k.quit}
}
