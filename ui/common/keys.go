package common

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings shared by the list views
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Refresh  key.Binding
	Back     key.Binding
}

var Keys = KeyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	PrevPage: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
	NextPage: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
	Refresh:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),
	Back:     key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "back")),
}

// HelpLine renders bindings as "k: desc • k: desc"
func HelpLine(bindings ...key.Binding) string {
	s := ""
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		if s != "" {
			s += " • "
		}
		h := b.Help()
		s += h.Key + ": " + h.Desc
	}
	return s
}
