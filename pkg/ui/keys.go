package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the key bindings of both players.
type KeyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Jump     key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	NextLink key.Binding
	PrevLink key.Binding
	Activate key.Binding
	Clear    key.Binding
	Autoplay key.Binding
	Copy     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the dynamic player bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next:     key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next")),
		Prev:     key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "prev")),
		Jump:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "jump")),
		NextTab:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "file")),
		PrevTab:  key.NewBinding(key.WithKeys("shift+tab")),
		NextLink: key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/k", "links")),
		PrevLink: key.NewBinding(key.WithKeys("k", "up")),
		Activate: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "focus")),
		Clear:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Autoplay: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "autoplay")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// StaticKeyMap returns the static player bindings. Up/down, j/k and paging
// belong to the viewport there, so the link cursor moves with tab.
func StaticKeyMap() KeyMap {
	km := DefaultKeyMap()
	km.NextLink = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next link"))
	km.PrevLink = key.NewBinding(key.WithKeys("shift+tab"))
	km.Activate = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "scroll to link"))
	return km
}

// DynamicHelp lists the bindings shown in the dynamic help bar.
func (k KeyMap) DynamicHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.NextTab, k.NextLink, k.Activate, k.Autoplay, k.Copy, k.Quit}
}

// StaticHelp lists the bindings shown in the static help bar.
func (k KeyMap) StaticHelp() []key.Binding {
	return []key.Binding{k.NextLink, k.Activate, k.Clear, k.Copy, k.Quit}
}
