package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JohnDeved/mediaseek/internal/nav"
)

// keyMap holds the bindings that are not plain text input.
// Only arrow keys navigate so letters always reach the query field.
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Backspace key.Binding
	Enter     key.Binding
	Back      key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "right"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("⌫", "delete"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// translate turns a terminal key press into engine key events.
// A paste or a burst of runes yields one event per rune.
func (k keyMap) translate(msg tea.KeyMsg) []nav.KeyEvent {
	switch {
	case key.Matches(msg, k.Quit):
		return []nav.KeyEvent{{Key: nav.KeyQuit}}
	case key.Matches(msg, k.Up):
		return []nav.KeyEvent{{Key: nav.KeyUp}}
	case key.Matches(msg, k.Down):
		return []nav.KeyEvent{{Key: nav.KeyDown}}
	case key.Matches(msg, k.Left):
		return []nav.KeyEvent{{Key: nav.KeyLeft}}
	case key.Matches(msg, k.Right):
		return []nav.KeyEvent{{Key: nav.KeyRight}}
	case key.Matches(msg, k.Backspace):
		return []nav.KeyEvent{{Key: nav.KeyBackspace}}
	case key.Matches(msg, k.Enter):
		return []nav.KeyEvent{{Key: nav.KeyEnter}}
	case key.Matches(msg, k.Back):
		return []nav.KeyEvent{{Key: nav.KeyEsc}}
	}

	switch msg.Type {
	case tea.KeyRunes, tea.KeySpace:
		events := make([]nav.KeyEvent, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			events = append(events, nav.KeyEvent{Key: nav.KeyRune, Rune: r})
		}
		return events
	}
	return nil
}

// screenHelp adapts keyMap to help.KeyMap for the active screen.
type screenHelp struct {
	keys    keyMap
	screen  nav.Screen
	loading bool
}

func (h screenHelp) ShortHelp() []key.Binding {
	k := h.keys
	if h.loading {
		return []key.Binding{withHelp(k.Back, "cancel"), k.Quit}
	}
	switch h.screen.(type) {
	case nav.Query:
		return []key.Binding{withHelp(k.Enter, "search"), withHelp(k.Back, "quit")}
	case nav.Results:
		return []key.Binding{k.Up, k.Down, withHelp(k.Enter, "details"), k.Back, k.Quit}
	case nav.Downloads:
		return []key.Binding{k.Up, k.Down, withHelp(k.Enter, "files"), k.Back, k.Quit}
	case nav.Files:
		return []key.Binding{k.Up, k.Down, k.Back, k.Quit}
	}
	return nil
}

func (h screenHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}

func withHelp(b key.Binding, desc string) key.Binding {
	b.SetHelp(b.Help().Key, desc)
	return b
}
