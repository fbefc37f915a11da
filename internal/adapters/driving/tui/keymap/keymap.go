// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Up scrolls or navigates up.
	Up key.Binding

	// Down scrolls or navigates down.
	Down key.Binding

	// PageUp scrolls a viewport height up.
	PageUp key.Binding

	// PageDown scrolls a viewport height down.
	PageDown key.Binding

	// NextPage jumps to the next page.
	NextPage key.Binding

	// PrevPage jumps to the previous page.
	PrevPage key.Binding

	// ZoomIn increases the zoom one step.
	ZoomIn key.Binding

	// ZoomOut decreases the zoom one step.
	ZoomOut key.Binding

	// ZoomReset returns the zoom to 100%.
	ZoomReset key.Binding

	// Outline toggles the outline view.
	Outline key.Binding

	// Annotations toggles the annotation list view.
	Annotations key.Binding

	// Highlight toggles highlight capture mode.
	Highlight key.Binding

	// Select confirms a selection.
	Select key.Binding

	// Delete removes the selected annotation.
	Delete key.Binding

	// Edit opens the comment editor on the selected annotation.
	Edit key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "half page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "half page down"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n", "]"),
			key.WithHelp("n", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "["),
			key.WithHelp("p", "prev page"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "zoom out"),
		),
		ZoomReset: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "reset zoom"),
		),
		Outline: key.NewBinding(
			key.WithKeys("o", "tab"),
			key.WithHelp("o", "outline"),
		),
		Annotations: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "annotations"),
		),
		Highlight: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "highlight mode"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "x"),
			key.WithHelp("d", "delete"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit comment"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Outline, k.Annotations, k.Highlight, k.Help, k.Quit}
}

// ReaderHelp returns keybindings for the reader view.
func (k *KeyMap) ReaderHelp() []key.Binding {
	return []key.Binding{k.Up, k.NextPage, k.ZoomIn, k.Highlight, k.Quit}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.NextPage, k.PrevPage, k.ZoomIn, k.ZoomOut, k.ZoomReset},
		{k.Outline, k.Annotations, k.Highlight, k.Select, k.Edit, k.Delete},
		{k.Help, k.Back, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
