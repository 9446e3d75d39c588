package tui

import "github.com/charmbracelet/bubbles/key"

type sidebarKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Add    key.Binding
	Open   key.Binding
	Toggle key.Binding
}

func newSidebarKeyMap() sidebarKeyMap {
	return sidebarKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
		Toggle: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space/x", "toggle done")),
	}
}

// Ctrl+Enter is indistinguishable from Enter on most terminals; they send it
// as ctrl+j (LF), so that is the primary save chord.
type editorKeyMap struct {
	Save            key.Binding
	Cancel          key.Binding
	ToggleCompleted key.Binding
	Delete          key.Binding
}

func newEditorKeyMap() editorKeyMap {
	return editorKeyMap{
		Save:            key.NewBinding(key.WithKeys("ctrl+j", "ctrl+s", "alt+enter"), key.WithHelp("ctrl+enter", "save")),
		Cancel:          key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		ToggleCompleted: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "toggle completed")),
		Delete:          key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
	}
}

type confirmKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
	Focus   key.Binding
	Select  key.Binding
}

func newConfirmKeyMap() confirmKeyMap {
	return confirmKeyMap{
		Confirm: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "delete")),
		Cancel:  key.NewBinding(key.WithKeys("n", "esc", "ctrl+g"), key.WithHelp("n/esc", "cancel")),
		Focus:   key.NewBinding(key.WithKeys("tab", "shift+tab", "left", "right", "h", "l"), key.WithHelp("tab", "focus")),
		Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	}
}
