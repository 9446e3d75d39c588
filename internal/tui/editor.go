package tui

import (
	"strings"

	"actionitems/internal/actionitem/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	editTitle         = "Edit Action Item"
	newTitle          = "New Action Item"
	completedLabel    = "Mark as completed"
	saveLabel         = "Save"
	savingLabel       = "Saving..."
	cancelLabel       = "Cancel"
	deleteLabel       = "Delete"
	deleteDialogTitle = "Delete Action Item?"
	deleteDialogBody  = "This action cannot be undone. The action item will be permanently deleted."
	saveHint          = "Press Ctrl+Enter to save"
	cancelHint        = "Press Escape to cancel"
)

type editorState int

const (
	editorEditing editorState = iota
	editorConfirmingDelete
)

// editorModel edits one action item, or drafts a new one when item is nil.
// It holds only local field state; saving and deleting go through the
// parent's callbacks.
type editorModel struct {
	item      *model.ActionItem
	text      textarea.Model
	completed bool
	saving    bool

	state        editorState
	confirmFocus confirmModalFocus

	width  int
	height int

	keys        editorKeyMap
	confirmKeys confirmKeyMap

	OnSave   func(text string, completed bool) tea.Cmd
	OnCancel func() tea.Cmd
	OnDelete func() tea.Cmd
}

func newEditor(item *model.ActionItem) editorModel {
	ta := textarea.New()
	ta.Placeholder = "Describe the action item..."
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(56)
	ta.SetHeight(8)
	ta.Focus()

	e := editorModel{
		text:        ta,
		width:       60,
		keys:        newEditorKeyMap(),
		confirmKeys: newConfirmKeyMap(),
	}
	e.resync(item)
	return e
}

// SetItem loads a different item into the editor. Passing the item the editor
// already holds keeps the user's unsaved edits.
func (e editorModel) SetItem(item *model.ActionItem) editorModel {
	if item == e.item {
		return e
	}
	e.resync(item)
	return e
}

// Bind attaches item to the editor without touching the fields, turning a
// draft into an edit of item.
func (e editorModel) Bind(item *model.ActionItem) editorModel {
	e.item = item
	return e
}

// resync loads item into the fields. A nil item clears them rather than
// keeping the previous item's text as a draft.
func (e *editorModel) resync(item *model.ActionItem) {
	e.item = item
	if item == nil {
		e.text.SetValue("")
		e.completed = false
		return
	}
	e.text.SetValue(item.ActionText)
	e.completed = item.IsCompleted
}

// SetSaving reflects whether the parent has a save in flight.
func (e editorModel) SetSaving(saving bool) editorModel {
	e.saving = saving
	return e
}

func (e editorModel) SetSize(width, height int) editorModel {
	e.width = width
	e.height = height
	if width > 4 {
		e.text.SetWidth(width - 4)
	}
	if height > 8 {
		e.text.SetHeight(height - 8)
	}
	return e
}

func (e editorModel) Item() *model.ActionItem { return e.item }
func (e editorModel) Value() string            { return e.text.Value() }
func (e editorModel) Completed() bool          { return e.completed }
func (e editorModel) State() editorState       { return e.state }

func (e editorModel) canSave() bool {
	return !e.saving && model.NormalizeText(e.text.Value()) != ""
}

func (e editorModel) canDelete() bool {
	return e.item != nil && e.OnDelete != nil && !e.saving
}

func (e editorModel) Update(msg tea.Msg) (editorModel, tea.Cmd) {
	if e.state == editorConfirmingDelete {
		return e.updateConfirm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		e.text, cmd = e.text.Update(msg)
		return e, cmd
	}

	switch {
	case key.Matches(km, e.keys.Cancel):
		if e.OnCancel == nil {
			return e, nil
		}
		return e, e.OnCancel()

	case key.Matches(km, e.keys.Save):
		return e, e.save()

	case key.Matches(km, e.keys.ToggleCompleted):
		if !e.saving {
			e.completed = !e.completed
		}
		return e, nil

	case key.Matches(km, e.keys.Delete):
		if e.canDelete() {
			e.state = editorConfirmingDelete
			e.confirmFocus = confirmFocusCancel
		}
		return e, nil
	}

	if e.saving {
		return e, nil
	}
	var cmd tea.Cmd
	e.text, cmd = e.text.Update(msg)
	return e, cmd
}

func (e editorModel) save() tea.Cmd {
	if !e.canSave() || e.OnSave == nil {
		return nil
	}
	return e.OnSave(model.NormalizeText(e.text.Value()), e.completed)
}

func (e editorModel) updateConfirm(msg tea.Msg) (editorModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return e, nil
	}

	switch {
	case key.Matches(km, e.confirmKeys.Confirm):
		return e.confirmDelete()
	case key.Matches(km, e.confirmKeys.Cancel):
		e.state = editorEditing
	case key.Matches(km, e.confirmKeys.Focus):
		e.confirmFocus = e.confirmFocus.other()
	case key.Matches(km, e.confirmKeys.Select):
		if e.confirmFocus == confirmFocusConfirm {
			return e.confirmDelete()
		}
		e.state = editorEditing
	}
	return e, nil
}

func (e editorModel) confirmDelete() (editorModel, tea.Cmd) {
	e.state = editorEditing
	if e.OnDelete == nil {
		return e, nil
	}
	return e, e.OnDelete()
}

func (e editorModel) View() string {
	if e.state == editorConfirmingDelete {
		modal := renderConfirmModal(e.width, deleteDialogTitle, deleteDialogBody, deleteLabel, cancelLabel, e.confirmFocus)
		if e.height > 0 {
			return lipgloss.Place(e.width, e.height, lipgloss.Center, lipgloss.Center, modal)
		}
		return modal
	}

	title := newTitle
	if e.item != nil {
		title = editTitle
	}

	var buttons []string
	if e.item != nil && e.OnDelete != nil {
		del := styleButton().Foreground(colorDanger)
		if e.saving {
			del = styleButton().Foreground(colorMuted)
		}
		buttons = append(buttons, del.Render(deleteLabel))
	}
	switch {
	case e.saving:
		buttons = append(buttons, styleButtonActive().Render(savingLabel))
	case e.canSave():
		buttons = append(buttons, styleButtonActive().Render(saveLabel))
	default:
		buttons = append(buttons, styleButton().Foreground(colorMuted).Render(saveLabel))
	}

	header := styleHeading().Render(title)
	controls := strings.Join(buttons, " ")
	gap := e.width - lipgloss.Width(header) - lipgloss.Width(controls)
	if gap < 1 {
		gap = 1
	}

	completed := glyphCheckbox(e.completed) + " " + completedLabel

	return strings.Join([]string{
		header + strings.Repeat(" ", gap) + controls,
		completed,
		"",
		e.text.View(),
		"",
		styleMuted().Render(saveHint + "    " + cancelHint),
	}, "\n")
}
