package tui

import (
	"strings"

	"actionitems/internal/actionitem/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	addActionLabel = "+ Add Action Item"
	loadingText    = "Loading action items..."
	emptyTitle     = "No action items yet"
	emptyBody      = "Action items from your conversations will appear here."

	// Row layout: cursor marker, checkbox, space, text, space, status glyph.
	sidebarHeaderLines = 2
	rowMarkerWidth     = 2
	checkboxWidth      = 3
	statusWidth        = 1
)

// sidebarModel is the list view. It never talks to the store itself; every
// interaction is handed to the parent through the On* callbacks.
type sidebarModel struct {
	items   []model.ActionItem
	loading bool
	enabled bool
	cursor  int
	offset  int
	width   int
	height  int

	spinner spinner.Model
	keys    sidebarKeyMap

	OnCreateRequested func() tea.Cmd
	OnSelect          func(it model.ActionItem) tea.Cmd
	OnToggle          func(id string, p model.Patch) tea.Cmd
}

func newSidebar() sidebarModel {
	sp := spinner.New(
		spinner.WithSpinner(pendingSpinner()),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(colorAccent)),
	)
	return sidebarModel{
		enabled: true,
		width:   40,
		spinner: sp,
		keys:    newSidebarKeyMap(),
	}
}

func (s sidebarModel) Init() tea.Cmd {
	return s.spinner.Tick
}

func (s sidebarModel) SetItems(items []model.ActionItem, loading bool) sidebarModel {
	s.items = items
	s.loading = loading
	if s.cursor >= len(s.items) {
		s.cursor = len(s.items) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	s.scrollToCursor()
	return s
}

// SetEnabled turns the add action off while there is no notebook or user.
func (s sidebarModel) SetEnabled(enabled bool) sidebarModel {
	s.enabled = enabled
	return s
}

func (s sidebarModel) SetSize(width, height int) sidebarModel {
	s.width = width
	s.height = height
	s.scrollToCursor()
	return s
}

func (s sidebarModel) Selected() (model.ActionItem, bool) {
	if s.loading || s.cursor < 0 || s.cursor >= len(s.items) {
		return model.ActionItem{}, false
	}
	return s.items[s.cursor], true
}

func (s sidebarModel) Update(msg tea.Msg) (sidebarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keys.Up):
			if s.cursor > 0 {
				s.cursor--
			}
			s.scrollToCursor()
		case key.Matches(msg, s.keys.Down):
			if s.cursor < len(s.items)-1 {
				s.cursor++
			}
			s.scrollToCursor()
		case key.Matches(msg, s.keys.Add):
			return s, s.requestCreate()
		case key.Matches(msg, s.keys.Open):
			if it, ok := s.Selected(); ok {
				return s, s.selectItem(it)
			}
		case key.Matches(msg, s.keys.Toggle):
			if it, ok := s.Selected(); ok {
				return s, s.toggle(it)
			}
		}

	case tea.MouseMsg:
		return s.handleMouse(msg)
	}
	return s, nil
}

// handleMouse expects coordinates relative to the sidebar's top-left cell.
// A press on the checkbox cell only toggles; anywhere else on the row opens
// the item.
func (s sidebarModel) handleMouse(msg tea.MouseMsg) (sidebarModel, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return s, nil
	}
	if msg.Y == 0 {
		return s, s.requestCreate()
	}
	if s.loading {
		return s, nil
	}

	row := msg.Y - sidebarHeaderLines
	if row < 0 {
		return s, nil
	}
	idx := s.offset + row
	if idx >= len(s.items) {
		return s, nil
	}
	s.cursor = idx
	it := s.items[idx]

	if msg.X >= rowMarkerWidth && msg.X < rowMarkerWidth+checkboxWidth {
		return s, s.toggle(it)
	}
	return s, s.selectItem(it)
}

func (s sidebarModel) requestCreate() tea.Cmd {
	if !s.enabled || s.OnCreateRequested == nil {
		return nil
	}
	return s.OnCreateRequested()
}

func (s sidebarModel) selectItem(it model.ActionItem) tea.Cmd {
	if s.OnSelect == nil {
		return nil
	}
	return s.OnSelect(it)
}

func (s sidebarModel) toggle(it model.ActionItem) tea.Cmd {
	if s.OnToggle == nil {
		return nil
	}
	return s.OnToggle(it.ID, model.Patch{IsCompleted: model.Completed(!it.IsCompleted)})
}

func (s sidebarModel) visibleRows() int {
	if s.height <= sidebarHeaderLines {
		return len(s.items)
	}
	return s.height - sidebarHeaderLines
}

func (s *sidebarModel) scrollToCursor() {
	rows := s.visibleRows()
	if rows <= 0 {
		s.offset = 0
		return
	}
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+rows {
		s.offset = s.cursor - rows + 1
	}
	if last := len(s.items) - rows; s.offset > last {
		s.offset = last
	}
	if s.offset < 0 {
		s.offset = 0
	}
}

func (s sidebarModel) View() string {
	w := s.width
	if w <= 0 {
		w = 40
	}

	header := styleButton().Render(addActionLabel)
	if !s.enabled {
		header = styleMuted().Render(addActionLabel)
	}
	lines := []string{header, styleMuted().Render(strings.Repeat(glyphRule(), w))}

	switch {
	case s.loading:
		lines = append(lines, "", styleMuted().Render(loadingText))
	case len(s.items) == 0:
		lines = append(lines,
			"",
			styleHeading().Render(emptyTitle),
			styleMuted().Width(w).Render(emptyBody),
		)
	default:
		end := s.offset + s.visibleRows()
		if end > len(s.items) {
			end = len(s.items)
		}
		for idx := s.offset; idx < end; idx++ {
			lines = append(lines, s.renderRow(idx, w))
		}
	}
	return strings.Join(lines, "\n")
}

func (s sidebarModel) renderRow(idx, w int) string {
	it := s.items[idx]

	marker := "  "
	if idx == s.cursor {
		marker = lipgloss.NewStyle().Foreground(colorAccent).Render(glyphCursor()) + " "
	}

	textW := w - rowMarkerWidth - checkboxWidth - 1 - 1 - statusWidth
	text := padRight(truncateToWidth(it.ActionText, textW), textW)

	var status string
	if it.IsCompleted {
		text = styleCompleted().Render(text)
		status = lipgloss.NewStyle().Foreground(colorSuccess).Render(glyphDone())
	} else {
		status = s.spinner.View()
	}
	if idx == s.cursor && !it.IsCompleted {
		text = styleSelected().Render(text)
	}

	return marker + glyphCheckbox(it.IsCompleted) + " " + text + " " + status
}
