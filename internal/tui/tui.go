package tui

import (
	"context"

	"actionitems/internal/actionitem/query"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the action items of scope until the user quits. feed may be nil,
// in which case the list only refreshes after this session's own writes.
func Run(ctx context.Context, items *query.Items, feed Feed, scope query.Scope) error {
	applyColorProfilePreference()
	applyGlyphPreference()

	m := newAppModel(ctx, items, feed, scope)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run()
	return err
}
