package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

func (f confirmModalFocus) other() confirmModalFocus {
	if f == confirmFocusConfirm {
		return confirmFocusCancel
	}
	return confirmFocusConfirm
}

func renderConfirmModal(width int, title, body, confirmLabel, cancelLabel string, focus confirmModalFocus) string {
	confirmActive := styleButtonActive().Background(colorDanger)

	confirm := styleButton().Foreground(colorDanger).Render(confirmLabel)
	cancel := styleButton().Render(cancelLabel)
	if focus == confirmFocusConfirm {
		confirm = confirmActive.Render(confirmLabel)
	}
	if focus == confirmFocusCancel {
		cancel = styleButtonActive().Render(cancelLabel)
	}
	controls := lipgloss.JoinHorizontal(lipgloss.Top, cancel, " ", confirm)

	bodyW := modalBodyWidth(width)
	content := strings.Join([]string{
		styleHeading().Render(title),
		"",
		lipgloss.NewStyle().Width(bodyW).Render(body),
		"",
		controls,
		"",
		styleMuted().Width(bodyW).Render("tab: focus   enter: select   y: delete   n/esc: cancel"),
	}, "\n")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(1, 2).
		Render(content)
}

func modalBodyWidth(width int) int {
	w := width - 8
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}
