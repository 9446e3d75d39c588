package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// truncateToWidth flattens s onto one line and cuts it to w cells.
func truncateToWidth(s string, w int) string {
	s = strings.Join(strings.Fields(s), " ")
	if w <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= w {
		return s
	}
	if w <= 1 {
		return "…"
	}
	return xansi.Cut(s, 0, w-1) + "…"
}

func padRight(s string, w int) string {
	if cur := xansi.StringWidth(s); cur < w {
		return s + strings.Repeat(" ", w-cur)
	}
	return s
}
