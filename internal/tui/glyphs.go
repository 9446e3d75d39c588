package tui

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
)

// Some fonts render the check mark and braille spinner badly, so every glyph
// has an ASCII twin selected with ACTIONITEMS_TUI_GLYPHS=ascii.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

func applyGlyphPreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ACTIONITEMS_TUI_GLYPHS"))) {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	defer glyphsMu.RUnlock()
	return currentGlyphs
}

func glyphCheckbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

func glyphDone() string {
	if glyphs() == glyphSetASCII {
		return "v"
	}
	return "✓"
}

func glyphCursor() string {
	if glyphs() == glyphSetASCII {
		return ">"
	}
	return "▸"
}

func pendingSpinner() spinner.Spinner {
	if glyphs() == glyphSetASCII {
		return spinner.Line
	}
	return spinner.MiniDot
}

func glyphRule() string {
	if glyphs() == glyphSetASCII {
		return "-"
	}
	return "─"
}
