// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/loreline-tui/internal/ui/styles"
	"github.com/jeranaias/loreline-tui/internal/util"
)

// StatusBarState is everything the status bar displays.
type StatusBarState struct {
	Connected bool
	Email     string
	Autoplay  bool
	Width     int
}

// shortcut hints shown on the right edge.
var shortcuts = []struct{ key, desc string }{
	{"tab", "focus"},
	{"^n", "new"},
	{"^o", "attach"},
	{"^p", "voice"},
	{"^s", "settings"},
	{"^c", "quit"},
}

// StatusBar renders the bottom bar: connection state, account, and
// key hints.
func StatusBar(t *styles.Theme, s StatusBarState) string {
	var conn string
	if s.Connected {
		conn = t.Connected.Render("● connected")
	} else {
		conn = t.Disconnected.Render("○ reconnecting")
	}

	left := conn
	if s.Email != "" {
		left += "  " + util.Truncate(s.Email, 28)
	}
	if s.Autoplay {
		left += "  " + t.ShortcutKey.Render("🔊")
	}

	var hints []string
	for _, sc := range shortcuts {
		hints = append(hints, t.ShortcutKey.Render(sc.key)+" "+t.ShortcutDesc.Render(sc.desc))
	}
	right := strings.Join(hints, "  ")

	gap := s.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		// Narrow terminal: drop the hints before the connection state.
		right = ""
		gap = s.Width - lipgloss.Width(left) - 2
		if gap < 1 {
			gap = 1
		}
	}

	return t.StatusBar.Width(s.Width).Render(left + strings.Repeat(" ", gap) + right)
}
