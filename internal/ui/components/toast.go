// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/jeranaias/loreline-tui/internal/ui/styles"
	"github.com/jeranaias/loreline-tui/internal/util"
)

// toastDuration is how long a toast stays visible.
const toastDuration = 5 * time.Second

// Toast is a transient one-line notice.
type Toast struct {
	text    string
	isError bool
	expires time.Time
}

// ShowError replaces the toast with an error notice.
func (t *Toast) ShowError(text string) {
	t.text = text
	t.isError = true
	t.expires = time.Now().Add(toastDuration)
}

// ShowInfo replaces the toast with a success/info notice.
func (t *Toast) ShowInfo(text string) {
	t.text = text
	t.isError = false
	t.expires = time.Now().Add(toastDuration)
}

// Active reports whether the toast should still be drawn.
func (t *Toast) Active() bool {
	return t.text != "" && time.Now().Before(t.expires)
}

// Render returns the styled toast line, or "" when inactive.
func (t *Toast) Render(theme *styles.Theme, width int) string {
	if !t.Active() {
		return ""
	}
	text := util.Truncate(t.text, width-2)
	if t.isError {
		return theme.ErrorToast.Render("✗ " + text)
	}
	return theme.SuccessToast.Render("✓ " + text)
}
