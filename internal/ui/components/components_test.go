// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/loreline-tui/internal/model"
	"github.com/jeranaias/loreline-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewTheme("#722ed1", "#1890ff")
}

func TestStatusBarShowsConnectionState(t *testing.T) {
	th := testTheme()

	up := StatusBar(th, StatusBarState{Connected: true, Width: 100})
	if !strings.Contains(up, "connected") {
		t.Error("connected state missing from bar")
	}

	down := StatusBar(th, StatusBarState{Connected: false, Width: 100})
	if !strings.Contains(down, "reconnecting") {
		t.Error("reconnecting state missing from bar")
	}
}

func TestStatusBarNarrowTerminal(t *testing.T) {
	th := testTheme()
	// Must not panic or produce negative padding at tiny widths.
	out := StatusBar(th, StatusBarState{Connected: true, Email: "someone@example.com", Width: 20})
	if out == "" {
		t.Error("empty bar")
	}
}

func TestSidebarMarksActiveAndSelected(t *testing.T) {
	th := testTheme()
	out := Sidebar(th, SidebarState{
		Sessions: []model.Session{
			{ID: "a", Title: "First session"},
			{ID: "b", Title: "Second session"},
		},
		ActiveID: "a",
		Cursor:   1,
		Focused:  true,
		Width:    30,
		Height:   20,
	})

	if !strings.Contains(out, "* First") {
		t.Error("active session marker missing")
	}
	if !strings.Contains(out, "> Second") {
		t.Error("cursor marker missing")
	}
}

func TestSidebarTruncatesLongNames(t *testing.T) {
	th := testTheme()
	long := strings.Repeat("x", 200)
	out := Sidebar(th, SidebarState{
		Documents: []model.Document{{ID: "d", Filename: long, Status: model.DocCompleted}},
		Width:     24,
		Height:    10,
	})
	if strings.Contains(out, long) {
		t.Error("long filename not truncated")
	}
	if !strings.Contains(out, "…") {
		t.Error("truncation marker missing")
	}
}

func TestSidebarStatusGlyphs(t *testing.T) {
	tests := []struct {
		status model.DocumentStatus
		glyph  string
	}{
		{model.DocPending, "○"},
		{model.DocProcessing, "◐"},
		{model.DocCompleted, "●"},
		{model.DocFailed, "✗"},
	}
	for _, tt := range tests {
		if got := statusGlyph(tt.status); got != tt.glyph {
			t.Errorf("statusGlyph(%s) = %q, want %q", tt.status, got, tt.glyph)
		}
	}
}

func TestToastLifecycle(t *testing.T) {
	th := testTheme()
	var toast Toast

	if toast.Active() {
		t.Error("zero toast should be inactive")
	}
	if out := toast.Render(th, 80); out != "" {
		t.Errorf("inactive toast rendered %q", out)
	}

	toast.ShowError("upload failed")
	if !toast.Active() {
		t.Error("toast inactive right after ShowError")
	}
	if out := toast.Render(th, 80); !strings.Contains(out, "upload failed") {
		t.Errorf("toast text missing: %q", out)
	}

	toast.ShowInfo("document ready")
	if out := toast.Render(th, 80); !strings.Contains(out, "document ready") {
		t.Errorf("info toast missing: %q", out)
	}
}
