// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/loreline-tui/internal/model"
	"github.com/jeranaias/loreline-tui/internal/ui/styles"
	"github.com/jeranaias/loreline-tui/internal/util"
)

// SidebarState is everything the sidebar displays.
type SidebarState struct {
	Sessions  []model.Session
	Documents []model.Document
	ActiveID  string
	Cursor    int  // selected session index when focused
	Focused   bool // whether keyboard focus is on the sidebar
	Width     int
	Height    int
}

// statusGlyph maps an ingestion status to its one-character marker.
func statusGlyph(status model.DocumentStatus) string {
	switch status {
	case model.DocProcessing:
		return "◐"
	case model.DocCompleted:
		return "●"
	case model.DocFailed:
		return "✗"
	default:
		return "○"
	}
}

// Sidebar renders the session list and document list.
func Sidebar(t *styles.Theme, s SidebarState) string {
	inner := s.Width - 4 // border + padding
	if inner < 8 {
		inner = 8
	}

	var b strings.Builder

	b.WriteString(t.SectionTitle.Render("Sessions"))
	b.WriteString("\n")
	if len(s.Sessions) == 0 {
		b.WriteString(t.SessionItem.Render("(none)"))
		b.WriteString("\n")
	}
	for i, session := range s.Sessions {
		title := session.Title
		if title == "" {
			title = "Untitled"
		}
		line := util.Truncate(title, inner-2)

		switch {
		case s.Focused && i == s.Cursor:
			line = t.SessionItemSelected.Render("> " + line)
		case session.ID == s.ActiveID:
			line = t.SessionItemActive.Render("* " + line)
		default:
			line = t.SessionItem.Render("  " + line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(t.SectionTitle.Render("Documents"))
	b.WriteString("\n")
	if len(s.Documents) == 0 {
		b.WriteString(t.DocumentItem.Render("(none)"))
		b.WriteString("\n")
	}
	for _, doc := range s.Documents {
		glyph := t.DocStatusStyle(string(doc.Status)).Render(statusGlyph(doc.Status))
		name := util.Truncate(doc.Filename, inner-2)
		b.WriteString(glyph + " " + t.DocumentItem.Render(name))
		b.WriteString("\n")
	}

	return t.Sidebar.Width(s.Width - 1).Height(s.Height).Render(strings.TrimRight(b.String(), "\n"))
}
