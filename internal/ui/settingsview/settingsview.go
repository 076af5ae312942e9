// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settingsview renders the preferences form: speech voice,
// autoplay, and the two accent colors the theme is derived from.
package settingsview

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/loreline-tui/internal/settings"
	"github.com/jeranaias/loreline-tui/internal/ui/styles"
)

// SaveMsg is emitted when the user confirms the form.
type SaveMsg struct {
	Settings settings.Settings
}

// CancelMsg is emitted when the user backs out without saving.
type CancelMsg struct{}

// field slots, top to bottom.
const (
	fieldVoice = iota
	fieldAutoplay
	fieldPrimary
	fieldSecondary
	fieldCount
)

// Model is the preferences form state.
type Model struct {
	theme    *styles.Theme
	inputs   []textinput.Model
	autoplay bool
	focus    int
	errMsg   string
	width    int
	height   int
}

// New builds the form pre-filled with the user's current preferences.
func New(theme *styles.Theme, current settings.Settings) Model {
	voice := textinput.New()
	voice.Placeholder = "system default"
	voice.CharLimit = 64
	voice.Width = 32
	voice.SetValue(current.Voice)
	voice.Focus()

	primary := textinput.New()
	primary.Placeholder = settings.DefaultPrimaryColor
	primary.CharLimit = 7
	primary.Width = 32
	primary.SetValue(current.PrimaryColor)

	secondary := textinput.New()
	secondary.Placeholder = settings.DefaultSecondaryColor
	secondary.CharLimit = 7
	secondary.Width = 32
	secondary.SetValue(current.SecondaryColor)

	return Model{
		theme:    theme,
		inputs:   []textinput.Model{voice, primary, secondary},
		autoplay: current.Autoplay,
	}
}

// Settings returns the form's current values.
func (m Model) Settings() settings.Settings {
	s := settings.Settings{
		Voice:          strings.TrimSpace(m.inputs[0].Value()),
		Autoplay:       m.autoplay,
		PrimaryColor:   strings.TrimSpace(m.inputs[1].Value()),
		SecondaryColor: strings.TrimSpace(m.inputs[2].Value()),
	}
	if s.PrimaryColor == "" {
		s.PrimaryColor = settings.DefaultPrimaryColor
	}
	if s.SecondaryColor == "" {
		s.SecondaryColor = settings.DefaultSecondaryColor
	}
	return s
}

// SetSize records the terminal dimensions for centering.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles key input for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyEsc:
		return m, func() tea.Msg { return CancelMsg{} }

	case tea.KeyTab, tea.KeyDown:
		m.setFocus((m.focus + 1) % fieldCount)
		return m, nil

	case tea.KeyShiftTab, tea.KeyUp:
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, nil

	case tea.KeySpace:
		if m.focus == fieldAutoplay {
			m.autoplay = !m.autoplay
			return m, nil
		}

	case tea.KeyEnter:
		if m.focus == fieldAutoplay {
			m.autoplay = !m.autoplay
			return m, nil
		}
		return m.submit()
	}

	if idx, ok := m.inputIndex(); ok {
		var cmd tea.Cmd
		m.inputs[idx], cmd = m.inputs[idx].Update(msg)
		return m, cmd
	}
	return m, nil
}

// inputIndex maps the focused slot to its text input, when it has one.
func (m Model) inputIndex() (int, bool) {
	switch m.focus {
	case fieldVoice:
		return 0, true
	case fieldPrimary:
		return 1, true
	case fieldSecondary:
		return 2, true
	}
	return 0, false
}

func (m *Model) setFocus(slot int) {
	m.focus = slot
	m.errMsg = ""
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	if idx, ok := m.inputIndex(); ok {
		m.inputs[idx].Focus()
	}
}

func (m Model) submit() (Model, tea.Cmd) {
	s := m.Settings()
	if !validColor(s.PrimaryColor) || !validColor(s.SecondaryColor) {
		m.errMsg = "colors must be #rgb or #rrggbb"
		return m, nil
	}
	return m, func() tea.Msg { return SaveMsg{Settings: s} }
}

// validColor accepts #rgb and #rrggbb hex notation.
func validColor(c string) bool {
	if len(c) != 4 && len(c) != 7 {
		return false
	}
	if c[0] != '#' {
		return false
	}
	for _, r := range c[1:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// =============================================================================
// VIEW
// =============================================================================

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.FormTitle.Render("Preferences"))
	b.WriteString("\n\n")

	b.WriteString(m.label(fieldVoice, "Voice"))
	b.WriteString(m.inputs[0].View())
	b.WriteString("\n\n")

	toggle := "off"
	if m.autoplay {
		toggle = "on"
	}
	b.WriteString(m.label(fieldAutoplay, "Autoplay replies"))
	b.WriteString(toggle)
	b.WriteString("\n\n")

	b.WriteString(m.label(fieldPrimary, "Primary color"))
	b.WriteString(m.inputs[1].View())
	b.WriteString("\n\n")

	b.WriteString(m.label(fieldSecondary, "Secondary color"))
	b.WriteString(m.inputs[2].View())
	b.WriteString("\n\n")

	if m.errMsg != "" {
		b.WriteString(m.theme.ErrorToast.Render(m.errMsg))
		b.WriteString("\n")
	}
	b.WriteString(m.theme.FormHint.Render("enter save · space toggle · esc back"))

	box := m.theme.FormBox.Render(b.String())
	if m.width == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) label(slot int, text string) string {
	style := m.theme.FormLabel
	if m.focus == slot {
		style = m.theme.FormTitle
	}
	return style.Render(text+":") + " "
}
