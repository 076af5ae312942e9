// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package authview implements the sign-in and sign-up forms shown
// before the main workspace.
package authview

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/loreline-tui/internal/ui/styles"
)

// Mode selects which form is shown.
type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
)

// SubmitMsg is emitted when the user submits a complete form.
type SubmitMsg struct {
	Mode     Mode
	Email    string
	Password string
	FullName string
}

// field indices per mode.
const (
	loginEmail = iota
	loginPassword
	loginFieldCount
)

const (
	signupName = iota
	signupEmail
	signupPassword
	signupConfirm
	signupFieldCount
)

// Model is the auth form state.
type Model struct {
	theme  *styles.Theme
	mode   Mode
	inputs []textinput.Model
	focus  int
	errMsg string
	width  int
	height int
}

// New creates the form in login mode.
func New(theme *styles.Theme) Model {
	m := Model{theme: theme}
	m.setMode(ModeLogin)
	return m
}

// setMode rebuilds the input set for a mode.
func (m *Model) setMode(mode Mode) {
	m.mode = mode
	m.focus = 0
	m.errMsg = ""

	count := loginFieldCount
	if mode == ModeSignup {
		count = signupFieldCount
	}

	m.inputs = make([]textinput.Model, count)
	for i := range m.inputs {
		in := textinput.New()
		in.CharLimit = 128
		in.Width = 36
		m.inputs[i] = in
	}

	if mode == ModeLogin {
		m.inputs[loginEmail].Placeholder = "email"
		m.inputs[loginPassword].Placeholder = "password"
		m.inputs[loginPassword].EchoMode = textinput.EchoPassword
	} else {
		m.inputs[signupName].Placeholder = "full name"
		m.inputs[signupEmail].Placeholder = "email"
		m.inputs[signupPassword].Placeholder = "password"
		m.inputs[signupPassword].EchoMode = textinput.EchoPassword
		m.inputs[signupConfirm].Placeholder = "confirm password"
		m.inputs[signupConfirm].EchoMode = textinput.EchoPassword
	}
	m.inputs[0].Focus()
}

// SetError displays a failure from the submit attempt.
func (m *Model) SetError(text string) {
	m.errMsg = text
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

	switch keyMsg.String() {
	case "tab", "down":
		m.setFocus((m.focus + 1) % len(m.inputs))
		return m, nil

	case "shift+tab", "up":
		m.setFocus((m.focus - 1 + len(m.inputs)) % len(m.inputs))
		return m, nil

	case "ctrl+t":
		// Toggle between sign-in and sign-up.
		if m.mode == ModeLogin {
			m.setMode(ModeSignup)
		} else {
			m.setMode(ModeLogin)
		}
		return m, nil

	case "enter":
		if m.focus < len(m.inputs)-1 {
			m.setFocus(m.focus + 1)
			return m, nil
		}
		return m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[i].Focus()
}

// submit validates the form and emits a SubmitMsg.
func (m Model) submit() (Model, tea.Cmd) {
	if m.mode == ModeLogin {
		email := strings.TrimSpace(m.inputs[loginEmail].Value())
		password := m.inputs[loginPassword].Value()
		if email == "" || password == "" {
			m.errMsg = "email and password are required"
			return m, nil
		}
		msg := SubmitMsg{Mode: ModeLogin, Email: email, Password: password}
		return m, func() tea.Msg { return msg }
	}

	name := strings.TrimSpace(m.inputs[signupName].Value())
	email := strings.TrimSpace(m.inputs[signupEmail].Value())
	password := m.inputs[signupPassword].Value()
	confirm := m.inputs[signupConfirm].Value()

	switch {
	case name == "" || email == "" || password == "":
		m.errMsg = "all fields are required"
		return m, nil
	case password != confirm:
		m.errMsg = "passwords do not match"
		return m, nil
	}

	msg := SubmitMsg{Mode: ModeSignup, Email: email, Password: password, FullName: name}
	return m, func() tea.Msg { return msg }
}

// View renders the centered form.
func (m Model) View() string {
	var b strings.Builder

	title := "Sign in to Loreline"
	toggle := "ctrl+t: create an account"
	if m.mode == ModeSignup {
		title = "Create a Loreline account"
		toggle = "ctrl+t: back to sign in"
	}

	b.WriteString(m.theme.FormTitle.Render(title))
	b.WriteString("\n")
	for i := range m.inputs {
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString(m.theme.ErrorToast.Render(m.errMsg))
		b.WriteString("\n")
	}
	b.WriteString(m.theme.FormHint.Render(toggle + "  ·  enter: submit"))

	box := m.theme.FormBox.Render(b.String())
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
