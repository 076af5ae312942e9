// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package authview

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/loreline-tui/internal/ui/styles"
)

func key(s string) tea.KeyMsg {
	if len(s) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	}
	return tea.KeyMsg{}
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestLoginSubmitEmitsMessage(t *testing.T) {
	m := New(styles.NewTheme("#722ed1", "#1890ff"))

	m = typeText(m, "ada@example.com")
	m, _ = m.Update(key("tab"))
	m = typeText(m, "hunter2")
	m, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatal("complete form produced no command")
	}

	msg, ok := cmd().(SubmitMsg)
	if !ok {
		t.Fatalf("cmd produced %T", cmd())
	}
	if msg.Mode != ModeLogin || msg.Email != "ada@example.com" || msg.Password != "hunter2" {
		t.Errorf("submit = %+v", msg)
	}
}

func TestEnterAdvancesThroughFields(t *testing.T) {
	m := New(styles.NewTheme("#722ed1", "#1890ff"))

	m = typeText(m, "ada@example.com")
	// Enter on a non-final field moves focus instead of submitting.
	m, cmd := m.Update(key("enter"))
	if cmd != nil {
		t.Fatal("enter on email field submitted early")
	}
	if m.focus != loginPassword {
		t.Errorf("focus = %d, want password field", m.focus)
	}
}

func TestEmptyLoginRejected(t *testing.T) {
	m := New(styles.NewTheme("#722ed1", "#1890ff"))

	m, _ = m.Update(key("tab"))
	m, cmd := m.Update(key("enter"))
	if cmd != nil {
		t.Error("empty form submitted")
	}
	if m.errMsg == "" {
		t.Error("no validation message shown")
	}
}

func TestSignupPasswordMismatch(t *testing.T) {
	m := New(styles.NewTheme("#722ed1", "#1890ff"))
	m, _ = m.Update(key("ctrl+t"))
	if m.mode != ModeSignup {
		t.Fatal("ctrl+t did not switch to signup")
	}

	m = typeText(m, "Ada Lovelace")
	m, _ = m.Update(key("tab"))
	m = typeText(m, "ada@example.com")
	m, _ = m.Update(key("tab"))
	m = typeText(m, "hunter2")
	m, _ = m.Update(key("tab"))
	m = typeText(m, "different")
	m, cmd := m.Update(key("enter"))
	if cmd != nil {
		t.Error("mismatched passwords submitted")
	}
	if m.errMsg != "passwords do not match" {
		t.Errorf("errMsg = %q", m.errMsg)
	}
}
