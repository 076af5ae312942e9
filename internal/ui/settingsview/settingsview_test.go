// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package settingsview

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/loreline-tui/internal/settings"
	"github.com/jeranaias/loreline-tui/internal/ui/styles"
)

func newForm(current settings.Settings) Model {
	return New(styles.NewTheme(settings.DefaultPrimaryColor, settings.DefaultSecondaryColor), current)
}

func press(m Model, t tea.KeyType) (Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: t})
}

func TestFormPrefilledFromCurrentSettings(t *testing.T) {
	m := newForm(settings.Settings{
		Voice:          "Samantha",
		Autoplay:       true,
		PrimaryColor:   "#abc",
		SecondaryColor: "#123456",
	})

	got := m.Settings()
	if got.Voice != "Samantha" || !got.Autoplay {
		t.Errorf("prefill lost: %+v", got)
	}
	if got.PrimaryColor != "#abc" || got.SecondaryColor != "#123456" {
		t.Errorf("colors lost: %+v", got)
	}
}

func TestAutoplayTogglesWithSpace(t *testing.T) {
	m := newForm(settings.Default())

	m, _ = press(m, tea.KeyTab) // voice → autoplay
	m, _ = press(m, tea.KeySpace)
	if !m.Settings().Autoplay {
		t.Error("space did not toggle autoplay on")
	}
	m, _ = press(m, tea.KeySpace)
	if m.Settings().Autoplay {
		t.Error("space did not toggle autoplay off")
	}
}

func TestSubmitEmitsSaveMsg(t *testing.T) {
	m := newForm(settings.Default())

	_, cmd := press(m, tea.KeyEnter)
	if cmd == nil {
		t.Fatal("no command from submit")
	}
	msg, ok := cmd().(SaveMsg)
	if !ok {
		t.Fatalf("got %T, want SaveMsg", cmd())
	}
	if msg.Settings.PrimaryColor != settings.DefaultPrimaryColor {
		t.Errorf("primary = %q", msg.Settings.PrimaryColor)
	}
}

func TestInvalidColorRejected(t *testing.T) {
	m := newForm(settings.Settings{PrimaryColor: "purple"})

	m, cmd := press(m, tea.KeyEnter)
	if cmd != nil {
		if _, ok := cmd().(SaveMsg); ok {
			t.Fatal("invalid color accepted")
		}
	}
	if m.errMsg == "" {
		t.Error("no validation message shown")
	}
}

func TestEscapeEmitsCancel(t *testing.T) {
	m := newForm(settings.Default())

	_, cmd := press(m, tea.KeyEsc)
	if cmd == nil {
		t.Fatal("no command from escape")
	}
	if _, ok := cmd().(CancelMsg); !ok {
		t.Errorf("got %T, want CancelMsg", cmd())
	}
}

func TestEmptyColorsFallBackToDefaults(t *testing.T) {
	m := newForm(settings.Settings{})
	got := m.Settings()
	if got.PrimaryColor != settings.DefaultPrimaryColor {
		t.Errorf("primary = %q", got.PrimaryColor)
	}
	if got.SecondaryColor != settings.DefaultSecondaryColor {
		t.Errorf("secondary = %q", got.SecondaryColor)
	}
}
