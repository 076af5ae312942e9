// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/loreline-tui/internal/api"
	"github.com/jeranaias/loreline-tui/internal/auth"
	"github.com/jeranaias/loreline-tui/internal/chat"
	"github.com/jeranaias/loreline-tui/internal/config"
	"github.com/jeranaias/loreline-tui/internal/model"
	"github.com/jeranaias/loreline-tui/internal/workspace"
	"github.com/jeranaias/loreline-tui/internal/ws"
)

type stubSender struct{ sent []any }

func (s *stubSender) Send(v any) error {
	s.sent = append(s.sent, v)
	return nil
}

type stubHistory struct{}

func (stubHistory) SessionHistory(ctx context.Context, id string) ([]model.Message, error) {
	return nil, nil
}

type stubAPI struct{}

func (stubAPI) ListSessions(ctx context.Context) ([]model.SessionRecord, error) { return nil, nil }
func (stubAPI) CreateSession(ctx context.Context) (*model.SessionRecord, error) {
	return &model.SessionRecord{ID: "s1"}, nil
}
func (stubAPI) DeleteSession(ctx context.Context, id string) error { return nil }
func (stubAPI) ListDocuments(ctx context.Context) ([]model.Document, error) { return nil, nil }
func (stubAPI) DeleteDocument(ctx context.Context, id string) error  { return nil }

func testDeps(t *testing.T) (Deps, *auth.Store, *stubSender) {
	t.Helper()
	log := zap.NewNop()
	dir := t.TempDir()

	store := auth.NewStore(filepath.Join(dir, "credentials.json"), log)
	sender := &stubSender{}
	conv := chat.NewConversation(sender, stubHistory{}, log)
	wsp := workspace.New(stubAPI{}, filepath.Join(dir, "active.json"), log)

	return Deps{
		Config:       config.Default(),
		Log:          log,
		Client:       api.NewClient("http://localhost:0/api/v1", store, log),
		Store:        store,
		WS:           ws.NewManager("ws://localhost:0/ws", store, log),
		Conversation: conv,
		Workspace:    wsp,
	}, store, sender
}

func TestNewAppStartsOnAuthView(t *testing.T) {
	deps, _, _ := testDeps(t)
	app := NewApp(deps)
	if app.view != viewAuth {
		t.Error("expected auth view without stored credentials")
	}
}

func TestNewAppSkipsAuthWhenCredentialsExist(t *testing.T) {
	deps, store, _ := testDeps(t)
	if err := store.Set("access", "refresh"); err != nil {
		t.Fatal(err)
	}
	app := NewApp(deps)
	if app.view != viewMain {
		t.Error("expected main view with stored credentials")
	}
}

func TestConnMsgReachesChatPane(t *testing.T) {
	deps, _, _ := testDeps(t)
	app := NewApp(deps)

	app.Update(ConnMsg{Connected: true})
	if !app.chat.Connected() {
		t.Error("connected state not propagated")
	}
	app.Update(ConnMsg{Connected: false})
	if app.chat.Connected() {
		t.Error("disconnect not propagated")
	}
}

func TestIngestionFailureRaisesToast(t *testing.T) {
	deps, _, _ := testDeps(t)
	app := NewApp(deps)

	app.handleFrame(ws.Frame{
		Type:     ws.FrameIngestionStatus,
		DocID:    "d1",
		Status:   "failed",
		Filename: "report.pdf",
	})
	if !app.toast.Active() {
		t.Error("no toast after failed ingestion")
	}
}

func TestSubmitPromptRecordsLastPrompt(t *testing.T) {
	deps, _, sender := testDeps(t)
	app := NewApp(deps)
	app.view = viewMain

	app.submitPrompt("summarize chapter three")
	if app.lastPrompt != "summarize chapter three" {
		t.Errorf("lastPrompt = %q", app.lastPrompt)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d frames", len(sender.sent))
	}
}

func TestChatFramesUpdateTranscript(t *testing.T) {
	deps, _, _ := testDeps(t)
	app := NewApp(deps)
	app.view = viewMain

	app.handleFrame(ws.Frame{Type: ws.FrameChatStart})
	app.handleFrame(ws.Frame{Type: ws.FrameChatToken, Token: "partial"})

	found := false
	for _, m := range deps.Conversation.Messages() {
		if m.Role == model.RoleAssistant && strings.Contains(m.Content, "partial") {
			found = true
		}
	}
	if !found {
		t.Error("streamed token not visible in conversation")
	}
}

func TestHumanErrorPrefersDetail(t *testing.T) {
	err := &api.Error{Status: 422, Detail: "password too short"}
	if got := humanError(err); got != "password too short" {
		t.Errorf("humanError = %q", got)
	}
	if humanError(nil) != "" {
		t.Error("nil error should render empty")
	}
}

func TestTabTogglesSidebarFocus(t *testing.T) {
	deps, _, _ := testDeps(t)
	app := NewApp(deps)
	app.view = viewMain
	app.width, app.height = 100, 30

	app.handleMainKey(tea.KeyMsg{Type: tea.KeyTab})
	if !app.sidebarFocused {
		t.Error("tab did not focus sidebar")
	}
	app.handleMainKey(tea.KeyMsg{Type: tea.KeyTab})
	if app.sidebarFocused {
		t.Error("tab did not return focus to the editor")
	}
}
