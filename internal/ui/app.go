// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/loreline-tui/internal/api"
	"github.com/jeranaias/loreline-tui/internal/auth"
	"github.com/jeranaias/loreline-tui/internal/chat"
	"github.com/jeranaias/loreline-tui/internal/config"
	"github.com/jeranaias/loreline-tui/internal/history"
	"github.com/jeranaias/loreline-tui/internal/model"
	"github.com/jeranaias/loreline-tui/internal/settings"
	"github.com/jeranaias/loreline-tui/internal/speech"
	"github.com/jeranaias/loreline-tui/internal/ui/authview"
	"github.com/jeranaias/loreline-tui/internal/ui/chatview"
	"github.com/jeranaias/loreline-tui/internal/ui/components"
	"github.com/jeranaias/loreline-tui/internal/ui/settingsview"
	"github.com/jeranaias/loreline-tui/internal/ui/styles"
	"github.com/jeranaias/loreline-tui/internal/workspace"
	"github.com/jeranaias/loreline-tui/internal/ws"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Deps carries everything the application model needs. All fields are
// required except Speech and Archive, which degrade gracefully.
type Deps struct {
	Config       *config.Config
	Log          *zap.Logger
	Client       *api.Client
	Store        *auth.Store
	WS           *ws.Manager
	Conversation *chat.Conversation
	Workspace    *workspace.Workspace
	Speech       *speech.Engine
	Settings     *settings.Store
	Archive      *history.Archive
}

// =============================================================================
// MESSAGES
// =============================================================================

// FrameMsg delivers an inbound realtime frame to the model.
type FrameMsg struct{ Frame ws.Frame }

// ConnMsg reports a connect or disconnect edge on the realtime link.
type ConnMsg struct{ Connected bool }

// ReplyMsg fires when an assistant response finishes streaming.
type ReplyMsg struct{ Final string }

type loginDoneMsg struct {
	user *api.User
	err  error
}

type signupDoneMsg struct {
	email string
	err   error
}

type bootDoneMsg struct {
	user *api.User
	sets settings.Settings
	err  error
}

type refreshDoneMsg struct{ err error }

type historyDoneMsg struct {
	sessionID string
	err       error
}

type attachDoneMsg struct {
	doc *model.Document
	err error
}

type voiceDoneMsg struct {
	text string
	err  error
}

type toastTickMsg struct{}

// =============================================================================
// MODEL
// =============================================================================

type view int

const (
	viewAuth view = iota
	viewMain
	viewSettings
)

const sidebarWidth = 34

// App is the root Bubble Tea model. It owns the view switch between
// the auth form and the main workspace, and routes realtime frames to
// the conversation and workspace state.
type App struct {
	deps  Deps
	theme *styles.Theme

	view  view
	auth  authview.Model
	chat  chatview.Model
	prefs settingsview.Model

	toast components.Toast

	// Sidebar navigation state.
	sidebarFocused bool
	cursor         int

	// Attach prompt overlay (ctrl+o).
	attaching   bool
	attachInput textinput.Model

	listening  bool
	email      string
	userID     string
	sets       settings.Settings
	lastPrompt string

	width  int
	height int
}

// NewApp builds the root model. The settings store is consulted after
// login; until then the default theme applies.
func NewApp(deps Deps) *App {
	theme := styles.NewTheme(settings.DefaultPrimaryColor, settings.DefaultSecondaryColor)

	ai := textinput.New()
	ai.Placeholder = "file path or URL to attach"
	ai.CharLimit = 512
	ai.Width = 60

	a := &App{
		deps:        deps,
		theme:       theme,
		auth:        authview.New(theme),
		chat:        chatview.New(theme),
		attachInput: ai,
		sets:        settings.Default(),
	}
	if deps.Store.Authenticated() {
		a.view = viewMain
	}
	return a
}

// Init kicks off the spinner and, when credentials already exist on
// disk, the boot sequence.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.chat.Init()}
	if a.view == viewMain {
		cmds = append(cmds, a.bootCmd())
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// COMMANDS
// =============================================================================

func (a *App) bootCmd() tea.Cmd {
	deps := a.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := deps.Client.Me(ctx)
		if err != nil {
			return bootDoneMsg{err: err}
		}

		sets := settings.Default()
		if deps.Settings != nil {
			if s, err := deps.Settings.Load(user.ID); err == nil {
				sets = s
			} else {
				deps.Log.Warn("settings load failed", zap.Error(err))
			}
		}

		if err := deps.WS.Connect(context.Background()); err != nil {
			deps.Log.Warn("realtime connect failed", zap.Error(err))
		}
		if err := deps.Workspace.Refresh(ctx); err != nil {
			return bootDoneMsg{user: user, sets: sets, err: err}
		}
		if active := deps.Workspace.ActiveID(); active != "" {
			if err := deps.Conversation.LoadHistory(ctx, active); err != nil {
				deps.Log.Warn("history load failed",
					zap.String("session_id", active), zap.Error(err))
			}
		}
		return bootDoneMsg{user: user, sets: sets}
	}
}

func (a *App) loginCmd(email, password string) tea.Cmd {
	client := a.deps.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := client.Login(ctx, email, password); err != nil {
			return loginDoneMsg{err: err}
		}
		user, err := client.Me(ctx)
		return loginDoneMsg{user: user, err: err}
	}
}

func (a *App) signupCmd(email, password, fullName string) tea.Cmd {
	client := a.deps.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, err := client.Signup(ctx, email, password, fullName)
		return signupDoneMsg{email: email, err: err}
	}
}

func (a *App) refreshCmd() tea.Cmd {
	wsp := a.deps.Workspace
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return refreshDoneMsg{err: wsp.Refresh(ctx)}
	}
}

func (a *App) selectSessionCmd(id string) tea.Cmd {
	conv := a.deps.Conversation
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return historyDoneMsg{sessionID: id, err: conv.LoadHistory(ctx, id)}
	}
}

func (a *App) newSessionCmd() tea.Cmd {
	wsp := a.deps.Workspace
	conv := a.deps.Conversation
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		sess, err := wsp.CreateSession(ctx)
		if err != nil {
			return refreshDoneMsg{err: err}
		}
		return historyDoneMsg{sessionID: sess.ID, err: conv.LoadHistory(ctx, sess.ID)}
	}
}

func (a *App) deleteSessionCmd(id string) tea.Cmd {
	wsp := a.deps.Workspace
	conv := a.deps.Conversation
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := wsp.DeleteSession(ctx, id); err != nil {
			return refreshDoneMsg{err: err}
		}
		active := wsp.ActiveID()
		return historyDoneMsg{sessionID: active, err: conv.LoadHistory(ctx, active)}
	}
}

// attachCmd uploads a local file or scrapes a URL, depending on the
// shape of the input.
func (a *App) attachCmd(target string) tea.Cmd {
	client := a.deps.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if u, err := url.Parse(target); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
			doc, err := client.ScrapeURL(ctx, target)
			return attachDoneMsg{doc: doc, err: err}
		}

		f, err := os.Open(target)
		if err != nil {
			return attachDoneMsg{err: err}
		}
		defer f.Close()
		doc, err := client.UploadDocument(ctx, filepath.Base(target), f)
		return attachDoneMsg{doc: doc, err: err}
	}
}

func (a *App) listenCmd() tea.Cmd {
	engine := a.deps.Speech
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		text, err := engine.Listen(ctx)
		return voiceDoneMsg{text: text, err: err}
	}
}

func toastTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return toastTickMsg{} })
}

// =============================================================================
// UPDATE
// =============================================================================

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.auth.SetSize(msg.Width, msg.Height)
		a.prefs.SetSize(msg.Width, msg.Height)
		a.chat.SetSize(a.chatWidth(), a.chatHeight())
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			a.shutdown()
			return a, tea.Quit
		}

	case ConnMsg:
		a.chat.SetConnected(msg.Connected)
		return a, nil

	case FrameMsg:
		return a.handleFrame(msg.Frame)

	case ReplyMsg:
		return a.handleReply(msg.Final)

	case toastTickMsg:
		if a.toast.Active() {
			return a, toastTick()
		}
		return a, nil
	}

	switch a.view {
	case viewAuth:
		return a.updateAuth(msg)
	case viewSettings:
		return a.updateSettings(msg)
	}
	return a.updateMain(msg)
}

func (a *App) updateSettings(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsview.SaveMsg:
		a.applySettings(msg.Settings)
		a.view = viewMain
		if err := a.saveSettings(); err != nil {
			return a.showError(err)
		}
		return a, nil

	case settingsview.CancelMsg:
		a.view = viewMain
		return a, nil
	}

	var cmd tea.Cmd
	a.prefs, cmd = a.prefs.Update(msg)
	return a, cmd
}

func (a *App) updateAuth(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		if msg.err != nil {
			a.auth.SetError(humanError(msg.err))
			return a, nil
		}
		a.applyUser(msg.user)
		a.view = viewMain
		return a, a.bootCmd()

	case signupDoneMsg:
		if msg.err != nil {
			a.auth.SetError(humanError(msg.err))
			return a, nil
		}
		a.auth.SetError("account created. sign in with your new credentials")
		return a, nil

	case authview.SubmitMsg:
		if msg.Mode == authview.ModeLogin {
			return a, a.loginCmd(msg.Email, msg.Password)
		}
		return a, a.signupCmd(msg.Email, msg.Password, msg.FullName)
	}

	var cmd tea.Cmd
	a.auth, cmd = a.auth.Update(msg)
	return a, cmd
}

func (a *App) updateMain(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case bootDoneMsg:
		if msg.user != nil {
			a.applyUser(msg.user)
			a.applySettings(msg.sets)
		}
		if msg.err != nil {
			if apiErr, ok := msg.err.(*api.Error); ok && apiErr.Unauthorized() {
				a.view = viewAuth
				a.auth.SetError("session expired. sign in again")
				return a, nil
			}
			return a.showError(msg.err)
		}
		a.syncTranscript()
		return a, nil

	case refreshDoneMsg:
		if msg.err != nil {
			return a.showError(msg.err)
		}
		a.clampCursor()
		return a, nil

	case historyDoneMsg:
		if msg.err != nil {
			return a.showError(msg.err)
		}
		a.clampCursor()
		a.syncTranscript()
		a.chat.SetLoading(false)
		return a, nil

	case attachDoneMsg:
		if msg.err != nil {
			return a.showError(msg.err)
		}
		a.toast.ShowInfo("ingesting " + msg.doc.Filename)
		return a, tea.Batch(toastTick(), a.refreshCmd())

	case voiceDoneMsg:
		a.listening = false
		if msg.err != nil {
			return a.showError(msg.err)
		}
		if msg.text != "" {
			a.chat.SetInputValue(msg.text)
		}
		return a, nil

	case chatview.SubmitMsg:
		return a.submitPrompt(msg.Text)

	case tea.KeyMsg:
		return a.handleMainKey(msg)
	}

	var cmd tea.Cmd
	a.chat, cmd = a.chat.Update(msg)
	return a, cmd
}

func (a *App) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.attaching {
		switch msg.Type {
		case tea.KeyEsc:
			a.attaching = false
			a.attachInput.Reset()
			return a, nil
		case tea.KeyEnter:
			target := strings.TrimSpace(a.attachInput.Value())
			a.attaching = false
			a.attachInput.Reset()
			if target == "" {
				return a, nil
			}
			return a, a.attachCmd(target)
		}
		var cmd tea.Cmd
		a.attachInput, cmd = a.attachInput.Update(msg)
		return a, cmd
	}

	switch msg.Type {
	case tea.KeyTab:
		a.sidebarFocused = !a.sidebarFocused
		if a.sidebarFocused {
			a.chat.Blur()
		} else {
			a.chat.Focus()
		}
		return a, nil

	case tea.KeyCtrlN:
		return a, a.newSessionCmd()

	case tea.KeyCtrlO:
		a.attaching = true
		a.attachInput.Focus()
		return a, textinput.Blink

	case tea.KeyCtrlS:
		a.prefs = settingsview.New(a.theme, a.sets)
		a.prefs.SetSize(a.width, a.height)
		a.view = viewSettings
		return a, nil

	case tea.KeyCtrlP:
		if a.deps.Speech == nil || !a.deps.Speech.CanListen() {
			a.toast.ShowError("no speech recognizer available")
			return a, toastTick()
		}
		if a.listening {
			return a, nil
		}
		a.listening = true
		return a, a.listenCmd()
	}

	if a.sidebarFocused {
		return a.handleSidebarKey(msg)
	}

	var cmd tea.Cmd
	a.chat, cmd = a.chat.Update(msg)
	return a, cmd
}

func (a *App) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sessions := a.deps.Workspace.Sessions()

	switch msg.Type {
	case tea.KeyUp:
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case tea.KeyDown:
		if a.cursor < len(sessions)-1 {
			a.cursor++
		}
		return a, nil

	case tea.KeyEnter:
		if a.cursor >= len(sessions) {
			return a, nil
		}
		id := sessions[a.cursor].ID
		if err := a.deps.Workspace.SetActive(id); err != nil {
			return a.showError(err)
		}
		a.chat.SetLoading(true)
		return a, a.selectSessionCmd(id)

	case tea.KeyCtrlD:
		if a.cursor >= len(sessions) {
			return a, nil
		}
		return a, a.deleteSessionCmd(sessions[a.cursor].ID)
	}
	return a, nil
}

// =============================================================================
// FRAME AND REPLY HANDLING
// =============================================================================

func (a *App) handleFrame(frame ws.Frame) (tea.Model, tea.Cmd) {
	switch frame.Type {
	case ws.FrameChatStart, ws.FrameChatToken, ws.FrameChatEnd:
		a.deps.Conversation.HandleFrame(frame)
		a.syncTranscript()
		return a, nil

	case ws.FrameIngestionStatus:
		a.deps.Workspace.ApplyIngestion(frame)
		if model.DocumentStatus(frame.Status).Terminal() {
			if frame.Status == string(model.DocFailed) {
				a.toast.ShowError("ingestion failed: " + frame.Filename)
			} else {
				a.toast.ShowInfo("ready: " + frame.Filename)
			}
			return a, toastTick()
		}
		return a, nil
	}
	return a, nil
}

// handleReply archives the settled exchange and speaks it when
// autoplay is on.
func (a *App) handleReply(final string) (tea.Model, tea.Cmd) {
	a.syncTranscript()

	if a.sets.Autoplay && a.deps.Speech != nil && a.deps.Speech.CanSpeak() && final != "" {
		a.deps.Speech.Speak(final)
	}

	if a.deps.Archive != nil {
		sessionID := a.deps.Conversation.SessionID()
		title := a.sessionTitle(sessionID)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		a.deps.Archive.RecordExchange(ctx, sessionID, title, a.lastPrompt, final)
		cancel()
	}
	a.lastPrompt = ""

	// The server may retitle the session after the first exchange.
	return a, a.refreshCmd()
}

func (a *App) submitPrompt(text string) (tea.Model, tea.Cmd) {
	if err := a.deps.Conversation.Submit(text); err != nil {
		return a.showError(err)
	}
	a.lastPrompt = text
	if a.deps.Speech != nil {
		a.deps.Speech.Stop()
	}
	a.syncTranscript()
	return a, nil
}

// =============================================================================
// STATE HELPERS
// =============================================================================

func (a *App) applyUser(user *api.User) {
	if user == nil {
		return
	}
	a.email = user.Email
	a.userID = user.ID
}

func (a *App) applySettings(sets settings.Settings) {
	a.sets = sets
	a.theme.Rebuild(sets.PrimaryColor, sets.SecondaryColor)
	if a.deps.Speech != nil {
		a.deps.Speech.SetVoice(sets.Voice)
	}
}

// syncTranscript pushes conversation state into the chat pane.
func (a *App) syncTranscript() {
	a.chat.SetMessages(a.deps.Conversation.Messages())
	a.chat.SetThinking(a.deps.Conversation.Busy())
}

func (a *App) sessionTitle(id string) string {
	for _, s := range a.deps.Workspace.Sessions() {
		if s.ID == id {
			return s.Title
		}
	}
	return ""
}

func (a *App) clampCursor() {
	if n := len(a.deps.Workspace.Sessions()); a.cursor >= n {
		a.cursor = max(0, n-1)
	}
}

func (a *App) showError(err error) (tea.Model, tea.Cmd) {
	a.deps.Log.Warn("ui error", zap.Error(err))
	a.toast.ShowError(humanError(err))
	return a, toastTick()
}

func (a *App) shutdown() {
	if a.deps.Speech != nil {
		a.deps.Speech.Stop()
	}
	if err := a.saveSettings(); err != nil {
		a.deps.Log.Warn("settings save failed", zap.Error(err))
	}
}

func (a *App) saveSettings() error {
	if a.deps.Settings == nil || a.userID == "" {
		return nil
	}
	return a.deps.Settings.Save(a.userID, a.sets)
}

// humanError strips transport noise down to something worth showing.
func humanError(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := err.(*api.Error); ok {
		return apiErr.Detail
	}
	return err.Error()
}

// =============================================================================
// LAYOUT
// =============================================================================

func (a *App) chatWidth() int {
	w := a.width - sidebarWidth
	if w < 20 {
		w = 20
	}
	return w
}

func (a *App) chatHeight() int {
	h := a.height - 2 // status bar and toast line
	if h < 5 {
		h = 5
	}
	return h
}

func (a *App) View() string {
	if a.width == 0 {
		return "loading…"
	}
	if a.view == viewAuth {
		return a.auth.View()
	}
	if a.view == viewSettings {
		return a.prefs.View()
	}

	sidebar := components.Sidebar(a.theme, components.SidebarState{
		Sessions:  a.deps.Workspace.Sessions(),
		Documents: a.deps.Workspace.Documents(),
		ActiveID:  a.deps.Workspace.ActiveID(),
		Cursor:    a.cursor,
		Focused:   a.sidebarFocused,
		Width:     sidebarWidth,
		Height:    a.chatHeight(),
	})

	main := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, a.chat.View())

	overlay := ""
	switch {
	case a.attaching:
		overlay = a.theme.InputContainer.Render("attach: " + a.attachInput.View())
	case a.listening:
		overlay = a.theme.FormHint.Render("listening… speak now")
	case a.toast.Active():
		overlay = a.toast.Render(a.theme, a.width)
	}

	status := components.StatusBar(a.theme, components.StatusBarState{
		Connected: a.chat.Connected(),
		Email:     a.email,
		Autoplay:  a.sets.Autoplay,
		Width:     a.width,
	})

	if overlay != "" {
		return lipgloss.JoinVertical(lipgloss.Left, main, overlay, status)
	}
	return lipgloss.JoinVertical(lipgloss.Left, main, status)
}

// =============================================================================
// PROGRAM
// =============================================================================

// Run wires the realtime bridges and blocks until the program exits.
func Run(deps Deps) error {
	app := NewApp(deps)
	p := tea.NewProgram(app, tea.WithAltScreen())

	unsubscribe := deps.WS.Subscribe(func(f ws.Frame) {
		p.Send(FrameMsg{Frame: f})
	})
	defer unsubscribe()

	deps.WS.OnStateChange(func(connected bool) {
		p.Send(ConnMsg{Connected: connected})
	})
	deps.Conversation.OnComplete(func(final string) {
		p.Send(ReplyMsg{Final: final})
	})

	_, err := p.Run()
	return err
}
