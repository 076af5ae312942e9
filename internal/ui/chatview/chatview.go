// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatview renders the conversation pane: the scrolling
// transcript, the input box, and the thinking spinner.
//
// Assistant replies are rendered as markdown through glamour; user
// prompts stay plain. While the realtime link is down the input stays
// editable but submission is blocked, so nothing the user typed is
// ever thrown away by a flaky network.
package chatview

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/loreline-tui/internal/model"
	"github.com/jeranaias/loreline-tui/internal/ui/styles"
)

// SubmitMsg is emitted when the user submits a prompt.
type SubmitMsg struct {
	Text string
}

// Model is the conversation pane state.
type Model struct {
	theme    *styles.Theme
	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	messages  []model.Message
	thinking  bool
	loading   bool
	connected bool
	focused   bool
	width     int
	height    int
}

// New creates the conversation pane.
func New(theme *styles.Theme) Model {
	vp := viewport.New(80, 20)

	ta := textarea.New()
	ta.Placeholder = "Ask about your documents…"
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = theme.Spinner

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(76),
	)
	if err != nil {
		renderer = nil // plain text fallback
	}

	return Model{
		theme:     theme,
		viewport:  vp,
		input:     ta,
		spinner:   sp,
		renderer:  renderer,
		connected: false,
		focused:   true,
	}
}

// Init starts the spinner ticking.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// =============================================================================
// STATE SETTERS
// =============================================================================

// SetMessages replaces the transcript and re-renders.
func (m *Model) SetMessages(msgs []model.Message) {
	atBottom := m.viewport.AtBottom()
	m.messages = msgs
	m.viewport.SetContent(m.renderTranscript())
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// SetThinking toggles the spinner shown while a reply is outstanding.
func (m *Model) SetThinking(on bool) {
	m.thinking = on
}

// SetLoading toggles the history-loading indicator.
func (m *Model) SetLoading(on bool) {
	m.loading = on
}

// SetConnected records the realtime link state. A down link blocks
// submission but never the editor.
func (m *Model) SetConnected(on bool) {
	m.connected = on
}

// Connected reports the recorded link state.
func (m *Model) Connected() bool {
	return m.connected
}

// Focus gives keyboard focus to the input.
func (m *Model) Focus() {
	m.focused = true
	m.input.Focus()
}

// Blur removes keyboard focus from the input.
func (m *Model) Blur() {
	m.focused = false
	m.input.Blur()
}

// InputValue returns the current editor content.
func (m *Model) InputValue() string {
	return m.input.Value()
}

// SetInputValue replaces the editor content (voice input lands here).
func (m *Model) SetInputValue(text string) {
	m.input.SetValue(text)
}

// SetSize lays the pane out for new terminal dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	inputHeight := 5 // bordered textarea
	m.viewport.Width = width
	m.viewport.Height = height - inputHeight
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	m.input.SetWidth(width - 4)

	if m.renderer != nil {
		wrap := width - 6
		if wrap < 20 {
			wrap = 20
		}
		if r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		); err == nil {
			m.renderer = r
		}
	}
	m.viewport.SetContent(m.renderTranscript())
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles input and spinner ticks.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.thinking || m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			cmds = append(cmds, m.spinner.Tick)
		}

	case tea.KeyMsg:
		if m.focused && msg.Type == tea.KeyEnter && !msg.Alt {
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, tea.Batch(cmds...)
			}
			if !m.connected || m.thinking {
				// Keep the draft; submission resumes when possible.
				return m, tea.Batch(cmds...)
			}
			m.input.Reset()
			submit := SubmitMsg{Text: text}
			cmds = append(cmds, func() tea.Msg { return submit })
			return m, tea.Batch(cmds...)
		}

		if m.focused {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// =============================================================================
// VIEW
// =============================================================================

// renderTranscript renders every message for the viewport.
func (m *Model) renderTranscript() string {
	if len(m.messages) == 0 {
		return m.theme.MessageMeta.Render("No messages yet. Ask something about your documents.")
	}

	var b strings.Builder
	for _, msg := range m.messages {
		switch msg.Role {
		case model.RoleUser:
			b.WriteString(m.theme.UserLabel.Render(msg.Role.DisplayName()))
			b.WriteString("\n")
			b.WriteString(m.theme.UserBubble.Render(msg.Content))
		default:
			b.WriteString(m.theme.AssistantLabel.Render(msg.Role.DisplayName()))
			b.WriteString("\n")
			b.WriteString(m.renderMarkdown(msg.Content))
		}
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderMarkdown renders assistant content, falling back to plain text
// when glamour is unavailable.
func (m *Model) renderMarkdown(content string) string {
	if m.renderer == nil || content == "" {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

// View renders the pane.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.theme.MessageMeta.Render(m.spinner.View() + " loading history…"))
		b.WriteString("\n")
	case m.thinking:
		b.WriteString(m.theme.MessageMeta.Render(m.spinner.View() + " thinking…"))
		b.WriteString("\n")
	}

	inputStyle := m.theme.InputContainer
	if !m.connected {
		inputStyle = m.theme.InputDisabled
	}
	b.WriteString(inputStyle.Width(m.width - 2).Render(m.input.View()))

	return b.String()
}
