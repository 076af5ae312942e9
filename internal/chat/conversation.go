// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/loreline-tui/internal/model"
	"github.com/jeranaias/loreline-tui/internal/ws"
)

// =============================================================================
// STATES
// =============================================================================

// Phase is the lifecycle of the conversation as a whole.
type Phase int

const (
	// PhaseIdle means no session is attached.
	PhaseIdle Phase = iota

	// PhaseLoadingHistory means the transcript fetch is in flight.
	PhaseLoadingHistory

	// PhaseReady means the transcript is loaded and input is accepted.
	PhaseReady
)

// ExchangeState is the lifecycle of the current prompt/response pair.
type ExchangeState int

const (
	// ExchangeSettled means no response is outstanding.
	ExchangeSettled ExchangeState = iota

	// ExchangeAwaiting means the response was opened but no token has
	// arrived yet.
	ExchangeAwaiting

	// ExchangeStreaming means tokens are flowing.
	ExchangeStreaming
)

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// Sender submits outbound frames. *ws.Manager satisfies it.
type Sender interface {
	Send(v any) error
}

// HistoryLoader fetches a session's transcript. *api.Client satisfies it.
type HistoryLoader interface {
	SessionHistory(ctx context.Context, id string) ([]model.Message, error)
}

// =============================================================================
// CONVERSATION
// =============================================================================

// Conversation is the transcript plus streaming state for one session.
// All methods are safe for concurrent use; frame handlers are called
// from the WebSocket read loop while the UI reads from its own
// goroutine.
type Conversation struct {
	mu        sync.Mutex
	sessionID string
	messages  []model.Message
	buffer    strings.Builder
	phase     Phase
	state     ExchangeState

	sender  Sender
	history HistoryLoader
	log     *zap.Logger

	// onComplete fires after an exchange settles with the final reply.
	// Hooks voice playback and title refresh without coupling to them.
	onComplete func(final string)
}

// NewConversation creates an idle conversation.
func NewConversation(sender Sender, history HistoryLoader, log *zap.Logger) *Conversation {
	if log == nil {
		log = zap.NewNop()
	}
	return &Conversation{
		sender:  sender,
		history: history,
		log:     log,
	}
}

// OnComplete registers the callback fired when an exchange settles.
// The callback runs off the frame-handling goroutine's critical
// section and receives the final trimmed reply, which may be empty.
func (c *Conversation) OnComplete(fn func(final string)) {
	c.mu.Lock()
	c.onComplete = fn
	c.mu.Unlock()
}

// SessionID returns the attached session, or "".
func (c *Conversation) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Phase returns the conversation lifecycle phase.
func (c *Conversation) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// State returns the state of the current exchange.
func (c *Conversation) State() ExchangeState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a response is outstanding.
func (c *Conversation) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != ExchangeSettled
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// =============================================================================
// HISTORY
// =============================================================================

// LoadHistory attaches the conversation to a session and fetches its
// transcript. An empty or placeholder identifier clears the transcript
// without touching the network: asking the server for session
// "undefined" is how phantom sessions are born.
func (c *Conversation) LoadHistory(ctx context.Context, sessionID string) error {
	if sessionID == "" || sessionID == "undefined" {
		c.mu.Lock()
		c.sessionID = ""
		c.messages = nil
		c.buffer.Reset()
		c.phase = PhaseIdle
		c.state = ExchangeSettled
		c.mu.Unlock()
		return nil
	}

	c.mu.Lock()
	c.sessionID = sessionID
	c.messages = nil
	c.buffer.Reset()
	c.phase = PhaseLoadingHistory
	c.state = ExchangeSettled
	c.mu.Unlock()

	msgs, err := c.history.SessionHistory(ctx, sessionID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionID != sessionID {
		// The user switched sessions while the fetch was in flight;
		// this result belongs to the old one.
		return nil
	}
	c.phase = PhaseReady
	if err != nil {
		c.log.Warn("history load failed",
			zap.String("session", sessionID), zap.Error(err))
		return err
	}
	c.messages = msgs
	return nil
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit appends the user's prompt to the transcript and sends it.
// The local append happens regardless of send outcome so the user
// always sees what they typed; the returned error reports the send.
func (c *Conversation) Submit(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	sessionID := c.sessionID
	c.messages = append(c.messages, model.NewUserMessage(text))
	c.state = ExchangeAwaiting
	c.buffer.Reset()
	c.mu.Unlock()

	if err := c.sender.Send(ws.NewChatMessage(text, sessionID)); err != nil {
		c.mu.Lock()
		c.state = ExchangeSettled
		c.mu.Unlock()
		return err
	}
	return nil
}

// =============================================================================
// FRAME HANDLING
// =============================================================================

// HandleFrame routes a realtime frame into the state machine. Frames
// that are not chat frames are ignored.
func (c *Conversation) HandleFrame(frame ws.Frame) {
	switch frame.Type {
	case ws.FrameChatStart:
		c.handleStart()
	case ws.FrameChatToken:
		c.handleToken(frame.Token)
	case ws.FrameChatEnd:
		c.handleEnd()
	}
}

// handleStart opens a fresh exchange: the buffer resets so stale
// content from an interrupted stream can never leak into this one.
func (c *Conversation) handleStart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buffer.Reset()
	c.state = ExchangeAwaiting
}

// handleToken appends one increment and mirrors the whole buffer into
// the trailing assistant message, creating it on the first token. A
// token with no preceding start frame still opens a message; dropping
// server output on a protocol hiccup would lose real content.
func (c *Conversation) handleToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.buffer.WriteString(token)
	content := c.buffer.String()

	if n := len(c.messages); n > 0 && c.messages[n-1].Role == model.RoleAssistant {
		c.messages[n-1].Content = content
	} else {
		c.messages = append(c.messages, model.NewAssistantMessage(content))
	}
	c.state = ExchangeStreaming
}

// handleEnd commits the trimmed buffer as the final reply and settles
// the exchange.
func (c *Conversation) handleEnd() {
	c.mu.Lock()
	final := strings.TrimSpace(c.buffer.String())
	if n := len(c.messages); n > 0 && c.messages[n-1].Role == model.RoleAssistant {
		c.messages[n-1].Content = final
	}
	c.state = ExchangeSettled
	done := c.onComplete
	c.mu.Unlock()

	if done != nil {
		done(final)
	}
}
