// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jeranaias/loreline-tui/internal/auth"
)

// =============================================================================
// CONSTANTS AND ERRORS
// =============================================================================

const (
	// maxReconnectDelay caps the backoff between reconnect attempts.
	maxReconnectDelay = 30 * time.Second

	// dialTimeout bounds a single connection attempt.
	dialTimeout = 10 * time.Second
)

// ErrNotConnected indicates a send was attempted without a live link.
var ErrNotConnected = errors.New("websocket not connected")

// backoffDelay returns the wait before reconnect attempt n. The delay
// grows exponentially from two seconds and saturates at the cap.
func backoffDelay(attempt int) time.Duration {
	if attempt > 20 {
		return maxReconnectDelay
	}
	d := time.Duration(1<<uint(attempt))*time.Second + time.Second
	if d > maxReconnectDelay {
		d = maxReconnectDelay
	}
	return d
}

// =============================================================================
// MANAGER
// =============================================================================

// Subscriber receives every inbound frame. Subscribers run on the read
// loop goroutine and should hand work off rather than block.
type Subscriber func(Frame)

type subscription struct {
	id int
	fn Subscriber
}

// Manager owns the application's single WebSocket connection.
//
// The zero value is not usable; construct with NewManager. All methods
// are safe for concurrent use.
type Manager struct {
	wsURL  string
	store  *auth.Store
	log    *zap.Logger
	dialer *websocket.Dialer

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	attempt   int
	timer     *time.Timer
	closed    bool
	ctx       context.Context
	lastFrame Frame
	hasLast   bool

	subMu  sync.Mutex
	subs   []subscription
	nextID int

	writeMu sync.Mutex

	// backoff is swapped out in tests to avoid multi-second waits.
	backoff func(int) time.Duration

	// onStateChange, when set, is told about connect/disconnect edges.
	onStateChange func(connected bool)
}

// NewManager creates a manager for the realtime endpoint at wsURL
// (e.g. "ws://localhost:8000/ws"). Connect must be called to open the
// link.
func NewManager(wsURL string, store *auth.Store, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		wsURL:   wsURL,
		store:   store,
		log:     log,
		dialer:  &websocket.Dialer{HandshakeTimeout: dialTimeout},
		backoff: backoffDelay,
	}
}

// OnStateChange registers a callback invoked whenever the link opens or
// drops. Set before Connect; the callback runs off the caller's
// goroutine and must not call back into the manager synchronously.
func (m *Manager) OnStateChange(fn func(connected bool)) {
	m.mu.Lock()
	m.onStateChange = fn
	m.mu.Unlock()
}

// Connect opens the link. Without a stored credential pair it is a
// no-op: there is no point dialing an endpoint that authenticates the
// handshake. A failed dial schedules a retry with backoff, so a single
// Connect call is enough to keep the link alive until Close.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.store.Authenticated() {
		m.log.Debug("no credentials, skipping websocket connect")
		return nil
	}

	m.mu.Lock()
	if m.closed || m.connected {
		m.mu.Unlock()
		return nil
	}
	m.ctx = ctx
	attempt := m.attempt
	m.mu.Unlock()

	target := m.wsURL + "?token=" + url.QueryEscape(m.store.Access())
	m.log.Debug("dialing websocket", zap.Int("attempt", attempt+1))

	conn, _, err := m.dialer.DialContext(ctx, target, nil)
	if err != nil {
		m.log.Warn("websocket dial failed", zap.Error(err))
		m.scheduleReconnect()
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		conn.Close()
		return nil
	}
	m.conn = conn
	m.connected = true
	m.attempt = 0
	notify := m.onStateChange
	m.mu.Unlock()

	m.log.Info("websocket connected")
	if notify != nil {
		notify(true)
	}

	go m.readLoop(conn)
	return nil
}

// Connected reports whether the link is currently open.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Close tears down the link and cancels any pending reconnect. The
// manager cannot be reused afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	conn := m.conn
	m.conn = nil
	m.connected = false
	m.mu.Unlock()

	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		return conn.Close()
	}
	return nil
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe registers a listener for inbound frames and returns its
// unsubscribe function. Listeners are invoked in registration order.
func (m *Manager) Subscribe(fn Subscriber) func() {
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs = append(m.subs, subscription{id: id, fn: fn})
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		for i, sub := range m.subs {
			if sub.id == id {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// LastFrame returns the most recently dispatched frame. The second
// return is false until the first frame arrives. Frames survive
// reconnects, so a late subscriber can catch up on the latest state.
func (m *Manager) LastFrame() (Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastFrame, m.hasLast
}

// dispatch fans a frame out to a snapshot of the subscriber list, so
// listeners that unsubscribe mid-dispatch still see the current frame.
func (m *Manager) dispatch(frame Frame) {
	m.mu.Lock()
	m.lastFrame = frame
	m.hasLast = true
	m.mu.Unlock()

	m.subMu.Lock()
	snapshot := make([]subscription, len(m.subs))
	copy(snapshot, m.subs)
	m.subMu.Unlock()

	for _, sub := range snapshot {
		m.deliver(sub, frame)
	}
}

// deliver invokes one subscriber, containing any panic so the read
// loop and the remaining subscribers keep running.
func (m *Manager) deliver(sub subscription, frame Frame) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("subscriber panicked",
				zap.Int("subscriber", sub.id),
				zap.Any("panic", r))
		}
	}()
	sub.fn(frame)
}

// =============================================================================
// READ LOOP AND RECONNECT
// =============================================================================

// readLoop drains the connection until it drops, then schedules a
// reconnect.
func (m *Manager) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.handleDisconnect(err)
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			// A malformed frame is dropped; the stream itself is fine.
			m.log.Warn("dropping undecodable frame", zap.Error(err))
			continue
		}
		m.dispatch(frame)
	}
}

// handleDisconnect records the drop and schedules a reconnect unless
// the manager was closed deliberately.
func (m *Manager) handleDisconnect(err error) {
	m.mu.Lock()
	wasClosed := m.closed
	m.conn = nil
	m.connected = false
	notify := m.onStateChange
	m.mu.Unlock()

	if wasClosed {
		return
	}

	// 1008 means the server rejected the token. The pair may have been
	// refreshed since the dial, so the retry still happens; it just
	// gets called out separately in the log.
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) && closeErr.Code == websocket.ClosePolicyViolation {
		m.log.Warn("websocket closed: policy violation; token may be expired")
	} else {
		m.log.Info("websocket disconnected", zap.Error(err))
	}

	if notify != nil {
		notify(false)
	}
	m.scheduleReconnect()
}

// scheduleReconnect arms a one-shot timer for the next dial. The
// attempt counter advances when the timer fires, so the first retry
// after a healthy connection always waits the minimum delay.
func (m *Manager) scheduleReconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}

	delay := m.backoff(m.attempt)
	m.log.Debug("reconnecting", zap.Duration("delay", delay))

	m.timer = time.AfterFunc(delay, func() {
		m.mu.Lock()
		m.attempt++
		closed := m.closed
		ctx := m.ctx
		m.mu.Unlock()

		if closed {
			return
		}
		if ctx == nil {
			ctx = context.Background()
		}
		_ = m.Connect(ctx)
	})
}

// =============================================================================
// SENDING
// =============================================================================

// Send writes v as a JSON frame. It fails fast when the link is down
// rather than queueing: the caller decides whether a prompt should be
// buffered or surfaced as an error.
func (m *Manager) Send(v any) error {
	m.mu.Lock()
	conn := m.conn
	ok := m.connected
	m.mu.Unlock()

	if !ok || conn == nil {
		return ErrNotConnected
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return conn.WriteJSON(v)
}
