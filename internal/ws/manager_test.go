// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jeranaias/loreline-tui/internal/auth"
)

var upgrader = websocket.Upgrader{}

// newTestManager starts a WebSocket server driven by handler and
// returns a connected-ready manager pointed at it.
func newTestManager(t *testing.T, handler func(*websocket.Conn, *http.Request)) *Manager {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		handler(conn, r)
	}))
	t.Cleanup(srv.Close)

	store := auth.NewStore(filepath.Join(t.TempDir(), "credentials.json"), nil)
	if err := store.Set("acc-token", "ref-token"); err != nil {
		t.Fatal(err)
	}

	m := NewManager("ws"+strings.TrimPrefix(srv.URL, "http"), store, nil)
	m.backoff = func(int) time.Duration { return 10 * time.Millisecond }
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestBackoffSequence(t *testing.T) {
	want := []time.Duration{
		2 * time.Second,
		3 * time.Second,
		5 * time.Second,
		9 * time.Second,
		17 * time.Second,
		30 * time.Second,
		30 * time.Second,
	}
	for attempt, d := range want {
		if got := backoffDelay(attempt); got != d {
			t.Errorf("backoffDelay(%d) = %v, want %v", attempt, got, d)
		}
	}
	// Deep attempt counts must not overflow into nonsense.
	if got := backoffDelay(64); got != maxReconnectDelay {
		t.Errorf("backoffDelay(64) = %v, want %v", got, maxReconnectDelay)
	}
}

func TestConnectWithoutCredentials(t *testing.T) {
	store := auth.NewStore(filepath.Join(t.TempDir(), "credentials.json"), nil)
	m := NewManager("ws://127.0.0.1:1/ws", store, nil)
	defer m.Close()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect without credentials must be a no-op, got %v", err)
	}
	if m.Connected() {
		t.Error("manager reports connected without ever dialing")
	}
}

func TestConnectSendsToken(t *testing.T) {
	gotToken := make(chan string, 1)
	m := newTestManager(t, func(conn *websocket.Conn, r *http.Request) {
		gotToken <- r.URL.Query().Get("token")
		conn.Close()
	})

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	select {
	case tok := <-gotToken:
		if tok != "acc-token" {
			t.Errorf("token = %q, want acc-token", tok)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never saw the handshake")
	}
}

func TestFanOutInRegistrationOrder(t *testing.T) {
	m := newTestManager(t, func(conn *websocket.Conn, r *http.Request) {
		_ = conn.WriteJSON(Frame{Type: FrameChatStart})
		// Keep the connection open so the read loop stays alive.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	var mu sync.Mutex
	var order []string
	done := make(chan struct{})

	m.Subscribe(func(f Frame) {
		mu.Lock()
		order = append(order, "first")
		mu.Unlock()
	})
	m.Subscribe(func(f Frame) {
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
		close(done)
	})

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("frame never reached subscribers")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("delivery order = %v", order)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	frames := make(chan struct{}, 8)
	release := make(chan struct{})
	m := newTestManager(t, func(conn *websocket.Conn, r *http.Request) {
		<-release
		_ = conn.WriteJSON(Frame{Type: FrameChatEnd})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	unsubscribe := m.Subscribe(func(f Frame) {
		frames <- struct{}{}
	})
	got := make(chan struct{})
	m.Subscribe(func(f Frame) {
		close(got)
	})

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	unsubscribe()
	close(release)

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("remaining subscriber never saw the frame")
	}
	select {
	case <-frames:
		t.Error("unsubscribed listener still received a frame")
	default:
	}
}

func TestSubscriberPanicIsContained(t *testing.T) {
	m := newTestManager(t, func(conn *websocket.Conn, r *http.Request) {
		_ = conn.WriteJSON(Frame{Type: FrameChatToken, Token: "x"})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	survived := make(chan struct{})
	m.Subscribe(func(f Frame) {
		panic("listener bug")
	})
	m.Subscribe(func(f Frame) {
		close(survived)
	})

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	select {
	case <-survived:
	case <-time.After(2 * time.Second):
		t.Fatal("panic in one subscriber starved the next")
	}
}

func TestMalformedFrameDropped(t *testing.T) {
	m := newTestManager(t, func(conn *websocket.Conn, r *http.Request) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte("{not json"))
		_ = conn.WriteJSON(Frame{Type: FrameChatStart})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	var mu sync.Mutex
	var types []string
	done := make(chan struct{})
	m.Subscribe(func(f Frame) {
		mu.Lock()
		types = append(types, f.Type)
		mu.Unlock()
		close(done)
	})

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("valid frame after the bad one never arrived")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(types) != 1 || types[0] != FrameChatStart {
		t.Errorf("dispatched frames = %v, want only chat_start", types)
	}
}

func TestSendRequiresConnection(t *testing.T) {
	store := auth.NewStore(filepath.Join(t.TempDir(), "credentials.json"), nil)
	m := NewManager("ws://127.0.0.1:1/ws", store, nil)
	defer m.Close()

	if err := m.Send(NewChatMessage("hello", "s1")); err != ErrNotConnected {
		t.Errorf("Send while disconnected = %v, want ErrNotConnected", err)
	}
}

func TestSendChatMessage(t *testing.T) {
	received := make(chan ChatMessage, 1)
	m := newTestManager(t, func(conn *websocket.Conn, r *http.Request) {
		var msg ChatMessage
		if err := conn.ReadJSON(&msg); err == nil {
			received <- msg
		}
	})

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := m.Send(NewChatMessage("what is in chapter three?", "s7")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	select {
	case msg := <-received:
		if msg.Type != "chat_message" || msg.Text != "what is in chapter three?" || msg.SessionID != "s7" {
			t.Errorf("unexpected outbound frame: %+v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the chat message")
	}
}

func TestLastFrameTracksDispatch(t *testing.T) {
	m := newTestManager(t, func(conn *websocket.Conn, r *http.Request) {
		_ = conn.WriteJSON(Frame{Type: FrameIngestionStatus, DocID: "d1", Status: "completed"})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	if _, ok := m.LastFrame(); ok {
		t.Error("LastFrame reported a frame before any arrived")
	}

	seen := make(chan struct{})
	m.Subscribe(func(f Frame) { close(seen) })

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	select {
	case <-seen:
	case <-time.After(2 * time.Second):
		t.Fatal("frame never arrived")
	}

	last, ok := m.LastFrame()
	if !ok {
		t.Fatal("LastFrame empty after a dispatched frame")
	}
	if last.Type != FrameIngestionStatus || last.DocID != "d1" {
		t.Errorf("LastFrame = %+v", last)
	}

	// A subscriber registered after the fact can still read it.
	if f, ok := m.LastFrame(); !ok || f.Status != "completed" {
		t.Errorf("late read of LastFrame = %+v, ok=%v", f, ok)
	}
}

func TestBackoffRestartsAfterSuccessfulOpen(t *testing.T) {
	attempts := make(chan int, 8)

	m := newTestManager(t, func(conn *websocket.Conn, r *http.Request) {
		// Accept the handshake, then drop the connection.
		conn.Close()
	})
	m.backoff = func(a int) time.Duration {
		attempts <- a
		// Park the redial so only the first schedule is observed.
		return time.Hour
	}

	// Simulate a run of failed dials before this open succeeds.
	m.mu.Lock()
	m.attempt = 5
	m.mu.Unlock()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	select {
	case a := <-attempts:
		if a != 0 {
			t.Errorf("reconnect scheduled with attempt %d, want 0 after a successful open", a)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("drop never scheduled a reconnect")
	}
}

func TestReconnectAfterDrop(t *testing.T) {
	var mu sync.Mutex
	dials := 0
	second := make(chan struct{})

	m := newTestManager(t, func(conn *websocket.Conn, r *http.Request) {
		mu.Lock()
		dials++
		n := dials
		mu.Unlock()

		if n == 1 {
			// Drop the first connection immediately.
			conn.Close()
			return
		}
		if n == 2 {
			close(second)
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	select {
	case <-second:
	case <-time.After(3 * time.Second):
		t.Fatal("manager never redialed after the drop")
	}
}

func TestCloseCancelsReconnect(t *testing.T) {
	var mu sync.Mutex
	dials := 0

	m := newTestManager(t, func(conn *websocket.Conn, r *http.Request) {
		mu.Lock()
		dials++
		mu.Unlock()
		conn.Close()
	})

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	// Let the first drop land, then close and make sure the redial
	// machinery goes quiet.
	time.Sleep(50 * time.Millisecond)
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	mu.Lock()
	settled := dials
	mu.Unlock()
	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	after := dials
	mu.Unlock()

	if after > settled+1 {
		t.Errorf("dials kept climbing after Close: %d -> %d", settled, after)
	}
}
