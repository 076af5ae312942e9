// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/loreline-tui/internal/model"
	"github.com/jeranaias/loreline-tui/internal/util"
	"github.com/jeranaias/loreline-tui/internal/ws"
)

// ErrUnknownSession indicates an activation target not in the list.
var ErrUnknownSession = errors.New("unknown session")

// API is the slice of the REST client the workspace needs.
type API interface {
	ListSessions(ctx context.Context) ([]model.SessionRecord, error)
	CreateSession(ctx context.Context) (*model.SessionRecord, error)
	DeleteSession(ctx context.Context, id string) error
	ListDocuments(ctx context.Context) ([]model.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

// Workspace holds the session list, document list, and active-session
// pointer. All methods are safe for concurrent use.
type Workspace struct {
	mu        sync.Mutex
	api       API
	log       *zap.Logger
	statePath string

	sessions  []model.Session
	documents []model.Document
	activeID  string

	// autoCreated latches after the one automatic session creation for
	// an empty account. Without it, a creation that the next refresh
	// does not observe yet would trigger another, and another.
	autoCreated bool
}

// activeState is the durable last-active pointer.
type activeState struct {
	SessionID string `json:"session_id"`
}

// New creates a workspace. statePath is the file holding the
// last-active session pointer; a missing or unreadable file simply
// means no preference is recorded.
func New(api API, statePath string, log *zap.Logger) *Workspace {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Workspace{api: api, statePath: statePath, log: log}
	w.activeID = w.loadPointer()
	return w
}

// =============================================================================
// REFRESH
// =============================================================================

// Refresh fetches sessions and documents in parallel, normalizes the
// session records, auto-creates a session for an empty account (once),
// and re-resolves the active session.
func (w *Workspace) Refresh(ctx context.Context) error {
	var (
		records []model.SessionRecord
		docs    []model.Document
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = w.api.ListSessions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		docs, err = w.api.ListDocuments(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	sessions := normalize(records, w.log)

	if len(sessions) == 0 {
		created, err := w.autoCreate(ctx)
		if err != nil {
			return err
		}
		if created != nil {
			sessions = []model.Session{*created}
		}
	}

	w.mu.Lock()
	w.sessions = sessions
	w.documents = docs
	w.resolveActiveLocked()
	w.mu.Unlock()
	return nil
}

// autoCreate creates the initial session for an empty account. The
// latch ensures it happens at most once per run even if subsequent
// refreshes keep seeing an empty list.
func (w *Workspace) autoCreate(ctx context.Context) (*model.Session, error) {
	w.mu.Lock()
	if w.autoCreated {
		w.mu.Unlock()
		return nil, nil
	}
	w.autoCreated = true
	w.mu.Unlock()

	record, err := w.api.CreateSession(ctx)
	if err != nil {
		return nil, err
	}
	id := record.ResolveID()
	if id == "" {
		w.log.Warn("auto-created session has no usable identifier")
		return nil, nil
	}
	w.log.Info("created initial session", zap.String("session", id))
	return &model.Session{ID: id, Title: record.Title, CreatedAt: record.CreatedAt, UpdatedAt: record.UpdatedAt}, nil
}

// normalize resolves raw records to sessions with canonical
// identifiers, dropping the unusable ones. Server order is preserved.
func normalize(records []model.SessionRecord, log *zap.Logger) []model.Session {
	sessions := make([]model.Session, 0, len(records))
	for _, r := range records {
		id := r.ResolveID()
		if id == "" {
			log.Warn("dropping session record with no usable identifier",
				zap.String("title", r.Title))
			continue
		}
		sessions = append(sessions, model.Session{
			ID:        id,
			Title:     r.Title,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return sessions
}

// resolveActiveLocked re-checks the active pointer against the current
// list: keep it if still present, otherwise fall back to the stored
// preference, otherwise the first session. Callers hold w.mu.
func (w *Workspace) resolveActiveLocked() {
	if w.containsLocked(w.activeID) {
		return
	}
	if stored := w.loadPointer(); w.containsLocked(stored) {
		w.activeID = stored
		return
	}
	if len(w.sessions) > 0 {
		w.activeID = w.sessions[0].ID
		w.savePointer(w.activeID)
		return
	}
	w.activeID = ""
}

func (w *Workspace) containsLocked(id string) bool {
	if id == "" {
		return false
	}
	for _, s := range w.sessions {
		if s.ID == id {
			return true
		}
	}
	return false
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Sessions returns a copy of the session list, server order.
func (w *Workspace) Sessions() []model.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.Session, len(w.sessions))
	copy(out, w.sessions)
	return out
}

// Documents returns a copy of the document list.
func (w *Workspace) Documents() []model.Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.Document, len(w.documents))
	copy(out, w.documents)
	return out
}

// ActiveID returns the active session identifier, or "".
func (w *Workspace) ActiveID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activeID
}

// SetActive switches the active session and persists the choice.
// Placeholder identifiers and identifiers not in the list are refused.
func (w *Workspace) SetActive(id string) error {
	if id == "" || id == "undefined" {
		return ErrUnknownSession
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.containsLocked(id) {
		return ErrUnknownSession
	}
	w.activeID = id
	w.savePointer(id)
	return nil
}

// =============================================================================
// MUTATIONS
// =============================================================================

// CreateSession creates a session at the user's request and makes it
// active.
func (w *Workspace) CreateSession(ctx context.Context) (*model.Session, error) {
	record, err := w.api.CreateSession(ctx)
	if err != nil {
		return nil, err
	}
	id := record.ResolveID()
	if id == "" {
		return nil, errors.New("server returned session without usable identifier")
	}

	session := model.Session{ID: id, Title: record.Title, CreatedAt: record.CreatedAt, UpdatedAt: record.UpdatedAt}

	w.mu.Lock()
	// New sessions go first, matching the server's newest-first order.
	w.sessions = append([]model.Session{session}, w.sessions...)
	w.activeID = id
	w.savePointer(id)
	w.mu.Unlock()
	return &session, nil
}

// DeleteSession removes a session. When the active session is deleted
// the first remaining one takes over.
func (w *Workspace) DeleteSession(ctx context.Context, id string) error {
	if err := w.api.DeleteSession(ctx, id); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for i, s := range w.sessions {
		if s.ID == id {
			w.sessions = append(w.sessions[:i], w.sessions[i+1:]...)
			break
		}
	}
	if w.activeID == id {
		w.activeID = ""
		if len(w.sessions) > 0 {
			w.activeID = w.sessions[0].ID
		}
		w.savePointer(w.activeID)
	}
	return nil
}

// DeleteDocument removes a document from the server and the local list.
func (w *Workspace) DeleteDocument(ctx context.Context, id string) error {
	if err := w.api.DeleteDocument(ctx, id); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, d := range w.documents {
		if d.ID == id {
			w.documents = append(w.documents[:i], w.documents[i+1:]...)
			break
		}
	}
	return nil
}

// ApplyIngestion folds a realtime ingestion frame into the document
// list: a known document gets its status updated in place, an unknown
// one is prepended so a fresh upload shows up without a refetch.
func (w *Workspace) ApplyIngestion(frame ws.Frame) {
	if frame.Type != ws.FrameIngestionStatus || frame.DocID == "" {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	status := model.DocumentStatus(frame.Status)
	for i := range w.documents {
		if w.documents[i].ID == frame.DocID {
			w.documents[i].Status = status
			if frame.Filename != "" {
				w.documents[i].Filename = frame.Filename
			}
			return
		}
	}
	w.documents = append([]model.Document{{
		ID:       frame.DocID,
		Filename: frame.Filename,
		Status:   status,
	}}, w.documents...)
}

// =============================================================================
// DURABLE POINTER
// =============================================================================

// loadPointer reads the persisted last-active session, or "".
func (w *Workspace) loadPointer() string {
	data, err := os.ReadFile(w.statePath)
	if err != nil {
		return ""
	}
	var state activeState
	if err := json.Unmarshal(data, &state); err != nil {
		return ""
	}
	if state.SessionID == "undefined" {
		return ""
	}
	return state.SessionID
}

// savePointer persists the last-active session. Failures are logged
// and dropped; losing the preference costs one wrong default later,
// not correctness now.
func (w *Workspace) savePointer(id string) {
	data, err := json.Marshal(activeState{SessionID: id})
	if err != nil {
		return
	}
	if err := util.AtomicWriteFile(w.statePath, data, 0o600); err != nil {
		w.log.Warn("persisting active session failed", zap.Error(err))
	}
}
