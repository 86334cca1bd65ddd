// CLAUDE:SUMMARY Live session manager: loads documents into reducer state and serialises dispatch.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pagegloss/gloss/annotate"
	"github.com/pagegloss/gloss/idgen"
	"github.com/pagegloss/gloss/kit"
)

// Manager owns the live sessions. Each session's state is rebuilt from its
// persisted document on first access and kept in memory afterwards.
type Manager struct {
	store      *Store
	dispatcher *annotate.Dispatcher
	logger     *slog.Logger
	newID      idgen.Generator
	now        func() int64

	mu   sync.Mutex
	live map[string]*Session
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// WithDispatcher replaces the action dispatcher, mainly for deterministic
// tests.
func WithDispatcher(d *annotate.Dispatcher) ManagerOption {
	return func(m *Manager) { m.dispatcher = d }
}

// WithIDGenerator sets the session id generator.
func WithIDGenerator(gen idgen.Generator) ManagerOption {
	return func(m *Manager) { m.newID = gen }
}

// WithClock sets the millisecond timestamp source.
func WithClock(now func() int64) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager over an open store.
func NewManager(store *Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:      store,
		dispatcher: annotate.NewDispatcher(),
		logger:     slog.Default(),
		newID:      idgen.Prefixed("sess_", idgen.Default),
		now:        func() int64 { return time.Now().UnixMilli() },
		live:       make(map[string]*Session),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Create starts a new session for a page.
func (m *Manager) Create(ctx context.Context, pageURL, title string) (*Session, error) {
	if pageURL == "" {
		return nil, fmt.Errorf("session: page url required")
	}
	now := m.now()
	rec := &Record{
		ID:        m.newID(),
		PageURL:   pageURL,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.InsertRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("session: create: %w", err)
	}

	sess := &Session{
		ID:      rec.ID,
		PageURL: rec.PageURL,
		Title:   rec.Title,
		mgr:     m,
		state:   annotate.NewState(),
	}
	m.mu.Lock()
	m.live[rec.ID] = sess
	m.mu.Unlock()

	m.logger.Info("session: created", "session_id", rec.ID, "page_url", pageURL)
	return sess, nil
}

// Get returns a live session, loading and restoring it from the store on
// first access. Missing sessions return nil, nil.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	if sess, ok := m.live[id]; ok {
		m.mu.Unlock()
		return sess, nil
	}
	m.mu.Unlock()

	rec, err := m.store.GetRecord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("session: get %s: %w", id, err)
	}
	if rec == nil {
		return nil, nil
	}

	doc, ok, err := m.store.LoadDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("session: load %s: %w", id, err)
	}

	state := annotate.NewState()
	if ok {
		state = annotate.Reduce(state, doc.Restore())
	}
	seq, err := m.store.LastSeq(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("session: last seq %s: %w", id, err)
	}

	sess := &Session{
		ID:      rec.ID,
		PageURL: rec.PageURL,
		Title:   rec.Title,
		mgr:     m,
		state:   state,
		seq:     seq,
	}

	m.mu.Lock()
	// Another goroutine may have loaded it concurrently; first one wins.
	if existing, ok := m.live[id]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.live[id] = sess
	m.mu.Unlock()

	m.logger.Info("session: restored", "session_id", id,
		"annotations", len(state.Annotations), "seq", seq)
	return sess, nil
}

// List returns all persisted session records.
func (m *Manager) List(ctx context.Context) ([]*Record, error) {
	return m.store.ListRecords(ctx)
}

// Delete evicts and removes a session with everything it owns.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.live, id)
	m.mu.Unlock()
	if err := m.store.DeleteRecord(ctx, id); err != nil {
		return fmt.Errorf("session: delete %s: %w", id, err)
	}
	m.logger.Info("session: deleted", "session_id", id)
	return nil
}

// Store exposes the underlying store for capture and journal reads.
func (m *Manager) Store() *Store {
	return m.store
}

// Session is one live annotation session. All dispatches are serialised
// through its mutex.
type Session struct {
	ID      string
	PageURL string
	Title   string

	mgr   *Manager
	mu    sync.Mutex
	state *annotate.State
	seq   int64
}

// Dispatch stamps and reduces one action, journals it, and persists the
// resulting document. The returned state is the engine's live pointer;
// callers must not mutate it.
func (s *Session) Dispatch(ctx context.Context, action annotate.Action) (*annotate.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamped := s.mgr.dispatcher.Stamp(action)
	next := annotate.Reduce(s.state, stamped)

	raw, err := annotate.EncodeAction(stamped)
	if err != nil {
		return nil, fmt.Errorf("session: encode %s: %w", action.Kind(), err)
	}

	now := s.mgr.now()
	s.seq++
	entry := &JournalEntry{
		SessionID: s.ID,
		Seq:       s.seq,
		Kind:      string(stamped.Kind()),
		Payload:   string(raw),
		Actor:     kit.GetActor(ctx),
		At:        now,
	}
	if err := s.mgr.store.AppendJournal(ctx, entry); err != nil {
		s.seq--
		return nil, fmt.Errorf("session: journal %s: %w", action.Kind(), err)
	}

	if next != s.state {
		if err := s.mgr.store.SaveDocument(ctx, s.ID, annotate.Export(next), now); err != nil {
			return nil, fmt.Errorf("session: persist %s: %w", action.Kind(), err)
		}
		s.state = next
	}
	return s.state, nil
}

// State returns the current engine state. Callers must not mutate it.
func (s *Session) State() *annotate.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Document snapshots the durable collections.
func (s *Session) Document() annotate.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return annotate.Export(s.state)
}

var newCaptureID = idgen.Prefixed("cap_", idgen.Default)

// RecordCapture stores an artifact against this session.
func (s *Session) RecordCapture(ctx context.Context, kind, selector string, data []byte) (*Capture, error) {
	c := &Capture{
		ID:        newCaptureID(),
		SessionID: s.ID,
		Kind:      kind,
		Selector:  selector,
		Data:      data,
		CreatedAt: s.mgr.now(),
	}
	if err := s.mgr.store.InsertCapture(ctx, c); err != nil {
		return nil, fmt.Errorf("session: record capture: %w", err)
	}
	return c, nil
}
