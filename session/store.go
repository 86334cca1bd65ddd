// CLAUDE:SUMMARY SQLite persistence for annotation sessions: records, documents, journal, captures.

// Package session persists annotation sessions and serialises dispatch into
// them. The durable unit is the document (annotations, style mods, spacing
// mods); history stacks are runtime-only and rebuilt empty on load.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pagegloss/gloss/annotate"
	"github.com/pagegloss/gloss/dbopen"
)

// Store is the session database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the session SQLite database at path and applies
// the schema.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Record is one persisted session row.
type Record struct {
	ID        string `json:"id"`
	PageURL   string `json:"pageUrl"`
	Title     string `json:"title,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// InsertRecord creates a session row plus its empty document.
func (s *Store) InsertRecord(ctx context.Context, r *Record) error {
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (id, page_url, title, created_at, updated_at)
			VALUES (?,?,?,?,?)`,
			r.ID, r.PageURL, r.Title, r.CreatedAt, r.UpdatedAt,
		)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO session_state (session_id, document, updated_at)
			VALUES (?,?,?)`,
			r.ID, "{}", r.UpdatedAt,
		)
		return err
	})
}

// GetRecord retrieves a session row by id. Missing sessions return nil, nil.
func (s *Store) GetRecord(ctx context.Context, id string) (*Record, error) {
	r := &Record{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, page_url, title, created_at, updated_at
		FROM sessions WHERE id = ?`, id).Scan(
		&r.ID, &r.PageURL, &r.Title, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListRecords returns all sessions, most recently touched first.
func (s *Store) ListRecords(ctx context.Context) ([]*Record, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, page_url, title, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		r := &Record{}
		if err := rows.Scan(&r.ID, &r.PageURL, &r.Title, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteRecord removes a session; document, journal and captures cascade.
func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// SaveDocument stores the session's document and bumps the session row.
// It runs in one transaction so a crash never splits the two.
func (s *Store) SaveDocument(ctx context.Context, sessionID string, doc annotate.Document, at int64) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("session: marshal document: %w", err)
	}
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE session_state SET document = ?, updated_at = ?
			WHERE session_id = ?`,
			string(raw), at, sessionID,
		)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("session: %s has no state row", sessionID)
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE sessions SET updated_at = ? WHERE id = ?`, at, sessionID)
		return err
	})
}

// LoadDocument retrieves the session's document. Missing sessions return
// false.
func (s *Store) LoadDocument(ctx context.Context, sessionID string) (annotate.Document, bool, error) {
	var raw string
	err := s.DB.QueryRowContext(ctx, `
		SELECT document FROM session_state WHERE session_id = ?`, sessionID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return annotate.Document{}, false, nil
	}
	if err != nil {
		return annotate.Document{}, false, err
	}

	var doc annotate.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return annotate.Document{}, false, fmt.Errorf("session: decode document: %w", err)
	}
	return doc, true, nil
}

// JournalEntry is one dispatched action as persisted. Actor records which
// side of the conversation dispatched it ("overlay", "agent", empty for
// untagged callers).
type JournalEntry struct {
	SessionID string `json:"sessionId"`
	Seq       int64  `json:"seq"`
	Kind      string `json:"kind"`
	Payload   string `json:"payload"`
	Actor     string `json:"actor,omitempty"`
	At        int64  `json:"at"`
}

// AppendJournal records one dispatched action.
func (s *Store) AppendJournal(ctx context.Context, e *JournalEntry) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO action_journal (session_id, seq, kind, payload, actor, at)
		VALUES (?,?,?,?,?,?)`,
		e.SessionID, e.Seq, e.Kind, e.Payload, e.Actor, e.At,
	)
	return err
}

// Journal returns a session's entries in dispatch order. A limit of 0 means
// all entries.
func (s *Store) Journal(ctx context.Context, sessionID string, limit int) ([]*JournalEntry, error) {
	q := `SELECT session_id, seq, kind, payload, actor, at
		FROM action_journal WHERE session_id = ? ORDER BY seq`
	args := []any{sessionID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*JournalEntry
	for rows.Next() {
		e := &JournalEntry{}
		if err := rows.Scan(&e.SessionID, &e.Seq, &e.Kind, &e.Payload, &e.Actor, &e.At); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LastSeq returns the highest journal sequence for a session, 0 when empty.
func (s *Store) LastSeq(ctx context.Context, sessionID string) (int64, error) {
	var seq int64
	err := s.DB.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM action_journal WHERE session_id = ?`,
		sessionID).Scan(&seq)
	return seq, err
}

// Capture is one stored artifact: a screenshot or a page snapshot.
type Capture struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	Kind      string `json:"kind"`
	Selector  string `json:"selector,omitempty"`
	Data      []byte `json:"-"`
	CreatedAt int64  `json:"createdAt"`
}

// Artifact kinds stored in the captures table.
const (
	CaptureScreenshot = "screenshot"
	CaptureElement    = "element"
	CaptureHTML       = "html"
)

// InsertCapture stores one artifact.
func (s *Store) InsertCapture(ctx context.Context, c *Capture) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO captures (id, session_id, kind, selector, data, created_at)
		VALUES (?,?,?,?,?,?)`,
		c.ID, c.SessionID, c.Kind, c.Selector, c.Data, c.CreatedAt,
	)
	return err
}

// GetCapture retrieves one artifact with its data. Missing ids return nil, nil.
func (s *Store) GetCapture(ctx context.Context, id string) (*Capture, error) {
	c := &Capture{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, session_id, kind, selector, data, created_at
		FROM captures WHERE id = ?`, id).Scan(
		&c.ID, &c.SessionID, &c.Kind, &c.Selector, &c.Data, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// LatestCapture returns the newest artifact of one kind for a session, with
// data. Missing returns nil, nil.
func (s *Store) LatestCapture(ctx context.Context, sessionID, kind string) (*Capture, error) {
	c := &Capture{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, session_id, kind, selector, data, created_at
		FROM captures WHERE session_id = ? AND kind = ?
		ORDER BY created_at DESC LIMIT 1`, sessionID, kind).Scan(
		&c.ID, &c.SessionID, &c.Kind, &c.Selector, &c.Data, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCaptures returns a session's artifacts in capture order, without data.
func (s *Store) ListCaptures(ctx context.Context, sessionID string) ([]*Capture, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, session_id, kind, selector, created_at
		FROM captures WHERE session_id = ? ORDER BY created_at`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var captures []*Capture
	for rows.Next() {
		c := &Capture{}
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Kind, &c.Selector, &c.CreatedAt); err != nil {
			return nil, err
		}
		captures = append(captures, c)
	}
	return captures, rows.Err()
}
