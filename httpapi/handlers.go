package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pagegloss/gloss/annotate"
	"github.com/pagegloss/gloss/kit"
	"github.com/pagegloss/gloss/session"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, 200, map[string]string{"status": "ok"})
}

// session resolves the sessionID route param, writing the error response
// itself. Callers return on nil.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.Session {
	id := chi.URLParam(r, "sessionID")
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		writeError(w, 500, err)
		return nil
	}
	if sess == nil {
		writeError(w, 404, fmt.Errorf("session %s not found", id))
		return nil
	}
	return sess
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PageURL string `json:"pageUrl"`
		Title   string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, err)
		return
	}
	sess, err := s.sessions.Create(r.Context(), req.PageURL, req.Title)
	if err != nil {
		writeError(w, 400, err)
		return
	}
	writeJSON(w, 201, map[string]string{"id": sess.ID, "pageUrl": sess.PageURL, "title": sess.Title})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	records, err := s.sessions.List(r.Context())
	if err != nil {
		writeError(w, 500, err)
		return
	}
	if records == nil {
		records = []*session.Record{}
	}
	writeJSON(w, 200, records)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	rec, err := s.sessions.Store().GetRecord(r.Context(), id)
	if err != nil {
		writeError(w, 500, err)
		return
	}
	if rec == nil {
		writeError(w, 404, fmt.Errorf("session %s not found", id))
		return
	}
	writeJSON(w, 200, rec)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		writeError(w, 500, err)
		return
	}
	writeJSON(w, 200, map[string]string{"status": "deleted", "id": id})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, 200, sess.State())
}

// handleActions accepts one wire action or an array of them. The batch is
// decoded in full before anything is dispatched, so a malformed entry rejects
// the whole request instead of applying a prefix.
func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, 400, err)
		return
	}
	envelopes := []json.RawMessage{raw}
	if trimmed := bytes.TrimLeft(raw, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '[' {
		envelopes = nil
		if err := json.Unmarshal(raw, &envelopes); err != nil {
			writeError(w, 400, err)
			return
		}
	}
	if len(envelopes) == 0 {
		writeError(w, 400, errors.New("no actions in request"))
		return
	}

	actions := make([]annotate.Action, 0, len(envelopes))
	for _, env := range envelopes {
		a, err := annotate.DecodeAction(env)
		if err != nil {
			writeError(w, 400, err)
			return
		}
		actions = append(actions, a)
	}

	ctx := kit.WithActor(r.Context(), "overlay")
	var state *annotate.State
	for _, a := range actions {
		state, err = sess.Dispatch(ctx, a)
		if err != nil {
			writeError(w, 500, err)
			return
		}
	}
	writeJSON(w, 200, state)
}

func (s *Server) handleVisible(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	anns := annotate.Visible(sess.State().Annotations)
	if anns == nil {
		anns = []annotate.Annotation{}
	}
	writeJSON(w, 200, anns)
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	anns := annotate.Pending(sess.State().Annotations)
	if anns == nil {
		anns = []annotate.Annotation{}
	}
	writeJSON(w, 200, anns)
}

func (s *Server) handlePayload(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	p := s.payloads.Build(*sess.State(), s.now())
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(200)
		io.WriteString(w, p.Markdown())
		return
	}
	writeJSON(w, 200, p)
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	entries, err := s.sessions.Store().Journal(r.Context(), id, queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, 500, err)
		return
	}
	if entries == nil {
		entries = []*session.JournalEntry{}
	}
	writeJSON(w, 200, entries)
}
