package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pagegloss/gloss/annotate"
	"github.com/pagegloss/gloss/kit"
	"github.com/pagegloss/gloss/report"
	"github.com/pagegloss/gloss/selector"
	"github.com/pagegloss/gloss/session"
)

var (
	errNoBrowser    = errors.New("capture browser not configured")
	errNoScanSource = errors.New("scan needs a capture browser or a stored html snapshot")
)

// handleCapture opens the session's page and stores the requested artifacts.
// Kinds defaults to a full-page screenshot; "element" needs a selector.
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if s.browser == nil {
		writeError(w, 503, errNoBrowser)
		return
	}
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	var req struct {
		Kinds    []string `json:"kinds"`
		Selector string   `json:"selector"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, err)
		return
	}
	if len(req.Kinds) == 0 {
		req.Kinds = []string{session.CaptureScreenshot}
	}

	ctx := r.Context()
	page, err := s.browser.Open(ctx, sess.PageURL)
	if err != nil {
		writeError(w, 502, err)
		return
	}
	defer page.Close()

	var stored []*session.Capture
	for _, kind := range req.Kinds {
		var (
			data     []byte
			selector string
		)
		switch kind {
		case session.CaptureScreenshot:
			data, err = page.Screenshot(ctx)
		case session.CaptureHTML:
			var html string
			html, err = page.HTML(ctx)
			data = []byte(html)
		case session.CaptureElement:
			if req.Selector == "" {
				writeError(w, 400, errors.New("element capture needs a selector"))
				return
			}
			selector = req.Selector
			data, err = page.ElementShot(ctx, req.Selector)
		default:
			writeError(w, 400, fmt.Errorf("unknown capture kind %q", kind))
			return
		}
		if err != nil {
			writeError(w, 502, err)
			return
		}
		c, err := sess.RecordCapture(ctx, kind, selector, data)
		if err != nil {
			writeError(w, 500, err)
			return
		}
		stored = append(stored, c)
	}
	writeJSON(w, 201, stored)
}

// handleStoreCapture accepts an artifact the overlay took itself. The overlay
// runs inside the page, so it can serialise markup without a server-side
// browser; binary kinds arrive base64-encoded.
func (s *Server) handleStoreCapture(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	var req struct {
		Kind     string `json:"kind"`
		Selector string `json:"selector"`
		Data     string `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, err)
		return
	}
	if req.Kind == "" {
		req.Kind = session.CaptureHTML
	}
	if req.Data == "" {
		writeError(w, 400, errors.New("capture data required"))
		return
	}

	var data []byte
	switch req.Kind {
	case session.CaptureHTML:
		data = []byte(req.Data)
	case session.CaptureScreenshot, session.CaptureElement:
		decoded, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			writeError(w, 400, fmt.Errorf("decode capture data: %w", err))
			return
		}
		data = decoded
	default:
		writeError(w, 400, fmt.Errorf("unknown capture kind %q", req.Kind))
		return
	}

	c, err := sess.RecordCapture(r.Context(), req.Kind, req.Selector, data)
	if err != nil {
		writeError(w, 500, err)
		return
	}
	writeJSON(w, 201, c)
}

// handleScan checks every selector the session references and reports the
// ones that no longer match: against the live page when a browser is
// configured, otherwise against the session's newest stored HTML snapshot
// (which is only as fresh as the overlay's last push). With cleanup=true the
// stale ones are removed from the session in the same request.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	var req struct {
		Cleanup bool `json:"cleanup"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, 400, err)
			return
		}
	}

	state := sess.State()
	var linked, styles []string
	seen := map[string]bool{}
	for _, a := range state.Annotations {
		if a.LinkedSelector != "" && !seen[a.LinkedSelector] {
			seen[a.LinkedSelector] = true
			linked = append(linked, a.LinkedSelector)
		}
	}
	for i := range state.StyleMods {
		styles = append(styles, state.StyleMods[i].Selector)
	}

	ctx := r.Context()
	var staleLinked, staleStyles []string
	if s.browser != nil {
		page, err := s.browser.Open(ctx, sess.PageURL)
		if err != nil {
			writeError(w, 502, err)
			return
		}
		defer page.Close()

		if staleLinked, err = page.Scan(ctx, linked); err != nil {
			writeError(w, 502, err)
			return
		}
		if staleStyles, err = page.Scan(ctx, styles); err != nil {
			writeError(w, 502, err)
			return
		}
	} else {
		snap, err := s.sessions.Store().LatestCapture(ctx, sess.ID, session.CaptureHTML)
		if err != nil {
			writeError(w, 500, err)
			return
		}
		if snap == nil {
			writeError(w, 503, errNoScanSource)
			return
		}
		doc, err := selector.Parse(string(snap.Data))
		if err != nil {
			writeError(w, 500, err)
			return
		}
		staleLinked = selector.Missing(doc, linked)
		staleStyles = selector.Missing(doc, styles)
	}

	resp := map[string]any{
		"linkedSelectors": emptyIfNil(staleLinked),
		"styleSelectors":  emptyIfNil(staleStyles),
	}
	if req.Cleanup && (len(staleLinked) > 0 || len(staleStyles) > 0) {
		next, err := sess.Dispatch(kit.WithActor(ctx, "overlay"), annotate.CleanupOrphaned{
			LinkedSelectors: staleLinked,
			StyleSelectors:  staleStyles,
		})
		if err != nil {
			writeError(w, 500, err)
			return
		}
		resp["annotationsRemoved"] = len(state.Annotations) - len(next.Annotations)
		resp["styleEntriesRemoved"] = len(state.StyleMods) - len(next.StyleMods)
	}
	writeJSON(w, 200, resp)
}

func (s *Server) handleListCaptures(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	captures, err := s.sessions.Store().ListCaptures(r.Context(), id)
	if err != nil {
		writeError(w, 500, err)
		return
	}
	if captures == nil {
		captures = []*session.Capture{}
	}
	writeJSON(w, 200, captures)
}

func (s *Server) handleGetCapture(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "captureID")
	c, err := s.sessions.Store().GetCapture(r.Context(), id)
	if err != nil {
		writeError(w, 500, err)
		return
	}
	if c == nil {
		writeError(w, 404, fmt.Errorf("capture %s not found", id))
		return
	}
	switch c.Kind {
	case session.CaptureHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "image/png")
	}
	w.WriteHeader(200)
	w.Write(c.Data)
}

// handleExport assembles the PDF dossier: cover summary plus every stored
// screenshot, newest last.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	ctx := r.Context()

	p := s.payloads.Build(*sess.State(), s.now())
	d := report.Dossier{
		Title:       sess.Title,
		PageURL:     sess.PageURL,
		GeneratedAt: time.UnixMilli(s.now()),
		Summary:     report.Summarize(p),
	}

	captures, err := s.sessions.Store().ListCaptures(ctx, sess.ID)
	if err != nil {
		writeError(w, 500, err)
		return
	}
	for _, meta := range captures {
		if meta.Kind == session.CaptureHTML {
			continue
		}
		c, err := s.sessions.Store().GetCapture(ctx, meta.ID)
		if err != nil {
			writeError(w, 500, err)
			return
		}
		if c == nil {
			continue
		}
		name := c.Kind
		if c.Selector != "" {
			name = c.Selector
		}
		d.Shots = append(d.Shots, report.Shot{Name: name, PNG: c.Data})
	}

	dir, err := os.MkdirTemp("", "gloss-export-*")
	if err != nil {
		writeError(w, 500, err)
		return
	}
	defer os.RemoveAll(dir)

	outFile := filepath.Join(dir, "dossier.pdf")
	if err := d.WriteFile(outFile); err != nil {
		writeError(w, 500, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=gloss-%s.pdf", sess.ID))
	http.ServeFile(w, r, outFile)
}

func emptyIfNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
