// CLAUDE:SUMMARY HTTP surface for the overlay: session CRUD, action dispatch, payload, capture, export.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pagegloss/gloss/capture"
	"github.com/pagegloss/gloss/payload"
	"github.com/pagegloss/gloss/session"
	"github.com/pagegloss/gloss/shield"
)

// Server is the HTTP side of gloss. The overlay injected into annotated pages
// talks to it; the agent side goes through the MCP bridge.
type Server struct {
	sessions *session.Manager
	payloads *payload.Builder
	browser  *capture.Browser
	origins  []string
	logger   *slog.Logger
	now      func() int64
}

// Option configures a Server.
type Option func(*Server)

// WithBrowser enables server-side page capture and live scanning. Without it
// the capture endpoint is unavailable and scans fall back to stored HTML
// snapshots.
func WithBrowser(b *capture.Browser) Option {
	return func(s *Server) { s.browser = b }
}

// WithOrigins restricts CORS to the given page origins. The overlay runs
// inside whatever page it annotates, so the default is to allow any origin.
func WithOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithClock overrides the payload timestamp source.
func WithClock(now func() int64) Option {
	return func(s *Server) { s.now = now }
}

// New builds a Server over the session manager.
func New(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions: sessions,
		payloads: payload.NewBuilder(),
		logger:   slog.Default(),
		now:      func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the complete router: shield stack, open health check, and
// the API behind token auth when a hash is configured.
func (s *Server) Handler(tokenHash string) http.Handler {
	r := chi.NewRouter()
	for _, mw := range shield.DefaultStack(s.origins) {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if tokenHash != "" {
			r.Use(shield.RequireToken(tokenHash))
		}
		s.RegisterHTTP(r)
	})
	return r
}

// RegisterHTTP registers the API routes on a router.
func (s *Server) RegisterHTTP(r chi.Router) {
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Get("/", s.handleListSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Get("/state", s.handleState)
			r.Post("/actions", s.handleActions)
			r.Get("/visible", s.handleVisible)
			r.Get("/pending", s.handlePending)
			r.Get("/payload", s.handlePayload)
			r.Get("/journal", s.handleJournal)
			r.Post("/capture", s.handleCapture)
			r.Post("/scan", s.handleScan)
			r.Get("/captures", s.handleListCaptures)
			r.Post("/captures", s.handleStoreCapture)
			r.Get("/export", s.handleExport)
		})
	})
	r.Get("/api/captures/{captureID}", s.handleGetCapture)
}
