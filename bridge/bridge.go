// CLAUDE:SUMMARY Registers the gloss MCP tools — payload handoff, capture marking, resolutions, questions, status, orphan cleanup.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pagegloss/gloss/annotate"
	"github.com/pagegloss/gloss/kit"
	"github.com/pagegloss/gloss/payload"
	"github.com/pagegloss/gloss/session"
)

// Bridge exposes annotation sessions to a coding agent over MCP. The browser
// overlay talks to the HTTP API; the agent side of the conversation goes
// through these tools.
type Bridge struct {
	sessions *session.Manager
	payloads *payload.Builder
	logger   *slog.Logger
	now      func() int64
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) { b.logger = logger }
}

// WithClock overrides the payload timestamp source.
func WithClock(now func() int64) Option {
	return func(b *Bridge) { b.now = now }
}

// New builds a Bridge over the session manager.
func New(sessions *session.Manager, opts ...Option) *Bridge {
	b := &Bridge{
		sessions: sessions,
		payloads: payload.NewBuilder(),
		logger:   slog.Default(),
		now:      func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RegisterMCP registers the gloss tools on an MCP server.
func (b *Bridge) RegisterMCP(srv *mcp.Server) {
	b.registerSessionsTool(srv)
	b.registerPendingTool(srv)
	b.registerPayloadTool(srv)
	b.registerMarkCapturedTool(srv)
	b.registerApplyResolutionsTool(srv)
	b.registerAskQuestionTool(srv)
	b.registerSetStatusTool(srv)
	b.registerCleanupOrphanedTool(srv)
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// session resolves a tool's session_id argument to a live session.
func (b *Bridge) session(ctx context.Context, id string) (*session.Session, error) {
	if id == "" {
		return nil, errors.New("session_id is required")
	}
	sess, err := b.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session %s not found", id)
	}
	return sess, nil
}

// agentContext tags tool calls as agent-originated so journal rows and logs
// attribute them to the right side of the conversation.
func agentContext(ctx context.Context, sessionID string) context.Context {
	ctx = kit.WithTransport(ctx, "mcp")
	ctx = kit.WithActor(ctx, "agent")
	if sessionID != "" {
		ctx = kit.WithSessionID(ctx, sessionID)
	}
	return ctx
}

// sessionRequest is the argument shape shared by tools that only need a
// session.
type sessionRequest struct {
	SessionID string `json:"session_id"`
}

func (b *Bridge) sessionDecode(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	var r sessionRequest
	if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
		return nil, err
	}
	return &kit.MCPDecodeResult{
		Request: &r,
		EnrichCtx: func(ctx context.Context) context.Context {
			return agentContext(ctx, r.SessionID)
		},
	}, nil
}

// sessionIDProperty is the schema fragment every session-scoped tool shares.
func sessionIDProperty() map[string]any {
	return map[string]any{"type": "string", "description": "Session ID from gloss_sessions"}
}

// --- sessions ---

func (b *Bridge) registerSessionsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "gloss_sessions",
		Description: "List annotation sessions. Use the returned id with the other gloss tools.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return b.sessions.List(ctx)
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{
			Request: nil,
			EnrichCtx: func(ctx context.Context) context.Context {
				return agentContext(ctx, "")
			},
		}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- pending ---

func (b *Bridge) registerPendingTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "gloss_pending",
		Description: "Get the pending feedback for a session as structured JSON: annotations awaiting work, style modifications and spacing token changes.",
		InputSchema: inputSchema(map[string]any{
			"session_id": sessionIDProperty(),
		}, []string{"session_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*sessionRequest)
		sess, err := b.session(ctx, r.SessionID)
		if err != nil {
			return nil, err
		}
		return b.payloads.Build(*sess.State(), b.now()), nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, b.sessionDecode)
}

// --- payload ---

func (b *Bridge) registerPayloadTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "gloss_payload",
		Description: "Get the pending feedback for a session rendered as markdown, ready to paste into a task prompt.",
		InputSchema: inputSchema(map[string]any{
			"session_id": sessionIDProperty(),
		}, []string{"session_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*sessionRequest)
		sess, err := b.session(ctx, r.SessionID)
		if err != nil {
			return nil, err
		}
		p := b.payloads.Build(*sess.State(), b.now())
		return map[string]any{
			"markdown":     p.Markdown(),
			"generated_at": p.GeneratedAt,
		}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, b.sessionDecode)
}

// --- mark_captured ---

func (b *Bridge) registerMarkCapturedTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "gloss_mark_captured",
		Description: "Mark every pending annotation and style modification as picked up. Call after reading the payload so the next round only shows new feedback.",
		InputSchema: inputSchema(map[string]any{
			"session_id": sessionIDProperty(),
		}, []string{"session_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*sessionRequest)
		sess, err := b.session(ctx, r.SessionID)
		if err != nil {
			return nil, err
		}
		prev := sess.State()
		next, err := sess.Dispatch(ctx, annotate.MarkCaptured{})
		if err != nil {
			return nil, err
		}
		updated := changedStatuses(prev, next)
		b.logger.Info("round captured", "session", r.SessionID, "updated", updated)
		return map[string]any{"status": "captured", "updated": updated}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, b.sessionDecode)
}

// --- apply_resolutions ---

type resolutionArg struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Summary string `json:"summary,omitempty"`
}

type applyResolutionsRequest struct {
	SessionID   string          `json:"session_id"`
	Resolutions []resolutionArg `json:"resolutions"`
	ThreadID    string          `json:"thread_id,omitempty"`
}

func (b *Bridge) registerApplyResolutionsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "gloss_apply_resolutions",
		Description: "Report the outcome of annotations you worked on. Each resolution moves its annotation (and grouped caption) to resolved or needs_review and records a summary.",
		InputSchema: inputSchema(map[string]any{
			"session_id": sessionIDProperty(),
			"resolutions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":      map[string]any{"type": "string", "description": "Annotation ID"},
						"status":  map[string]any{"type": "string", "enum": []any{"resolved", "needs_review"}, "description": "Outcome"},
						"summary": map[string]any{"type": "string", "description": "What was done"},
					},
					"required": []string{"id", "status"},
				},
				"description": "One entry per addressed annotation",
			},
			"thread_id": map[string]any{"type": "string", "description": "Conversation thread to tag the annotations with"},
		}, []string{"session_id", "resolutions"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*applyResolutionsRequest)
		sess, err := b.session(ctx, r.SessionID)
		if err != nil {
			return nil, err
		}
		action := annotate.ApplyResolutions{ThreadID: r.ThreadID}
		for _, a := range r.Resolutions {
			st, ok := annotate.CanonicalStatus(a.Status)
			if !ok {
				return nil, fmt.Errorf("unknown status %q for %s", a.Status, a.ID)
			}
			action.Resolutions = append(action.Resolutions, annotate.Resolution{
				ID:      a.ID,
				Status:  st,
				Summary: a.Summary,
			})
		}
		prev := sess.State()
		next, err := sess.Dispatch(ctx, action)
		if err != nil {
			return nil, err
		}
		updated := changedStatuses(prev, next)
		b.logger.Info("resolutions applied", "session", r.SessionID, "sent", len(r.Resolutions), "updated", updated)
		return map[string]any{"status": "applied", "updated": updated}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r applyResolutionsRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{
			Request: &r,
			EnrichCtx: func(ctx context.Context) context.Context {
				return agentContext(ctx, r.SessionID)
			},
		}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- ask_question ---

type askQuestionRequest struct {
	SessionID string `json:"session_id"`
	ID        string `json:"id"`
	Question  string `json:"question"`
	ThreadID  string `json:"thread_id,omitempty"`
}

func (b *Bridge) registerAskQuestionTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "gloss_ask_question",
		Description: "Ask the reviewer a question about an annotation. The annotation (and grouped caption) moves to waiting_input until someone answers in the overlay.",
		InputSchema: inputSchema(map[string]any{
			"session_id": sessionIDProperty(),
			"id":         map[string]any{"type": "string", "description": "Annotation ID"},
			"question":   map[string]any{"type": "string", "description": "Question text shown in the overlay"},
			"thread_id":  map[string]any{"type": "string", "description": "Conversation thread to tag the annotation with"},
		}, []string{"session_id", "id", "question"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*askQuestionRequest)
		sess, err := b.session(ctx, r.SessionID)
		if err != nil {
			return nil, err
		}
		prev := sess.State()
		next, err := sess.Dispatch(ctx, annotate.SetAnnotationQuestion{
			ID:       r.ID,
			Question: r.Question,
			ThreadID: r.ThreadID,
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{"status": "asked", "updated": changedStatuses(prev, next)}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r askQuestionRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{
			Request: &r,
			EnrichCtx: func(ctx context.Context) context.Context {
				return agentContext(ctx, r.SessionID)
			},
		}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- set_status ---

type setStatusRequest struct {
	SessionID string `json:"session_id"`
	ID        string `json:"id"`
	Status    string `json:"status"`
}

func (b *Bridge) registerSetStatusTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "gloss_set_status",
		Description: "Set an annotation's lifecycle status directly. Prefer gloss_apply_resolutions for finished work; this is the explicit override.",
		InputSchema: inputSchema(map[string]any{
			"session_id": sessionIDProperty(),
			"id":         map[string]any{"type": "string", "description": "Annotation ID"},
			"status":     map[string]any{"type": "string", "enum": []any{"pending", "in_flight", "resolved", "needs_review", "dismissed", "waiting_input"}, "description": "New status"},
		}, []string{"session_id", "id", "status"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*setStatusRequest)
		sess, err := b.session(ctx, r.SessionID)
		if err != nil {
			return nil, err
		}
		st, ok := annotate.CanonicalStatus(r.Status)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", r.Status)
		}
		prev := sess.State()
		next, err := sess.Dispatch(ctx, annotate.SetAnnotationStatus{ID: r.ID, Status: st})
		if err != nil {
			return nil, err
		}
		return map[string]any{"status": "updated", "updated": changedStatuses(prev, next)}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r setStatusRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{
			Request: &r,
			EnrichCtx: func(ctx context.Context) context.Context {
				return agentContext(ctx, r.SessionID)
			},
		}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- cleanup_orphaned ---

type cleanupOrphanedRequest struct {
	SessionID       string   `json:"session_id"`
	LinkedSelectors []string `json:"linked_selectors,omitempty"`
	StyleSelectors  []string `json:"style_selectors,omitempty"`
}

func (b *Bridge) registerCleanupOrphanedTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "gloss_cleanup_orphaned",
		Description: "Remove annotations and style entries whose target element no longer exists on the page. Pass the selectors reported stale by a page scan.",
		InputSchema: inputSchema(map[string]any{
			"session_id":       sessionIDProperty(),
			"linked_selectors": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Stale annotation selectors"},
			"style_selectors":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Stale style modification selectors"},
		}, []string{"session_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*cleanupOrphanedRequest)
		sess, err := b.session(ctx, r.SessionID)
		if err != nil {
			return nil, err
		}
		prev := sess.State()
		next, err := sess.Dispatch(ctx, annotate.CleanupOrphaned{
			LinkedSelectors: r.LinkedSelectors,
			StyleSelectors:  r.StyleSelectors,
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"status":                "cleaned",
			"annotations_removed":   len(prev.Annotations) - len(next.Annotations),
			"style_entries_removed": len(prev.StyleMods) - len(next.StyleMods),
		}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r cleanupOrphanedRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{
			Request: &r,
			EnrichCtx: func(ctx context.Context) context.Context {
				return agentContext(ctx, r.SessionID)
			},
		}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// changedStatuses counts annotations whose status differs between two states.
// Identical pointers mean the action was a no-op.
func changedStatuses(prev, next *annotate.State) int {
	if prev == next {
		return 0
	}
	before := make(map[string]annotate.Status, len(prev.Annotations))
	for _, a := range prev.Annotations {
		before[a.ID] = a.Status
	}
	n := 0
	for _, a := range next.Annotations {
		if st, ok := before[a.ID]; !ok || st != a.Status {
			n++
		}
	}
	return n
}
