package kit

import "context"

type contextKey string

const (
	SessionIDKey  contextKey = "kit_session_id"
	ActorKey      contextKey = "kit_actor"
	TransportKey  contextKey = "kit_transport" // "http", "mcp"
	TraceIDKey    contextKey = "kit_trace_id"
	RemoteAddrKey contextKey = "kit_remote_addr"
)

// WithSessionID tags the context with the annotation session in scope.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionIDKey, id)
}
func GetSessionID(ctx context.Context) string {
	v, _ := ctx.Value(SessionIDKey).(string)
	return v
}

// WithActor tags the context with who is driving: "overlay" for the browser
// UI, "agent" for the MCP side.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}
func GetActor(ctx context.Context) string {
	v, _ := ctx.Value(ActorKey).(string)
	return v
}

func WithTransport(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, TransportKey, t)
}
func GetTransport(ctx context.Context) string {
	if v, ok := ctx.Value(TransportKey).(string); ok {
		return v
	}
	return "http"
}

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TraceIDKey, id)
}
func GetTraceID(ctx context.Context) string {
	v, _ := ctx.Value(TraceIDKey).(string)
	return v
}

func WithRemoteAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, RemoteAddrKey, addr)
}
func GetRemoteAddr(ctx context.Context) string {
	v, _ := ctx.Value(RemoteAddrKey).(string)
	return v
}
