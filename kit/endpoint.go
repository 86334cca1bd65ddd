// Package kit carries the transport-agnostic plumbing shared by the HTTP API
// and the MCP bridge: the Endpoint type, middleware chaining, and request
// context accessors.
package kit

import "context"

// Endpoint is one operation exposed over any transport. The request and
// response are the operation's own typed structs; transports decode into and
// encode out of them.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behaviour.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares into one. The first middleware runs outermost:
// Chain(a, b, c) gives a(b(c(endpoint))).
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
