// Package shield provides the HTTP middleware in front of the gloss API:
// security headers, body limits, request tracing, CORS for the injected
// overlay, bearer-token auth, and HEAD method handling.
//
// Usage:
//
//	r := chi.NewRouter()
//	r.Use(shield.SecurityHeaders(shield.DefaultHeaders()))
//	r.Use(shield.MaxBody(1 << 20))
//	r.Use(shield.TraceID)
//	r.Use(shield.CORS(nil))
//
// Or apply the default stack in one call:
//
//	for _, mw := range shield.DefaultStack(nil) {
//	    r.Use(mw)
//	}
package shield

import "net/http"

type contextKey string

// LoggerKey is the context key for the per-request structured logger.
const LoggerKey contextKey = "shield_logger"

// DefaultStack returns the standard middleware stack for the gloss API,
// ordered HeadToGet, SecurityHeaders, CORS, MaxBody, TraceID. An empty
// origins list allows any origin. Token auth is installed per route
// group, not here.
func DefaultStack(origins []string) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		HeadToGet,
		SecurityHeaders(DefaultHeaders()),
		CORS(origins),
		MaxBody(1 << 20),
		TraceID,
	}
}
