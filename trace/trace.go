// Package trace provides transparent SQL tracing for modernc.org/sqlite.
//
// It registers a "sqlite-trace" driver that wraps the standard "sqlite"
// driver, intercepting every Exec and Query at the database/sql/driver level.
// No application code changes are needed beyond switching the driver name:
//
//	import _ "github.com/pagegloss/gloss/trace"  // registers "sqlite-trace"
//
//	// Trace store (opened with raw "sqlite" to avoid recursion)
//	traceDB, _ := dbopen.Open("traces.db")
//	store := trace.NewStore(traceDB)
//	store.Init()
//	trace.SetStore(store)
//
//	// Session DB — every query is now traced automatically
//	db, _ := dbopen.Open("gloss.db", dbopen.WithTrace())
//
// Without a Recorder (SetStore not called or nil), the driver still logs
// every query via slog with adaptive levels (Debug, Warn >100ms, Error on
// failure). Trace IDs are read from context via kit.GetTraceID, so a slow
// journal insert can be correlated with the overlay request that caused it.
package trace

import (
	"database/sql"
	"sync"

	sqlite "modernc.org/sqlite"
)

// Entry is a single SQL trace record.
type Entry struct {
	TraceID    string // correlation with the HTTP or MCP request
	Op         string // "Exec" or "Query"
	Query      string // SQL statement
	DurationUs int64  // microseconds
	Error      string // empty if success
	Timestamp  int64  // unix microseconds
}

// Recorder receives trace entries from the driver. Store persists them to
// SQLite; tests substitute in-memory fakes.
type Recorder interface {
	RecordAsync(e *Entry)
	Close() error
}

// nil recorder = slog-only, no persistence
var (
	globalStore Recorder
	storeMu     sync.RWMutex
)

// SetStore sets the global trace recorder. Pass nil to disable persistence
// and fall back to slog-only mode.
func SetStore(s Recorder) {
	storeMu.Lock()
	globalStore = s
	storeMu.Unlock()
}

func getStore() Recorder {
	storeMu.RLock()
	defer storeMu.RUnlock()
	return globalStore
}

func init() {
	sql.Register("sqlite-trace", &TracingDriver{
		Driver: &sqlite.Driver{},
	})
}
