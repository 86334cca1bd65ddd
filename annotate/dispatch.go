package annotate

import (
	"time"

	"github.com/pagegloss/gloss/idgen"
)

// Dispatcher stamps ids and timestamps onto creation actions before
// reducing. It is the engine's only source of non-determinism; tests inject a
// fixed generator and clock and get byte-identical states.
type Dispatcher struct {
	newID idgen.Generator
	now   func() int64
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithIDGenerator sets the annotation id generator.
func WithIDGenerator(gen idgen.Generator) DispatcherOption {
	return func(d *Dispatcher) { d.newID = gen }
}

// WithClock sets the millisecond timestamp source.
func WithClock(now func() int64) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

// NewDispatcher returns a Dispatcher with UUIDv7-derived annotation ids and
// the wall clock.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		newID: idgen.Prefixed("ann_", idgen.Default),
		now:   func() int64 { return time.Now().UnixMilli() },
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Dispatch stamps the action if it creates an annotation, then reduces.
func (d *Dispatcher) Dispatch(s *State, action Action) *State {
	return Reduce(s, d.Stamp(action))
}

// Stamp fills the ID and Timestamp of creation actions when the caller left
// them empty. Other actions pass through untouched.
func (d *Dispatcher) Stamp(action Action) Action {
	switch a := action.(type) {
	case FinishPath:
		if a.ID == "" {
			a.ID = d.newID()
		}
		if a.Timestamp == 0 {
			a.Timestamp = d.now()
		}
		return a
	case AddText:
		if a.ID == "" {
			a.ID = d.newID()
		}
		if a.Timestamp == 0 {
			a.Timestamp = d.now()
		}
		return a
	}
	return action
}
