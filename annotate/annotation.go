package annotate

import (
	"encoding/json"
	"fmt"
)

// Annotation is one drawn mark or text note. The envelope fields are shared
// by every variant; Shape carries the per-tool geometry and text payload.
type Annotation struct {
	ID          string
	Shape       Geometry
	Color       string
	StrokeWidth float64
	Timestamp   int64

	// GroupID links a shape and its caption so they act as one unit.
	GroupID string

	Status Status
	// Captured is the deprecated shadow of StatusInFlight kept for persisted
	// payloads written before statuses existed.
	Captured bool

	Question          string
	ResolutionSummary string
	ReplyCount        int
	ThreadID          string

	LinkedSelector string
	LinkedAnchor   Anchor
	Elements       []ElementInfo
}

// Tool returns the annotation's variant discriminator.
func (a Annotation) Tool() Tool {
	if a.Shape == nil {
		return ""
	}
	return a.Shape.Tool()
}

// IsText reports whether the annotation is a text note.
func (a Annotation) IsText() bool {
	_, ok := a.Shape.(Text)
	return ok
}

// wireAnnotation is the flat overlay-compatible JSON shape. Geometry is
// flattened into type/points plus the text-only fields.
type wireAnnotation struct {
	ID                string        `json:"id"`
	Type              Tool          `json:"type"`
	Points            []Point       `json:"points"`
	Color             string        `json:"color,omitempty"`
	StrokeWidth       float64       `json:"strokeWidth,omitempty"`
	Text              string        `json:"text,omitempty"`
	FontSize          float64       `json:"fontSize,omitempty"`
	Timestamp         int64         `json:"timestamp,omitempty"`
	GroupID           string        `json:"groupId,omitempty"`
	Status            Status        `json:"status,omitempty"`
	Captured          bool          `json:"captured,omitempty"`
	Question          string        `json:"question,omitempty"`
	ResolutionSummary string        `json:"resolutionSummary,omitempty"`
	ReplyCount        int           `json:"replyCount,omitempty"`
	ThreadID          string        `json:"threadId,omitempty"`
	LinkedSelector    string        `json:"linkedSelector,omitempty"`
	LinkedAnchor      Anchor        `json:"linkedAnchor,omitempty"`
	Elements          []ElementInfo `json:"elements,omitempty"`
}

// MarshalJSON writes the flat legacy wire format.
func (a Annotation) MarshalJSON() ([]byte, error) {
	w := wireAnnotation{
		ID:                a.ID,
		Type:              a.Tool(),
		Color:             a.Color,
		StrokeWidth:       a.StrokeWidth,
		Timestamp:         a.Timestamp,
		GroupID:           a.GroupID,
		Status:            a.Status,
		Captured:          a.Captured,
		Question:          a.Question,
		ResolutionSummary: a.ResolutionSummary,
		ReplyCount:        a.ReplyCount,
		ThreadID:          a.ThreadID,
		LinkedSelector:    a.LinkedSelector,
		LinkedAnchor:      a.LinkedAnchor,
		Elements:          a.Elements,
	}
	if a.Shape != nil {
		w.Points = a.Shape.Points()
		if t, ok := a.Shape.(Text); ok {
			w.Text = t.Body
			w.FontSize = t.FontSize
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the flat wire format back into the tagged variant.
func (a *Annotation) UnmarshalJSON(data []byte) error {
	var w wireAnnotation
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	shape := geometryFor(w.Type, w.Points)
	if shape == nil {
		return fmt.Errorf("annotate: annotation %q: unusable type %q with %d points", w.ID, w.Type, len(w.Points))
	}
	if t, ok := shape.(Text); ok {
		t.Body = w.Text
		t.FontSize = w.FontSize
		shape = t
	}
	*a = Annotation{
		ID:                w.ID,
		Shape:             shape,
		Color:             w.Color,
		StrokeWidth:       w.StrokeWidth,
		Timestamp:         w.Timestamp,
		GroupID:           w.GroupID,
		Status:            w.Status,
		Captured:          w.Captured,
		Question:          w.Question,
		ResolutionSummary: w.ResolutionSummary,
		ReplyCount:        w.ReplyCount,
		ThreadID:          w.ThreadID,
		LinkedSelector:    w.LinkedSelector,
		LinkedAnchor:      w.LinkedAnchor,
		Elements:          w.Elements,
	}
	return nil
}

// Migrate fills the lifecycle status of an annotation read from persisted or
// pasted data: an explicit status wins, the legacy captured flag maps to
// in_flight, everything else defaults to pending. Idempotent; never called
// during live dispatch.
func Migrate(a Annotation) Annotation {
	if a.Status != "" {
		return a
	}
	if a.Captured {
		a.Status = StatusInFlight
	} else {
		a.Status = StatusPending
	}
	return a
}
