package annotate

import "strings"

// Tool identifies a drawing tool and doubles as the annotation type
// discriminator on the wire.
type Tool string

const (
	ToolFreehand  Tool = "freehand"
	ToolLine      Tool = "line"
	ToolRectangle Tool = "rectangle"
	ToolCircle    Tool = "circle"
	ToolText      Tool = "text"
)

// Status is an annotation's position in the human/agent workflow.
type Status string

const (
	StatusPending      Status = "pending"
	StatusInFlight     Status = "in_flight"
	StatusResolved     Status = "resolved"
	StatusNeedsReview  Status = "needs_review"
	StatusDismissed    Status = "dismissed"
	StatusWaitingInput Status = "waiting_input"
)

// CanonicalStatus normalizes free-form status input (tool arguments, persisted
// data) to a known Status. The legacy alias "captured" maps to in_flight.
func CanonicalStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, true
	case StatusInFlight, "captured":
		return StatusInFlight, true
	case StatusResolved:
		return StatusResolved, true
	case StatusNeedsReview:
		return StatusNeedsReview, true
	case StatusDismissed:
		return StatusDismissed, true
	case StatusWaitingInput:
		return StatusWaitingInput, true
	}
	return "", false
}

// Anchor names the corner of a paired shape that a text caption tracks during
// resize. Coordinates are screen-space, y grows downward.
type Anchor string

const (
	AnchorBottomLeft Anchor = "bottom-left"
	AnchorTopLeft    Anchor = "top-left"
)

// Point is a 2D page coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an element bounding box in page coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ElementInfo is the DOM context snapshot attached to an annotation or style
// modification at creation time. The engine treats it as opaque; capture and
// payload code fill and read it.
type ElementInfo struct {
	Selector  string   `json:"selector"`
	Tag       string   `json:"tag,omitempty"`
	ID        string   `json:"id,omitempty"`
	Classes   []string `json:"classes,omitempty"`
	Rect      Rect     `json:"rect"`
	Text      string   `json:"text,omitempty"`
	OuterHTML string   `json:"outerHTML,omitempty"`
}

// StyleChange is one recorded property edit inside a StyleModification.
type StyleChange struct {
	Property string `json:"property"`
	Original string `json:"original"`
	Modified string `json:"modified"`
}

// StyleModification is the per-selector entry of the style ledger. Changes is
// property-unique and never empty; an entry whose last change is removed is
// deleted from the ledger. Captured marks entries already reported to the
// agent in a prior round.
type StyleModification struct {
	Selector string        `json:"selector"`
	Element  *ElementInfo  `json:"element,omitempty"`
	Changes  []StyleChange `json:"changes"`
	Captured bool          `json:"captured,omitempty"`
}

// DeletedToken is the sentinel CurrentValue of a spacing token that was
// deleted rather than edited.
const DeletedToken = "__deleted__"

// SpacingMod is the per-token entry of the spacing ledger, keyed by TokenPath.
// OriginalValue and OriginalPx are fixed at the first-ever edit of the path
// and survive later upserts, so a delete or revert can always restore them.
type SpacingMod struct {
	TokenPath     string   `json:"tokenPath"`
	OriginalValue string   `json:"originalValue"`
	OriginalPx    float64  `json:"originalPx"`
	CurrentValue  string   `json:"currentValue"`
	CurrentPx     float64  `json:"currentPx"`
	Targets       []string `json:"targets,omitempty"`
}

// Deleted reports whether the entry records a token deletion.
func (m SpacingMod) Deleted() bool { return m.CurrentValue == DeletedToken }
