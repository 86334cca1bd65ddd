package annotate

// Kind is the wire discriminator of an action.
type Kind string

const (
	KindSetTool             Kind = "set_tool"
	KindSetColor            Kind = "set_color"
	KindSetStrokeWidth      Kind = "set_stroke_width"
	KindSetAnnotating       Kind = "set_annotating"
	KindStartPath           Kind = "start_path"
	KindContinuePath        Kind = "continue_path"
	KindFinishPath          Kind = "finish_path"
	KindAddText             Kind = "add_text"
	KindUpdateAnnotation    Kind = "update_annotation"
	KindMoveAnnotation      Kind = "move_annotation"
	KindResizeAnnotation    Kind = "resize_annotation"
	KindDeleteAnnotation    Kind = "delete_annotation"
	KindSelectAnnotation    Kind = "select_annotation"
	KindSetInspectedElement Kind = "set_inspected_element"
	KindUndo                Kind = "undo"
	KindRedo                Kind = "redo"
	KindClear               Kind = "clear"
	KindMarkCaptured        Kind = "mark_captured"
	KindModifyStyle         Kind = "modify_style"
	KindModifyStylesBatch   Kind = "modify_styles_batch"
	KindClearStyle          Kind = "clear_style"
	KindClearAllStyles      Kind = "clear_all_styles"
	KindModifySpacingToken  Kind = "modify_spacing_token"
	KindDeleteSpacingToken  Kind = "delete_spacing_token"
	KindSetStatus           Kind = "set_annotation_status"
	KindSetThread           Kind = "set_annotation_thread"
	KindSetQuestion         Kind = "set_annotation_question"
	KindApplyResolutions    Kind = "apply_resolutions"
	KindCleanupOrphaned     Kind = "cleanup_orphaned"
	KindPasteAnnotations    Kind = "paste_annotations"
	KindRestoreAnnotations  Kind = "restore_annotations"
)

// Action is one state transition request. Concrete actions are plain structs
// so they decode from the wire envelope.
type Action interface {
	Kind() Kind
}

// UndoPolicy classifies how an action interacts with the undo stack. The
// table below is the single source of truth; handlers never decide this
// inline.
type UndoPolicy int

const (
	// UndoNever marks transient or history-managing actions that never push.
	UndoNever UndoPolicy = iota
	// UndoAlways pushes a pre-mutation snapshot whenever the action changed
	// any snapshot-covered collection.
	UndoAlways
	// UndoOnRequest pushes only when the action's SaveUndo field is set,
	// letting drags commit one history entry for the whole gesture.
	UndoOnRequest
)

var undoPolicies = map[Kind]UndoPolicy{
	KindSetTool:             UndoNever,
	KindSetColor:            UndoNever,
	KindSetStrokeWidth:      UndoNever,
	KindSetAnnotating:       UndoNever,
	KindStartPath:           UndoNever,
	KindContinuePath:        UndoNever,
	KindFinishPath:          UndoAlways,
	KindAddText:             UndoAlways,
	KindUpdateAnnotation:    UndoOnRequest,
	KindMoveAnnotation:      UndoOnRequest,
	KindResizeAnnotation:    UndoOnRequest,
	KindDeleteAnnotation:    UndoAlways,
	KindSelectAnnotation:    UndoNever,
	KindSetInspectedElement: UndoNever,
	KindUndo:                UndoNever,
	KindRedo:                UndoNever,
	KindClear:               UndoNever,
	KindMarkCaptured:        UndoAlways,
	KindModifyStyle:         UndoAlways,
	KindModifyStylesBatch:   UndoAlways,
	KindClearStyle:          UndoAlways,
	KindClearAllStyles:      UndoAlways,
	KindModifySpacingToken:  UndoAlways,
	KindDeleteSpacingToken:  UndoAlways,
	KindSetStatus:           UndoAlways,
	KindSetThread:           UndoAlways,
	KindSetQuestion:         UndoAlways,
	KindApplyResolutions:    UndoAlways,
	KindCleanupOrphaned:     UndoAlways,
	KindPasteAnnotations:    UndoAlways,
	KindRestoreAnnotations:  UndoNever,
}

// PolicyFor returns the undo classification of a kind. Unknown kinds are
// UndoNever.
func PolicyFor(k Kind) UndoPolicy { return undoPolicies[k] }

// SetTool selects the active drawing tool.
type SetTool struct {
	Tool Tool `json:"tool"`
}

// SetColor selects the active stroke color for new annotations.
type SetColor struct {
	Color string `json:"color"`
}

// SetStrokeWidth selects the stroke width for new annotations.
type SetStrokeWidth struct {
	Width float64 `json:"width"`
}

// SetAnnotating toggles the overlay's drawing mode.
type SetAnnotating struct {
	On bool `json:"on"`
}

// StartPath begins a drawing gesture at a point.
type StartPath struct {
	Point Point `json:"point"`
}

// ContinuePath extends the in-progress gesture. Ignored when none is active.
type ContinuePath struct {
	Point Point `json:"point"`
}

// FinishPath commits the in-progress gesture as an annotation of the active
// tool. ID and Timestamp are stamped by the Dispatcher when empty. A path too
// short for the tool clears the gesture without creating anything.
type FinishPath struct {
	ID             string        `json:"id,omitempty"`
	Timestamp      int64         `json:"timestamp,omitempty"`
	GroupID        string        `json:"groupId,omitempty"`
	LinkedSelector string        `json:"linkedSelector,omitempty"`
	LinkedAnchor   Anchor        `json:"linkedAnchor,omitempty"`
	Elements       []ElementInfo `json:"elements,omitempty"`
}

// AddText commits a text note at a point. ID and Timestamp are stamped by the
// Dispatcher when empty; an empty body is a no-op.
type AddText struct {
	ID             string        `json:"id,omitempty"`
	Timestamp      int64         `json:"timestamp,omitempty"`
	Point          Point         `json:"point"`
	Body           string        `json:"text"`
	FontSize       float64       `json:"fontSize,omitempty"`
	GroupID        string        `json:"groupId,omitempty"`
	LinkedSelector string        `json:"linkedSelector,omitempty"`
	LinkedAnchor   Anchor        `json:"linkedAnchor,omitempty"`
	Elements       []ElementInfo `json:"elements,omitempty"`
}

// UpdateAnnotation edits presentation fields of an existing annotation. Zero
// fields are left untouched. Color propagates to group mates; the others
// apply to the target only, with Body and FontSize valid on text notes.
type UpdateAnnotation struct {
	ID          string  `json:"id"`
	Color       string  `json:"color,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Body        string  `json:"text,omitempty"`
	FontSize    float64 `json:"fontSize,omitempty"`
	SaveUndo    bool    `json:"saveUndo,omitempty"`
}

// MoveAnnotation translates the target and its group by a delta. SaveUndo is
// set on the first frame of a drag only.
type MoveAnnotation struct {
	ID       string `json:"id"`
	Delta    Point  `json:"delta"`
	SaveUndo bool   `json:"saveUndo,omitempty"`
}

// ResizeAnnotation replaces the target's points. Text group mates are not
// resized; their anchor tracks the moved corner of the target instead.
type ResizeAnnotation struct {
	ID       string  `json:"id"`
	Points   []Point `json:"points"`
	SaveUndo bool    `json:"saveUndo,omitempty"`
}

// DeleteAnnotation removes the target and its group.
type DeleteAnnotation struct {
	ID string `json:"id"`
}

// SelectAnnotation updates the selection. An empty ID clears it;
// AddToSelection toggles membership instead of replacing.
type SelectAnnotation struct {
	ID             string `json:"id"`
	AddToSelection bool   `json:"addToSelection,omitempty"`
}

// SetInspectedElement records the element under inspection, or clears it when
// nil.
type SetInspectedElement struct {
	Element *ElementInfo `json:"element"`
}

// Undo reverts the newest history entry.
type Undo struct{}

// Redo reapplies the newest undone entry.
type Redo struct{}

// Clear empties annotations, selection, gesture, the spacing ledger and both
// history stacks. Style modifications survive.
type Clear struct{}

// MarkCaptured moves every pending annotation to in_flight and flags every
// style modification as captured, marking the moment a round was handed to
// the agent.
type MarkCaptured struct{}

// ModifyStyle records one live style edit into the ledger (see the merge
// rules on StyleModification).
type ModifyStyle struct {
	Selector string       `json:"selector"`
	Element  *ElementInfo `json:"element,omitempty"`
	Property string       `json:"property"`
	Original string       `json:"original"`
	Modified string       `json:"modified"`
}

// ModifyStylesBatch records a list of style edits for one selector in a
// single transaction, dropping no-op changes first.
type ModifyStylesBatch struct {
	Selector string        `json:"selector"`
	Element  *ElementInfo  `json:"element,omitempty"`
	Changes  []StyleChange `json:"changes"`
}

// ClearStyle removes one recorded property change; removing the last change
// drops the selector's entry.
type ClearStyle struct {
	Selector string `json:"selector"`
	Property string `json:"property"`
}

// ClearAllStyles empties the style ledger.
type ClearAllStyles struct{}

// ModifySpacingToken upserts a spacing-token edit. The first recorded
// original for a path is preserved across later edits.
type ModifySpacingToken struct {
	SpacingMod
}

// DeleteSpacingToken records a token deletion with the sentinel current
// value, reusing the previously recorded original when one exists.
type DeleteSpacingToken struct {
	TokenPath     string `json:"tokenPath"`
	OriginalValue string `json:"originalValue,omitempty"`
}

// SetAnnotationStatus assigns a lifecycle status to the target and its group.
// This is the explicit override used by agent tooling; invalid statuses are
// ignored.
type SetAnnotationStatus struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

// SetAnnotationThread tags the target and its group with a conversation
// thread id.
type SetAnnotationThread struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

// SetAnnotationQuestion records an agent question on the target and its
// group, moving them to waiting_input.
type SetAnnotationQuestion struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	ThreadID string `json:"threadId,omitempty"`
}

// Resolution is one agent answer inside ApplyResolutions.
type Resolution struct {
	ID      string `json:"id"`
	Status  Status `json:"status"`
	Summary string `json:"summary,omitempty"`
}

// ApplyResolutions applies agent answers: each resolution moves its target
// (and group) from in_flight or waiting_input to resolved or needs_review,
// records the summary, bumps the reply count and clears any open question.
type ApplyResolutions struct {
	Resolutions []Resolution `json:"resolutions"`
	ThreadID    string       `json:"threadId,omitempty"`
}

// CleanupOrphaned removes annotations whose linked element disappeared
// (cascading through their groups) and style entries whose selector no longer
// matches.
type CleanupOrphaned struct {
	LinkedSelectors []string `json:"linkedSelectors,omitempty"`
	StyleSelectors  []string `json:"styleSelectors,omitempty"`
}

// PasteAnnotations appends externally held annotations, skipping ids already
// present and running the legacy migration.
type PasteAnnotations struct {
	Annotations []Annotation `json:"annotations"`
}

// RestoreAnnotations replaces the three persisted collections from a saved
// document: duplicate ids are dropped (first occurrence wins), the legacy
// migration runs, and history, selection and gesture state reset.
type RestoreAnnotations struct {
	Annotations []Annotation          `json:"annotations"`
	StyleMods   []StyleModification   `json:"styleModifications,omitempty"`
	SpacingMods map[string]SpacingMod `json:"spacingTokenMods,omitempty"`
}

func (SetTool) Kind() Kind { return KindSetTool }
func (SetColor) Kind() Kind { return KindSetColor }
func (SetStrokeWidth) Kind() Kind { return KindSetStrokeWidth }
func (SetAnnotating) Kind() Kind { return KindSetAnnotating }
func (StartPath) Kind() Kind { return KindStartPath }
func (ContinuePath) Kind() Kind { return KindContinuePath }
func (FinishPath) Kind() Kind { return KindFinishPath }
func (AddText) Kind() Kind { return KindAddText }
func (UpdateAnnotation) Kind() Kind { return KindUpdateAnnotation }
func (MoveAnnotation) Kind() Kind { return KindMoveAnnotation }
func (ResizeAnnotation) Kind() Kind { return KindResizeAnnotation }
func (DeleteAnnotation) Kind() Kind { return KindDeleteAnnotation }
func (SelectAnnotation) Kind() Kind { return KindSelectAnnotation }
func (SetInspectedElement) Kind() Kind { return KindSetInspectedElement }
func (Undo) Kind() Kind { return KindUndo }
func (Redo) Kind() Kind { return KindRedo }
func (Clear) Kind() Kind { return KindClear }
func (MarkCaptured) Kind() Kind { return KindMarkCaptured }
func (ModifyStyle) Kind() Kind { return KindModifyStyle }
func (ModifyStylesBatch) Kind() Kind { return KindModifyStylesBatch }
func (ClearStyle) Kind() Kind { return KindClearStyle }
func (ClearAllStyles) Kind() Kind { return KindClearAllStyles }
func (ModifySpacingToken) Kind() Kind { return KindModifySpacingToken }
func (DeleteSpacingToken) Kind() Kind { return KindDeleteSpacingToken }
func (SetAnnotationStatus) Kind() Kind { return KindSetStatus }
func (SetAnnotationThread) Kind() Kind { return KindSetThread }
func (SetAnnotationQuestion) Kind() Kind { return KindSetQuestion }
func (ApplyResolutions) Kind() Kind { return KindApplyResolutions }
func (CleanupOrphaned) Kind() Kind { return KindCleanupOrphaned }
func (PasteAnnotations) Kind() Kind { return KindPasteAnnotations }
func (RestoreAnnotations) Kind() Kind { return KindRestoreAnnotations }

// saveUndoRequested reads the SaveUndo field of the UndoOnRequest actions.
func saveUndoRequested(a Action) bool {
	switch v := a.(type) {
	case MoveAnnotation:
		return v.SaveUndo
	case ResizeAnnotation:
		return v.SaveUndo
	case UpdateAnnotation:
		return v.SaveUndo
	}
	return false
}
