package annotate

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire form of an action: a kind discriminator plus the
// action's own fields as payload.
type Envelope struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EncodeAction wraps an action in its wire envelope.
func EncodeAction(a Action) ([]byte, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("annotate: encode %s: %w", a.Kind(), err)
	}
	env := Envelope{Kind: a.Kind()}
	if string(payload) != "{}" {
		env.Payload = payload
	}
	return json.Marshal(env)
}

// DecodeAction parses a wire envelope back into a concrete action. Unlike the
// reducer, the codec sits at an ingestion boundary and rejects unknown kinds
// so transports can answer with a proper error.
func DecodeAction(data []byte) (Action, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("annotate: decode action: %w", err)
	}
	return DecodeEnvelope(env)
}

// DecodeEnvelope parses an already-split envelope.
func DecodeEnvelope(env Envelope) (Action, error) {
	blank, ok := actionFor(env.Kind)
	if !ok {
		return nil, fmt.Errorf("annotate: decode action: unknown kind %q", env.Kind)
	}
	if len(env.Payload) == 0 {
		return deref(blank), nil
	}
	if err := json.Unmarshal(env.Payload, blank); err != nil {
		return nil, fmt.Errorf("annotate: decode %s: %w", env.Kind, err)
	}
	return deref(blank), nil
}

// actionFor returns a pointer to a zero value of the kind's concrete type, so
// the payload can be unmarshalled into it.
func actionFor(k Kind) (Action, bool) {
	switch k {
	case KindSetTool:
		return &SetTool{}, true
	case KindSetColor:
		return &SetColor{}, true
	case KindSetStrokeWidth:
		return &SetStrokeWidth{}, true
	case KindSetAnnotating:
		return &SetAnnotating{}, true
	case KindStartPath:
		return &StartPath{}, true
	case KindContinuePath:
		return &ContinuePath{}, true
	case KindFinishPath:
		return &FinishPath{}, true
	case KindAddText:
		return &AddText{}, true
	case KindUpdateAnnotation:
		return &UpdateAnnotation{}, true
	case KindMoveAnnotation:
		return &MoveAnnotation{}, true
	case KindResizeAnnotation:
		return &ResizeAnnotation{}, true
	case KindDeleteAnnotation:
		return &DeleteAnnotation{}, true
	case KindSelectAnnotation:
		return &SelectAnnotation{}, true
	case KindSetInspectedElement:
		return &SetInspectedElement{}, true
	case KindUndo:
		return &Undo{}, true
	case KindRedo:
		return &Redo{}, true
	case KindClear:
		return &Clear{}, true
	case KindMarkCaptured:
		return &MarkCaptured{}, true
	case KindModifyStyle:
		return &ModifyStyle{}, true
	case KindModifyStylesBatch:
		return &ModifyStylesBatch{}, true
	case KindClearStyle:
		return &ClearStyle{}, true
	case KindClearAllStyles:
		return &ClearAllStyles{}, true
	case KindModifySpacingToken:
		return &ModifySpacingToken{}, true
	case KindDeleteSpacingToken:
		return &DeleteSpacingToken{}, true
	case KindSetStatus:
		return &SetAnnotationStatus{}, true
	case KindSetThread:
		return &SetAnnotationThread{}, true
	case KindSetQuestion:
		return &SetAnnotationQuestion{}, true
	case KindApplyResolutions:
		return &ApplyResolutions{}, true
	case KindCleanupOrphaned:
		return &CleanupOrphaned{}, true
	case KindPasteAnnotations:
		return &PasteAnnotations{}, true
	case KindRestoreAnnotations:
		return &RestoreAnnotations{}, true
	}
	return nil, false
}

// deref unwraps the decode pointer back to the value form handlers switch on.
func deref(a Action) Action {
	switch v := a.(type) {
	case *SetTool:
		return *v
	case *SetColor:
		return *v
	case *SetStrokeWidth:
		return *v
	case *SetAnnotating:
		return *v
	case *StartPath:
		return *v
	case *ContinuePath:
		return *v
	case *FinishPath:
		return *v
	case *AddText:
		return *v
	case *UpdateAnnotation:
		return *v
	case *MoveAnnotation:
		return *v
	case *ResizeAnnotation:
		return *v
	case *DeleteAnnotation:
		return *v
	case *SelectAnnotation:
		return *v
	case *SetInspectedElement:
		return *v
	case *Undo:
		return *v
	case *Redo:
		return *v
	case *Clear:
		return *v
	case *MarkCaptured:
		return *v
	case *ModifyStyle:
		return *v
	case *ModifyStylesBatch:
		return *v
	case *ClearStyle:
		return *v
	case *ClearAllStyles:
		return *v
	case *ModifySpacingToken:
		return *v
	case *DeleteSpacingToken:
		return *v
	case *SetAnnotationStatus:
		return *v
	case *SetAnnotationThread:
		return *v
	case *SetAnnotationQuestion:
		return *v
	case *ApplyResolutions:
		return *v
	case *CleanupOrphaned:
		return *v
	case *PasteAnnotations:
		return *v
	case *RestoreAnnotations:
		return *v
	}
	return a
}

// Document is the persisted form of a session: the three collections covered
// by history, in the overlay's legacy field names. Loading a Document is a
// RESTORE_ANNOTATIONS dispatch.
type Document struct {
	Annotations []Annotation          `json:"annotations"`
	StyleMods   []StyleModification   `json:"styleModifications,omitempty"`
	SpacingMods map[string]SpacingMod `json:"spacingTokenMods,omitempty"`
}

// Export captures the persistable collections of a state.
func Export(s *State) Document {
	return Document{
		Annotations: copyAnnotations(s.Annotations),
		StyleMods:   copyStyleMods(s.StyleMods),
		SpacingMods: copySpacingMods(s.SpacingMods),
	}
}

// Restore builds the action that reloads a document.
func (d Document) Restore() RestoreAnnotations {
	return RestoreAnnotations{
		Annotations: d.Annotations,
		StyleMods:   d.StyleMods,
		SpacingMods: d.SpacingMods,
	}
}
