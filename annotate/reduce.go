package annotate

import "strings"

// Reduce applies one action and returns the resulting state. It never fails:
// unknown actions, ids that do not resolve and type-mismatched operations
// return the identical pointer. When the action's undo policy allows it and a
// snapshot-covered collection actually changed, the pre-mutation snapshot is
// pushed and the redo stack cleared.
func Reduce(s *State, action Action) *State {
	next := apply(s, action)
	if next == s {
		return s
	}
	if wantsUndoPush(action) && collectionsDiffer(s, next) {
		next.UndoStack = pushSnapshot(s.UndoStack, snapshotOf(s))
		next.RedoStack = nil
	}
	return next
}

func wantsUndoPush(action Action) bool {
	switch PolicyFor(action.Kind()) {
	case UndoAlways:
		return true
	case UndoOnRequest:
		return saveUndoRequested(action)
	}
	return false
}

// collectionsDiffer reports whether any snapshot-covered collection was
// replaced between two states. Handlers copy on write, so a header comparison
// is enough; a FINISH_PATH that only cleared the gesture, for example, does
// not earn a history entry.
func collectionsDiffer(old, next *State) bool {
	return !sameAnnotationSlice(old.Annotations, next.Annotations) ||
		!sameStyleSlice(old.StyleMods, next.StyleMods) ||
		!sameSpacingMap(old.SpacingMods, next.SpacingMods)
}

func sameAnnotationSlice(a, b []Annotation) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

func sameStyleSlice(a, b []StyleModification) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

func sameSpacingMap(a, b map[string]SpacingMod) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !spacingModEqual(av, bv) {
			return false
		}
	}
	return true
}

func apply(s *State, action Action) *State {
	switch a := action.(type) {
	case SetTool:
		if a.Tool == "" || s.ActiveTool == a.Tool {
			return s
		}
		next := s.clone()
		next.ActiveTool = a.Tool
		return next
	case SetColor:
		if a.Color == "" || s.ActiveColor == a.Color {
			return s
		}
		next := s.clone()
		next.ActiveColor = a.Color
		return next
	case SetStrokeWidth:
		if a.Width <= 0 || s.StrokeWidth == a.Width {
			return s
		}
		next := s.clone()
		next.StrokeWidth = a.Width
		return next
	case SetAnnotating:
		if s.IsAnnotating == a.On {
			return s
		}
		next := s.clone()
		next.IsAnnotating = a.On
		return next
	case StartPath:
		next := s.clone()
		next.CurrentPath = []Point{a.Point}
		return next
	case ContinuePath:
		if len(s.CurrentPath) == 0 {
			return s
		}
		next := s.clone()
		path := make([]Point, len(s.CurrentPath)+1)
		copy(path, s.CurrentPath)
		path[len(s.CurrentPath)] = a.Point
		next.CurrentPath = path
		return next
	case FinishPath:
		return applyFinishPath(s, a)
	case AddText:
		return applyAddText(s, a)
	case UpdateAnnotation:
		return applyUpdate(s, a)
	case MoveAnnotation:
		return applyMove(s, a)
	case ResizeAnnotation:
		return applyResize(s, a)
	case DeleteAnnotation:
		return applyDelete(s, a)
	case SelectAnnotation:
		return applySelect(s, a)
	case SetInspectedElement:
		if s.InspectedElement == nil && a.Element == nil {
			return s
		}
		next := s.clone()
		next.InspectedElement = a.Element
		return next
	case Undo:
		return applyUndo(s)
	case Redo:
		return applyRedo(s)
	case Clear:
		return applyClear(s)
	case MarkCaptured:
		return applyMarkCaptured(s)
	case ModifyStyle:
		return applyModifyStyle(s, a)
	case ModifyStylesBatch:
		return applyModifyStylesBatch(s, a)
	case ClearStyle:
		return applyClearStyle(s, a)
	case ClearAllStyles:
		return applyClearAllStyles(s)
	case ModifySpacingToken:
		return applyModifySpacingToken(s, a)
	case DeleteSpacingToken:
		return applyDeleteSpacingToken(s, a)
	case SetAnnotationStatus:
		return applySetStatus(s, a)
	case SetAnnotationThread:
		return applySetThread(s, a)
	case SetAnnotationQuestion:
		return applySetQuestion(s, a)
	case ApplyResolutions:
		return applyResolutions(s, a)
	case CleanupOrphaned:
		return applyCleanupOrphaned(s, a)
	case PasteAnnotations:
		return applyPaste(s, a)
	case RestoreAnnotations:
		return applyRestore(s, a)
	}
	return s
}

func applyFinishPath(s *State, a FinishPath) *State {
	if len(s.CurrentPath) == 0 {
		return s
	}
	next := s.clone()
	next.CurrentPath = nil

	if s.ActiveTool == ToolText || len(s.CurrentPath) < 2 {
		return next
	}
	shape := geometryFor(s.ActiveTool, s.CurrentPath)
	if shape == nil || a.ID == "" || s.annotationIndex(a.ID) >= 0 {
		return next
	}
	ann := Annotation{
		ID:             a.ID,
		Shape:          shape,
		Color:          s.ActiveColor,
		StrokeWidth:    s.StrokeWidth,
		Timestamp:      a.Timestamp,
		GroupID:        a.GroupID,
		Status:         StatusPending,
		LinkedSelector: a.LinkedSelector,
		LinkedAnchor:   a.LinkedAnchor,
		Elements:       a.Elements,
	}
	next.Annotations = append(copyAnnotations(s.Annotations), ann)
	return next
}

func applyAddText(s *State, a AddText) *State {
	body := strings.TrimSpace(a.Body)
	if body == "" || a.ID == "" || s.annotationIndex(a.ID) >= 0 {
		return s
	}
	size := a.FontSize
	if size <= 0 {
		size = 16
	}
	ann := Annotation{
		ID:             a.ID,
		Shape:          Text{At: a.Point, Body: a.Body, FontSize: size},
		Color:          s.ActiveColor,
		StrokeWidth:    s.StrokeWidth,
		Timestamp:      a.Timestamp,
		GroupID:        a.GroupID,
		Status:         StatusPending,
		LinkedSelector: a.LinkedSelector,
		LinkedAnchor:   a.LinkedAnchor,
		Elements:       a.Elements,
	}
	next := s.clone()
	next.Annotations = append(copyAnnotations(s.Annotations), ann)
	return next
}

func applyUpdate(s *State, a UpdateAnnotation) *State {
	target := s.annotationIndex(a.ID)
	if target < 0 {
		return s
	}
	next := s
	if a.Color != "" {
		next = applyRecolor(next, a.ID, a.Color)
	}

	idx := next.annotationIndex(a.ID)
	ann := next.Annotations[idx]
	touched := false
	if a.StrokeWidth > 0 && ann.StrokeWidth != a.StrokeWidth {
		ann.StrokeWidth = a.StrokeWidth
		touched = true
	}
	if t, ok := ann.Shape.(Text); ok {
		if a.Body != "" && t.Body != a.Body {
			t.Body = a.Body
			ann.Shape = t
			touched = true
		}
		if a.FontSize > 0 && t.FontSize != a.FontSize {
			t.FontSize = a.FontSize
			ann.Shape = t
			touched = true
		}
	}
	if !touched {
		return next
	}

	anns := copyAnnotations(next.Annotations)
	anns[idx] = ann
	if next == s {
		next = s.clone()
	}
	next.Annotations = anns
	return next
}

func applySelect(s *State, a SelectAnnotation) *State {
	if a.ID == "" {
		if len(s.SelectedIDs) == 0 && s.LastSelectedID == "" {
			return s
		}
		next := s.clone()
		next.SelectedIDs = nil
		next.LastSelectedID = ""
		return next
	}
	if s.annotationIndex(a.ID) < 0 {
		return s
	}
	if !a.AddToSelection {
		if len(s.SelectedIDs) == 1 && s.SelectedIDs[0] == a.ID && s.LastSelectedID == a.ID {
			return s
		}
		next := s.clone()
		next.SelectedIDs = []string{a.ID}
		next.LastSelectedID = a.ID
		return next
	}

	next := s.clone()
	selected := false
	for _, id := range s.SelectedIDs {
		if id == a.ID {
			selected = true
			break
		}
	}
	if selected {
		var kept []string
		for _, id := range s.SelectedIDs {
			if id != a.ID {
				kept = append(kept, id)
			}
		}
		next.SelectedIDs = kept
		if next.LastSelectedID == a.ID {
			next.LastSelectedID = ""
		}
	} else {
		next.SelectedIDs = append(append([]string(nil), s.SelectedIDs...), a.ID)
		next.LastSelectedID = a.ID
	}
	return next
}

func applyPaste(s *State, a PasteAnnotations) *State {
	if len(a.Annotations) == 0 {
		return s
	}
	present := make(map[string]bool, len(s.Annotations))
	for i := range s.Annotations {
		present[s.Annotations[i].ID] = true
	}
	var added []Annotation
	for _, ann := range a.Annotations {
		if ann.ID == "" || present[ann.ID] || ann.Shape == nil {
			continue
		}
		present[ann.ID] = true
		added = append(added, Migrate(ann))
	}
	if len(added) == 0 {
		return s
	}
	next := s.clone()
	next.Annotations = append(copyAnnotations(s.Annotations), added...)
	return next
}

// applyRestore rebuilds the persisted collections from a saved document.
// Duplicate annotation ids keep their first occurrence, the legacy migration
// runs, style entries with no changes are dropped, and history, selection and
// the in-progress gesture reset to a fresh baseline.
func applyRestore(s *State, a RestoreAnnotations) *State {
	next := s.clone()

	seen := map[string]bool{}
	var anns []Annotation
	for _, ann := range a.Annotations {
		if ann.ID == "" || seen[ann.ID] || ann.Shape == nil {
			continue
		}
		seen[ann.ID] = true
		anns = append(anns, Migrate(ann))
	}
	next.Annotations = anns

	seenSel := map[string]bool{}
	var mods []StyleModification
	for _, m := range a.StyleMods {
		if m.Selector == "" || seenSel[m.Selector] || len(m.Changes) == 0 {
			continue
		}
		seenSel[m.Selector] = true
		mods = append(mods, m)
	}
	next.StyleMods = mods

	spacing := map[string]SpacingMod{}
	for path, m := range a.SpacingMods {
		if path == "" {
			continue
		}
		m.TokenPath = path
		spacing[path] = m
	}
	next.SpacingMods = spacing
	next.SpacingChanges = spacingProjection(spacing)

	next.UndoStack = nil
	next.RedoStack = nil
	next.SelectedIDs = nil
	next.LastSelectedID = ""
	next.CurrentPath = nil
	return next
}
