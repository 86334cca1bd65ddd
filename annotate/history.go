package annotate

// Snapshot is one undo/redo history entry: the three collections covered by
// history, copied at push time. Slices and map values are shared with the
// states they came from, which is safe because handlers never mutate them in
// place.
type Snapshot struct {
	Annotations []Annotation
	StyleMods   []StyleModification
	SpacingMods map[string]SpacingMod
}

func snapshotOf(s *State) Snapshot {
	return Snapshot{
		Annotations: copyAnnotations(s.Annotations),
		StyleMods:   copyStyleMods(s.StyleMods),
		SpacingMods: copySpacingMods(s.SpacingMods),
	}
}

// pushSnapshot returns a fresh stack with snap on top. Copying on push keeps
// older states' stacks untouched when histories diverge after an undo.
func pushSnapshot(stack []Snapshot, snap Snapshot) []Snapshot {
	out := make([]Snapshot, len(stack)+1)
	copy(out, stack)
	out[len(stack)] = snap
	return out
}

// install replaces the snapshot-covered collections of next and repairs the
// views derived from them.
func install(next *State, snap Snapshot) {
	next.Annotations = snap.Annotations
	next.StyleMods = snap.StyleMods
	next.SpacingMods = snap.SpacingMods
	if next.SpacingMods == nil {
		next.SpacingMods = map[string]SpacingMod{}
	}
	next.SpacingChanges = spacingProjection(next.SpacingMods)
	pruneSelection(next)
}

func applyUndo(s *State) *State {
	n := len(s.UndoStack)
	if n == 0 {
		return s
	}
	next := s.clone()
	top := s.UndoStack[n-1]
	next.UndoStack = s.UndoStack[:n-1]
	next.RedoStack = pushSnapshot(s.RedoStack, snapshotOf(s))
	install(next, top)
	return next
}

func applyRedo(s *State) *State {
	n := len(s.RedoStack)
	if n == 0 {
		return s
	}
	next := s.clone()
	top := s.RedoStack[n-1]
	next.RedoStack = s.RedoStack[:n-1]
	next.UndoStack = pushSnapshot(s.UndoStack, snapshotOf(s))
	install(next, top)
	return next
}

func applyClear(s *State) *State {
	if len(s.Annotations) == 0 && len(s.SelectedIDs) == 0 && s.LastSelectedID == "" &&
		len(s.CurrentPath) == 0 && len(s.SpacingMods) == 0 &&
		len(s.UndoStack) == 0 && len(s.RedoStack) == 0 {
		return s
	}
	next := s.clone()
	next.Annotations = nil
	next.SelectedIDs = nil
	next.LastSelectedID = ""
	next.CurrentPath = nil
	next.SpacingMods = map[string]SpacingMod{}
	next.SpacingChanges = nil
	next.UndoStack = nil
	next.RedoStack = nil
	return next
}
