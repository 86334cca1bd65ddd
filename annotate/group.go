package annotate

// groupOp names the operations that propagate across a group. Kept explicit
// so resize can special-case text mates.
type groupOp int

const (
	opMove groupOp = iota
	opResize
	opRecolor
	opDelete
	opStatus
	opThread
	opQuestion
)

// affected returns the indexes of the target and every annotation sharing its
// non-empty group id. Empty when the id does not resolve.
func affected(anns []Annotation, id string, _ groupOp) map[int]bool {
	target := -1
	for i := range anns {
		if anns[i].ID == id {
			target = i
			break
		}
	}
	if target < 0 {
		return nil
	}
	out := map[int]bool{target: true}
	gid := anns[target].GroupID
	if gid == "" {
		return out
	}
	for i := range anns {
		if anns[i].GroupID == gid {
			out[i] = true
		}
	}
	return out
}

func applyMove(s *State, a MoveAnnotation) *State {
	if a.Delta.X == 0 && a.Delta.Y == 0 {
		return s
	}
	set := affected(s.Annotations, a.ID, opMove)
	if len(set) == 0 {
		return s
	}
	i := -1
	anns := mapAnnotations(s.Annotations, func(ann Annotation) (Annotation, bool) {
		i++
		if !set[i] {
			return ann, false
		}
		ann.Shape = ann.Shape.translate(a.Delta.X, a.Delta.Y)
		return ann, true
	})
	if anns == nil {
		return s
	}
	next := s.clone()
	next.Annotations = anns
	return next
}

// applyResize replaces the target's points. A text target is a type mismatch
// and a no-op. Group mates are never given the new dimensions: text mates
// have their anchor translated to track the target's moved corner
// (bottom-left by default, top-left when LinkedAnchor says so), shape mates
// are translated by the same corner delta to keep the group's layout.
func applyResize(s *State, a ResizeAnnotation) *State {
	set := affected(s.Annotations, a.ID, opResize)
	if len(set) == 0 {
		return s
	}
	target := s.annotationIndex(a.ID)
	old := s.Annotations[target]
	if old.IsText() || len(a.Points) < 2 {
		return s
	}
	resized := withPoints(old.Shape, a.Points)
	oldBounds, newBounds := bounds(old.Shape), bounds(resized)

	i := -1
	anns := mapAnnotations(s.Annotations, func(ann Annotation) (Annotation, bool) {
		i++
		if !set[i] {
			return ann, false
		}
		if i == target {
			ann.Shape = resized
			return ann, true
		}
		c0 := anchorCorner(oldBounds, ann.LinkedAnchor)
		c1 := anchorCorner(newBounds, ann.LinkedAnchor)
		dx, dy := c1.X-c0.X, c1.Y-c0.Y
		if dx == 0 && dy == 0 {
			return ann, false
		}
		ann.Shape = ann.Shape.translate(dx, dy)
		return ann, true
	})
	if anns == nil {
		return s
	}
	next := s.clone()
	next.Annotations = anns
	return next
}

func applyDelete(s *State, a DeleteAnnotation) *State {
	set := affected(s.Annotations, a.ID, opDelete)
	if len(set) == 0 {
		return s
	}
	return removeAnnotations(s, set)
}

// removeAnnotations drops the indexed set and prunes the selection.
func removeAnnotations(s *State, drop map[int]bool) *State {
	kept := make([]Annotation, 0, len(s.Annotations)-len(drop))
	for i := range s.Annotations {
		if !drop[i] {
			kept = append(kept, s.Annotations[i])
		}
	}
	next := s.clone()
	next.Annotations = kept
	pruneSelection(next)
	return next
}

func applyRecolor(s *State, id, color string) *State {
	set := affected(s.Annotations, id, opRecolor)
	if len(set) == 0 {
		return s
	}
	i := -1
	anns := mapAnnotations(s.Annotations, func(ann Annotation) (Annotation, bool) {
		i++
		if !set[i] || ann.Color == color {
			return ann, false
		}
		ann.Color = color
		return ann, true
	})
	if anns == nil {
		return s
	}
	next := s.clone()
	next.Annotations = anns
	return next
}
