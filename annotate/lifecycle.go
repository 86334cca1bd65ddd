package annotate

// Lifecycle transitions. Only three paths move an annotation forward:
// mark-captured (pending to in_flight), set-question (anywhere to
// waiting_input) and apply-resolution (in_flight or waiting_input to resolved
// or needs_review). SetAnnotationStatus is the explicit override on top of
// these and bypasses the forward-only rule.

// markCaptured moves one annotation from pending to in_flight. Any other
// status passes through unchanged, which makes MARK_CAPTURED idempotent.
func markCaptured(a Annotation) (Annotation, bool) {
	if a.Status != "" && a.Status != StatusPending {
		return a, false
	}
	a.Status = StatusInFlight
	a.Captured = true
	return a, true
}

func applyMarkCaptured(s *State) *State {
	anns := mapAnnotations(s.Annotations, markCaptured)

	var mods []StyleModification
	for i := range s.StyleMods {
		if !s.StyleMods[i].Captured {
			if mods == nil {
				mods = copyStyleMods(s.StyleMods)
			}
			mods[i].Captured = true
		}
	}

	if anns == nil && mods == nil {
		return s
	}
	next := s.clone()
	if anns != nil {
		next.Annotations = anns
	}
	if mods != nil {
		next.StyleMods = mods
	}
	return next
}

func applySetStatus(s *State, a SetAnnotationStatus) *State {
	status, ok := CanonicalStatus(string(a.Status))
	if !ok {
		return s
	}
	set := affected(s.Annotations, a.ID, opStatus)
	if len(set) == 0 {
		return s
	}
	i := -1
	anns := mapAnnotations(s.Annotations, func(ann Annotation) (Annotation, bool) {
		i++
		if !set[i] || ann.Status == status {
			return ann, false
		}
		ann.Status = status
		if status == StatusInFlight {
			ann.Captured = true
		}
		return ann, true
	})
	if anns == nil {
		return s
	}
	next := s.clone()
	next.Annotations = anns
	return next
}

func applySetThread(s *State, a SetAnnotationThread) *State {
	set := affected(s.Annotations, a.ID, opThread)
	if len(set) == 0 {
		return s
	}
	i := -1
	anns := mapAnnotations(s.Annotations, func(ann Annotation) (Annotation, bool) {
		i++
		if !set[i] || ann.ThreadID == a.ThreadID {
			return ann, false
		}
		ann.ThreadID = a.ThreadID
		return ann, true
	})
	if anns == nil {
		return s
	}
	next := s.clone()
	next.Annotations = anns
	return next
}

func applySetQuestion(s *State, a SetAnnotationQuestion) *State {
	set := affected(s.Annotations, a.ID, opQuestion)
	if len(set) == 0 {
		return s
	}
	i := -1
	anns := mapAnnotations(s.Annotations, func(ann Annotation) (Annotation, bool) {
		i++
		if !set[i] {
			return ann, false
		}
		if ann.Status == StatusWaitingInput && ann.Question == a.Question &&
			(a.ThreadID == "" || ann.ThreadID == a.ThreadID) {
			return ann, false
		}
		ann.Status = StatusWaitingInput
		ann.Question = a.Question
		if a.ThreadID != "" {
			ann.ThreadID = a.ThreadID
		}
		return ann, true
	})
	if anns == nil {
		return s
	}
	next := s.clone()
	next.Annotations = anns
	return next
}

// applyResolutions walks the agent's answers. A resolution lands only when
// its target is in_flight or waiting_input and its status is resolved or
// needs_review; group mates inherit the outcome without the gate so a
// shape+caption pair never splits.
func applyResolutions(s *State, a ApplyResolutions) *State {
	anns := s.Annotations
	changed := false

	for _, r := range a.Resolutions {
		if r.Status != StatusResolved && r.Status != StatusNeedsReview {
			continue
		}
		target := -1
		for i := range anns {
			if anns[i].ID == r.ID {
				target = i
				break
			}
		}
		if target < 0 {
			continue
		}
		if st := anns[target].Status; st != StatusInFlight && st != StatusWaitingInput {
			continue
		}
		set := affected(anns, r.ID, opStatus)
		i := -1
		out := mapAnnotations(anns, func(ann Annotation) (Annotation, bool) {
			i++
			if !set[i] {
				return ann, false
			}
			ann.Status = r.Status
			ann.ResolutionSummary = r.Summary
			ann.ReplyCount++
			ann.Question = ""
			if a.ThreadID != "" {
				ann.ThreadID = a.ThreadID
			}
			return ann, true
		})
		if out != nil {
			anns = out
			changed = true
		}
	}

	if !changed {
		return s
	}
	next := s.clone()
	next.Annotations = anns
	return next
}

func applyCleanupOrphaned(s *State, a CleanupOrphaned) *State {
	next := s

	if len(a.LinkedSelectors) > 0 && len(next.Annotations) > 0 {
		gone := make(map[string]bool, len(a.LinkedSelectors))
		for _, sel := range a.LinkedSelectors {
			gone[sel] = true
		}
		drop := map[int]bool{}
		cascade := map[string]bool{}
		for i := range next.Annotations {
			if gone[next.Annotations[i].LinkedSelector] {
				drop[i] = true
				if gid := next.Annotations[i].GroupID; gid != "" {
					cascade[gid] = true
				}
			}
		}
		for i := range next.Annotations {
			if gid := next.Annotations[i].GroupID; gid != "" && cascade[gid] {
				drop[i] = true
			}
		}
		if len(drop) > 0 {
			next = removeAnnotations(next, drop)
		}
	}

	if len(a.StyleSelectors) > 0 && len(next.StyleMods) > 0 {
		gone := make(map[string]bool, len(a.StyleSelectors))
		for _, sel := range a.StyleSelectors {
			gone[sel] = true
		}
		var kept []StyleModification
		removed := false
		for i := range next.StyleMods {
			if gone[next.StyleMods[i].Selector] {
				removed = true
				continue
			}
			kept = append(kept, next.StyleMods[i])
		}
		if removed {
			if next == s {
				next = s.clone()
			}
			next.StyleMods = kept
		}
	}

	return next
}
