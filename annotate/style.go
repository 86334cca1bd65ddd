package annotate

// Style ledger merge rules, shared by MODIFY_STYLE and MODIFY_STYLES_BATCH:
//
//   - no entry for the selector: append one, unless the change is a no-op
//     (original == modified).
//   - entry previously captured: a new edit resets it to just the incoming
//     changes with the captured flag cleared, instead of merging into state
//     the agent already saw.
//   - property already recorded: an edit whose new value equals the recorded
//     original cancels the change (round trip back); otherwise the recorded
//     modified value is updated in place.
//   - property not recorded: append, unless original == modified.
//
// An entry whose last change is removed disappears from the ledger.

// mergeChanges folds incoming edits into an existing change list, returning
// the new list and whether anything differs. The input list is never mutated.
func mergeChanges(existing []StyleChange, incoming []StyleChange) ([]StyleChange, bool) {
	out := append([]StyleChange(nil), existing...)
	changed := false

	for _, in := range incoming {
		at := -1
		for i := range out {
			if out[i].Property == in.Property {
				at = i
				break
			}
		}
		if at < 0 {
			if in.Original == in.Modified {
				continue
			}
			out = append(out, in)
			changed = true
			continue
		}
		if in.Modified == out[at].Original {
			out = append(out[:at], out[at+1:]...)
			changed = true
			continue
		}
		if in.Modified == out[at].Modified {
			continue
		}
		out[at].Modified = in.Modified
		changed = true
	}
	return out, changed
}

func applyModifyStyle(s *State, a ModifyStyle) *State {
	return mergeStyle(s, a.Selector, a.Element, []StyleChange{{
		Property: a.Property,
		Original: a.Original,
		Modified: a.Modified,
	}}, false)
}

func applyModifyStylesBatch(s *State, a ModifyStylesBatch) *State {
	// Batch callers diff whole CSS texts, so no-op changes are dropped up
	// front rather than given a chance to cancel recorded ones.
	var changes []StyleChange
	for _, c := range a.Changes {
		if c.Original != c.Modified {
			changes = append(changes, c)
		}
	}
	return mergeStyle(s, a.Selector, a.Element, changes, true)
}

func mergeStyle(s *State, selector string, element *ElementInfo, changes []StyleChange, batch bool) *State {
	if selector == "" {
		return s
	}
	at := s.styleIndex(selector)

	if at < 0 {
		var fresh []StyleChange
		for _, c := range changes {
			if c.Original == c.Modified {
				continue
			}
			dup := false
			for i := range fresh {
				if fresh[i].Property == c.Property {
					fresh[i].Modified = c.Modified
					dup = true
					break
				}
			}
			if !dup {
				fresh = append(fresh, c)
			}
		}
		if len(fresh) == 0 {
			return s
		}
		next := s.clone()
		next.StyleMods = append(copyStyleMods(s.StyleMods), StyleModification{
			Selector: selector,
			Element:  element,
			Changes:  fresh,
		})
		return next
	}

	entry := s.StyleMods[at]

	if entry.Captured {
		// Reset: keep only the incoming edits, drop the agent-reported state.
		merged, _ := mergeChanges(nil, changes)
		next := s.clone()
		mods := copyStyleMods(s.StyleMods)
		if len(merged) == 0 {
			mods = append(mods[:at], mods[at+1:]...)
		} else {
			mods[at] = StyleModification{Selector: selector, Element: pickElement(entry.Element, element), Changes: merged}
		}
		next.StyleMods = mods
		return next
	}

	if batch && len(changes) == 0 {
		return s
	}
	merged, changed := mergeChanges(entry.Changes, changes)
	if !changed {
		return s
	}
	next := s.clone()
	mods := copyStyleMods(s.StyleMods)
	if len(merged) == 0 {
		mods = append(mods[:at], mods[at+1:]...)
	} else {
		mods[at] = StyleModification{Selector: selector, Element: pickElement(entry.Element, element), Changes: merged, Captured: false}
	}
	next.StyleMods = mods
	return next
}

// pickElement keeps the first snapshot taken for a selector.
func pickElement(have, incoming *ElementInfo) *ElementInfo {
	if have != nil {
		return have
	}
	return incoming
}

func applyClearStyle(s *State, a ClearStyle) *State {
	at := s.styleIndex(a.Selector)
	if at < 0 {
		return s
	}
	entry := s.StyleMods[at]
	idx := -1
	for i := range entry.Changes {
		if entry.Changes[i].Property == a.Property {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	next := s.clone()
	mods := copyStyleMods(s.StyleMods)
	if len(entry.Changes) == 1 {
		mods = append(mods[:at], mods[at+1:]...)
	} else {
		changes := append([]StyleChange(nil), entry.Changes...)
		changes = append(changes[:idx], changes[idx+1:]...)
		entry.Changes = changes
		mods[at] = entry
	}
	next.StyleMods = mods
	return next
}

func applyClearAllStyles(s *State) *State {
	if len(s.StyleMods) == 0 {
		return s
	}
	next := s.clone()
	next.StyleMods = nil
	return next
}
