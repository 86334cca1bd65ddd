package annotate

// Spacing ledger. Entries are keyed by token path; the first recorded
// original survives every later upsert so a revert can always find its way
// back. Deletes keep the entry around under a sentinel value instead of
// removing it, for the same reason.

func applyModifySpacingToken(s *State, a ModifySpacingToken) *State {
	mod := a.SpacingMod
	if mod.TokenPath == "" {
		return s
	}
	if prior, ok := s.SpacingMods[mod.TokenPath]; ok {
		mod.OriginalValue = prior.OriginalValue
		mod.OriginalPx = prior.OriginalPx
		if spacingModEqual(prior, mod) {
			return s
		}
	}
	return upsertSpacing(s, mod)
}

func applyDeleteSpacingToken(s *State, a DeleteSpacingToken) *State {
	if a.TokenPath == "" {
		return s
	}
	mod := SpacingMod{
		TokenPath:     a.TokenPath,
		OriginalValue: a.OriginalValue,
		CurrentValue:  DeletedToken,
		CurrentPx:     0,
	}
	if prior, ok := s.SpacingMods[a.TokenPath]; ok {
		mod.OriginalValue = prior.OriginalValue
		mod.OriginalPx = prior.OriginalPx
		mod.Targets = prior.Targets
		if spacingModEqual(prior, mod) {
			return s
		}
	}
	return upsertSpacing(s, mod)
}

func upsertSpacing(s *State, mod SpacingMod) *State {
	next := s.clone()
	mods := copySpacingMods(s.SpacingMods)
	mods[mod.TokenPath] = mod
	next.SpacingMods = mods
	next.SpacingChanges = spacingProjection(mods)
	return next
}
