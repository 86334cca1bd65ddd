package annotate

import "testing"

func modStyle(sel, prop, orig, mod string) ModifyStyle {
	return ModifyStyle{Selector: sel, Property: prop, Original: orig, Modified: mod}
}

func TestModifyStyle_NewEntry(t *testing.T) {
	s := NewState()
	s = Reduce(s, modStyle("div.a", "color", "red", "blue"))

	if len(s.StyleMods) != 1 {
		t.Fatalf("got %d entries, want 1", len(s.StyleMods))
	}
	entry := s.StyleMods[0]
	if entry.Selector != "div.a" || entry.Captured {
		t.Errorf("entry = %+v", entry)
	}
	if len(entry.Changes) != 1 || entry.Changes[0] != (StyleChange{"color", "red", "blue"}) {
		t.Errorf("changes = %+v", entry.Changes)
	}
}

func TestModifyStyle_NoopWithoutEntry_Identity(t *testing.T) {
	s := NewState()
	if got := Reduce(s, modStyle("div.a", "color", "red", "red")); got != s {
		t.Error("expected identity: original equals modified and no entry exists")
	}
}

// Editing back to the recorded original cancels the change and, as the last
// change, removes the whole entry.
func TestModifyStyle_MergeCancel(t *testing.T) {
	s := NewState()
	s = Reduce(s, modStyle("div.a", "color", "red", "blue"))
	s = Reduce(s, modStyle("div.a", "color", "red", "red"))

	if len(s.StyleMods) != 0 {
		t.Errorf("ledger = %+v, want empty after round trip", s.StyleMods)
	}
}

func TestModifyStyle_CancelKeepsOtherProperties(t *testing.T) {
	s := NewState()
	s = Reduce(s, modStyle("div.a", "color", "red", "blue"))
	s = Reduce(s, modStyle("div.a", "margin", "0px", "8px"))
	s = Reduce(s, modStyle("div.a", "color", "blue", "red"))

	if len(s.StyleMods) != 1 {
		t.Fatalf("got %d entries, want 1", len(s.StyleMods))
	}
	changes := s.StyleMods[0].Changes
	if len(changes) != 1 || changes[0].Property != "margin" {
		t.Errorf("changes = %+v, want only margin", changes)
	}
}

func TestModifyStyle_UpdatesInPlace(t *testing.T) {
	s := NewState()
	s = Reduce(s, modStyle("div.a", "color", "red", "blue"))
	s = Reduce(s, modStyle("div.a", "color", "red", "green"))

	changes := s.StyleMods[0].Changes
	if len(changes) != 1 || changes[0].Original != "red" || changes[0].Modified != "green" {
		t.Errorf("changes = %+v, want red->green", changes)
	}
}

func TestModifyStyle_SameModified_Identity(t *testing.T) {
	s := NewState()
	s = Reduce(s, modStyle("div.a", "color", "red", "blue"))
	if got := Reduce(s, modStyle("div.a", "color", "red", "blue")); got != s {
		t.Error("expected identity: recorded change already matches")
	}
}

// Once the agent has seen an entry (captured), a fresh edit starts the entry
// over instead of merging with reported state.
func TestModifyStyle_CapturedReset(t *testing.T) {
	s := NewState()
	s = Reduce(s, modStyle("div.a", "color", "red", "blue"))
	s = Reduce(s, modStyle("div.a", "margin", "0px", "8px"))
	s = Reduce(s, MarkCaptured{})
	s = Reduce(s, modStyle("div.a", "padding", "4px", "12px"))

	entry := s.StyleMods[0]
	if entry.Captured {
		t.Error("captured flag not cleared on reset")
	}
	if len(entry.Changes) != 1 || entry.Changes[0].Property != "padding" {
		t.Errorf("changes = %+v, want only the fresh edit", entry.Changes)
	}
}

func TestModifyStyle_CapturedResetWithNoop_DeletesEntry(t *testing.T) {
	s := NewState()
	s = Reduce(s, modStyle("div.a", "color", "red", "blue"))
	s = Reduce(s, MarkCaptured{})
	s = Reduce(s, modStyle("div.a", "color", "blue", "blue"))

	if len(s.StyleMods) != 0 {
		t.Errorf("ledger = %+v, want empty", s.StyleMods)
	}
}

func TestModifyStylesBatch_FiltersNoops(t *testing.T) {
	s := NewState()
	s = Reduce(s, ModifyStylesBatch{
		Selector: "div.a",
		Changes: []StyleChange{
			{Property: "color", Original: "red", Modified: "blue"},
			{Property: "margin", Original: "0px", Modified: "0px"},
			{Property: "padding", Original: "4px", Modified: "12px"},
		},
	})

	changes := s.StyleMods[0].Changes
	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2 (no-op filtered)", len(changes))
	}
	for _, c := range changes {
		if c.Property == "margin" {
			t.Error("no-op margin change survived the filter")
		}
	}
}

func TestModifyStylesBatch_AllNoops_Identity(t *testing.T) {
	s := NewState()
	got := Reduce(s, ModifyStylesBatch{
		Selector: "div.a",
		Changes:  []StyleChange{{Property: "color", Original: "red", Modified: "red"}},
	})
	if got != s {
		t.Error("expected identity for an all-no-op batch")
	}
}

func TestModifyStylesBatch_MergesIntoExisting(t *testing.T) {
	s := NewState()
	s = Reduce(s, modStyle("div.a", "color", "red", "blue"))
	s = Reduce(s, ModifyStylesBatch{
		Selector: "div.a",
		Changes: []StyleChange{
			{Property: "color", Original: "red", Modified: "green"},
			{Property: "margin", Original: "0px", Modified: "8px"},
		},
	})

	changes := s.StyleMods[0].Changes
	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2", len(changes))
	}
	if changes[0] != (StyleChange{"color", "red", "green"}) {
		t.Errorf("color change = %+v", changes[0])
	}
}

func TestModifyStyle_KeepsFirstElementSnapshot(t *testing.T) {
	s := NewState()
	first := &ElementInfo{Selector: "div.a", Tag: "div"}
	s = Reduce(s, ModifyStyle{Selector: "div.a", Element: first, Property: "color", Original: "red", Modified: "blue"})
	s = Reduce(s, ModifyStyle{Selector: "div.a", Element: &ElementInfo{Selector: "div.a", Tag: "span"}, Property: "color", Original: "red", Modified: "green"})

	if got := s.StyleMods[0].Element; got != first {
		t.Errorf("element snapshot = %+v, want the first one kept", got)
	}
}

func TestClearStyle(t *testing.T) {
	s := NewState()
	s = Reduce(s, modStyle("div.a", "color", "red", "blue"))
	s = Reduce(s, modStyle("div.a", "margin", "0px", "8px"))

	s = Reduce(s, ClearStyle{Selector: "div.a", Property: "color"})
	if len(s.StyleMods) != 1 || len(s.StyleMods[0].Changes) != 1 {
		t.Fatalf("ledger = %+v", s.StyleMods)
	}
	if s.StyleMods[0].Changes[0].Property != "margin" {
		t.Errorf("surviving property = %q, want margin", s.StyleMods[0].Changes[0].Property)
	}

	s = Reduce(s, ClearStyle{Selector: "div.a", Property: "margin"})
	if len(s.StyleMods) != 0 {
		t.Errorf("ledger = %+v, want empty after last change removed", s.StyleMods)
	}
}

func TestClearStyle_Missing_Identity(t *testing.T) {
	s := NewState()
	if got := Reduce(s, ClearStyle{Selector: "div.a", Property: "color"}); got != s {
		t.Error("expected identity for unknown selector")
	}
	s = Reduce(s, modStyle("div.a", "color", "red", "blue"))
	if got := Reduce(s, ClearStyle{Selector: "div.a", Property: "margin"}); got != s {
		t.Error("expected identity for unrecorded property")
	}
}

func TestClearAllStyles(t *testing.T) {
	s := NewState()
	s = Reduce(s, modStyle("div.a", "color", "red", "blue"))
	s = Reduce(s, modStyle("p.b", "margin", "0", "4px"))

	s = Reduce(s, ClearAllStyles{})
	if len(s.StyleMods) != 0 {
		t.Errorf("ledger = %+v, want empty", s.StyleMods)
	}
}

func TestClearAllStyles_EmptyLedger_Identity(t *testing.T) {
	s := NewState()
	if got := Reduce(s, ClearAllStyles{}); got != s {
		t.Error("expected identity: nothing to clear, no undo push")
	}
	if len(s.UndoStack) != 0 {
		t.Errorf("UndoStack depth = %d, want 0", len(s.UndoStack))
	}
}
