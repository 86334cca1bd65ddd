package annotate

import "testing"

func linked(id, selector string, ts int64) Annotation {
	a := rectAnn(id, "", Point{0, 0}, Point{1, 1})
	a.LinkedSelector = selector
	a.Timestamp = ts
	return a
}

func TestSuperseded_NewestWins(t *testing.T) {
	anns := []Annotation{
		linked("a", "div.card", 1000),
		linked("b", "div.card", 2000),
		linked("c", "div.card", 3000),
	}
	got := Superseded(anns)
	if len(got) != 2 || !got[0] || !got[1] {
		t.Errorf("superseded = %v, want indexes 0 and 1", got)
	}
	if got[2] {
		t.Error("newest round superseded")
	}
}

func TestSuperseded_NoSelectorNeverSuperseded(t *testing.T) {
	anns := []Annotation{
		linked("a", "", 1000),
		linked("b", "", 2000),
	}
	if got := Superseded(anns); len(got) != 0 {
		t.Errorf("superseded = %v, want empty", got)
	}
}

func TestSuperseded_SingleRoundKept(t *testing.T) {
	anns := []Annotation{linked("a", "div.card", 1000)}
	if got := Superseded(anns); len(got) != 0 {
		t.Errorf("superseded = %v, want empty for a singleton", got)
	}
}

func TestSuperseded_GroupCascade(t *testing.T) {
	old := linked("old", "div.card", 1000)
	old.GroupID = "g1"
	oldCaption := textAnn("cap", "g1", Point{0, 2}, "old caption")
	oldCaption.Timestamp = 1001
	fresh := linked("new", "div.card", 2000)

	got := Superseded([]Annotation{old, oldCaption, fresh})
	if !got[0] || !got[1] {
		t.Errorf("superseded = %v, want the old round and its caption", got)
	}
	if got[2] {
		t.Error("fresh round superseded")
	}
}

// A group id carried by a kept annotation must never cascade, even when
// another member of that group was superseded.
func TestSuperseded_KeptGroupBlocksCascade(t *testing.T) {
	oldShape := linked("old", "div.card", 1000)
	oldShape.GroupID = "g1"
	newShape := linked("new", "div.card", 2000)
	newShape.GroupID = "g1"
	caption := textAnn("cap", "g1", Point{0, 2}, "caption")

	got := Superseded([]Annotation{oldShape, newShape, caption})
	if !got[0] {
		t.Error("old shape not superseded")
	}
	if got[1] || got[2] {
		t.Errorf("superseded = %v, kept group must not cascade", got)
	}
}

// Membership is by index: two distinct entries sharing an id stay distinct.
func TestSuperseded_DuplicateIDsByIndex(t *testing.T) {
	first := linked("dup", "div.card", 1000)
	second := linked("dup", "div.card", 2000)

	got := Superseded([]Annotation{first, second})
	if !got[0] || got[1] {
		t.Errorf("superseded = %v, want only index 0", got)
	}
}

func TestVisible_FiltersSuperseded(t *testing.T) {
	anns := []Annotation{
		linked("a", "div.card", 1000),
		linked("b", "div.card", 2000),
		linked("c", "", 500),
	}
	vis := Visible(anns)
	if len(vis) != 2 {
		t.Fatalf("visible = %d, want 2", len(vis))
	}
	if vis[0].ID != "b" || vis[1].ID != "c" {
		t.Errorf("visible order = %q,%q want b,c", vis[0].ID, vis[1].ID)
	}
}

func TestVisible_NoShadowedSharesSlice(t *testing.T) {
	anns := []Annotation{linked("a", "div.card", 1000)}
	if got := Visible(anns); len(got) != 1 || &got[0] != &anns[0] {
		t.Error("expected the input slice back when nothing is superseded")
	}
}

func TestPending_FiltersStatusAndSupersession(t *testing.T) {
	oldRound := linked("old", "div.card", 1000)
	newRound := linked("new", "div.card", 2000)
	captured := linked("sent", "div.hero", 1500)
	captured.Status = StatusInFlight

	got := Pending([]Annotation{oldRound, newRound, captured})
	if len(got) != 1 || got[0].ID != "new" {
		t.Errorf("pending = %d entries, want only the new pending round", len(got))
	}
}
