package annotate

import "testing"

func TestMarkCaptured_PendingToInFlight(t *testing.T) {
	s := seed(t,
		rectAnn("r1", "", Point{0, 0}, Point{1, 1}),
		textAnn("t1", "", Point{2, 2}, "note"),
	)
	s = Reduce(s, ModifyStyle{Selector: "div.a", Property: "color", Original: "red", Modified: "blue"})
	s = Reduce(s, MarkCaptured{})

	for _, id := range []string{"r1", "t1"} {
		a := mustFind(t, s, id)
		if a.Status != StatusInFlight {
			t.Errorf("%s status = %q, want in_flight", id, a.Status)
		}
		if !a.Captured {
			t.Errorf("%s legacy captured flag not set", id)
		}
	}
	if !s.StyleMods[0].Captured {
		t.Error("style modification not flagged captured")
	}
}

func TestMarkCaptured_Idempotent(t *testing.T) {
	s := seed(t, rectAnn("r1", "", Point{0, 0}, Point{1, 1}))
	once := Reduce(s, MarkCaptured{})
	twice := Reduce(once, MarkCaptured{})
	if twice != once {
		t.Error("second mark-captured: expected identity")
	}
	if got := mustFind(t, twice, "r1").Status; got != StatusInFlight {
		t.Errorf("status = %q, want in_flight", got)
	}
	if len(twice.UndoStack) != 1 {
		t.Errorf("UndoStack depth = %d, want 1 (no push for the no-op)", len(twice.UndoStack))
	}
}

func TestMarkCaptured_LeavesLaterStatusesAlone(t *testing.T) {
	resolved := rectAnn("r1", "", Point{0, 0}, Point{1, 1})
	resolved.Status = StatusResolved
	s := seed(t, resolved)
	if got := Reduce(s, MarkCaptured{}); got != s {
		t.Error("expected identity: nothing pending")
	}
}

func TestMigrate(t *testing.T) {
	tests := []struct {
		name string
		in   Annotation
		want Status
	}{
		{"explicit status wins", Annotation{Status: StatusResolved, Captured: true}, StatusResolved},
		{"legacy captured maps to in_flight", Annotation{Captured: true}, StatusInFlight},
		{"default is pending", Annotation{}, StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Migrate(tt.in)
			if got.Status != tt.want {
				t.Errorf("status = %q, want %q", got.Status, tt.want)
			}
			if again := Migrate(got); again.Status != got.Status {
				t.Errorf("migrate not idempotent: %q then %q", got.Status, again.Status)
			}
		})
	}
}

func TestSetQuestion_MovesGroupToWaitingInput(t *testing.T) {
	shape := rectAnn("r1", "g1", Point{0, 0}, Point{1, 1})
	shape.Status = StatusInFlight
	s := seed(t, shape, textAnn("t1", "g1", Point{0, 2}, "caption"))

	s = Reduce(s, SetAnnotationQuestion{ID: "r1", Question: "which breakpoint?", ThreadID: "thr_1"})

	for _, id := range []string{"r1", "t1"} {
		a := mustFind(t, s, id)
		if a.Status != StatusWaitingInput {
			t.Errorf("%s status = %q, want waiting_input", id, a.Status)
		}
		if a.Question != "which breakpoint?" || a.ThreadID != "thr_1" {
			t.Errorf("%s question/thread = %q/%q", id, a.Question, a.ThreadID)
		}
	}
}

func TestSetQuestion_FromResolved(t *testing.T) {
	done := rectAnn("r1", "", Point{0, 0}, Point{1, 1})
	done.Status = StatusResolved
	s := seed(t, done)
	s = Reduce(s, SetAnnotationQuestion{ID: "r1", Question: "still wrong?"})
	if got := mustFind(t, s, "r1").Status; got != StatusWaitingInput {
		t.Errorf("status = %q, want waiting_input from any prior status", got)
	}
}

func TestApplyResolutions(t *testing.T) {
	shape := rectAnn("r1", "g1", Point{0, 0}, Point{1, 1})
	shape.Status = StatusInFlight
	shape.Question = "open question"
	caption := textAnn("t1", "g1", Point{0, 2}, "caption")
	caption.Status = StatusPending // mate inherits despite its own status
	s := seed(t, shape, caption)

	s = Reduce(s, ApplyResolutions{
		Resolutions: []Resolution{{ID: "r1", Status: StatusResolved, Summary: "tightened padding"}},
		ThreadID:    "thr_9",
	})

	for _, id := range []string{"r1", "t1"} {
		a := mustFind(t, s, id)
		if a.Status != StatusResolved {
			t.Errorf("%s status = %q, want resolved", id, a.Status)
		}
		if a.ResolutionSummary != "tightened padding" || a.ReplyCount != 1 || a.ThreadID != "thr_9" {
			t.Errorf("%s summary/replies/thread = %q/%d/%q", id, a.ResolutionSummary, a.ReplyCount, a.ThreadID)
		}
		if a.Question != "" {
			t.Errorf("%s question not cleared: %q", id, a.Question)
		}
	}
}

func TestApplyResolutions_GateOnTargetStatus(t *testing.T) {
	s := seed(t, rectAnn("r1", "", Point{0, 0}, Point{1, 1})) // still pending
	if got := Reduce(s, ApplyResolutions{Resolutions: []Resolution{{ID: "r1", Status: StatusResolved}}}); got != s {
		t.Error("expected identity: target was never captured")
	}
}

func TestApplyResolutions_WaitingInputAccepted(t *testing.T) {
	waiting := rectAnn("r1", "", Point{0, 0}, Point{1, 1})
	waiting.Status = StatusWaitingInput
	s := seed(t, waiting)
	s = Reduce(s, ApplyResolutions{Resolutions: []Resolution{{ID: "r1", Status: StatusNeedsReview, Summary: "partial"}}})
	if got := mustFind(t, s, "r1").Status; got != StatusNeedsReview {
		t.Errorf("status = %q, want needs_review", got)
	}
}

func TestApplyResolutions_InvalidStatusSkipped(t *testing.T) {
	inFlight := rectAnn("r1", "", Point{0, 0}, Point{1, 1})
	inFlight.Status = StatusInFlight
	s := seed(t, inFlight)
	if got := Reduce(s, ApplyResolutions{Resolutions: []Resolution{{ID: "r1", Status: StatusPending}}}); got != s {
		t.Error("expected identity: pending is not a resolution status")
	}
}

func TestApplyResolutions_ReplyCountAccumulates(t *testing.T) {
	inFlight := rectAnn("r1", "", Point{0, 0}, Point{1, 1})
	inFlight.Status = StatusInFlight
	s := seed(t, inFlight)
	s = Reduce(s, ApplyResolutions{Resolutions: []Resolution{{ID: "r1", Status: StatusNeedsReview, Summary: "first pass"}}})
	s = Reduce(s, SetAnnotationQuestion{ID: "r1", Question: "good now?"})
	s = Reduce(s, ApplyResolutions{Resolutions: []Resolution{{ID: "r1", Status: StatusResolved, Summary: "second pass"}}})

	a := mustFind(t, s, "r1")
	if a.ReplyCount != 2 {
		t.Errorf("ReplyCount = %d, want 2", a.ReplyCount)
	}
	if a.ResolutionSummary != "second pass" {
		t.Errorf("summary = %q, want latest", a.ResolutionSummary)
	}
}

func TestSetStatus_PropagatesToGroup(t *testing.T) {
	s := seed(t,
		rectAnn("r1", "g1", Point{0, 0}, Point{1, 1}),
		textAnn("t1", "g1", Point{0, 2}, "caption"),
	)
	s = Reduce(s, SetAnnotationStatus{ID: "t1", Status: StatusDismissed})
	for _, id := range []string{"r1", "t1"} {
		if got := mustFind(t, s, id).Status; got != StatusDismissed {
			t.Errorf("%s status = %q, want dismissed", id, got)
		}
	}
}

func TestSetStatus_InvalidIgnored(t *testing.T) {
	s := seed(t, rectAnn("r1", "", Point{0, 0}, Point{1, 1}))
	if got := Reduce(s, SetAnnotationStatus{ID: "r1", Status: "done"}); got != s {
		t.Error("expected identity for unknown status")
	}
}

func TestSetStatus_CanonicalizesInput(t *testing.T) {
	s := seed(t, rectAnn("r1", "", Point{0, 0}, Point{1, 1}))
	s = Reduce(s, SetAnnotationStatus{ID: "r1", Status: " Resolved "})
	if got := mustFind(t, s, "r1").Status; got != StatusResolved {
		t.Errorf("status = %q, want resolved", got)
	}
}

func TestSetThread(t *testing.T) {
	s := seed(t,
		rectAnn("r1", "g1", Point{0, 0}, Point{1, 1}),
		textAnn("t1", "g1", Point{0, 2}, "caption"),
	)
	s = Reduce(s, SetAnnotationThread{ID: "r1", ThreadID: "thr_5"})
	if got := mustFind(t, s, "t1").ThreadID; got != "thr_5" {
		t.Errorf("mate thread = %q, want thr_5", got)
	}
	if got := Reduce(s, SetAnnotationThread{ID: "r1", ThreadID: "thr_5"}); got != s {
		t.Error("same thread: expected identity")
	}
}

func TestCanonicalStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"pending", StatusPending, true},
		{"IN_FLIGHT", StatusInFlight, true},
		{"captured", StatusInFlight, true},
		{" needs_review ", StatusNeedsReview, true},
		{"done", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := CanonicalStatus(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("CanonicalStatus(%q) = %q/%v, want %q/%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCleanupOrphaned_Cascade(t *testing.T) {
	shape := rectAnn("r1", "g1", Point{0, 0}, Point{1, 1})
	shape.LinkedSelector = "div.gone"
	caption := textAnn("t1", "g1", Point{0, 2}, "caption") // no selector of its own
	survivor := rectAnn("r2", "", Point{5, 5}, Point{6, 6})
	survivor.LinkedSelector = "div.alive"
	s := seed(t, shape, caption, survivor)

	s = Reduce(s, CleanupOrphaned{LinkedSelectors: []string{"div.gone"}})

	if len(s.Annotations) != 1 || s.Annotations[0].ID != "r2" {
		t.Fatalf("got %d annotations, want only r2", len(s.Annotations))
	}
	if len(s.UndoStack) != 1 {
		t.Errorf("UndoStack depth = %d, want 1", len(s.UndoStack))
	}
}

func TestCleanupOrphaned_StyleSelectors(t *testing.T) {
	s := NewState()
	s = Reduce(s, ModifyStyle{Selector: "div.gone", Property: "color", Original: "red", Modified: "blue"})
	s = Reduce(s, ModifyStyle{Selector: "div.alive", Property: "margin", Original: "0", Modified: "8px"})

	s = Reduce(s, CleanupOrphaned{StyleSelectors: []string{"div.gone"}})

	if len(s.StyleMods) != 1 || s.StyleMods[0].Selector != "div.alive" {
		t.Fatalf("style mods = %+v", s.StyleMods)
	}
}

func TestCleanupOrphaned_NothingMatches_Identity(t *testing.T) {
	s := seed(t, rectAnn("r1", "", Point{0, 0}, Point{1, 1}))
	if got := Reduce(s, CleanupOrphaned{LinkedSelectors: []string{"div.other"}, StyleSelectors: []string{"p"}}); got != s {
		t.Error("expected identity when nothing is orphaned")
	}
}
