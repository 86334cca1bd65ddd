package annotate

import "testing"

func TestSetTool(t *testing.T) {
	s := NewState()
	next := Reduce(s, SetTool{Tool: ToolCircle})
	if next == s {
		t.Fatal("expected new state")
	}
	if next.ActiveTool != ToolCircle {
		t.Errorf("ActiveTool = %q, want %q", next.ActiveTool, ToolCircle)
	}
	if again := Reduce(next, SetTool{Tool: ToolCircle}); again != next {
		t.Error("same tool: expected identity")
	}
}

func TestSetColor_And_StrokeWidth(t *testing.T) {
	s := NewState()
	s = Reduce(s, SetColor{Color: "#00ff00"})
	if s.ActiveColor != "#00ff00" {
		t.Errorf("ActiveColor = %q, want #00ff00", s.ActiveColor)
	}
	if got := Reduce(s, SetColor{Color: "#00ff00"}); got != s {
		t.Error("same color: expected identity")
	}

	s = Reduce(s, SetStrokeWidth{Width: 5})
	if s.StrokeWidth != 5 {
		t.Errorf("StrokeWidth = %v, want 5", s.StrokeWidth)
	}
	if got := Reduce(s, SetStrokeWidth{Width: 0}); got != s {
		t.Error("zero width: expected identity")
	}
}

func TestSetAnnotating(t *testing.T) {
	s := NewState()
	next := Reduce(s, SetAnnotating{On: true})
	if !next.IsAnnotating {
		t.Error("IsAnnotating = false, want true")
	}
	if got := Reduce(next, SetAnnotating{On: true}); got != next {
		t.Error("same flag: expected identity")
	}
}

func TestPath_DrawRectangle(t *testing.T) {
	s := NewState()
	s = Reduce(s, SetTool{Tool: ToolRectangle})
	s = Reduce(s, StartPath{Point: Point{10, 10}})
	s = Reduce(s, ContinuePath{Point: Point{40, 20}})
	s = Reduce(s, ContinuePath{Point: Point{60, 50}})
	s = Reduce(s, FinishPath{ID: "r1", Timestamp: 2000, GroupID: "g1", LinkedSelector: "div.card"})

	if len(s.CurrentPath) != 0 {
		t.Errorf("CurrentPath not cleared: %v", s.CurrentPath)
	}
	if len(s.Annotations) != 1 {
		t.Fatalf("got %d annotations, want 1", len(s.Annotations))
	}
	a := s.Annotations[0]
	if a.ID != "r1" || a.Tool() != ToolRectangle || a.Status != StatusPending {
		t.Errorf("annotation = %q/%q/%q", a.ID, a.Tool(), a.Status)
	}
	if a.GroupID != "g1" || a.LinkedSelector != "div.card" || a.Timestamp != 2000 {
		t.Errorf("envelope = %q/%q/%d", a.GroupID, a.LinkedSelector, a.Timestamp)
	}
	pts := a.Shape.Points()
	if pts[0] != (Point{10, 10}) || pts[1] != (Point{60, 50}) {
		t.Errorf("corners = %v, want first and last path points", pts)
	}
	if len(s.UndoStack) != 1 {
		t.Errorf("UndoStack depth = %d, want 1", len(s.UndoStack))
	}
}

func TestPath_FreehandKeepsEveryPoint(t *testing.T) {
	s := NewState()
	s = Reduce(s, StartPath{Point: Point{0, 0}})
	s = Reduce(s, ContinuePath{Point: Point{1, 1}})
	s = Reduce(s, ContinuePath{Point: Point{2, 4}})
	s = Reduce(s, FinishPath{ID: "f1", Timestamp: 1})

	pts := pointsOf(t, s, "f1")
	if len(pts) != 3 {
		t.Fatalf("got %d points, want 3", len(pts))
	}
	if pts[1] != (Point{1, 1}) {
		t.Errorf("midpoint = %v, want {1 1}", pts[1])
	}
}

func TestFinishPath_TooShort(t *testing.T) {
	s := NewState()
	s = Reduce(s, StartPath{Point: Point{0, 0}})
	next := Reduce(s, FinishPath{ID: "x", Timestamp: 1})

	if next == s {
		t.Fatal("expected path to be cleared")
	}
	if len(next.Annotations) != 0 {
		t.Errorf("got %d annotations, want 0", len(next.Annotations))
	}
	if len(next.CurrentPath) != 0 {
		t.Errorf("CurrentPath not cleared: %v", next.CurrentPath)
	}
	if len(next.UndoStack) != 0 {
		t.Errorf("short path pushed undo: depth %d", len(next.UndoStack))
	}
}

func TestFinishPath_NoGesture_Identity(t *testing.T) {
	s := NewState()
	if got := Reduce(s, FinishPath{ID: "x"}); got != s {
		t.Error("expected identity with no gesture")
	}
}

func TestFinishPath_TextToolCreatesNothing(t *testing.T) {
	s := NewState()
	s = Reduce(s, SetTool{Tool: ToolText})
	s = Reduce(s, StartPath{Point: Point{0, 0}})
	s = Reduce(s, ContinuePath{Point: Point{5, 5}})
	s = Reduce(s, FinishPath{ID: "x", Timestamp: 1})
	if len(s.Annotations) != 0 {
		t.Errorf("text tool finish created %d annotations", len(s.Annotations))
	}
}

func TestContinuePath_WithoutStart_Identity(t *testing.T) {
	s := NewState()
	if got := Reduce(s, ContinuePath{Point: Point{1, 1}}); got != s {
		t.Error("expected identity without an active gesture")
	}
}

func TestAddText(t *testing.T) {
	s := NewState()
	s = Reduce(s, AddText{ID: "t1", Timestamp: 5, Point: Point{30, 40}, Body: "fix this"})

	a := mustFind(t, s, "t1")
	txt, ok := a.Shape.(Text)
	if !ok {
		t.Fatalf("shape = %T, want Text", a.Shape)
	}
	if txt.Body != "fix this" || txt.At != (Point{30, 40}) {
		t.Errorf("text = %q at %v", txt.Body, txt.At)
	}
	if txt.FontSize != 16 {
		t.Errorf("FontSize = %v, want default 16", txt.FontSize)
	}
	if len(s.UndoStack) != 1 {
		t.Errorf("UndoStack depth = %d, want 1", len(s.UndoStack))
	}
}

func TestAddText_EmptyBody_Identity(t *testing.T) {
	s := NewState()
	if got := Reduce(s, AddText{ID: "t1", Body: "   "}); got != s {
		t.Error("expected identity for blank body")
	}
}

func TestAddText_DuplicateID_Identity(t *testing.T) {
	s := seed(t, textAnn("t1", "", Point{0, 0}, "first"))
	if got := Reduce(s, AddText{ID: "t1", Point: Point{1, 1}, Body: "second"}); got != s {
		t.Error("expected identity for duplicate id")
	}
}

func TestUpdateAnnotation_StrokeWidthTargetOnly(t *testing.T) {
	s := seed(t,
		rectAnn("r1", "g1", Point{0, 0}, Point{10, 10}),
		rectAnn("r2", "g1", Point{20, 20}, Point{30, 30}),
	)
	s = Reduce(s, UpdateAnnotation{ID: "r1", StrokeWidth: 7})
	if got := mustFind(t, s, "r1").StrokeWidth; got != 7 {
		t.Errorf("target StrokeWidth = %v, want 7", got)
	}
	if got := mustFind(t, s, "r2").StrokeWidth; got != 3 {
		t.Errorf("mate StrokeWidth = %v, want untouched 3", got)
	}
}

func TestUpdateAnnotation_ColorPropagatesToGroup(t *testing.T) {
	s := seed(t,
		rectAnn("r1", "g1", Point{0, 0}, Point{10, 10}),
		textAnn("t1", "g1", Point{0, 20}, "caption"),
		rectAnn("r2", "", Point{50, 50}, Point{60, 60}),
	)
	s = Reduce(s, UpdateAnnotation{ID: "r1", Color: "#0000ff"})
	if got := mustFind(t, s, "t1").Color; got != "#0000ff" {
		t.Errorf("mate color = %q, want propagated #0000ff", got)
	}
	if got := mustFind(t, s, "r2").Color; got != "#ff4444" {
		t.Errorf("outsider color = %q, want untouched", got)
	}
}

func TestUpdateAnnotation_TextFields(t *testing.T) {
	s := seed(t, textAnn("t1", "", Point{0, 0}, "old"))
	s = Reduce(s, UpdateAnnotation{ID: "t1", Body: "new", FontSize: 20})
	txt := mustFind(t, s, "t1").Shape.(Text)
	if txt.Body != "new" || txt.FontSize != 20 {
		t.Errorf("text = %q/%v, want new/20", txt.Body, txt.FontSize)
	}
}

func TestUpdateAnnotation_TextFieldsIgnoredOnShape(t *testing.T) {
	s := seed(t, rectAnn("r1", "", Point{0, 0}, Point{10, 10}))
	if got := Reduce(s, UpdateAnnotation{ID: "r1", Body: "nope", FontSize: 20}); got != s {
		t.Error("expected identity: text fields on a shape")
	}
}

func TestUpdateAnnotation_MissingID_Identity(t *testing.T) {
	s := NewState()
	if got := Reduce(s, UpdateAnnotation{ID: "ghost", Color: "#fff"}); got != s {
		t.Error("expected identity for unknown id")
	}
}

func TestSelectAnnotation(t *testing.T) {
	s := seed(t,
		rectAnn("r1", "", Point{0, 0}, Point{1, 1}),
		rectAnn("r2", "", Point{2, 2}, Point{3, 3}),
	)

	s = Reduce(s, SelectAnnotation{ID: "r1"})
	if len(s.SelectedIDs) != 1 || s.SelectedIDs[0] != "r1" || s.LastSelectedID != "r1" {
		t.Fatalf("select: %v last %q", s.SelectedIDs, s.LastSelectedID)
	}

	s = Reduce(s, SelectAnnotation{ID: "r2", AddToSelection: true})
	if len(s.SelectedIDs) != 2 || s.LastSelectedID != "r2" {
		t.Fatalf("add: %v last %q", s.SelectedIDs, s.LastSelectedID)
	}

	// Toggling an already-selected id removes it.
	s = Reduce(s, SelectAnnotation{ID: "r2", AddToSelection: true})
	if len(s.SelectedIDs) != 1 || s.SelectedIDs[0] != "r1" {
		t.Fatalf("toggle off: %v", s.SelectedIDs)
	}
	if s.LastSelectedID != "" {
		t.Errorf("LastSelectedID = %q, want cleared", s.LastSelectedID)
	}

	s = Reduce(s, SelectAnnotation{})
	if len(s.SelectedIDs) != 0 {
		t.Errorf("clear: %v", s.SelectedIDs)
	}
	if got := Reduce(s, SelectAnnotation{}); got != s {
		t.Error("clear on empty selection: expected identity")
	}
}

func TestSelectAnnotation_MissingID_Identity(t *testing.T) {
	s := seed(t, rectAnn("r1", "", Point{0, 0}, Point{1, 1}))
	if got := Reduce(s, SelectAnnotation{ID: "ghost"}); got != s {
		t.Error("expected identity for unknown id")
	}
}

func TestSetInspectedElement(t *testing.T) {
	s := NewState()
	el := &ElementInfo{Selector: "div.hero", Tag: "div"}
	s = Reduce(s, SetInspectedElement{Element: el})
	if s.InspectedElement == nil || s.InspectedElement.Selector != "div.hero" {
		t.Fatalf("InspectedElement = %+v", s.InspectedElement)
	}
	s = Reduce(s, SetInspectedElement{})
	if s.InspectedElement != nil {
		t.Errorf("InspectedElement = %+v, want cleared", s.InspectedElement)
	}
	if got := Reduce(s, SetInspectedElement{}); got != s {
		t.Error("clear twice: expected identity")
	}
}

func TestClear_PreservesStyleMods(t *testing.T) {
	s := seed(t, rectAnn("r1", "", Point{0, 0}, Point{1, 1}))
	s = Reduce(s, SelectAnnotation{ID: "r1"})
	s = Reduce(s, ModifyStyle{Selector: "div.a", Property: "color", Original: "red", Modified: "blue"})
	s = Reduce(s, ModifySpacingToken{SpacingMod{TokenPath: "space.md", OriginalValue: "16px", OriginalPx: 16, CurrentValue: "24px", CurrentPx: 24}})

	s = Reduce(s, Clear{})
	if len(s.Annotations) != 0 || len(s.SelectedIDs) != 0 || len(s.SpacingMods) != 0 || len(s.SpacingChanges) != 0 {
		t.Errorf("clear left annotations=%d selected=%d spacing=%d/%d",
			len(s.Annotations), len(s.SelectedIDs), len(s.SpacingMods), len(s.SpacingChanges))
	}
	if len(s.UndoStack) != 0 || len(s.RedoStack) != 0 {
		t.Errorf("clear left history %d/%d", len(s.UndoStack), len(s.RedoStack))
	}
	if len(s.StyleMods) != 1 {
		t.Errorf("clear dropped style mods: %d, want 1", len(s.StyleMods))
	}
	if got := Reduce(s, Clear{}); got != s {
		t.Error("clear on cleared state: expected identity")
	}
}
