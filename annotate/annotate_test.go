package annotate

import "testing"

// Fixtures shared by the engine tests. Annotations are seeded directly so a
// test exercises exactly one handler.

func rectAnn(id, groupID string, a, b Point) Annotation {
	return Annotation{
		ID:          id,
		Shape:       Rectangle{A: a, B: b},
		Color:       "#ff4444",
		StrokeWidth: 3,
		Timestamp:   1000,
		GroupID:     groupID,
		Status:      StatusPending,
	}
}

func textAnn(id, groupID string, at Point, body string) Annotation {
	return Annotation{
		ID:          id,
		Shape:       Text{At: at, Body: body, FontSize: 16},
		Color:       "#ff4444",
		StrokeWidth: 3,
		Timestamp:   1001,
		GroupID:     groupID,
		Status:      StatusPending,
	}
}

func seed(t *testing.T, anns ...Annotation) *State {
	t.Helper()
	s := NewState()
	s.Annotations = anns
	return s
}

func mustFind(t *testing.T, s *State, id string) Annotation {
	t.Helper()
	i := s.annotationIndex(id)
	if i < 0 {
		t.Fatalf("annotation %q not found", id)
	}
	return s.Annotations[i]
}

func pointsOf(t *testing.T, s *State, id string) []Point {
	t.Helper()
	return mustFind(t, s, id).Shape.Points()
}

// bogusAction exercises the unknown-action path.
type bogusAction struct{}

func (bogusAction) Kind() Kind { return Kind("bogus") }

func TestReduce_UnknownActionIdentity(t *testing.T) {
	s := seed(t, rectAnn("r1", "", Point{0, 0}, Point{10, 10}))
	if got := Reduce(s, bogusAction{}); got != s {
		t.Error("unknown action: state reference changed")
	}
}

func TestReduce_NeverSharesMutations(t *testing.T) {
	s := seed(t, rectAnn("r1", "", Point{0, 0}, Point{10, 10}))
	before := s.Annotations[0].Shape.Points()

	next := Reduce(s, MoveAnnotation{ID: "r1", Delta: Point{5, 5}})
	if next == s {
		t.Fatal("move: expected new state")
	}
	after := s.Annotations[0].Shape.Points()
	if before[0] != after[0] || before[1] != after[1] {
		t.Errorf("move mutated prior state: %v -> %v", before, after)
	}
}
