package annotate

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	actions := []Action{
		SetTool{Tool: ToolCircle},
		MoveAnnotation{ID: "r1", Delta: Point{4, -2}, SaveUndo: true},
		ModifyStyle{Selector: "div.a", Property: "color", Original: "red", Modified: "blue"},
		ApplyResolutions{
			Resolutions: []Resolution{{ID: "r1", Status: StatusResolved, Summary: "done"}},
			ThreadID:    "thr_1",
		},
		DeleteSpacingToken{TokenPath: "space.md", OriginalValue: "16px"},
		CleanupOrphaned{LinkedSelectors: []string{"div.gone"}},
	}
	for _, in := range actions {
		data, err := EncodeAction(in)
		if err != nil {
			t.Fatalf("encode %s: %v", in.Kind(), err)
		}
		out, err := DecodeAction(data)
		if err != nil {
			t.Fatalf("decode %s: %v", in.Kind(), err)
		}
		if out.Kind() != in.Kind() {
			t.Errorf("kind = %q, want %q", out.Kind(), in.Kind())
		}
		a, _ := json.Marshal(in)
		b, _ := json.Marshal(out)
		if string(a) != string(b) {
			t.Errorf("%s round trip:\n got %s\nwant %s", in.Kind(), b, a)
		}
	}
}

func TestEncodeAction_EmptyPayloadOmitted(t *testing.T) {
	data, err := EncodeAction(Undo{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "payload") {
		t.Errorf("undo envelope = %s, want no payload", data)
	}
	out, err := DecodeAction(data)
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind() != KindUndo {
		t.Errorf("kind = %q, want undo", out.Kind())
	}
}

func TestDecodeAction_UnknownKind(t *testing.T) {
	_, err := DecodeAction([]byte(`{"kind":"explode"}`))
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if !strings.Contains(err.Error(), "explode") {
		t.Errorf("error = %v, want the kind named", err)
	}
}

func TestDecodeAction_DispatchableValue(t *testing.T) {
	data := []byte(`{"kind":"move_annotation","payload":{"id":"r1","delta":{"x":3,"y":0}}}`)
	action, err := DecodeAction(data)
	if err != nil {
		t.Fatal(err)
	}
	s := seed(t, rectAnn("r1", "", Point{0, 0}, Point{10, 10}))
	s = Reduce(s, action)
	if pts := pointsOf(t, s, "r1"); pts[0] != (Point{3, 0}) {
		t.Errorf("decoded action did not reduce: %v", pts[0])
	}
}

func TestAnnotationJSON_WireFieldNames(t *testing.T) {
	a := rectAnn("r1", "g1", Point{1, 2}, Point{3, 4})
	a.LinkedSelector = "div.card"
	a.LinkedAnchor = AnchorTopLeft
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"strokeWidth"`, `"groupId"`, `"linkedSelector"`, `"linkedAnchor"`, `"type":"rectangle"`, `"points"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("wire json missing %s: %s", key, data)
		}
	}
}

func TestAnnotationJSON_TextRoundTrip(t *testing.T) {
	in := textAnn("t1", "", Point{7, 8}, "fix the gap")
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	var out Annotation
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	txt, ok := out.Shape.(Text)
	if !ok {
		t.Fatalf("shape = %T, want Text", out.Shape)
	}
	if txt.At != (Point{7, 8}) || txt.Body != "fix the gap" || txt.FontSize != 16 {
		t.Errorf("text = %+v", txt)
	}
}

func TestAnnotationJSON_LegacyCapturedPayload(t *testing.T) {
	legacy := []byte(`{"id":"r1","type":"rectangle","points":[{"x":0,"y":0},{"x":5,"y":5}],"captured":true}`)
	var a Annotation
	if err := json.Unmarshal(legacy, &a); err != nil {
		t.Fatal(err)
	}
	if a.Status != "" {
		t.Fatalf("status = %q before migration", a.Status)
	}
	if got := Migrate(a).Status; got != StatusInFlight {
		t.Errorf("migrated status = %q, want in_flight", got)
	}
}

func TestAnnotationJSON_UnknownType(t *testing.T) {
	var a Annotation
	err := json.Unmarshal([]byte(`{"id":"x","type":"arrow","points":[{"x":0,"y":0}]}`), &a)
	if err == nil {
		t.Fatal("expected error for unknown annotation type")
	}
}

func TestDocument_RestoreRoundTrip(t *testing.T) {
	s := NewState()
	s = Reduce(s, AddText{ID: "t1", Timestamp: 1, Point: Point{1, 1}, Body: "note"})
	s = Reduce(s, ModifyStyle{Selector: "div.a", Property: "color", Original: "red", Modified: "blue"})
	s = Reduce(s, ModifySpacingToken{SpacingMod{TokenPath: "space.md", OriginalValue: "16px", CurrentValue: "24px"}})

	doc := Export(s)
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var back Document
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}

	restored := Reduce(NewState(), back.Restore())
	if got, want := collectionsJSON(t, restored), collectionsJSON(t, s); got != want {
		t.Errorf("restore round trip:\n got %s\nwant %s", got, want)
	}
}

func TestStateJSON_HidesHistory(t *testing.T) {
	s := NewState()
	s = Reduce(s, AddText{ID: "t1", Timestamp: 1, Point: Point{1, 1}, Body: "note"})
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "UndoStack") || strings.Contains(string(data), "undoStack") {
		t.Errorf("history leaked into state json: %s", data)
	}
	for _, key := range []string{`"isAnnotating"`, `"activeTool"`, `"annotations"`, `"styleModifications"`, `"spacingTokenMods"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("state json missing %s", key)
		}
	}
}
