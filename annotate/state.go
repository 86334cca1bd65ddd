package annotate

import "sort"

// State is the aggregate root. Treat it as immutable: Reduce returns either
// the identical pointer (no-op) or a fresh State sharing unchanged slices and
// maps with its predecessor. Handlers never mutate a collection in place.
type State struct {
	IsAnnotating bool    `json:"isAnnotating"`
	ActiveTool   Tool    `json:"activeTool"`
	ActiveColor  string  `json:"activeColor"`
	StrokeWidth  float64 `json:"strokeWidth"`

	Annotations []Annotation `json:"annotations"`

	UndoStack []Snapshot `json:"-"`
	RedoStack []Snapshot `json:"-"`

	// CurrentPath is the in-progress drawing gesture, not yet committed to
	// Annotations.
	CurrentPath []Point `json:"currentPath,omitempty"`

	SelectedIDs      []string     `json:"selectedAnnotationIds,omitempty"`
	LastSelectedID   string       `json:"lastSelectedId,omitempty"`
	InspectedElement *ElementInfo `json:"inspectedElement,omitempty"`

	StyleMods []StyleModification `json:"styleModifications"`

	// SpacingMods is the ledger keyed by token path; SpacingChanges is its
	// derived list projection ordered by token path, rebuilt on every spacing
	// mutation and snapshot install.
	SpacingMods    map[string]SpacingMod `json:"spacingTokenMods"`
	SpacingChanges []SpacingMod          `json:"spacingTokenChanges"`
}

// NewState returns the initial state with overlay defaults.
func NewState() *State {
	return &State{
		ActiveTool:  ToolFreehand,
		ActiveColor: "#ff4444",
		StrokeWidth: 3,
		SpacingMods: map[string]SpacingMod{},
	}
}

// clone returns a shallow copy for copy-on-write handlers. The caller must
// replace, never mutate, any collection it changes.
func (s *State) clone() *State {
	next := *s
	return &next
}

func (s *State) annotationIndex(id string) int {
	for i := range s.Annotations {
		if s.Annotations[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) styleIndex(selector string) int {
	for i := range s.StyleMods {
		if s.StyleMods[i].Selector == selector {
			return i
		}
	}
	return -1
}

// spacingProjection rebuilds the SpacingChanges view from the ledger, ordered
// by token path for deterministic payloads.
func spacingProjection(mods map[string]SpacingMod) []SpacingMod {
	if len(mods) == 0 {
		return nil
	}
	out := make([]SpacingMod, 0, len(mods))
	for _, m := range mods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TokenPath < out[j].TokenPath })
	return out
}

// mapAnnotations applies f to every annotation, copying the slice lazily on
// the first change. Returns nil when f changed nothing.
func mapAnnotations(anns []Annotation, f func(Annotation) (Annotation, bool)) []Annotation {
	var out []Annotation
	for i, a := range anns {
		b, changed := f(a)
		if changed && out == nil {
			out = make([]Annotation, i, len(anns))
			copy(out, anns[:i])
		}
		if out != nil {
			out = append(out, b)
		}
	}
	return out
}

// copyAnnotations returns a fresh slice sharing the (immutable) elements.
func copyAnnotations(anns []Annotation) []Annotation {
	if anns == nil {
		return nil
	}
	return append([]Annotation(nil), anns...)
}

func copyStyleMods(mods []StyleModification) []StyleModification {
	if mods == nil {
		return nil
	}
	return append([]StyleModification(nil), mods...)
}

func copySpacingMods(mods map[string]SpacingMod) map[string]SpacingMod {
	out := make(map[string]SpacingMod, len(mods))
	for k, v := range mods {
		out[k] = v
	}
	return out
}

// pruneSelection drops selected ids that no longer resolve to an annotation.
// Called after deletes and snapshot installs.
func pruneSelection(next *State) {
	if len(next.SelectedIDs) == 0 && next.LastSelectedID == "" {
		return
	}
	present := make(map[string]bool, len(next.Annotations))
	for i := range next.Annotations {
		present[next.Annotations[i].ID] = true
	}
	var kept []string
	for _, id := range next.SelectedIDs {
		if present[id] {
			kept = append(kept, id)
		}
	}
	next.SelectedIDs = kept
	if !present[next.LastSelectedID] {
		next.LastSelectedID = ""
	}
}

func targetsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func spacingModEqual(a, b SpacingMod) bool {
	return a.TokenPath == b.TokenPath &&
		a.OriginalValue == b.OriginalValue &&
		a.OriginalPx == b.OriginalPx &&
		a.CurrentValue == b.CurrentValue &&
		a.CurrentPx == b.CurrentPx &&
		targetsEqual(a.Targets, b.Targets)
}
