package annotate

import "sort"

// Supersession: among several annotation rounds pinned to the same linked
// element, only the newest is authoritative. The resolver is pure and
// recomputed on every read; it is never cached in State.

// Superseded returns the indexes of annotations shadowed by a newer round on
// the same linked selector. Membership is by array index, not id, so two
// distinct entries that coincidentally share an id are never conflated.
//
// A superseded annotation drags its whole group along unless that group also
// contains a kept (authoritative) annotation.
func Superseded(anns []Annotation) map[int]bool {
	bySelector := map[string][]int{}
	for i := range anns {
		sel := anns[i].LinkedSelector
		if sel == "" {
			continue
		}
		bySelector[sel] = append(bySelector[sel], i)
	}

	out := map[int]bool{}
	keptGroups := map[string]bool{}
	supersededGroups := map[string]bool{}

	for _, idxs := range bySelector {
		if len(idxs) == 1 {
			if gid := anns[idxs[0]].GroupID; gid != "" {
				keptGroups[gid] = true
			}
			continue
		}
		sorted := append([]int(nil), idxs...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return anns[sorted[i]].Timestamp > anns[sorted[j]].Timestamp
		})
		if gid := anns[sorted[0]].GroupID; gid != "" {
			keptGroups[gid] = true
		}
		for _, i := range sorted[1:] {
			out[i] = true
			if gid := anns[i].GroupID; gid != "" {
				supersededGroups[gid] = true
			}
		}
	}

	// A group id kept by an authoritative annotation never cascades.
	for gid := range supersededGroups {
		if keptGroups[gid] {
			continue
		}
		for i := range anns {
			if anns[i].GroupID == gid {
				out[i] = true
			}
		}
	}
	return out
}

// Visible filters out superseded annotations, preserving order.
func Visible(anns []Annotation) []Annotation {
	shadowed := Superseded(anns)
	if len(shadowed) == 0 {
		return anns
	}
	out := make([]Annotation, 0, len(anns)-len(shadowed))
	for i := range anns {
		if !shadowed[i] {
			out = append(out, anns[i])
		}
	}
	return out
}

// Pending returns the visible annotations still waiting to be handed to the
// agent. This is the annotation half of the agent payload.
func Pending(anns []Annotation) []Annotation {
	shadowed := Superseded(anns)
	var out []Annotation
	for i := range anns {
		if shadowed[i] {
			continue
		}
		if anns[i].Status == StatusPending || anns[i].Status == "" {
			out = append(out, anns[i])
		}
	}
	return out
}
