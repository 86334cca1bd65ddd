// CLAUDE:SUMMARY Agent handoff builder: pending annotations, style and spacing tables as markdown plus JSON.

// Package payload builds the handoff document for an agent: every pending
// annotation with its element context, the style modification table, and the
// spacing token table. Output ordering is deterministic so repeated builds
// over the same state produce identical documents.
package payload

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"

	"github.com/pagegloss/gloss/annotate"
)

// Payload is the structured handoff document.
type Payload struct {
	GeneratedAt    int64        `json:"generatedAt"`
	Items          []Item       `json:"items"`
	StyleChanges   []StyleRow   `json:"styleChanges,omitempty"`
	SpacingChanges []SpacingRow `json:"spacingChanges,omitempty"`
}

// Item is one pending annotation prepared for the agent.
type Item struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	Comment  string    `json:"comment,omitempty"`
	Status   string    `json:"status"`
	Question string    `json:"question,omitempty"`
	ThreadID string    `json:"threadId,omitempty"`
	GroupID  string    `json:"groupId,omitempty"`
	Selector string    `json:"selector,omitempty"`
	Elements []Element `json:"elements,omitempty"`
}

// Element is the captured page context for one annotated element.
type Element struct {
	Selector string `json:"selector"`
	Tag      string `json:"tag,omitempty"`
	Text     string `json:"text,omitempty"`
	Context  string `json:"context,omitempty"`
}

// StyleRow flattens one recorded property edit.
type StyleRow struct {
	Selector string `json:"selector"`
	Property string `json:"property"`
	Original string `json:"original"`
	Modified string `json:"modified"`
	Captured bool   `json:"captured,omitempty"`
}

// SpacingRow is one spacing token delta.
type SpacingRow struct {
	TokenPath string   `json:"tokenPath"`
	Original  string   `json:"original"`
	Current   string   `json:"current"`
	Deleted   bool     `json:"deleted,omitempty"`
	Targets   []string `json:"targets,omitempty"`
}

// Builder converts element HTML to markdown and assembles payloads.
type Builder struct {
	md       *converter.Converter
	sanitize *bluemonday.Policy
}

// NewBuilder creates a Builder with the standard conversion pipeline.
func NewBuilder() *Builder {
	return &Builder{
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		sanitize: bluemonday.UGCPolicy(),
	}
}

// Build assembles the payload for the given state. Only annotations that are
// pending and not shadowed by a newer round appear; resolved and in-flight
// work is excluded.
func (b *Builder) Build(s annotate.State, now int64) Payload {
	p := Payload{GeneratedAt: now}

	pending := annotate.Pending(s.Annotations)
	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].Timestamp != pending[j].Timestamp {
			return pending[i].Timestamp < pending[j].Timestamp
		}
		return pending[i].ID < pending[j].ID
	})
	for _, ann := range pending {
		p.Items = append(p.Items, b.item(ann))
	}

	p.StyleChanges = styleRows(s.StyleMods)
	p.SpacingChanges = spacingRows(s.SpacingMods)
	return p
}

func (b *Builder) item(ann annotate.Annotation) Item {
	item := Item{
		ID:       ann.ID,
		Kind:     string(ann.Tool()),
		Status:   string(ann.Status),
		Question: ann.Question,
		ThreadID: ann.ThreadID,
		GroupID:  ann.GroupID,
		Selector: ann.LinkedSelector,
	}
	if ann.Status == "" {
		item.Status = string(annotate.StatusPending)
	}
	if txt, ok := ann.Shape.(annotate.Text); ok {
		item.Kind = "note"
		item.Comment = txt.Body
	}
	for _, el := range ann.Elements {
		item.Elements = append(item.Elements, Element{
			Selector: el.Selector,
			Tag:      el.Tag,
			Text:     el.Text,
			Context:  b.elementContext(el),
		})
	}
	return item
}

// elementContext converts the captured outer HTML to markdown. The snippet is
// sanitized first; on conversion failure the visible text stands in.
func (b *Builder) elementContext(el annotate.ElementInfo) string {
	if el.OuterHTML == "" {
		return el.Text
	}
	clean := b.sanitize.Sanitize(el.OuterHTML)
	md, err := b.md.ConvertString(clean)
	if err != nil || strings.TrimSpace(md) == "" {
		return el.Text
	}
	return strings.TrimSpace(md)
}

func styleRows(mods []annotate.StyleModification) []StyleRow {
	var rows []StyleRow
	for _, mod := range mods {
		for _, ch := range mod.Changes {
			rows = append(rows, StyleRow{
				Selector: mod.Selector,
				Property: ch.Property,
				Original: ch.Original,
				Modified: ch.Modified,
				Captured: mod.Captured,
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Selector != rows[j].Selector {
			return rows[i].Selector < rows[j].Selector
		}
		return rows[i].Property < rows[j].Property
	})
	return rows
}

func spacingRows(mods map[string]annotate.SpacingMod) []SpacingRow {
	paths := make([]string, 0, len(mods))
	for path := range mods {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var rows []SpacingRow
	for _, path := range paths {
		mod := mods[path]
		rows = append(rows, SpacingRow{
			TokenPath: path,
			Original:  mod.OriginalValue,
			Current:   mod.CurrentValue,
			Deleted:   mod.Deleted(),
			Targets:   mod.Targets,
		})
	}
	return rows
}

// JSON renders the payload as indented JSON.
func (p Payload) JSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Empty reports whether the payload carries no work at all.
func (p Payload) Empty() bool {
	return len(p.Items) == 0 && len(p.StyleChanges) == 0 && len(p.SpacingChanges) == 0
}
