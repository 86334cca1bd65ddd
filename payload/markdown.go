package payload

import (
	"fmt"
	"strings"
)

// Markdown renders the payload as the digest an agent reads. Sections with no
// content are omitted.
func (p Payload) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# Page feedback\n")

	if len(p.Items) > 0 {
		fmt.Fprintf(&sb, "\n## Annotations (%d pending)\n", len(p.Items))
		for i, item := range p.Items {
			renderItem(&sb, i+1, item)
		}
	}

	if len(p.StyleChanges) > 0 {
		sb.WriteString("\n## Style changes\n\n")
		sb.WriteString("| Selector | Property | Original | Modified |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, row := range p.StyleChanges {
			fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n",
				row.Selector, row.Property, cell(row.Original), cell(row.Modified))
		}
	}

	if len(p.SpacingChanges) > 0 {
		sb.WriteString("\n## Spacing tokens\n\n")
		sb.WriteString("| Token | Original | Current | Targets |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, row := range p.SpacingChanges {
			current := row.Current
			if row.Deleted {
				current = "(deleted)"
			}
			fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n",
				row.TokenPath, cell(row.Original), current, strings.Join(row.Targets, ", "))
		}
	}

	if p.Empty() {
		sb.WriteString("\nNothing pending.\n")
	}
	return sb.String()
}

func renderItem(sb *strings.Builder, n int, item Item) {
	fmt.Fprintf(sb, "\n### %d. %s `%s`\n", n, item.Kind, item.ID)
	if item.Comment != "" {
		fmt.Fprintf(sb, "- Comment: %s\n", item.Comment)
	}
	if item.Selector != "" {
		fmt.Fprintf(sb, "- Target: `%s`\n", item.Selector)
	}
	if item.GroupID != "" {
		fmt.Fprintf(sb, "- Group: %s\n", item.GroupID)
	}
	if item.Question != "" {
		fmt.Fprintf(sb, "- Open question: %s\n", item.Question)
	}
	for _, el := range item.Elements {
		fmt.Fprintf(sb, "- Element `%s`", el.Selector)
		if el.Text != "" {
			fmt.Fprintf(sb, ": %q", el.Text)
		}
		sb.WriteString("\n")
		if el.Context != "" && el.Context != el.Text {
			for _, line := range strings.Split(el.Context, "\n") {
				fmt.Fprintf(sb, "  > %s\n", line)
			}
		}
	}
}

// cell keeps empty values visible in table rows.
func cell(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
