// CLAUDE:SUMMARY Unique CSS selector generation and matching over parsed HTML snapshots.

// Package selector generates and resolves the CSS selectors that pin
// annotations and style edits to page elements. It supports the subset the
// overlay emits:
//
//   - tag: "div", "main"
//   - .class: ".content"
//   - #id: "#main-content"
//   - tag.class, tag#id
//   - tag[attr], tag[attr=val]
//   - :nth-of-type(n)
//   - chains joined by " > " (child) or space (descendant)
package selector

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Parse parses an HTML document snapshot.
func Parse(src string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("selector: parse html: %w", err)
	}
	return doc, nil
}

// Generate returns a selector that uniquely identifies target within doc.
// The nearest ancestor with an id anchors the path; below it every segment
// carries :nth-of-type so the path stays unambiguous even in repeated
// structures.
func Generate(doc *html.Node, target *html.Node) string {
	if target == nil || target.Type != html.ElementNode {
		return ""
	}
	if id := attrValue(target, "id"); id != "" {
		return target.Data + "#" + id
	}

	var segments []string
	for n := target; n != nil && n.Type == html.ElementNode; n = n.Parent {
		if n.Data == "html" || n.Data == "body" {
			break
		}
		if id := attrValue(n, "id"); id != "" {
			segments = append([]string{n.Data + "#" + id}, segments...)
			break
		}
		segments = append([]string{segment(n)}, segments...)
	}
	sel := strings.Join(segments, " > ")

	// The path form is unique by construction; the cheap forms are preferred
	// when they already resolve to exactly one node.
	if short := shortForm(doc, target); short != "" {
		return short
	}
	return sel
}

// shortForm tries tag.class without positional qualifiers.
func shortForm(doc *html.Node, target *html.Node) string {
	if classes := strings.Fields(attrValue(target, "class")); len(classes) > 0 {
		cand := target.Data + "." + classes[0]
		if m := Match(doc, cand); len(m) == 1 && m[0] == target {
			return cand
		}
	}
	return ""
}

// segment renders one path element: tag, first class if any, and the node's
// 1-based position among same-tag element siblings.
func segment(n *html.Node) string {
	seg := n.Data
	if classes := strings.Fields(attrValue(n, "class")); len(classes) > 0 {
		seg += "." + classes[0]
	}
	pos, total := 1, 0
	for sib := firstElement(n.Parent); sib != nil; sib = nextElement(sib) {
		if sib.Data != n.Data {
			continue
		}
		total++
		if sib == n {
			pos = total
		}
	}
	if total > 1 {
		seg += fmt.Sprintf(":nth-of-type(%d)", pos)
	}
	return seg
}

// Match returns all nodes matching the selector chain.
func Match(doc *html.Node, sel string) []*html.Node {
	parts, child := splitChain(sel)
	if len(parts) == 0 {
		return nil
	}
	matches := matchPart(doc, parts[0], false)
	for i := 1; i < len(parts); i++ {
		var next []*html.Node
		seen := map[*html.Node]bool{}
		for _, parent := range matches {
			for _, n := range matchPart(parent, parts[i], child[i]) {
				if !seen[n] {
					seen[n] = true
					next = append(next, n)
				}
			}
		}
		matches = next
	}
	return matches
}

// First returns the first match or nil.
func First(doc *html.Node, sel string) *html.Node {
	if m := Match(doc, sel); len(m) > 0 {
		return m[0]
	}
	return nil
}

// Missing reports which of the given selectors no longer resolve in the
// document, preserving input order. This feeds orphan cleanup.
func Missing(doc *html.Node, selectors []string) []string {
	var gone []string
	for _, sel := range selectors {
		if sel == "" {
			continue
		}
		if len(Match(doc, sel)) == 0 {
			gone = append(gone, sel)
		}
	}
	return gone
}

// splitChain tokenizes a selector chain, recording for each part whether it
// was attached with the child combinator.
func splitChain(sel string) ([]string, []bool) {
	fields := strings.Fields(sel)
	var parts []string
	var child []bool
	nextChild := false
	for _, f := range fields {
		if f == ">" {
			nextChild = true
			continue
		}
		parts = append(parts, f)
		child = append(child, nextChild)
		nextChild = false
	}
	return parts, child
}

// matchPart finds nodes under root matching one simple selector. With
// childOnly set, only direct children of root are considered.
func matchPart(root *html.Node, part string, childOnly bool) []*html.Node {
	m := parseSimple(part)
	var results []*html.Node

	if childOnly {
		for c := firstElement(root); c != nil; c = nextElement(c) {
			if matches(c, m) {
				results = append(results, c)
			}
		}
		return results
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n != root && matches(n, m) {
			results = append(results, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return results
}

type simple struct {
	tag     string
	id      string
	class   string
	attrKey string
	attrVal string
	nth     int
}

// parseSimple parses "tag.class:nth-of-type(2)", "#id", "tag[attr=val]", etc.
func parseSimple(sel string) simple {
	var s simple

	if idx := strings.Index(sel, ":nth-of-type("); idx >= 0 {
		numPart := strings.TrimSuffix(sel[idx+len(":nth-of-type("):], ")")
		if n, err := strconv.Atoi(numPart); err == nil {
			s.nth = n
		}
		sel = sel[:idx]
	}

	if idx := strings.IndexByte(sel, '['); idx >= 0 {
		attrPart := strings.TrimRight(sel[idx+1:], "]")
		sel = sel[:idx]
		if eqIdx := strings.IndexByte(attrPart, '='); eqIdx >= 0 {
			s.attrKey = attrPart[:eqIdx]
			s.attrVal = strings.Trim(attrPart[eqIdx+1:], `"'`)
		} else {
			s.attrKey = attrPart
		}
	}

	if idx := strings.IndexByte(sel, '#'); idx >= 0 {
		s.id = sel[idx+1:]
		sel = sel[:idx]
	}

	if idx := strings.IndexByte(sel, '.'); idx >= 0 {
		s.class = sel[idx+1:]
		sel = sel[:idx]
	}

	s.tag = sel
	return s
}

// matches checks one node against a parsed simple selector.
func matches(n *html.Node, s simple) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if s.tag != "" && s.tag != "*" && n.Data != s.tag {
		return false
	}
	if s.id != "" && attrValue(n, "id") != s.id {
		return false
	}
	if s.class != "" {
		found := false
		for _, c := range strings.Fields(attrValue(n, "class")) {
			if c == s.class {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if s.attrKey != "" {
		if s.attrVal != "" {
			if attrValue(n, s.attrKey) != s.attrVal {
				return false
			}
		} else if !hasAttr(n, s.attrKey) {
			return false
		}
	}
	if s.nth > 0 && positionOfType(n) != s.nth {
		return false
	}
	return true
}

// positionOfType returns the node's 1-based index among same-tag element
// siblings.
func positionOfType(n *html.Node) int {
	pos := 0
	for sib := firstElement(n.Parent); sib != nil; sib = nextElement(sib) {
		if sib.Data == n.Data {
			pos++
		}
		if sib == n {
			return pos
		}
	}
	return pos
}

func firstElement(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	c := n.FirstChild
	for c != nil && c.Type != html.ElementNode {
		c = c.NextSibling
	}
	return c
}

func nextElement(n *html.Node) *html.Node {
	c := n.NextSibling
	for c != nil && c.Type != html.ElementNode {
		c = c.NextSibling
	}
	return c
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}
