package selector

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pagegloss/gloss/annotate"
)

const maxSnippet = 200

// Describe builds the element snapshot an annotation carries for a matched
// node. Layout geometry is unavailable in a static snapshot, so Rect stays
// zero; live captures fill it in.
func Describe(doc *html.Node, n *html.Node) annotate.ElementInfo {
	if n == nil || n.Type != html.ElementNode {
		return annotate.ElementInfo{}
	}
	info := annotate.ElementInfo{
		Selector:  Generate(doc, n),
		Tag:       n.Data,
		ID:        attrValue(n, "id"),
		Classes:   strings.Fields(attrValue(n, "class")),
		Text:      clip(Text(n), maxSnippet),
		OuterHTML: clip(OuterHTML(n), maxSnippet),
	}
	return info
}

// Text returns the visible text under n, whitespace-collapsed. Script and
// style subtrees are skipped.
func Text(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return sb.String()
}

// OuterHTML renders the node back to markup.
func OuterHTML(n *html.Node) string {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
