package capture

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pagegloss/gloss/annotate"
)

// Snippet limits keep element snapshots bounded; full markup lives on the
// page, not in session state.
const elementInfoScript = `(sel) => {
	const el = document.querySelector(sel);
	if (!el) return "";
	const r = el.getBoundingClientRect();
	return JSON.stringify({
		selector: sel,
		tag: el.tagName.toLowerCase(),
		id: el.id || "",
		classes: Array.from(el.classList),
		rect: {x: r.x, y: r.y, width: r.width, height: r.height},
		text: (el.innerText || "").slice(0, 200),
		outerHTML: el.outerHTML.slice(0, 2000)
	});
}`

// Element snapshots the first node matching selector. A selector that no
// longer resolves is an error; callers decide whether that means cleanup.
func (p *Page) Element(ctx context.Context, selector string) (annotate.ElementInfo, error) {
	res, err := p.page.Context(ctx).Eval(elementInfoScript, selector)
	if err != nil {
		return annotate.ElementInfo{}, fmt.Errorf("capture: inspect %s: %w", selector, err)
	}
	raw := res.Value.Str()
	if raw == "" {
		return annotate.ElementInfo{}, fmt.Errorf("capture: selector %s matched nothing", selector)
	}

	var info annotate.ElementInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return annotate.ElementInfo{}, fmt.Errorf("capture: decode element info: %w", err)
	}
	return info, nil
}

const scanScript = `(sels) => {
	const gone = [];
	for (const sel of sels) {
		try {
			if (!document.querySelector(sel)) gone.push(sel);
		} catch (e) {
			gone.push(sel);
		}
	}
	return JSON.stringify(gone);
}`

// Scan reports which selectors no longer resolve on the live page, in input
// order. Invalid selectors count as gone. The result feeds orphan cleanup.
func (p *Page) Scan(ctx context.Context, selectors []string) ([]string, error) {
	if len(selectors) == 0 {
		return nil, nil
	}
	res, err := p.page.Context(ctx).Eval(scanScript, selectors)
	if err != nil {
		return nil, fmt.Errorf("capture: scan selectors: %w", err)
	}

	var gone []string
	if err := json.Unmarshal([]byte(res.Value.Str()), &gone); err != nil {
		return nil, fmt.Errorf("capture: decode scan result: %w", err)
	}
	return gone, nil
}
