// internal/browser/session/geometry.go
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/ghostcursor/internal/humanoid"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// viewportQuery is one strategy for measuring the visible page area.
type viewportQuery func(ctx context.Context) (width, height float64, err error)

// lookup returns the first node matching sel, optionally inside from's tree.
func (d *Driver) lookup(ctx context.Context, sel string, from *cdp.Node) (*cdp.Node, error) {
	var nodes []*cdp.Node
	opts := []chromedp.QueryOption{chromedp.ByQuery, chromedp.AtLeast(0)}
	if from != nil {
		opts = append(opts, chromedp.FromNode(from))
	}
	if err := d.run(ctx, "node lookup", chromedp.Nodes(sel, &nodes, opts...)); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("cdp driver: no node matches '%s'", sel)
	}
	return nodes[0], nil
}

// targetNode resolves target, scoped to the configured frame.
func (d *Driver) targetNode(ctx context.Context, target humanoid.Target) (*cdp.Node, error) {
	var frame *cdp.Node
	if d.frame != "" {
		var err error
		if frame, err = d.lookup(ctx, string(d.frame), nil); err != nil {
			return nil, fmt.Errorf("resolving frame: %w", err)
		}
	}
	return d.lookup(ctx, string(target), frame)
}

// quadBox measures a node with DOM.getContentQuads. This is the only query
// that handles inline elements wrapping across lines.
func (d *Driver) quadBox(ctx context.Context, node *cdp.Node) (*humanoid.Box, error) {
	var quads []dom.Quad
	err := d.run(ctx, "content quads", chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		quads, err = dom.GetContentQuads().WithBackendNodeID(node.BackendNodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	if len(quads) == 0 {
		return nil, fmt.Errorf("cdp driver: node has no content quads")
	}
	box, ok := humanoid.BoxFromQuad(quads[0])
	if !ok {
		return nil, fmt.Errorf("cdp driver: malformed quad of length %d", len(quads[0]))
	}
	return box, nil
}

func (d *Driver) contentQuadsBox(ctx context.Context, target humanoid.Target) (*humanoid.Box, error) {
	node, err := d.targetNode(ctx, target)
	if err != nil {
		return nil, err
	}
	return d.quadBox(ctx, node)
}

func (d *Driver) boxModelBox(ctx context.Context, target humanoid.Target) (*humanoid.Box, error) {
	node, err := d.targetNode(ctx, target)
	if err != nil {
		return nil, err
	}

	var model *dom.BoxModel
	err = d.run(ctx, "box model", chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		model, err = dom.GetBoxModel().WithBackendNodeID(node.BackendNodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, nil
	}
	box, ok := humanoid.BoxFromQuad(model.Border)
	if !ok {
		return nil, fmt.Errorf("cdp driver: malformed border quad")
	}
	return box, nil
}

// clientRectScript returns the element's rect in main frame coordinates, or
// null when either the frame or the element is missing.
const clientRectScript = `
	(function(frameSel, sel) {
		let doc = document, ox = 0, oy = 0;
		if (frameSel) {
			const frame = document.querySelector(frameSel);
			if (!frame || !frame.contentDocument) return null;
			const fr = frame.getBoundingClientRect();
			doc = frame.contentDocument; ox = fr.left; oy = fr.top;
		}
		const node = doc.querySelector(sel);
		if (!node) return null;
		const r = node.getBoundingClientRect();
		return { x: r.left + ox, y: r.top + oy, width: r.width, height: r.height };
	})(%s, %s);
`

func (d *Driver) clientRectBox(ctx context.Context, target humanoid.Target) (*humanoid.Box, error) {
	script := fmt.Sprintf(clientRectScript, jsonEncode(string(d.frame)), jsonEncode(string(target)))
	res, err := d.evaluate(ctx, "client rect", script)
	if err != nil {
		return nil, err
	}
	if string(res) == "null" {
		return nil, nil
	}
	var box humanoid.Box
	if err := jsonAPI.Unmarshal(res, &box); err != nil {
		return nil, fmt.Errorf("cdp driver: decoding client rect: %w (payload: %s)", err, string(res))
	}
	return &box, nil
}

// frameOwnerBox measures the iframe element itself in the main document.
func (d *Driver) frameOwnerBox(ctx context.Context) (*humanoid.Box, error) {
	node, err := d.lookup(ctx, string(d.frame), nil)
	if err != nil {
		return nil, err
	}
	return d.quadBox(ctx, node)
}

func (d *Driver) nativeScroll(ctx context.Context, target humanoid.Target) error {
	node, err := d.targetNode(ctx, target)
	if err != nil {
		return err
	}
	return d.run(ctx, "scroll into view", chromedp.ActionFunc(func(ctx context.Context) error {
		return dom.ScrollIntoViewIfNeeded().WithBackendNodeID(node.BackendNodeID).Do(ctx)
	}))
}

const smoothScrollScript = `
	(function(frameSel, sel) {
		let doc = document;
		if (frameSel) {
			const frame = document.querySelector(frameSel);
			if (!frame || !frame.contentDocument) return false;
			doc = frame.contentDocument;
		}
		const node = doc.querySelector(sel);
		if (!node) return false;
		node.scrollIntoView({ behavior: 'smooth', block: 'center', inline: 'center' });
		return true;
	})(%s, %s);
`

func (d *Driver) scriptScroll(ctx context.Context, target humanoid.Target) error {
	script := fmt.Sprintf(smoothScrollScript, jsonEncode(string(d.frame)), jsonEncode(string(target)))
	res, err := d.evaluate(ctx, "smooth scroll", script)
	if err != nil {
		return err
	}
	if string(res) != "true" {
		return fmt.Errorf("cdp driver: element '%s' not found for scrolling", target)
	}
	return nil
}

func (d *Driver) windowBounds(ctx context.Context) (float64, float64, error) {
	var bounds *browser.Bounds
	err := d.run(ctx, "window bounds", chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		_, bounds, err = browser.GetWindowForTarget().Do(ctx)
		return err
	}))
	if err != nil {
		return 0, 0, err
	}
	if bounds == nil {
		return 0, 0, fmt.Errorf("cdp driver: no window bounds")
	}
	return float64(bounds.Width), float64(bounds.Height), nil
}

func (d *Driver) layoutMetrics(ctx context.Context) (float64, float64, error) {
	var visual *page.VisualViewport
	err := d.run(ctx, "layout metrics", chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		_, _, _, _, visual, _, err = page.GetLayoutMetrics().Do(ctx)
		return err
	}))
	if err != nil {
		return 0, 0, err
	}
	if visual == nil {
		return 0, 0, fmt.Errorf("cdp driver: no visual viewport")
	}
	return visual.ClientWidth, visual.ClientHeight, nil
}

// evaluate runs script in the page and returns the raw JSON result.
func (d *Driver) evaluate(ctx context.Context, op, script string) (json.RawMessage, error) {
	var res json.RawMessage
	err := d.run(ctx, op, chromedp.Evaluate(script, &res, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithReturnByValue(true).WithSilent(true)
	}))
	if err != nil {
		return nil, err
	}
	return res, nil
}

// jsonEncode is a helper to safely encode a value (especially strings) for JS injection.
func jsonEncode(v interface{}) string {
	b, err := jsonAPI.Marshal(v)
	if err != nil {
		return `""`
	}
	return string(b)
}
