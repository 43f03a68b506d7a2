package dom

import (
	"slices"

	"golang.org/x/image/font/basicfont"

	"github.com/go-drift/scrollwatch/pkg/scroll"
)

var defaultFace = basicfont.Face7x13

var _ scroll.Host = (*Document)(nil)
var _ scroll.ClockProvider = (*Document)(nil)

func asNode(n scroll.Node) *Node {
	node, _ := n.(*Node)
	return node
}

// MeasureElement returns the window-relative box of n. Nodes that are not
// displayed measure as an empty box at 0.
func (d *Document) MeasureElement(n scroll.Node) scroll.Rect {
	node := asNode(n)
	if node == nil || !node.displayed() {
		return scroll.Rect{}
	}
	top := node.windowTop()
	return scroll.Rect{Top: top, Bottom: top + node.renderedHeight()}
}

// MeasureSize returns the rendered height of n.
func (d *Document) MeasureSize(n scroll.Node) float64 {
	node := asNode(n)
	if node == nil || !node.displayed() {
		return 0
	}
	return node.renderedHeight()
}

// MeasureViewport returns the window scroll offset and height, or the scroll
// offset and visible height of a scrollable node.
func (d *Document) MeasureViewport(region scroll.Node) (float64, float64) {
	node := asNode(region)
	if node == nil {
		return d.scrollY, d.viewportHeight
	}
	return node.scrollTop, node.renderedHeight()
}

// MeasureContentSize returns the scrollable height of the window or node.
func (d *Document) MeasureContentSize(region scroll.Node) float64 {
	node := asNode(region)
	if node == nil {
		return d.contentHeight()
	}
	return node.scrollHeight()
}

// Reveal shows a hidden node until restore is called.
func (d *Document) Reveal(n scroll.Node) func() {
	node := asNode(n)
	if node == nil || !node.Hidden {
		return func() {}
	}
	node.Hidden = false
	return func() { node.Hidden = true }
}

// Query returns the nodes matching selector in document order.
func (d *Document) Query(selector string) []scroll.Node {
	sel, ok := parseSelector(selector)
	if !ok {
		return nil
	}
	var out []scroll.Node
	d.body.walk(func(n *Node) {
		if sel.matches(n) {
			out = append(out, n)
		}
	})
	return out
}

// SubscribeScroll listens to window scrolls (nil region) or node scrolls.
func (d *Document) SubscribeScroll(region scroll.Node, opts scroll.ListenerOptions, fn func()) func() {
	key := asNode(region)
	id := d.nextSub
	d.nextSub++
	d.scrollSubs[key] = append(d.scrollSubs[key], subscription{id: id, opts: opts, fn: fn})
	return func() {
		d.scrollSubs[key] = removeSub(d.scrollSubs[key], id)
		if len(d.scrollSubs[key]) == 0 {
			delete(d.scrollSubs, key)
		}
	}
}

// SubscribeResize listens to window resizes.
func (d *Document) SubscribeResize(opts scroll.ListenerOptions, fn func()) func() {
	id := d.nextSub
	d.nextSub++
	d.resizeSubs = append(d.resizeSubs, subscription{id: id, opts: opts, fn: fn})
	return func() {
		d.resizeSubs = removeSub(d.resizeSubs, id)
	}
}

// SupportsPassive reports passive listener support.
func (d *Document) SupportsPassive() bool { return d.passive }

// PassiveListeners reports whether every active listener was registered as
// passive and non-capturing.
func (d *Document) PassiveListeners() bool {
	all := slices.Clone(d.resizeSubs)
	for _, subs := range d.scrollSubs {
		all = append(all, subs...)
	}
	for _, s := range all {
		if !s.opts.Passive || s.opts.Capture {
			return false
		}
	}
	return true
}

func removeSub(subs []subscription, id int) []subscription {
	return slices.DeleteFunc(subs, func(s subscription) bool { return s.id == id })
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}
