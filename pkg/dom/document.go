package dom

import (
	"slices"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/go-drift/scrollwatch/pkg/clock"
	"github.com/go-drift/scrollwatch/pkg/scroll"
)

// Document is the root of a node tree plus the window that views it.
type Document struct {
	body           *Node
	viewportHeight float64
	scrollY        float64

	clock   clock.Clock
	face    font.Face
	passive bool

	nextSub    int
	scrollSubs map[*Node][]subscription
	resizeSubs []subscription
}

type subscription struct {
	id   int
	opts scroll.ListenerOptions
	fn   func()
}

// Option configures a Document.
type Option func(*Document)

// WithClock replaces the default manual clock.
func WithClock(c clock.Clock) Option {
	return func(d *Document) { d.clock = c }
}

// WithFace sets the font used to measure text nodes.
func WithFace(f font.Face) Option {
	return func(d *Document) { d.face = f }
}

// WithoutPassive makes the document report no passive listener support.
func WithoutPassive() Option {
	return func(d *Document) { d.passive = false }
}

// New creates an empty document viewed through a window viewportHeight
// pixels tall.
func New(viewportHeight float64, opts ...Option) *Document {
	d := &Document{
		viewportHeight: viewportHeight,
		clock:          clock.NewManual(),
		face:           basicfont.Face7x13,
		passive:        true,
		scrollSubs:     make(map[*Node][]subscription),
	}
	d.body = &Node{Tag: "body", doc: d}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Body returns the root node.
func (d *Document) Body() *Node { return d.body }

// Clock returns the clock used for scheduled callbacks.
func (d *Document) Clock() clock.Clock { return d.clock }

// Advance moves a manual clock forward, running due callbacks. It is a no-op
// for other clocks.
func (d *Document) Advance(dur time.Duration) {
	if m, ok := d.clock.(*clock.Manual); ok {
		m.Advance(dur)
	}
}

// ScrollY returns the window scroll offset.
func (d *Document) ScrollY() float64 { return d.scrollY }

// ViewportHeight returns the window height.
func (d *Document) ViewportHeight() float64 { return d.viewportHeight }

// ScrollTo scrolls the window, clamped to the content, and notifies window
// scroll listeners when the offset changed.
func (d *Document) ScrollTo(y float64) {
	y = clamp(y, 0, d.contentHeight()-d.viewportHeight)
	if y == d.scrollY {
		return
	}
	d.scrollY = y
	d.notify(d.scrollSubs[nil])
}

// Resize changes the window height and notifies resize listeners.
func (d *Document) Resize(height float64) {
	d.viewportHeight = height
	d.scrollY = clamp(d.scrollY, 0, d.contentHeight()-d.viewportHeight)
	d.notify(d.resizeSubs)
}

// DispatchScroll notifies the scroll listeners of region (nil for the
// window) without moving anything.
func (d *Document) DispatchScroll(region *Node) {
	d.notify(d.scrollSubs[region])
}

// ListenerCount returns the number of active scroll and resize listeners.
func (d *Document) ListenerCount() int {
	n := len(d.resizeSubs)
	for _, subs := range d.scrollSubs {
		n += len(subs)
	}
	return n
}

func (d *Document) notify(subs []subscription) {
	for _, s := range slices.Clone(subs) {
		s.fn()
	}
}

func (d *Document) contentHeight() float64 {
	return max(d.viewportHeight, d.body.renderedHeight())
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}
