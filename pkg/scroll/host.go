package scroll

// Node is an opaque host element handle. The core never inspects nodes; it
// hands them back to the Host for measurement.
type Node any

// Rect is a vertical extent. Payload carries arbitrary caller data when a
// Rect is used directly as a target.
type Rect struct {
	Top     float64
	Bottom  float64
	Payload any
}

// Height returns Bottom - Top.
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// ListenerOptions configures host event subscriptions.
type ListenerOptions struct {
	Passive bool
	Capture bool
}

// Host is the platform collaborator that measures nodes and delivers scroll
// and resize notifications. A nil region denotes the root document.
type Host interface {
	// MeasureElement returns the node's bounding box relative to the top of
	// the visible root viewport.
	MeasureElement(n Node) Rect
	// MeasureSize returns the node's intrinsic rendered height.
	MeasureSize(n Node) float64
	// MeasureViewport returns the region's scroll offset and visible height.
	MeasureViewport(region Node) (scrollOffset, size float64)
	// MeasureContentSize returns the region's total scrollable height.
	MeasureContentSize(region Node) float64
	// Reveal neutralizes display:none-style hiding on n until restore is
	// called. Hosts without such a notion return a no-op.
	Reveal(n Node) (restore func())
	// Query resolves a selector to matching nodes in document order.
	Query(selector string) []Node
	// SubscribeScroll calls fn whenever region scrolls.
	SubscribeScroll(region Node, opts ListenerOptions, fn func()) (unsubscribe func())
	// SubscribeResize calls fn whenever the root viewport is resized.
	SubscribeResize(opts ListenerOptions, fn func()) (unsubscribe func())
	// SupportsPassive reports whether passive listeners are available.
	SupportsPassive() bool
}

// Observer sees every event emitted by the elements of a container tree,
// before the element's own listeners.
type Observer interface {
	Observe(kind Event, el *Element)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(kind Event, el *Element)

// Observe calls f.
func (f ObserverFunc) Observe(kind Event, el *Element) {
	f(kind, el)
}
