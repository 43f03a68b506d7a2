package scroll

// Event names a visibility transition emitted by an Element.
type Event string

const (
	EnterViewport         Event = "enter-viewport"
	FullyEnterViewport    Event = "fully-enter-viewport"
	ExitViewport          Event = "exit-viewport"
	PartiallyExitViewport Event = "partially-exit-viewport"
	VisibilityChange      Event = "visibility-change"
	LocationChange        Event = "location-change"
	StateChange           Event = "state-change"
	Destroyed             Event = "destroyed"
)

// Events lists every event kind.
var Events = []Event{
	EnterViewport,
	FullyEnterViewport,
	ExitViewport,
	PartiallyExitViewport,
	VisibilityChange,
	LocationChange,
	StateChange,
	Destroyed,
}

// State is the set of visibility predicates of an element.
type State struct {
	InViewport      bool
	FullyInViewport bool
	AboveViewport   bool
	BelowViewport   bool
}

// computeState compares [top, bottom] with the viewport window. An element
// taller than the window that straddles both edges counts as fully visible.
func computeState(top, bottom, viewportTop, viewportBottom float64) State {
	above := top < viewportTop
	below := bottom > viewportBottom
	return State{
		AboveViewport:   above,
		BelowViewport:   below,
		InViewport:      top < viewportBottom && bottom > viewportTop,
		FullyInViewport: (top >= viewportTop && bottom <= viewportBottom) || (above && below),
	}
}

// Satisfies reports whether a listener subscribing to kind while the
// element is in state s is called immediately.
func (s State) Satisfies(kind Event) bool {
	switch kind {
	case VisibilityChange:
		return !s.InViewport && s.AboveViewport
	case EnterViewport:
		return s.InViewport
	case FullyEnterViewport:
		return s.FullyInViewport
	case ExitViewport:
		return s.AboveViewport && !s.InViewport
	case PartiallyExitViewport:
		return s.InViewport && s.AboveViewport && !s.FullyInViewport
	}
	return false
}

// Transitions returns the events emitted when an element moves from prev to
// cur, in emission order.
//
// When both edge relationships flip in one step the element was swept past
// the whole window: visibility-change is always emitted, and the skipped
// full-visibility and visibility phases are reported as synthetic pairs.
func Transitions(prev, cur State) []Event {
	var out []Event
	if cur.InViewport && !prev.InViewport {
		out = append(out, EnterViewport)
	}
	if cur.FullyInViewport && !prev.FullyInViewport {
		out = append(out, FullyEnterViewport)
	}
	if cur.AboveViewport != prev.AboveViewport && cur.BelowViewport != prev.BelowViewport {
		out = append(out, VisibilityChange)
		if !prev.FullyInViewport && !cur.FullyInViewport {
			out = append(out, FullyEnterViewport, PartiallyExitViewport)
		}
		if !prev.InViewport && !cur.InViewport {
			out = append(out, EnterViewport, ExitViewport)
		}
	}
	if !cur.FullyInViewport && prev.FullyInViewport {
		out = append(out, PartiallyExitViewport)
	}
	if !cur.InViewport && prev.InViewport {
		out = append(out, ExitViewport)
	}
	if cur.InViewport != prev.InViewport {
		out = append(out, VisibilityChange)
	}
	if cur != prev {
		out = append(out, StateChange)
	}
	return out
}
