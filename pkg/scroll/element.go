package scroll

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/go-drift/scrollwatch/pkg/emitter"
)

// Element watches one target inside a Container. It holds the target's
// geometry in the container's content space and the visibility predicates
// derived from it.
//
// Elements are created by Container.Create and are not safe for concurrent
// use.
type Element struct {
	id        uuid.UUID
	container *Container
	target    resolved
	offsets   Offsets

	locked    bool
	destroyed bool
	measured  bool

	top    float64
	bottom float64
	height float64

	state State
	prev  State

	events emitter.Emitter[Event, *Element]
}

func newElement(c *Container, target resolved, offsets Offsets) *Element {
	e := &Element{
		id:        uuid.New(),
		container: c,
		target:    target,
		offsets:   offsets,
	}
	e.RecalculateLocation()
	e.Update()
	e.prev = e.state
	return e
}

// ID returns a unique identifier for the element.
func (e *Element) ID() uuid.UUID { return e.id }

// Container returns the container the element belongs to.
func (e *Element) Container() *Container { return e.container }

// Target returns the resolved target: a host node, a float64 position or a
// Rect.
func (e *Element) Target() any { return e.target.value() }

// Top returns the top edge in content coordinates, offsets applied.
func (e *Element) Top() float64 { return e.top }

// Bottom returns the bottom edge in content coordinates, offsets applied.
func (e *Element) Bottom() float64 { return e.bottom }

// Height returns Bottom - Top.
func (e *Element) Height() float64 { return e.height }

// IsInViewport reports whether any part of the element is inside the window.
func (e *Element) IsInViewport() bool { return e.state.InViewport }

// IsFullyInViewport reports whether the element fits inside the window, or
// spans beyond both of its edges.
func (e *Element) IsFullyInViewport() bool { return e.state.FullyInViewport }

// IsAboveViewport reports whether the top edge is above the window.
func (e *Element) IsAboveViewport() bool { return e.state.AboveViewport }

// IsBelowViewport reports whether the bottom edge is below the window.
func (e *Element) IsBelowViewport() bool { return e.state.BelowViewport }

// State returns the current visibility predicates.
func (e *Element) State() State { return e.state }

// PreviousState returns the predicates as of the last TriggerCallbacks.
func (e *Element) PreviousState() State { return e.prev }

// Locked reports whether location recalculation is suspended.
func (e *Element) Locked() bool { return e.locked }

// Destroyed reports whether Destroy has run.
func (e *Element) Destroyed() bool { return e.destroyed }

// Offsets returns the effective offsets in pixels. Viewport-relative sides
// are resolved against the container's current viewport height.
func (e *Element) Offsets() Edges {
	return e.offsets.Resolve(e.container.viewportHeight)
}

// On registers fn for kind and returns a function that removes it. If the
// element's current state already satisfies kind, fn is also called
// immediately.
func (e *Element) On(kind Event, fn func(*Element)) func() {
	if fn == nil || e.destroyed {
		return func() {}
	}
	off := e.events.On(kind, fn)
	if e.state.Satisfies(kind) {
		fn(e)
	}
	return off
}

// Once is like On but fn runs at most once. An immediate call on
// subscription counts as that run.
func (e *Element) Once(kind Event, fn func(*Element)) func() {
	if fn == nil || e.destroyed {
		return func() {}
	}
	off := e.events.Once(kind, fn)
	if e.state.Satisfies(kind) {
		off()
		fn(e)
	}
	return off
}

// RemoveAllListeners removes the listeners of the given kinds, or all
// listeners when none are given.
func (e *Element) RemoveAllListeners(kinds ...Event) {
	e.events.RemoveAllListeners(kinds...)
}

// ListenerCount returns the number of listeners registered for kind.
func (e *Element) ListenerCount(kind Event) int {
	return e.events.ListenerCount(kind)
}

// emit reports kind to the observer, then to the element's listeners, so
// the observer sees events in order even when a listener destroys e.
func (e *Element) emit(kind Event) {
	if obs := e.container.observer(); obs != nil {
		obs.Observe(kind, e)
	}
	e.events.Emit(kind, e)
}

// Lock freezes the element's geometry: RecalculateLocation becomes a no-op
// until Unlock. Events still fire from state updates.
func (e *Element) Lock() {
	e.locked = true
}

// Unlock resumes location tracking and recalculates immediately.
func (e *Element) Unlock() {
	e.locked = false
	e.RecalculateLocation()
}

// RecalculateLocation measures the target again and applies the current
// offsets. It emits LocationChange when a previously measured edge moved.
func (e *Element) RecalculateLocation() {
	if e.locked || e.destroyed {
		return
	}
	prevTop, prevBottom, wasMeasured := e.top, e.bottom, e.measured

	top, bottom := e.measure()
	off := e.Offsets()
	e.top = top - off.Top
	e.bottom = bottom + off.Bottom
	e.height = e.bottom - e.top
	e.measured = true

	if wasMeasured && (e.top != prevTop || e.bottom != prevBottom) {
		e.emit(LocationChange)
	}
}

func (e *Element) measure() (top, bottom float64) {
	c := e.container
	switch e.target.kind {
	case targetPosition:
		v := e.target.position
		if v > 0 {
			return v, v
		}
		return c.contentHeight - v, c.contentHeight - v
	case targetBounds:
		return e.target.bounds.Top, e.target.bounds.Bottom
	}

	if restore := c.host.Reveal(e.target.node); restore != nil {
		defer restore()
	}
	nesting := c.nestingOffset()
	box := c.host.MeasureElement(e.target.node)
	return box.Top + c.viewportTop - nesting, box.Bottom + c.viewportTop - nesting
}

// RecalculateSize re-reads the target's intrinsic height and moves the
// bottom edge to match, leaving the top edge alone. No events are emitted.
func (e *Element) RecalculateSize() {
	if e.destroyed {
		return
	}
	var intrinsic float64
	switch e.target.kind {
	case targetNode:
		intrinsic = e.container.host.MeasureSize(e.target.node)
	case targetBounds:
		intrinsic = e.target.bounds.Height()
	}
	off := e.Offsets()
	e.height = intrinsic + off.Top + off.Bottom
	e.bottom = e.top + e.height
}

// Update recomputes the visibility predicates from the current geometry.
// It emits nothing.
func (e *Element) Update() {
	if e.destroyed {
		return
	}
	c := e.container
	e.state = computeState(e.top, e.bottom, c.viewportTop, c.viewportBottom)
}

// TriggerCallbacks emits the events implied by the change from the previous
// state to the current one, then records the current state as previous.
// Emission stops if a listener destroys the element.
func (e *Element) TriggerCallbacks() {
	if e.destroyed {
		return
	}
	for _, kind := range Transitions(e.prev, e.state) {
		e.emit(kind)
		if e.destroyed {
			return
		}
	}
	e.prev = e.state
}

// Destroy removes the element from its container, emits Destroyed and drops
// every listener. Further calls are no-ops.
func (e *Element) Destroy() {
	e.destroy(false)
}

func (e *Element) destroy(fromContainer bool) {
	if e.destroyed {
		return
	}
	e.destroyed = true
	if !fromContainer {
		e.container.remove(e)
	}
	e.container.log.Debug("element destroyed", zap.Stringer("id", e.id))
	e.emit(Destroyed)
	e.events.RemoveAllListeners()
}
