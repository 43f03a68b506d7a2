// Package scroll tracks observed regions against a scrolling viewport and
// emits visibility transitions.
//
// A [Container] owns the geometry of one scrollable region (scroll offset,
// viewport height, content height) and the [Element] values watching
// targets inside it. Every scroll notification, debounced resize, or
// explicit [Container.Update] recomputes the geometry and drives each
// element through location recalculation, state recalculation and event
// emission.
//
// # Creating Watchers
//
// The host application constructs the root container once and passes it to
// consumers:
//
//	root := scroll.NewRoot(host, scroll.WithLogger(logger))
//	defer root.Destroy()
//
//	hero, err := root.Create(scroll.Select("#hero"), scroll.Uniform(scroll.VH(10)))
//	if err != nil {
//	    return err // wraps errors.ErrInvalidTarget
//	}
//	hero.On(scroll.EnterViewport, func(el *scroll.Element) {
//	    log.Println("hero visible at", el.Top())
//	})
//
// Targets are host nodes ([NodeOf], [Select], [FirstOf]), fixed content
// positions ([Position]) or plain rectangles ([Bounds]). A positive position
// is a distance from the content top; a non-positive one is measured from
// the content height.
//
// # Events
//
// Elements emit [EnterViewport], [FullyEnterViewport], [ExitViewport],
// [PartiallyExitViewport], [VisibilityChange], [LocationChange],
// [StateChange] and [Destroyed]. Subscribing to an event whose condition the
// element already satisfies calls the listener immediately.
//
// # Nested Regions
//
// [Container.CreateContainer] binds a scrollable sub-region. The child is
// also tracked as an element of its parent, and element geometry inside it
// is corrected by the chain of ancestor offsets on every recalculation.
//
// # Threading
//
// Containers and elements belong to the host's event loop and are not safe
// for concurrent use. The only scheduled work is the resize debounce, which
// runs through the container's clock; hosts supply a clock that delivers
// callbacks on their loop.
package scroll
