package scroll

import (
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/go-drift/scrollwatch/pkg/errors"
)

// Container owns the geometry of one scrollable region and the elements
// watching targets inside it. The root container wraps the whole document;
// child containers wrap scrollable sub-regions and are tracked as elements
// of their parent.
type Container struct {
	host   Host
	region Node
	opts   *options
	log    *zap.Logger

	parent   *Container
	tracked  *Element
	children []*Container
	elements []*Element

	viewportTop    float64
	viewportHeight float64
	viewportBottom float64
	contentHeight  float64

	resize      *debouncer
	unsubscribe []func()
	destroyed   bool
}

// NewRoot creates the container for the host's document and starts
// listening for scroll and resize notifications.
//
// The resize debounce runs on the host's clock when the host implements
// ClockProvider, or on the clock given with WithClock. Otherwise a settled
// resize is applied at the start of the next notification, Create or
// Update, so the tree is only touched from the host's goroutine.
func NewRoot(host Host, opts ...Option) *Container {
	o := buildOptions(host, opts)
	c := newContainer(host, nil, nil, o)
	c.log.Debug("root container attached",
		zap.Bool("passive", o.listen.Passive),
		zap.Float64("viewportHeight", c.viewportHeight),
		zap.Float64("contentHeight", c.contentHeight),
	)
	return c
}

func newContainer(host Host, region Node, parent *Container, o *options) *Container {
	c := &Container{
		host:   host,
		region: region,
		opts:   o,
		parent: parent,
	}
	if parent == nil {
		c.log = o.logger.With(zap.String("container", "root"))
	} else {
		c.log = o.logger.With(zap.String("container", NodeOf(region).String()))
	}
	_, c.viewportHeight = host.MeasureViewport(region)
	c.contentHeight = host.MeasureContentSize(region)
	c.resize = newDebouncer(o.clock, o.resizeDebounce, c.onResize)

	if parent != nil {
		parent.refresh()
		c.tracked = parent.track(resolved{kind: targetNode, node: region}, Offsets{})
	}

	c.refresh()
	c.attach()
	return c
}

func (c *Container) attach() {
	c.unsubscribe = append(c.unsubscribe,
		c.host.SubscribeScroll(c.region, c.opts.listen, func() {
			c.opts.drain()
			c.refresh()
		}),
		c.host.SubscribeResize(c.opts.listen, func() {
			c.opts.drain()
			c.resize.trigger()
		}),
	)
}

func (c *Container) onResize() {
	c.log.Debug("resize settled")
	c.refresh()
}

func (c *Container) observer() Observer {
	return c.opts.observer
}

// Region returns the host node the container wraps, nil for the root.
func (c *Container) Region() Node { return c.region }

// Parent returns the enclosing container, nil for the root.
func (c *Container) Parent() *Container { return c.parent }

// Tracked returns the element that tracks this container's region inside
// its parent, nil for the root.
func (c *Container) Tracked() *Element { return c.tracked }

// ViewportTop returns the scroll offset of the region.
func (c *Container) ViewportTop() float64 { return c.viewportTop }

// ViewportBottom returns ViewportTop + ViewportHeight.
func (c *Container) ViewportBottom() float64 { return c.viewportBottom }

// ViewportHeight returns the visible height of the region.
func (c *Container) ViewportHeight() float64 { return c.viewportHeight }

// ContentHeight returns the scrollable height of the region.
func (c *Container) ContentHeight() float64 { return c.contentHeight }

// Destroyed reports whether Destroy has run.
func (c *Container) Destroyed() bool { return c.destroyed }

// Elements returns a snapshot of the watched elements in registration order.
func (c *Container) Elements() []*Element {
	return slices.Clone(c.elements)
}

// Children returns a snapshot of the nested containers.
func (c *Container) Children() []*Container {
	return slices.Clone(c.children)
}

// Create resolves target, reading fresh geometry first so the new element's
// initial state reflects the current scroll position, and starts watching
// it. At most one Offsets value is used. A destroyed container fails with
// a KindDestroyed error.
func (c *Container) Create(target Target, offsets ...Offsets) (*Element, error) {
	if c.destroyed {
		return nil, errors.Destroyed("scroll.Container.Create", target.String())
	}
	c.opts.drain()
	c.refresh()

	r, err := resolve(c.host, target, "scroll.Container.Create")
	if err != nil {
		c.log.Debug("create failed", zap.Error(err))
		return nil, err
	}
	var off Offsets
	if len(offsets) > 0 {
		off = offsets[0]
	}
	return c.track(r, off), nil
}

func (c *Container) track(r resolved, off Offsets) *Element {
	e := newElement(c, r, off)
	c.elements = append(c.elements, e)
	c.log.Debug("element created",
		zap.Stringer("id", e.id),
		zap.Float64("top", e.top),
		zap.Float64("bottom", e.bottom),
	)
	return e
}

// CreateContainer binds a scrollable sub-region. The target must resolve to
// a host node.
func (c *Container) CreateContainer(target Target) (*Container, error) {
	if c.destroyed {
		return nil, errors.Destroyed("scroll.Container.CreateContainer", target.String())
	}
	c.opts.drain()
	r, err := resolve(c.host, target, "scroll.Container.CreateContainer")
	if err == nil && r.kind != targetNode {
		err = errors.InvalidTarget("scroll.Container.CreateContainer", target.String())
	}
	if err != nil {
		c.log.Debug("create container failed", zap.Error(err))
		return nil, err
	}
	child := newContainer(c.host, r.node, c, c.opts)
	c.children = append(c.children, child)
	child.log.Debug("child container attached",
		zap.Float64("viewportHeight", child.viewportHeight),
		zap.Float64("contentHeight", child.contentHeight),
	)
	return child, nil
}

// Update reads the region's geometry, recalculates every element location
// if the content height changed, then updates each element and fires its
// callbacks.
func (c *Container) Update() {
	c.opts.drain()
	if c.destroyed {
		return
	}
	previous := c.contentHeight
	c.viewportTop, c.viewportHeight = c.host.MeasureViewport(c.region)
	c.viewportBottom = c.viewportTop + c.viewportHeight
	c.contentHeight = c.host.MeasureContentSize(c.region)
	if c.contentHeight != previous {
		c.recalculateAll()
	}
	c.updateAndTrigger()
}

// RecalculateLocations invalidates the cached content height and updates,
// forcing every element to be measured again.
func (c *Container) RecalculateLocations() {
	if c.destroyed {
		return
	}
	c.contentHeight = math.NaN()
	c.Update()
}

// refresh handles scroll and resize notifications. Unlike Update it also
// treats a viewport height change as a reason to remeasure, since
// viewport-relative offsets depend on it.
func (c *Container) refresh() {
	if c.destroyed {
		return
	}
	top, height := c.host.MeasureViewport(c.region)
	content := c.host.MeasureContentSize(c.region)

	remeasure := height != c.viewportHeight || content != c.contentHeight
	c.viewportTop = top
	c.viewportHeight = height
	c.viewportBottom = top + height
	c.contentHeight = content

	if remeasure {
		c.recalculateAll()
	}
	c.updateAndTrigger()
}

func (c *Container) recalculateAll() {
	c.log.Debug("recalculating locations",
		zap.Int("elements", len(c.elements)),
		zap.Float64("viewportHeight", c.viewportHeight),
		zap.Float64("contentHeight", c.contentHeight),
	)
	for _, e := range slices.Clone(c.elements) {
		e.RecalculateLocation()
	}
}

func (c *Container) updateAndTrigger() {
	for _, e := range slices.Clone(c.elements) {
		if e.destroyed {
			continue
		}
		e.Update()
		e.TriggerCallbacks()
	}
}

// nestingOffset returns the distance from the root viewport top to the top
// of this container's region, accumulated over every ancestor level.
func (c *Container) nestingOffset() float64 {
	var offset float64
	for k := c; k.tracked != nil; k = k.tracked.container {
		offset += k.tracked.top - k.tracked.container.viewportTop
	}
	return offset
}

func (c *Container) remove(e *Element) {
	if i := slices.Index(c.elements, e); i >= 0 {
		c.elements = slices.Delete(c.elements, i, i+1)
	}
}

// Destroy detaches the container's listeners and destroys its elements and
// nested containers. If the container is nested, the element tracking it in
// the parent is destroyed too.
func (c *Container) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	for _, off := range c.unsubscribe {
		if off != nil {
			off()
		}
	}
	c.unsubscribe = nil
	c.resize.cancel()

	for _, child := range slices.Clone(c.children) {
		child.Destroy()
	}
	c.children = nil

	elements := c.elements
	c.elements = nil
	for _, e := range elements {
		e.destroy(true)
	}

	if c.parent != nil {
		if i := slices.Index(c.parent.children, c); i >= 0 {
			c.parent.children = slices.Delete(c.parent.children, i, i+1)
		}
	}
	if c.tracked != nil {
		c.tracked.Destroy()
	}
	c.log.Debug("container destroyed", zap.Int("elements", len(elements)))
}
