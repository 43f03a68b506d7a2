// Package scene builds a document from a configured scene and drives it
// through its script.
package scene

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/go-drift/scrollwatch/cmd/scrollwatch/internal/config"
	"github.com/go-drift/scrollwatch/pkg/clock"
	"github.com/go-drift/scrollwatch/pkg/dom"
	"github.com/go-drift/scrollwatch/pkg/errors"
	"github.com/go-drift/scrollwatch/pkg/scroll"
)

// RootName addresses the root container in script steps.
const RootName = "root"

// Options configures Build.
type Options struct {
	Logger         *zap.Logger
	Out            io.Writer
	ResizeDebounce time.Duration
	// Clock drives waits and the resize debounce. Nil creates a new one.
	Clock *clock.Manual
	// Observers see every event after it has been printed.
	Observers []scroll.Observer
}

// Scene is a built document with its containers and watchers.
type Scene struct {
	Doc   *dom.Document
	Root  *scroll.Container
	Clock *clock.Manual

	log        *zap.Logger
	out        io.Writer
	start      time.Time
	script     []config.Step
	containers map[string]*scroll.Container
	watchers   map[string]*scroll.Element
	names      map[*scroll.Element]string
}

// Build lays out the document, binds containers and creates watchers.
// Watchers report their events to opts.Out from then on.
func Build(cfg config.Scene, opts Options) (*Scene, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	c := opts.Clock
	if c == nil {
		c = clock.NewManual()
	}
	s := &Scene{
		Doc:        dom.New(cfg.Viewport, dom.WithClock(c)),
		Clock:      c,
		log:        opts.Logger,
		out:        opts.Out,
		start:      c.Now(),
		script:     cfg.Script,
		containers: make(map[string]*scroll.Container),
		watchers:   make(map[string]*scroll.Element),
		names:      make(map[*scroll.Element]string),
	}
	for _, n := range cfg.Nodes {
		s.Doc.Body().Append(buildNode(n))
	}

	observers := append([]scroll.Observer{s}, opts.Observers...)
	s.Root = scroll.NewRoot(s.Doc,
		scroll.WithLogger(opts.Logger),
		scroll.WithResizeDebounce(opts.ResizeDebounce),
		scroll.WithObserver(scroll.ObserverFunc(func(kind scroll.Event, el *scroll.Element) {
			for _, obs := range observers {
				obs.Observe(kind, el)
			}
		})),
	)
	s.containers[RootName] = s.Root

	if err := s.bind(cfg); err != nil {
		s.Root.Destroy()
		return nil, err
	}
	return s, nil
}

func (s *Scene) bind(cfg config.Scene) error {
	for _, cc := range cfg.Containers {
		parent := s.container(cc.Parent)
		child, err := parent.CreateContainer(scroll.Select(cc.Target))
		if err != nil {
			return fmt.Errorf("container %q: %w", cc.Name, err)
		}
		s.containers[cc.Name] = child
		s.names[child.Tracked()] = "container:" + cc.Name
	}
	for _, w := range cfg.Watchers {
		el, err := s.container(w.Container).Create(targetOf(w), scroll.ParseOffsets(w.Offset))
		if err != nil {
			return fmt.Errorf("watcher %q: %w", w.Name, err)
		}
		s.watchers[w.Name] = el
		s.names[el] = w.Name
		s.log.Debug("watcher created",
			zap.String("name", w.Name),
			zap.Float64("top", el.Top()),
			zap.Float64("bottom", el.Bottom()),
		)
	}
	return nil
}

func (s *Scene) container(name string) *scroll.Container {
	if name == "" {
		return s.Root
	}
	return s.containers[name]
}

func targetOf(w config.Watcher) scroll.Target {
	switch {
	case w.Position != nil:
		return scroll.Position(*w.Position)
	case w.Bounds != nil:
		return scroll.Bounds(scroll.Rect{Top: w.Bounds.Top, Bottom: w.Bounds.Bottom, Payload: w.Name})
	}
	return scroll.Select(w.Target)
}

func buildNode(n config.Node) *dom.Node {
	node := &dom.Node{
		ID:         n.ID,
		Tag:        n.Tag,
		Classes:    n.Classes,
		Top:        n.Top,
		Height:     n.Height,
		Hidden:     n.Hidden,
		Scrollable: n.Scrollable,
	}
	if node.Tag == "" {
		node.Tag = "div"
	}
	if n.Text != "" {
		node.Text = &dom.Text{Content: n.Text, Width: n.Width}
	}
	for _, c := range n.Children {
		node.Append(buildNode(c))
	}
	return node
}

// Watcher returns the element created for the named watcher.
func (s *Scene) Watcher(name string) *scroll.Element {
	return s.watchers[name]
}

// Container returns the named container; RootName is the root.
func (s *Scene) Container(name string) *scroll.Container {
	return s.containers[name]
}

// Observe prints one line per event.
func (s *Scene) Observe(kind scroll.Event, el *scroll.Element) {
	name, ok := s.names[el]
	if !ok {
		name = el.ID().String()[:8]
	}
	elapsed := s.Clock.Now().Sub(s.start)
	fmt.Fprintf(s.out, "%7s  %-16s %-24s top=%g bottom=%g\n",
		elapsed, name, kind, el.Top(), el.Bottom())
}

// Run executes the script in order. It stops at the first failing step or
// when ctx is done.
func (s *Scene) Run(ctx context.Context) error {
	for i, step := range s.script {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Step(step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, step.Action(), err)
		}
	}
	return nil
}

// Step applies one script action.
func (s *Scene) Step(step config.Step) error {
	action := step.Action()
	s.log.Debug("step", zap.String("action", action))
	switch action {
	case "scroll":
		s.Doc.ScrollTo(*step.Scroll)
	case "scrollRegion":
		n, err := s.node(step.ScrollRegion.Target)
		if err != nil {
			return err
		}
		n.ScrollTo(step.ScrollRegion.To)
	case "resize":
		s.Doc.Resize(*step.Resize)
	case "wait":
		s.Clock.Advance(*step.Wait)
	case "update", "recalculate":
		name := step.Update + step.Recalculate
		c := s.containers[name]
		if c == nil {
			return stepError(fmt.Errorf("unknown container %q", name))
		}
		if action == "update" {
			c.Update()
		} else {
			c.RecalculateLocations()
		}
	case "lock", "unlock":
		el, err := s.watcher(step.Lock + step.Unlock)
		if err != nil {
			return err
		}
		if action == "lock" {
			el.Lock()
		} else {
			el.Unlock()
		}
	case "destroy":
		if el, ok := s.watchers[step.Destroy]; ok {
			el.Destroy()
			return nil
		}
		if c, ok := s.containers[step.Destroy]; ok {
			c.Destroy()
			return nil
		}
		return stepError(fmt.Errorf("unknown watcher or container %q", step.Destroy))
	case "hide", "show":
		n, err := s.node(step.Hide + step.Show)
		if err != nil {
			return err
		}
		n.Hidden = action == "hide"
	case "move":
		n, err := s.node(step.Move.Target)
		if err != nil {
			return err
		}
		if step.Move.Top != nil {
			n.Top = *step.Move.Top
		}
		if step.Move.Height != nil {
			n.Height = *step.Move.Height
		}
	default:
		return stepError(fmt.Errorf("exactly one action is required"))
	}
	return nil
}

func (s *Scene) watcher(name string) (*scroll.Element, error) {
	el, ok := s.watchers[name]
	if !ok {
		return nil, stepError(fmt.Errorf("unknown watcher %q", name))
	}
	return el, nil
}

func (s *Scene) node(selector string) (*dom.Node, error) {
	nodes := s.Doc.Query(selector)
	if len(nodes) == 0 {
		return nil, errors.InvalidTarget("scene.Step", selector)
	}
	return nodes[0].(*dom.Node), nil
}

// Close destroys the root container and everything in it. The resulting
// destroyed events reach the observers but are not printed.
func (s *Scene) Close() {
	s.out = io.Discard
	s.Root.Destroy()
}

func stepError(err error) error {
	return &errors.ScrollError{Op: "scene.Step", Kind: errors.KindConfig, Err: err}
}
