package testing

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/go-drift/scrollwatch/pkg/clock"
	"github.com/go-drift/scrollwatch/pkg/dom"
	"github.com/go-drift/scrollwatch/pkg/scroll"
)

// Harness is a document on a manual clock with a root container attached.
type Harness struct {
	t     testing.TB
	Doc   *dom.Document
	Root  *scroll.Container
	Clock *clock.Manual
}

// New creates a harness whose window is viewportHeight pixels tall. The root
// container logs to the test log and is destroyed during cleanup.
func New(t testing.TB, viewportHeight float64, opts ...scroll.Option) *Harness {
	t.Helper()
	c := clock.NewManual()
	doc := dom.New(viewportHeight, dom.WithClock(c))
	opts = append([]scroll.Option{scroll.WithLogger(zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel)))}, opts...)
	root := scroll.NewRoot(doc, opts...)
	t.Cleanup(root.Destroy)
	return &Harness{t: t, Doc: doc, Root: root, Clock: c}
}

// Spacer returns an invisible block that makes the document tall enough to
// scroll.
func Spacer(height float64) *dom.Node {
	return &dom.Node{Tag: "div", Classes: []string{"spacer"}, Height: height}
}

// Create watches target in the root container and fails the test on error.
func (h *Harness) Create(target scroll.Target, offsets ...scroll.Offsets) *scroll.Element {
	h.t.Helper()
	el, err := h.Root.Create(target, offsets...)
	if err != nil {
		h.t.Fatalf("Create(%v): %v", target, err)
	}
	return el
}

// CreateContainer binds a nested container and fails the test on error.
func (h *Harness) CreateContainer(target scroll.Target) *scroll.Container {
	h.t.Helper()
	c, err := h.Root.CreateContainer(target)
	if err != nil {
		h.t.Fatalf("CreateContainer(%v): %v", target, err)
	}
	return c
}

// ScrollTo scrolls the window.
func (h *Harness) ScrollTo(y float64) {
	h.Doc.ScrollTo(y)
}

// Resize changes the window height. Containers react once the debounce
// period has been advanced past.
func (h *Harness) Resize(height float64) {
	h.Doc.Resize(height)
}

// Advance moves the manual clock forward.
func (h *Harness) Advance(d time.Duration) {
	h.Clock.Advance(d)
}

// Node looks up a node by selector and fails the test if there is none.
func (h *Harness) Node(selector string) *dom.Node {
	h.t.Helper()
	nodes := h.Doc.Query(selector)
	if len(nodes) == 0 {
		h.t.Fatalf("no node matches %q", selector)
	}
	return nodes[0].(*dom.Node)
}
