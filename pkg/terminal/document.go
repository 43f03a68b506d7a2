package terminal

import (
	"slices"
	"strings"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/go-drift/scrollwatch/pkg/clock"
	"github.com/go-drift/scrollwatch/pkg/errors"
	"github.com/go-drift/scrollwatch/pkg/scroll"
)

// statusRows is the number of rows reserved below the text.
const statusRows = 1

// Line is one row of the buffer.
type Line struct {
	Index int
	Label string
	Text  string
}

func (l *Line) String() string {
	if l.Label != "" {
		return "#" + l.Label
	}
	return "line"
}

// Document is a text buffer viewed through a screen.
type Document struct {
	screen tcell.Screen
	log    *zap.Logger
	lines  []*Line
	labels map[string]*Line
	top    int

	status []string
	keep   int

	nextSub    int
	scrollSubs []subscription
	resizeSubs []subscription
}

type subscription struct {
	id int
	fn func()
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger used for dispatch failures.
func WithLogger(l *zap.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.log = l
		}
	}
}

// WithStatusHistory sets how many events the status bar remembers.
func WithStatusHistory(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.keep = n
		}
	}
}

// New builds a document over text on an initialized screen.
func New(screen tcell.Screen, text string, opts ...Option) *Document {
	d := &Document{
		screen: screen,
		log:    zap.NewNop(),
		labels: make(map[string]*Line),
		keep:   4,
	}
	for _, opt := range opts {
		opt(d)
	}
	for i, s := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		l := &Line{Index: i, Text: s, Label: labelOf(s)}
		if _, dup := d.labels[l.Label]; l.Label != "" && !dup {
			d.labels[l.Label] = l
		}
		d.lines = append(d.lines, l)
	}
	return d
}

// labelOf returns the word following a leading '#'.
func labelOf(s string) string {
	if !strings.HasPrefix(s, "#") {
		return ""
	}
	fields := strings.Fields(s[1:])
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Lines returns the buffer lines.
func (d *Document) Lines() []*Line { return slices.Clone(d.lines) }

// Top returns the index of the first visible line.
func (d *Document) Top() int { return d.top }

// ViewportHeight returns the number of rows available for text.
func (d *Document) ViewportHeight() int {
	_, h := d.screen.Size()
	return max(h-statusRows, 0)
}

func (d *Document) contentHeight() int {
	return max(len(d.lines), d.ViewportHeight())
}

// ScrollTo moves the first visible line, clamped to the buffer, and
// notifies scroll listeners when it changed.
func (d *Document) ScrollTo(top int) {
	top = min(max(top, 0), d.contentHeight()-d.ViewportHeight())
	if top == d.top {
		return
	}
	d.top = top
	notify(d.scrollSubs)
}

// ScrollBy scrolls relative to the current position.
func (d *Document) ScrollBy(delta int) {
	d.ScrollTo(d.top + delta)
}

func (d *Document) resized() {
	d.top = min(max(d.top, 0), d.contentHeight()-d.ViewportHeight())
	notify(d.resizeSubs)
}

func notify(subs []subscription) {
	for _, s := range slices.Clone(subs) {
		s.fn()
	}
}

var _ scroll.Host = (*Document)(nil)
var _ scroll.ClockProvider = (*Document)(nil)
var _ scroll.Observer = (*Document)(nil)

// MeasureElement returns the line's row relative to the top of the screen.
func (d *Document) MeasureElement(n scroll.Node) scroll.Rect {
	l, ok := n.(*Line)
	if !ok || l == nil {
		return scroll.Rect{}
	}
	row := float64(l.Index - d.top)
	return scroll.Rect{Top: row, Bottom: row + 1}
}

// MeasureSize returns 1: every line is one row.
func (d *Document) MeasureSize(n scroll.Node) float64 {
	if _, ok := n.(*Line); !ok {
		return 0
	}
	return 1
}

// MeasureViewport returns the scroll position and text rows. Only the
// whole screen scrolls.
func (d *Document) MeasureViewport(scroll.Node) (float64, float64) {
	return float64(d.top), float64(d.ViewportHeight())
}

// MeasureContentSize returns the number of lines, at least a screenful.
func (d *Document) MeasureContentSize(scroll.Node) float64 {
	return float64(d.contentHeight())
}

// Reveal is a no-op: lines are never hidden.
func (d *Document) Reveal(scroll.Node) func() { return func() {} }

// Query resolves "#label" selectors.
func (d *Document) Query(selector string) []scroll.Node {
	label, ok := strings.CutPrefix(strings.TrimSpace(selector), "#")
	if !ok {
		return nil
	}
	if l, ok := d.labels[label]; ok {
		return []scroll.Node{l}
	}
	return nil
}

// SubscribeScroll listens for screen scrolls.
func (d *Document) SubscribeScroll(_ scroll.Node, _ scroll.ListenerOptions, fn func()) func() {
	id := d.add(&d.scrollSubs, fn)
	return func() { d.remove(&d.scrollSubs, id) }
}

// SubscribeResize listens for terminal resizes.
func (d *Document) SubscribeResize(_ scroll.ListenerOptions, fn func()) func() {
	id := d.add(&d.resizeSubs, fn)
	return func() { d.remove(&d.resizeSubs, id) }
}

func (d *Document) add(subs *[]subscription, fn func()) int {
	id := d.nextSub
	d.nextSub++
	*subs = append(*subs, subscription{id: id, fn: fn})
	return id
}

func (d *Document) remove(subs *[]subscription, id int) {
	*subs = slices.DeleteFunc(*subs, func(s subscription) bool { return s.id == id })
}

// SupportsPassive reports false: terminal events have no passive mode.
func (d *Document) SupportsPassive() bool { return false }

// Clock delivers timer callbacks through the screen's event queue so they
// run on the Run goroutine.
func (d *Document) Clock() clock.Clock {
	return clock.Real{Dispatch: d.dispatch}
}

func (d *Document) dispatch(fn func()) {
	if err := d.screen.PostEvent(tcell.NewEventInterrupt(fn)); err != nil {
		d.log.Warn("dropped scheduled callback", zap.Error(err))
		errors.Report(&errors.ScrollError{
			Op:   "terminal.dispatch",
			Kind: errors.KindPlatform,
			Err:  err,
		})
	}
}

// Observe records an event for the status bar. State changes are left out
// since they accompany every other transition.
func (d *Document) Observe(kind scroll.Event, el *scroll.Element) {
	if kind == scroll.StateChange {
		return
	}
	name := "element"
	if l, ok := el.Target().(*Line); ok {
		name = l.String()
	}
	d.status = append(d.status, name+" "+string(kind))
	if len(d.status) > d.keep {
		d.status = d.status[len(d.status)-d.keep:]
	}
}

// Status returns the remembered events, oldest first.
func (d *Document) Status() []string { return slices.Clone(d.status) }
