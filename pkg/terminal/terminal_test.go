package terminal

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/scrollwatch/pkg/clock"
	"github.com/go-drift/scrollwatch/pkg/scroll"
)

func newScreen(t *testing.T, width, height int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	s.SetSize(width, height)
	t.Cleanup(s.Fini)
	return s
}

// text returns n numbered lines with labels at the given indexes.
func text(n int, labels map[int]string) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if label, ok := labels[i]; ok {
			fmt.Fprintf(&b, "#%s section\n", label)
			continue
		}
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return b.String()
}

func row(s tcell.SimulationScreen, y int) string {
	cells, w, _ := s.GetContents()
	var b strings.Builder
	for _, c := range cells[y*w : (y+1)*w] {
		if len(c.Runes) == 0 {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(c.Runes[0])
	}
	return strings.TrimRight(b.String(), " ")
}

func TestDocument_Labels(t *testing.T) {
	d := New(newScreen(t, 40, 11), text(30, map[int]string{0: "intro", 12: "middle", 20: "middle"}))

	if n := len(d.Lines()); n != 30 {
		t.Fatalf("Lines() = %d, want 30", n)
	}
	got := d.Query("#middle")
	if len(got) != 1 || got[0].(*Line).Index != 12 {
		t.Errorf("Query(#middle) = %v, want the first labelled line", got)
	}
	for _, sel := range []string{"#missing", "intro", ".middle", ""} {
		if got := d.Query(sel); got != nil {
			t.Errorf("Query(%q) = %v, want nil", sel, got)
		}
	}
}

func TestDocument_Geometry(t *testing.T) {
	d := New(newScreen(t, 40, 11), text(30, nil))
	d.ScrollTo(100)

	top, size := d.MeasureViewport(nil)
	if top != 20 || size != 10 {
		t.Errorf("MeasureViewport = %v, %v; want 20, 10", top, size)
	}
	if got := d.MeasureContentSize(nil); got != 30 {
		t.Errorf("MeasureContentSize = %v, want 30", got)
	}
	if got := d.MeasureElement(d.Lines()[25]); got != (scroll.Rect{Top: 5, Bottom: 6}) {
		t.Errorf("MeasureElement = %+v, want 5..6", got)
	}
}

func TestDocument_ScrollEvents(t *testing.T) {
	d := New(newScreen(t, 40, 11), text(50, map[int]string{25: "middle"}), WithStatusHistory(2))
	root := scroll.NewRoot(d, scroll.WithObserver(d), scroll.WithClock(clock.NewManual()))
	defer root.Destroy()

	el, err := root.Create(scroll.Select("#middle"))
	if err != nil {
		t.Fatal(err)
	}
	if el.Top() != 25 || el.Height() != 1 {
		t.Fatalf("top/height = %v/%v, want 25/1", el.Top(), el.Height())
	}

	d.HandleEvent(tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone))
	d.HandleEvent(tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone))
	if d.Top() != 18 || !el.IsFullyInViewport() {
		t.Fatalf("Top() = %d, state %+v; want 18 and fully in view", d.Top(), el.State())
	}
	want := []string{"#middle fully-enter-viewport", "#middle visibility-change"}
	if diff := cmp.Diff(want, d.Status()); diff != "" {
		t.Errorf("Status() mismatch (-want +got):\n%s", diff)
	}

	d.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'G', tcell.ModNone))
	if d.Top() != 40 || el.IsInViewport() {
		t.Errorf("Top() = %d, state %+v; want 40 and out of view", d.Top(), el.State())
	}
}

func TestDocument_Keys(t *testing.T) {
	d := New(newScreen(t, 40, 11), text(50, nil))
	tests := []struct {
		ev   *tcell.EventKey
		top  int
		cont bool
	}{
		{tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), 1, true},
		{tcell.NewEventKey(tcell.KeyRune, 'j', tcell.ModNone), 2, true},
		{tcell.NewEventKey(tcell.KeyRune, 'k', tcell.ModNone), 1, true},
		{tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone), 40, true},
		{tcell.NewEventKey(tcell.KeyPgUp, 0, tcell.ModNone), 31, true},
		{tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone), 0, true},
		{tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), 0, true},
		{tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), 0, false},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), 0, false},
	}
	for _, tt := range tests {
		if cont := d.HandleEvent(tt.ev); cont != tt.cont || d.Top() != tt.top {
			t.Errorf("%s: continue=%v top=%d, want %v and %d", tt.ev.Name(), cont, d.Top(), tt.cont, tt.top)
		}
	}
}

func TestDocument_Draw(t *testing.T) {
	s := newScreen(t, 20, 4)
	d := New(s, "#a first\nsecond\nthird\nfourth")
	root := scroll.NewRoot(d, scroll.WithObserver(d), scroll.WithClock(clock.NewManual()))
	defer root.Destroy()
	if _, err := root.Create(scroll.Select("#a")); err != nil {
		t.Fatal(err)
	}
	d.ScrollTo(1)
	d.Draw()

	got := []string{row(s, 0), row(s, 1), row(s, 2), row(s, 3)}
	want := []string{"second", "third", "fourth", " 2-4/4 | #a partiall"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("screen mismatch (-want +got):\n%s", diff)
	}
}

func TestDocument_Resize(t *testing.T) {
	s := newScreen(t, 40, 11)
	d := New(s, text(50, nil))
	c := clock.NewManual()
	root := scroll.NewRoot(d, scroll.WithClock(c))
	defer root.Destroy()

	s.SetSize(40, 6)
	d.HandleEvent(tcell.NewEventResize(40, 6))
	if root.ViewportHeight() != 10 {
		t.Errorf("ViewportHeight() = %v before the debounce, want 10", root.ViewportHeight())
	}
	c.Advance(scroll.DefaultResizeDebounce)
	if root.ViewportHeight() != 5 {
		t.Errorf("ViewportHeight() = %v, want 5", root.ViewportHeight())
	}
}

func TestDocument_Run(t *testing.T) {
	s := newScreen(t, 40, 11)
	d := New(s, text(50, nil))

	ran := make(chan struct{})
	d.Clock().AfterFunc(0, func() { close(ran) })

	errc := make(chan error, 1)
	go func() { errc <- d.Run(context.Background()) }()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled callback never ran")
	}
	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop on q")
	}
}

func TestDocument_RunStopsOnCancel(t *testing.T) {
	d := New(newScreen(t, 40, 11), text(5, nil))
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- d.Run(ctx) }()
	cancel()

	select {
	case err := <-errc:
		if !stderrors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
