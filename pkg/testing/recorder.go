package testing

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/scrollwatch/pkg/scroll"
)

// Recorder collects the events emitted by an element.
type Recorder struct {
	events []scroll.Event
	offs   []func()
}

// Record subscribes to kinds on el, or to every kind when none are given.
// Subscriptions made here never replay: the recorder only captures
// transitions that happen afterwards.
func Record(el *scroll.Element, kinds ...scroll.Event) *Recorder {
	if len(kinds) == 0 {
		kinds = scroll.Events
	}
	r := &Recorder{}
	for _, kind := range kinds {
		kind := kind
		armed := false
		r.offs = append(r.offs, el.On(kind, func(*scroll.Element) {
			if armed {
				r.events = append(r.events, kind)
			}
		}))
		armed = true
	}
	return r
}

// Events returns the recorded events in emission order.
func (r *Recorder) Events() []scroll.Event {
	return append([]scroll.Event(nil), r.events...)
}

// Count returns how many times kind was recorded.
func (r *Recorder) Count(kind scroll.Event) int {
	n := 0
	for _, e := range r.events {
		if e == kind {
			n++
		}
	}
	return n
}

// Reset forgets the recorded events.
func (r *Recorder) Reset() {
	r.events = nil
}

// Stop removes the recorder's listeners.
func (r *Recorder) Stop() {
	for _, off := range r.offs {
		off()
	}
	r.offs = nil
}

// Expect fails the test unless exactly want was recorded since the last
// Reset, then resets.
func (r *Recorder) Expect(t testing.TB, want ...scroll.Event) {
	t.Helper()
	got := r.Events()
	if len(want) == 0 {
		want = nil
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("recorded events mismatch (-want +got):\n%s", diff)
	}
	r.Reset()
}
