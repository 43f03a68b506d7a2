package scroll

import (
	"time"

	"github.com/go-drift/scrollwatch/pkg/clock"
)

// debouncer collapses bursts of triggers into one trailing call made once
// wait has passed without a new trigger. All methods and the callback run
// on the host's loop; the clock dispatches expired timers there.
type debouncer struct {
	clock clock.Clock
	wait  time.Duration
	fn    func()
	timer clock.Timer
	gen   uint64
}

func newDebouncer(c clock.Clock, wait time.Duration, fn func()) *debouncer {
	return &debouncer{clock: c, wait: wait, fn: fn}
}

func (d *debouncer) trigger() {
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.wait, func() {
		// Stop cannot recall a callback already handed to the dispatcher.
		if gen != d.gen {
			return
		}
		d.timer = nil
		d.fn()
	})
}

func (d *debouncer) cancel() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
