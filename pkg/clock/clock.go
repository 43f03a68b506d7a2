// Package clock provides time sources for scheduled work such as the
// debounced resize handling of scroll containers.
//
// The default implementation uses wall-clock timers and hands expired
// callbacks to a dispatch function so they run on the host's event loop.
// Tests and simulations use Manual, which only moves when advanced.
package clock

import (
	"time"

	"github.com/go-drift/scrollwatch/pkg/errors"
)

// Clock provides time and delayed callbacks.
type Clock interface {
	Now() time.Time
	// AfterFunc schedules fn to run once after d.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a pending AfterFunc callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer, false if the callback already ran or was stopped.
	Stop() bool
}

// Real uses system time.
type Real struct {
	// Dispatch moves an expired callback onto the host's event loop.
	// When nil, callbacks run on the timer goroutine.
	Dispatch func(callback func())
}

// Now returns the wall-clock time.
func (Real) Now() time.Time { return time.Now() }

// AfterFunc schedules fn through time.AfterFunc.
func (r Real) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() {
		if r.Dispatch != nil {
			r.Dispatch(fn)
			return
		}
		defer errors.Recover("clock.Real.AfterFunc")
		fn()
	})
}
