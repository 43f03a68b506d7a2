package clock

import "sync"

// Queue collects callbacks posted from timer goroutines until the owning
// event loop drains them. It lets Real serve hosts that have no event loop
// of their own to dispatch onto.
type Queue struct {
	mu      sync.Mutex
	pending []func()
}

// Post appends fn. It is safe to call from any goroutine.
func (q *Queue) Post(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Len returns the number of callbacks waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain runs the waiting callbacks in post order on the calling goroutine.
// Callbacks posted while draining wait for the next call.
func (q *Queue) Drain() {
	q.mu.Lock()
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}
