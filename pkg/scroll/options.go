package scroll

import (
	"time"

	"go.uber.org/zap"

	"github.com/go-drift/scrollwatch/pkg/clock"
)

// DefaultResizeDebounce is the quiet period before a resize burst is
// handled.
const DefaultResizeDebounce = 200 * time.Millisecond

// ClockProvider is implemented by hosts that schedule callbacks on their
// own event loop.
type ClockProvider interface {
	Clock() clock.Clock
}

// Option configures a root Container. Child containers inherit the root's
// configuration.
type Option func(*options)

type options struct {
	logger         *zap.Logger
	clock          clock.Clock
	resizeDebounce time.Duration
	observer       Observer
	listen         ListenerOptions
	// drain runs timer callbacks queued for the host's notification path.
	drain func()
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock sets the clock that drives the resize debounce. It overrides a
// clock supplied by the host. The clock must deliver callbacks on the
// goroutine that delivers the host's notifications.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithResizeDebounce sets the resize quiet period. Non-positive values keep
// DefaultResizeDebounce.
func WithResizeDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.resizeDebounce = d
		}
	}
}

// WithObserver installs an observer for every element in the tree.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

func buildOptions(host Host, opts []Option) *options {
	o := &options{
		logger:         zap.NewNop(),
		resizeDebounce: DefaultResizeDebounce,
		drain:          func() {},
	}
	if p, ok := host.(ClockProvider); ok {
		o.clock = p.Clock()
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.clock == nil {
		// Without a loop to dispatch onto, settled timers wait for the next
		// notification or explicit call into the tree.
		q := &clock.Queue{}
		o.clock = clock.Real{Dispatch: q.Post}
		o.drain = q.Drain
	}
	// Probed once for the whole tree.
	o.listen = ListenerOptions{Passive: host.SupportsPassive()}
	return o
}
