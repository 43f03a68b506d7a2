package diagnostics

import (
	"fmt"
	"net"
	"net/http"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/go-drift/scrollwatch/pkg/clock"
	"github.com/go-drift/scrollwatch/pkg/scroll"
)

// DefaultHistory is the number of events a Monitor keeps.
const DefaultHistory = 256

// Monitor records what a container tree emits.
type Monitor struct {
	log     *zap.Logger
	clock   clock.Clock
	history int

	mu       sync.RWMutex
	seq      uint64
	events   []Record
	order    []uuid.UUID
	elements map[uuid.UUID]Snapshot

	clientsMu sync.Mutex
	clients   map[*client]struct{}

	serverMu sync.Mutex
	server   *http.Server
	listener net.Listener
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.log = l
		}
	}
}

// WithClock sets the clock used to timestamp records.
func WithClock(c clock.Clock) Option {
	return func(m *Monitor) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithHistory sets how many events are kept.
func WithHistory(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.history = n
		}
	}
}

// NewMonitor creates a Monitor.
func NewMonitor(opts ...Option) *Monitor {
	m := &Monitor{
		log:      zap.NewNop(),
		clock:    clock.Real{},
		history:  DefaultHistory,
		elements: make(map[uuid.UUID]Snapshot),
		clients:  make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ scroll.Observer = (*Monitor)(nil)

// Observe records kind, refreshes the element's snapshot and broadcasts the
// record to stream clients.
func (m *Monitor) Observe(kind scroll.Event, el *scroll.Element) {
	now := m.clock.Now()
	snap := snapshotOf(el)
	snap.Updated = now

	m.mu.Lock()
	m.seq++
	rec := Record{
		Seq:     m.seq,
		Time:    now,
		Kind:    kind,
		Element: snap.ID,
		Target:  snap.Target,
		Top:     snap.Top,
		Bottom:  snap.Bottom,
		State:   snap.State,
	}
	m.events = append(m.events, rec)
	if over := len(m.events) - m.history; over > 0 {
		m.events = slices.Delete(m.events, 0, over)
	}
	m.put(snap)
	m.mu.Unlock()

	m.broadcast(rec)
}

// Capture refreshes the snapshots of every element in c and its nested
// containers without recording events.
func (m *Monitor) Capture(c *scroll.Container) {
	now := m.clock.Now()
	var snaps []Snapshot
	var walk func(*scroll.Container)
	walk = func(c *scroll.Container) {
		for _, el := range c.Elements() {
			s := snapshotOf(el)
			s.Updated = now
			snaps = append(snaps, s)
		}
		for _, child := range c.Children() {
			walk(child)
		}
	}
	walk(c)

	m.mu.Lock()
	for _, s := range snaps {
		m.put(s)
	}
	m.mu.Unlock()
}

// put stores s. Callers hold mu.
func (m *Monitor) put(s Snapshot) {
	if _, ok := m.elements[s.ID]; !ok {
		m.order = append(m.order, s.ID)
	}
	m.elements[s.ID] = s
}

// Elements returns the snapshots in creation order.
func (m *Monitor) Elements() []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Snapshot, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.elements[id])
	}
	return out
}

// Element returns the snapshot for id.
func (m *Monitor) Element(id uuid.UUID) (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.elements[id]
	return s, ok
}

// Events returns the kept records with a sequence number above since.
func (m *Monitor) Events(since uint64) []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, _ := slices.BinarySearchFunc(m.events, since+1, func(r Record, seq uint64) int {
		switch {
		case r.Seq < seq:
			return -1
		case r.Seq > seq:
			return 1
		}
		return 0
	})
	return append([]Record{}, m.events[i:]...)
}

func snapshotOf(el *scroll.Element) Snapshot {
	return Snapshot{
		ID:        el.ID(),
		Target:    describe(el.Target()),
		Container: describeContainer(el.Container()),
		Top:       SafeFloat(el.Top()),
		Bottom:    SafeFloat(el.Bottom()),
		Height:    SafeFloat(el.Height()),
		State:     stateOf(el.State()),
		Locked:    el.Locked(),
		Destroyed: el.Destroyed(),
	}
}

func describe(target any) string {
	switch t := target.(type) {
	case float64:
		return fmt.Sprintf("position(%g)", t)
	case scroll.Rect:
		return fmt.Sprintf("bounds(%g,%g)", t.Top, t.Bottom)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprintf("%T", target)
}

func describeContainer(c *scroll.Container) string {
	if c.Region() == nil {
		return "root"
	}
	return describe(c.Region())
}
