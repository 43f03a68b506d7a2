package diagnostics

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/go-drift/scrollwatch/pkg/scroll"
)

// SafeFloat encodes Inf and NaN as strings, which plain JSON numbers cannot
// represent. Content heights are NaN while a container is being
// invalidated.
type SafeFloat float64

func (f SafeFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Infinity"`), nil
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(v)
}

// State mirrors scroll.State with JSON names.
type State struct {
	InViewport      bool `json:"inViewport"`
	FullyInViewport bool `json:"fullyInViewport"`
	AboveViewport   bool `json:"aboveViewport"`
	BelowViewport   bool `json:"belowViewport"`
}

func stateOf(s scroll.State) State {
	return State{
		InViewport:      s.InViewport,
		FullyInViewport: s.FullyInViewport,
		AboveViewport:   s.AboveViewport,
		BelowViewport:   s.BelowViewport,
	}
}

// Snapshot is the last known geometry and state of an element.
type Snapshot struct {
	ID        uuid.UUID `json:"id"`
	Target    string    `json:"target"`
	Container string    `json:"container"`
	Top       SafeFloat `json:"top"`
	Bottom    SafeFloat `json:"bottom"`
	Height    SafeFloat `json:"height"`
	State     State     `json:"state"`
	Locked    bool      `json:"locked"`
	Destroyed bool      `json:"destroyed"`
	Updated   time.Time `json:"updated"`
}

// Record is one observed event.
type Record struct {
	Seq     uint64       `json:"seq"`
	Time    time.Time    `json:"time"`
	Kind    scroll.Event `json:"kind"`
	Element uuid.UUID    `json:"element"`
	Target  string       `json:"target"`
	Top     SafeFloat    `json:"top"`
	Bottom  SafeFloat    `json:"bottom"`
	State   State        `json:"state"`
}
