package scroll

import (
	"fmt"
	"math"
	"reflect"

	"github.com/go-drift/scrollwatch/pkg/errors"
)

type targetKind int

const (
	targetNode targetKind = iota
	targetSelector
	targetCollection
	targetPosition
	targetBounds
)

// Target describes what an Element watches. Build one with Select, NodeOf,
// FirstOf, Position or Bounds.
type Target struct {
	kind     targetKind
	selector string
	node     Node
	nodes    []Node
	position float64
	bounds   Rect
}

// Select targets the first node matching selector.
func Select(selector string) Target {
	return Target{kind: targetSelector, selector: selector}
}

// NodeOf targets a value directly. Numbers resolve to positions and Rect
// values to bounds; anything else is treated as a host node.
func NodeOf(n Node) Target {
	return Target{kind: targetNode, node: n}
}

// FirstOf targets the first value of a collection.
func FirstOf(nodes []Node) Target {
	return Target{kind: targetCollection, nodes: nodes}
}

// Number is the set of Go numeric types accepted as positions.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Position targets a fixed content coordinate. Positive values are measured
// from the content top; zero and negative values resolve to
// contentHeight - v.
func Position[N Number](v N) Target {
	return Target{kind: targetPosition, position: float64(v)}
}

// Bounds targets a fixed rectangle in content coordinates.
func Bounds(r Rect) Target {
	return Target{kind: targetBounds, bounds: r}
}

func (t Target) String() string {
	switch t.kind {
	case targetSelector:
		return t.selector
	case targetCollection:
		return fmt.Sprintf("collection[%d]", len(t.nodes))
	case targetPosition:
		return fmt.Sprintf("position(%g)", t.position)
	case targetBounds:
		return fmt.Sprintf("bounds(%g,%g)", t.bounds.Top, t.bounds.Bottom)
	default:
		return fmt.Sprintf("%v", t.node)
	}
}

// resolved is a target after selector and collection lookup.
type resolved struct {
	kind     targetKind
	node     Node
	position float64
	bounds   Rect
}

func (r resolved) value() any {
	switch r.kind {
	case targetPosition:
		return r.position
	case targetBounds:
		return r.bounds
	default:
		return r.node
	}
}

func resolve(host Host, t Target, op string) (resolved, error) {
	var candidate Node
	switch t.kind {
	case targetPosition:
		return resolved{kind: targetPosition, position: t.position}, nil
	case targetBounds:
		return resolved{kind: targetBounds, bounds: t.bounds}, nil
	case targetSelector:
		if matches := host.Query(t.selector); len(matches) > 0 {
			candidate = matches[0]
		}
	case targetCollection:
		if len(t.nodes) > 0 {
			candidate = t.nodes[0]
		}
	default:
		candidate = t.node
	}
	if isNil(candidate) {
		return resolved{}, errors.InvalidTarget(op, t.String())
	}
	return classify(candidate), nil
}

func classify(n Node) resolved {
	switch v := n.(type) {
	case Rect:
		return resolved{kind: targetBounds, bounds: v}
	case *Rect:
		return resolved{kind: targetBounds, bounds: *v}
	}
	if f, ok := toFloat(n); ok && !math.IsNaN(f) {
		return resolved{kind: targetPosition, position: f}
	}
	return resolved{kind: targetNode, node: n}
}

func isNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
