package scroll

import (
	"strconv"
	"strings"
)

// Length is one side of an offset: either pixels or a fraction of the
// container's viewport height.
type Length struct {
	Value float64
	// Relative marks Value as a fraction of the viewport height, resolved
	// against the live viewport on every read.
	Relative bool
}

// Px returns a fixed pixel length.
func Px(v float64) Length {
	return Length{Value: v}
}

// VH returns a length of percent% of the viewport height.
func VH(percent float64) Length {
	return Length{Value: percent / 100, Relative: true}
}

// ParseLength parses a viewport-relative string such as "50vh". The digits
// of the string are read as a whole-number percentage, so "-50vh" and
// "50vh" are the same length. Strings without a "vh" suffix, or without
// digits, yield a zero length.
func ParseLength(s string) Length {
	if !strings.Contains(s, "vh") {
		return Length{}
	}
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	percent, err := strconv.Atoi(digits.String())
	if err != nil {
		return Length{}
	}
	return VH(float64(percent))
}

// Resolve returns the length in pixels for the given viewport height.
func (l Length) Resolve(viewportHeight float64) float64 {
	if l.Relative {
		return l.Value * viewportHeight
	}
	return l.Value
}

// Offsets widen a target before it is compared with the viewport: Top is
// subtracted from its top edge and Bottom added to its bottom edge.
type Offsets struct {
	Top    Length
	Bottom Length
}

// Uniform applies l to both sides.
func Uniform(l Length) Offsets {
	return Offsets{Top: l, Bottom: l}
}

// Edges are offsets resolved to pixels.
type Edges struct {
	Top    float64
	Bottom float64
}

// Resolve converts o to pixels for the given viewport height.
func (o Offsets) Resolve(viewportHeight float64) Edges {
	return Edges{
		Top:    o.Top.Resolve(viewportHeight),
		Bottom: o.Bottom.Resolve(viewportHeight),
	}
}

// ParseOffsets normalizes a loosely typed offset value, such as one decoded
// from YAML. It accepts nil, numbers, strings, Length, Offsets and maps with
// "top" and "bottom" keys. Anything unrecognized, on either side, becomes
// zero.
func ParseOffsets(v any) Offsets {
	switch o := v.(type) {
	case nil:
		return Offsets{}
	case Offsets:
		return o
	case *Offsets:
		if o == nil {
			return Offsets{}
		}
		return *o
	case Length:
		return Uniform(o)
	case string:
		return Uniform(ParseLength(o))
	case map[string]any:
		return Offsets{Top: parseSide(o["top"]), Bottom: parseSide(o["bottom"])}
	case map[any]any:
		return Offsets{Top: parseSide(o["top"]), Bottom: parseSide(o["bottom"])}
	}
	if f, ok := toFloat(v); ok {
		return Uniform(Px(f))
	}
	return Offsets{}
}

func parseSide(v any) Length {
	switch s := v.(type) {
	case nil:
		return Length{}
	case Length:
		return s
	case string:
		return ParseLength(s)
	}
	if f, ok := toFloat(v); ok {
		return Px(f)
	}
	return Length{}
}
