// Package scale maps attribute values onto visual ranges such as node radius
// or edge width.
//
// Scaling is linear with clamping: inputs at or below the domain minimum map
// to the output minimum, inputs at or above the maximum map to the output
// maximum. A degenerate domain (min == max) maps every numeric input to the
// output midpoint so that all elements render uniformly. Non-numeric inputs
// map to the output minimum; scaling never fails.
//
// Value is called once per element per redraw and does not allocate.
package scale

import (
	"math"

	"github.com/matzehuels/linkscope/pkg/graph"
)

// Value scales v from [min, max] onto [outMin, outMax].
func Value(v any, lo, hi, outMin, outMax float64) float64 {
	if lo == hi {
		return (outMin + outMax) / 2
	}
	f, ok := graph.Number(v)
	if !ok {
		return outMin
	}
	return Float(f, lo, hi, outMin, outMax)
}

// Float is Value for an already-numeric input.
func Float(f, lo, hi, outMin, outMax float64) float64 {
	if lo == hi {
		return (outMin + outMax) / 2
	}
	if f <= lo {
		return outMin
	}
	if f >= hi {
		return outMax
	}
	return outMin + (f-lo)/(hi-lo)*(outMax-outMin)
}

// Range is a domain extent paired with an output interval.
type Range struct {
	Min    float64 `json:"min" toml:"min" yaml:"min"`
	Max    float64 `json:"max" toml:"max" yaml:"max"`
	OutMin float64 `json:"out_min" toml:"out_min" yaml:"out_min"`
	OutMax float64 `json:"out_max" toml:"out_max" yaml:"out_max"`

	// Empty marks a range derived from no numeric values.
	Empty bool `json:"empty,omitempty" toml:"-" yaml:"-"`
}

// Scale maps v through the range. Empty ranges return OutMin.
func (r Range) Scale(v any) float64 {
	if r.Empty {
		return r.OutMin
	}
	return Value(v, r.Min, r.Max, r.OutMin, r.OutMax)
}

// Extent returns the numeric extent of values, skipping anything Number
// cannot coerce. ok is false when no value was numeric.
func Extent(values []any) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		f, isNum := graph.Number(v)
		if !isNum {
			continue
		}
		ok = true
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

// NewRange derives a range from the full data extent of values.
func NewRange(values []any, outMin, outMax float64) Range {
	lo, hi, ok := Extent(values)
	return Range{Min: lo, Max: hi, OutMin: outMin, OutMax: outMax, Empty: !ok}
}
