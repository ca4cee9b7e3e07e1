// Package palette assigns colors to categorical attribute values.
//
// Assignment is a pure function of the sorted set of distinct values, so the
// same data always produces the same mapping regardless of iteration order.
// The palette holds ten colors; larger value sets reuse colors cyclically.
// Empty values never receive a palette slot and render with a fallback color
// chosen at lookup time.
package palette

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an RGB color with opacity.
type Color struct {
	RGB   colorful.Color
	Alpha float64
}

// Hex parses "#rrggbb" into an opaque color. It panics on malformed input and
// is meant for package-level constants.
func Hex(s string) Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(fmt.Sprintf("palette: invalid hex color %q: %v", s, err))
	}
	return Color{RGB: c, Alpha: 1}
}

// ParseHex parses "#rrggbb" into an opaque color.
func ParseHex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, err
	}
	return Color{RGB: c, Alpha: 1}, nil
}

// RGBA builds a color from 8-bit channels and an opacity in [0, 1].
func RGBA(r, g, b uint8, a float64) Color {
	return Color{
		RGB:   colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255},
		Alpha: a,
	}
}

// String returns "#rrggbb" for opaque colors and "rgba(r, g, b, a)" otherwise.
func (c Color) String() string {
	if c.Alpha >= 1 {
		return c.RGB.Hex()
	}
	r, g, b := c.RGB.RGB255()
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(c.Alpha, 'f', -1, 64))
}

// HexA returns "#rrggbbaa", the form Graphviz accepts for translucent colors.
func (c Color) HexA() string {
	a := uint8(math.Round(math.Max(0, math.Min(1, c.Alpha)) * 255))
	return fmt.Sprintf("%s%02x", c.RGB.Hex(), a)
}

// WithAlpha returns c with a different opacity.
func (c Color) WithAlpha(a float64) Color {
	c.Alpha = a
	return c
}

// MarshalJSON encodes the color as its CSS string.
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// =============================================================================
// Fixed Colors
// =============================================================================

// Palette is the categorical color cycle.
var Palette = [...]Color{
	Hex("#1f77b4"),
	Hex("#ff7f0e"),
	Hex("#2ca02c"),
	Hex("#d62728"),
	Hex("#9467bd"),
	Hex("#8c564b"),
	Hex("#e377c2"),
	Hex("#7f7f7f"),
	Hex("#bcbd22"),
	Hex("#17becf"),
}

// Fallback and emphasis colors.
var (
	NodeFallback  = RGBA(173, 216, 230, 0.75)
	EdgeFallback  = RGBA(255, 255, 255, 0.5)
	EdgeHighlight = RGBA(255, 255, 255, 0.8)
	DimmedNode    = RGBA(100, 100, 100, 0.1)
	DimmedEdge    = RGBA(100, 100, 100, 0.05)
)

// =============================================================================
// ColorMap
// =============================================================================

// ColorMap maps categorical values to colors.
type ColorMap map[string]Color

// Build deduplicates and sorts values, skips empty strings, and assigns
// Palette[i % len(Palette)] to the i-th value.
func Build(values []string) ColorMap {
	distinct := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			distinct = append(distinct, v)
		}
	}
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)

	m := make(ColorMap, len(distinct))
	for i, v := range distinct {
		m[v] = Palette[i%len(Palette)]
	}
	return m
}

// Lookup returns the color for value, or fallback when value is empty or
// unmapped.
func (m ColorMap) Lookup(value string, fallback Color) Color {
	if value == "" {
		return fallback
	}
	if c, ok := m[value]; ok {
		return c
	}
	return fallback
}

// Entry is one legend row.
type Entry struct {
	Value string `json:"value"`
	Color Color  `json:"color"`
}

// Entries lists the mapping in value order.
func (m ColorMap) Entries() []Entry {
	out := make([]Entry, 0, len(m))
	for v, c := range m {
		out = append(out, Entry{Value: v, Color: c})
	}
	slices.SortFunc(out, func(a, b Entry) int {
		if a.Value < b.Value {
			return -1
		}
		if a.Value > b.Value {
			return 1
		}
		return 0
	})
	return out
}
