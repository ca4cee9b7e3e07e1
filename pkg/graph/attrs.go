package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number coerces an attribute value to float64.
//
// Go numeric kinds, json.Number and numeric strings are accepted. NaN and
// infinities, booleans, nil and everything else report ok == false. Number
// does not allocate for the common cases.
func Number(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		p, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Text returns the display form of a categorical attribute value.
// Empty strings and nil are absent.
func Text(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, x != ""
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case int:
		return strconv.Itoa(x), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		s := fmt.Sprint(x)
		return s, s != ""
	}
}

// NormalizeValue converts json.Number into int64 or float64 so attribute maps
// only hold plain Go values after decoding.
func NormalizeValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		for k, inner := range x {
			x[k] = NormalizeValue(inner)
		}
		return x
	case []any:
		for i, inner := range x {
			x[i] = NormalizeValue(inner)
		}
		return x
	default:
		return v
	}
}

// Identifier extracts a node identifier from a decoded JSON value. Rendering
// engines replace link endpoints with node objects, so {"id": ...} is
// accepted as well.
func Identifier(v any) (string, bool) {
	switch x := v.(type) {
	case map[string]any:
		return Identifier(x[KeyID])
	case nil:
		return "", false
	default:
		return Text(x)
	}
}

// =============================================================================
// Schema
// =============================================================================

// AttrInfo summarizes one attribute key across a set of elements.
type AttrInfo struct {
	Present int `json:"present"` // elements with a non-null value
	Numeric int `json:"numeric"` // of those, values that coerce to a number
}

// IsNumeric reports whether every present value is numeric.
func (a AttrInfo) IsNumeric() bool {
	return a.Present > 0 && a.Numeric == a.Present
}

// Schema lists the attribute keys observed on nodes and edges.
type Schema struct {
	Node map[string]AttrInfo `json:"node"`
	Edge map[string]AttrInfo `json:"edge"`
}

// HasNode reports whether key was seen on at least one node.
func (s Schema) HasNode(key string) bool {
	_, ok := s.Node[key]
	return ok
}

// HasEdge reports whether key was seen on at least one edge.
func (s Schema) HasEdge(key string) bool {
	_, ok := s.Edge[key]
	return ok
}

// Schema scans the graph's attributes.
func (g *Graph) Schema() Schema {
	s := Schema{
		Node: make(map[string]AttrInfo),
		Edge: make(map[string]AttrInfo),
	}
	for i := range g.Nodes {
		observe(s.Node, g.Nodes[i].Attrs)
	}
	for i := range g.Links {
		observe(s.Edge, g.Links[i].Attrs)
	}
	return s
}

func observe(into map[string]AttrInfo, attrs map[string]any) {
	for k, v := range attrs {
		info := into[k]
		if v != nil {
			info.Present++
			if _, ok := Number(v); ok {
				info.Numeric++
			}
		}
		into[k] = info
	}
}
