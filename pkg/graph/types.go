package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// =============================================================================
// Constants
// =============================================================================

// Structural JSON keys. Every other key on a node or link is an attribute.
const (
	KeyID        = "id"
	KeySource    = "source"
	KeyTarget    = "target"
	KeyCurvature = "curvature"
)

// pairSep joins source and target in [Edge.PairKey].
const pairSep = "___"

// DefaultLabelKeys are the node attributes consulted, in order, for the
// display label and for text search.
var DefaultLabelKeys = []string{"name", "label", "legal_name", "trade_name"}

// =============================================================================
// Graph
// =============================================================================

// Graph is an attributed node-link snapshot.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Links []Edge `json:"links" bson:"links"`
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Links) }

// Clone returns a deep copy of g. Attribute maps are copied shallowly.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Links: make([]Edge, len(g.Links)),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = Node{ID: n.ID, Attrs: maps.Clone(n.Attrs)}
	}
	for i, e := range g.Links {
		e.Attrs = maps.Clone(e.Attrs)
		out.Links[i] = e
	}
	return out
}

// AssignEdgeIDs gives every edge a unique ID.
//
// Edges without an ID get "source___target#n", where n counts earlier edges
// sharing the same ordered pair. Supplied IDs that collide with an earlier
// edge get a "#n" suffix as well. The assignment is deterministic for a given
// edge order.
func (g *Graph) AssignEdgeIDs() {
	seen := make(map[string]bool, len(g.Links))
	ordinals := make(map[string]int)
	for i := range g.Links {
		e := &g.Links[i]
		if e.ID == "" {
			pair := e.PairKey()
			e.ID = fmt.Sprintf("%s#%d", pair, ordinals[pair])
			ordinals[pair]++
		}
		base := e.ID
		for n := 1; seen[e.ID]; n++ {
			e.ID = fmt.Sprintf("%s#%d", base, n)
		}
		seen[e.ID] = true
	}
}

// Validate checks the structural invariants the rendering engine relies on:
// non-empty unique node IDs and edges whose endpoints exist.
func (g *Graph) Validate() error {
	ids := make(map[string]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node %d: missing id", i)
		}
		if ids[n.ID] {
			return fmt.Errorf("node %s: duplicate id", n.ID)
		}
		ids[n.ID] = true
	}
	for i, e := range g.Links {
		if e.Source == "" || e.Target == "" {
			return fmt.Errorf("link %d: missing source or target", i)
		}
		if !ids[e.Source] {
			return fmt.Errorf("link %s: unknown source %q", e.label(i), e.Source)
		}
		if !ids[e.Target] {
			return fmt.Errorf("link %s: unknown target %q", e.label(i), e.Target)
		}
	}
	return nil
}

// =============================================================================
// Node
// =============================================================================

// Node is a graph entity. Attrs holds every non-structural field.
type Node struct {
	ID    string         `bson:"id"`
	Attrs map[string]any `bson:"attrs,omitempty"`
}

// Attr returns the attribute value for key. Absent keys and JSON nulls both
// report ok == false.
func (n *Node) Attr(key string) (any, bool) {
	v, ok := n.Attrs[key]
	return v, ok && v != nil
}

// Label returns the first non-empty textual value among keys, falling back
// to [DefaultLabelKeys] and finally the node ID.
func (n *Node) Label(keys ...string) string {
	for _, k := range keys {
		if s, ok := Text(n.Attrs[k]); ok {
			return s
		}
	}
	for _, k := range DefaultLabelKeys {
		if s, ok := Text(n.Attrs[k]); ok {
			return s
		}
	}
	return n.ID
}

// Matches reports whether the lowercase term occurs in the node ID or any
// label attribute. The caller lowercases term once per search.
func (n *Node) Matches(lowerTerm string, keys ...string) bool {
	if strings.Contains(strings.ToLower(n.ID), lowerTerm) {
		return true
	}
	for _, k := range keys {
		if s, ok := Text(n.Attrs[k]); ok && strings.Contains(strings.ToLower(s), lowerTerm) {
			return true
		}
	}
	for _, k := range DefaultLabelKeys {
		if s, ok := Text(n.Attrs[k]); ok && strings.Contains(strings.ToLower(s), lowerTerm) {
			return true
		}
	}
	return false
}

// AttrKeys returns the node's attribute keys in sorted order.
func (n *Node) AttrKeys() []string {
	return slices.Sorted(maps.Keys(n.Attrs))
}

// =============================================================================
// Edge
// =============================================================================

// Edge is a directed relationship between two node IDs.
//
// Curvature is derived: it is written once per graph load by the curvature
// resolver and read by the rendering engine on every frame.
type Edge struct {
	ID        string         `bson:"id"`
	Source    string         `bson:"source"`
	Target    string         `bson:"target"`
	Attrs     map[string]any `bson:"attrs,omitempty"`
	Curvature float64        `bson:"curvature"`
}

// Attr returns the attribute value for key.
func (e *Edge) Attr(key string) (any, bool) {
	v, ok := e.Attrs[key]
	return v, ok && v != nil
}

// PairKey returns the ordered-pair key "source___target".
// It is not unique under parallel edges; use ID for identity.
func (e *Edge) PairKey() string {
	return e.Source + pairSep + e.Target
}

// IsSelfLoop reports whether the edge starts and ends at the same node.
func (e *Edge) IsSelfLoop() bool {
	return e.Source == e.Target
}

// Other returns the endpoint opposite to id. For self-loops it returns id.
func (e *Edge) Other(id string) string {
	if e.Source == id {
		return e.Target
	}
	return e.Source
}

// Touches reports whether id is one of the edge's endpoints.
func (e *Edge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}

func (e *Edge) label(i int) string {
	if e.ID != "" {
		return e.ID
	}
	return fmt.Sprintf("#%d", i)
}
