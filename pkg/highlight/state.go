package highlight

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// =============================================================================
// Mode
// =============================================================================

// Mode names the interaction source currently driving the highlight sets.
type Mode uint8

const (
	Idle Mode = iota
	Hovering
	Selected
	Filtered
	Searched
)

var modeNames = [...]string{"idle", "hovering", "selected", "filtered", "searched"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", m)
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return Idle, fmt.Errorf("unknown mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Deliberate reports whether the mode came from an explicit user action
// (selection, filter or search) rather than the pointer.
func (m Mode) Deliberate() bool {
	return m == Selected || m == Filtered || m == Searched
}

// =============================================================================
// Kind & Ref
// =============================================================================

// Kind distinguishes nodes from edges.
type Kind uint8

const (
	NodeKind Kind = iota
	EdgeKind
)

func (k Kind) String() string {
	if k == EdgeKind {
		return "edge"
	}
	return "node"
}

// ParseKind accepts "node", "edge" and the force-graph spelling "link".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "node":
		return NodeKind, nil
	case "edge", "link":
		return EdgeKind, nil
	}
	return NodeKind, fmt.Errorf("unknown element kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Ref identifies a node or an edge. The zero Ref refers to nothing.
type Ref struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// IsZero reports whether r refers to nothing.
func (r Ref) IsZero() bool { return r.ID == "" }

// Node returns a node reference.
func Node(id string) Ref { return Ref{Kind: NodeKind, ID: id} }

// Edge returns an edge reference.
func Edge(id string) Ref { return Ref{Kind: EdgeKind, ID: id} }

// =============================================================================
// Filter
// =============================================================================

// Filter is a categorical filter chip: elements of Kind whose Attribute
// equals Value. The zero Filter is inactive.
type Filter struct {
	Kind      Kind   `json:"kind"`
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

// Active reports whether a filter chip is selected.
func (f Filter) Active() bool { return f.Attribute != "" }

// =============================================================================
// Set
// =============================================================================

// Set is an immutable set of element IDs. A nil Set is empty.
type Set map[string]struct{}

func newSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int { return len(s) }

// Sorted returns the members in lexicographic order.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// MarshalJSON encodes the set as a sorted array.
func (s Set) MarshalJSON() ([]byte, error) {
	ids := s.Sorted()
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(ids)
}

// UnmarshalJSON decodes an array of IDs.
func (s *Set) UnmarshalJSON(b []byte) error {
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*s = newSet(ids...)
	return nil
}

// =============================================================================
// State
// =============================================================================

// State is the authoritative highlight snapshot. States are values: a
// transition returns a new State and never mutates the sets of the old one,
// so a State handed to the renderer stays valid while further events are
// processed.
type State struct {
	Mode  Mode `json:"mode"`
	Nodes Set  `json:"nodes"`
	Edges Set  `json:"edges"`

	// Suppressed blocks hover-driven changes after a deliberate action.
	Suppressed bool `json:"suppressed"`

	Hover     Ref    `json:"hover"`
	Selection Ref    `json:"selection"`
	Filter    Filter `json:"filter"`
	Search    string `json:"search,omitempty"`
}

// Empty reports whether nothing is highlighted.
func (s State) Empty() bool {
	return len(s.Nodes) == 0 && len(s.Edges) == 0
}

// HasNode reports whether the node is highlighted.
func (s State) HasNode(id string) bool { return s.Nodes.Has(id) }

// HasEdge reports whether the edge is highlighted.
func (s State) HasEdge(id string) bool { return s.Edges.Has(id) }
