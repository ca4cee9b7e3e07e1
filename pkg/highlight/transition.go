package highlight

import (
	"strings"

	"github.com/matzehuels/linkscope/pkg/graph"
)

// =============================================================================
// Messages
// =============================================================================

// Msg is an interaction event. The concrete types below are the only
// implementations.
type Msg interface{ isMsg() }

// Hover reports the element under the pointer. A zero Ref means the pointer
// left every element.
type Hover struct{ Ref }

// Click reports a click on a node or an edge.
type Click struct{ Ref }

// BackgroundClick reports a click on empty canvas.
type BackgroundClick struct{}

// FilterToggle reports a click on a filter chip.
type FilterToggle struct{ Filter }

// SearchChanged reports the current content of the search box. Keys names
// extra attributes to search in addition to the node ID and the default
// label attributes.
type SearchChanged struct {
	Term string
	Keys []string
}

// Reset is an explicit request to clear every highlight.
type Reset struct{}

// Reload reports that a new dataset replaced the current one.
type Reload struct{}

func (Hover) isMsg()           {}
func (Click) isMsg()           {}
func (BackgroundClick) isMsg() {}
func (FilterToggle) isMsg()    {}
func (SearchChanged) isMsg()   {}
func (Reset) isMsg()           {}
func (Reload) isMsg()          {}

// =============================================================================
// Effects
// =============================================================================

// Effect carries the side effects a transition asks the host to perform.
// Transition itself never performs them.
type Effect struct {
	// Focus is the node the view should center on (single search match).
	Focus string `json:"focus,omitempty"`

	// ShowInfo is the element whose details should be displayed.
	ShowInfo Ref `json:"show_info,omitzero"`

	// CloseInfo asks the host to close the details panel.
	CloseInfo bool `json:"close_info,omitempty"`

	// ClearChip asks the host to clear the active filter chip indicator.
	ClearChip bool `json:"clear_chip,omitempty"`

	// ClearSearch asks the host to empty the search box.
	ClearSearch bool `json:"clear_search,omitempty"`
}

// =============================================================================
// Transition
// =============================================================================

// Transition applies m to s and returns the next state together with the
// effects the host should perform. It is pure: s is never modified and the
// returned sets are freshly allocated whenever they change.
//
// Exactly one source drives the highlight sets at a time. Hover only applies
// when nothing deliberate is active. A click selects the element's
// neighborhood and replaces any filter or search. A filter chip drives the
// sets unless a search is active, in which case the search keeps precedence
// and the filter is remembered until the search is cleared.
func Transition(s State, m Msg, ix *graph.Index) (State, Effect) {
	switch m := m.(type) {
	case Hover:
		return hover(s, m.Ref, ix), Effect{}
	case Click:
		return click(s, m.Ref, ix)
	case FilterToggle:
		return toggleFilter(s, m.Filter, ix)
	case SearchChanged:
		return search(s, m, ix)
	case BackgroundClick, Reset, Reload:
		return State{}, Effect{
			CloseInfo:   true,
			ClearChip:   s.Filter.Active(),
			ClearSearch: s.Search != "",
		}
	}
	return s, Effect{}
}

// Source derives the driving source from the state's fields. For every state
// produced by Transition it equals s.Mode.
func (s State) Source() Mode {
	switch {
	case s.Search != "":
		return Searched
	case !s.Selection.IsZero():
		return Selected
	case s.Filter.Active():
		return Filtered
	case !s.Hover.IsZero():
		return Hovering
	}
	return Idle
}

func hover(s State, r Ref, ix *graph.Index) State {
	if s.Suppressed || s.Mode.Deliberate() {
		return s
	}
	nodes, edges, ok := neighborhood(r, ix)
	if !ok {
		return State{}
	}
	return State{Mode: Hovering, Nodes: nodes, Edges: edges, Hover: r}
}

func click(s State, r Ref, ix *graph.Index) (State, Effect) {
	nodes, edges, ok := neighborhood(r, ix)
	if !ok {
		return s, Effect{}
	}
	next := State{
		Mode:       Selected,
		Nodes:      nodes,
		Edges:      edges,
		Suppressed: true,
		Selection:  r,
	}
	return next, Effect{
		ShowInfo:    r,
		ClearChip:   s.Filter.Active(),
		ClearSearch: s.Search != "",
	}
}

func toggleFilter(s State, f Filter, ix *graph.Index) (State, Effect) {
	next, eff := applyFilter(s, f, ix)
	eff.CloseInfo = s.Mode == Selected && next.Mode != Selected
	return next, eff
}

func applyFilter(s State, f Filter, ix *graph.Index) (State, Effect) {
	if !f.Active() || f == s.Filter {
		return clearFilter(s), Effect{ClearChip: s.Filter.Active()}
	}

	if s.Search != "" {
		next := s
		next.Filter = f
		return next, Effect{}
	}

	nodes, edges := filterSets(f, ix)
	return State{
		Mode:       Filtered,
		Nodes:      nodes,
		Edges:      edges,
		Suppressed: true,
		Filter:     f,
	}, Effect{}
}

func clearFilter(s State) State {
	if s.Search != "" {
		next := s
		next.Filter = Filter{}
		return next
	}
	return State{}
}

func search(s State, m SearchChanged, ix *graph.Index) (State, Effect) {
	term := strings.TrimSpace(m.Term)
	if term == "" {
		if s.Search == "" {
			return s, Effect{}
		}
		if s.Filter.Active() {
			nodes, edges := filterSets(s.Filter, ix)
			return State{
				Mode:       Filtered,
				Nodes:      nodes,
				Edges:      edges,
				Suppressed: true,
				Filter:     s.Filter,
			}, Effect{}
		}
		return State{}, Effect{}
	}

	lower := strings.ToLower(term)
	nodes := Set{}
	var last string
	if ix != nil {
		for i := range ix.Graph().Nodes {
			n := &ix.Graph().Nodes[i]
			if n.Matches(lower, m.Keys...) {
				nodes[n.ID] = struct{}{}
				last = n.ID
			}
		}
	}

	next := State{
		Mode:       Searched,
		Nodes:      nodes,
		Edges:      Set{},
		Suppressed: true,
		Filter:     s.Filter,
		Search:     term,
	}
	var eff Effect
	if len(nodes) == 1 {
		eff.Focus = last
	}
	return next, eff
}

// neighborhood returns the highlight sets for a hovered or selected element:
// a node with its incident edges and their far endpoints, or an edge with
// its two endpoints.
func neighborhood(r Ref, ix *graph.Index) (Set, Set, bool) {
	if r.IsZero() || ix == nil {
		return nil, nil, false
	}
	switch r.Kind {
	case NodeKind:
		if !ix.HasNode(r.ID) {
			return nil, nil, false
		}
		nodes, edges := newSet(r.ID), Set{}
		ix.Incident(r.ID, func(e *graph.Edge) {
			edges[e.ID] = struct{}{}
			nodes[e.Other(r.ID)] = struct{}{}
		})
		return nodes, edges, true
	case EdgeKind:
		e, ok := ix.Edge(r.ID)
		if !ok {
			return nil, nil, false
		}
		return newSet(e.Source, e.Target), newSet(e.ID), true
	}
	return nil, nil, false
}

// filterSets returns the elements matching a filter chip. Node filters
// highlight nodes only; edge filters highlight the edges and their endpoints.
func filterSets(f Filter, ix *graph.Index) (Set, Set) {
	nodes, edges := Set{}, Set{}
	if ix == nil {
		return nodes, edges
	}
	g := ix.Graph()
	switch f.Kind {
	case NodeKind:
		for i := range g.Nodes {
			n := &g.Nodes[i]
			if v, ok := n.Attr(f.Attribute); ok && equalText(v, f.Value) {
				nodes[n.ID] = struct{}{}
			}
		}
	case EdgeKind:
		for i := range g.Links {
			e := &g.Links[i]
			if v, ok := e.Attr(f.Attribute); ok && equalText(v, f.Value) {
				edges[e.ID] = struct{}{}
				nodes[e.Source] = struct{}{}
				nodes[e.Target] = struct{}{}
			}
		}
	}
	return nodes, edges
}

func equalText(v any, want string) bool {
	s, ok := graph.Text(v)
	return ok && s == want
}
