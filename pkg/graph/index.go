package graph

// Index provides constant-time lookups over a graph. It holds pointers into
// the graph's slices, so the graph must not be resized while the index is in
// use. Index is read-only after construction and safe for concurrent use.
type Index struct {
	g        *Graph
	nodes    map[string]int
	edges    map[string]int
	incident map[string][]int
}

// NewIndex builds an index over g. Edge IDs must already be assigned.
func NewIndex(g *Graph) *Index {
	ix := &Index{
		g:        g,
		nodes:    make(map[string]int, len(g.Nodes)),
		edges:    make(map[string]int, len(g.Links)),
		incident: make(map[string][]int, len(g.Nodes)),
	}
	for i, n := range g.Nodes {
		ix.nodes[n.ID] = i
	}
	for i, e := range g.Links {
		ix.edges[e.ID] = i
		ix.incident[e.Source] = append(ix.incident[e.Source], i)
		if e.Target != e.Source {
			ix.incident[e.Target] = append(ix.incident[e.Target], i)
		}
	}
	return ix
}

// Graph returns the indexed graph.
func (ix *Index) Graph() *Graph { return ix.g }

// Node returns the node with the given ID.
func (ix *Index) Node(id string) (*Node, bool) {
	i, ok := ix.nodes[id]
	if !ok {
		return nil, false
	}
	return &ix.g.Nodes[i], true
}

// Edge returns the edge with the given ID.
func (ix *Index) Edge(id string) (*Edge, bool) {
	i, ok := ix.edges[id]
	if !ok {
		return nil, false
	}
	return &ix.g.Links[i], true
}

// HasNode reports whether id names a node.
func (ix *Index) HasNode(id string) bool {
	_, ok := ix.nodes[id]
	return ok
}

// HasEdge reports whether id names an edge.
func (ix *Index) HasEdge(id string) bool {
	_, ok := ix.edges[id]
	return ok
}

// Incident calls fn for every edge touching the node, in graph order.
// Self-loops are visited once.
func (ix *Index) Incident(id string, fn func(e *Edge)) {
	for _, i := range ix.incident[id] {
		fn(&ix.g.Links[i])
	}
}

// Degree returns the number of distinct edges touching the node.
func (ix *Index) Degree(id string) int {
	return len(ix.incident[id])
}
