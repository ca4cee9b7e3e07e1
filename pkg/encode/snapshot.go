package encode

import (
	"github.com/matzehuels/linkscope/pkg/encode/palette"
	"github.com/matzehuels/linkscope/pkg/highlight"
)

// NodeVisual is the materialized encoding of one node.
type NodeVisual struct {
	ID           string        `json:"id"`
	Label        string        `json:"label"`
	Color        palette.Color `json:"color"`
	Size         float64       `json:"size"`
	LabelVisible bool          `json:"label_visible"`
	Highlighted  bool          `json:"highlighted,omitempty"`
}

// EdgeVisual is the materialized encoding of one edge.
type EdgeVisual struct {
	ID           string        `json:"id"`
	Source       string        `json:"source"`
	Target       string        `json:"target"`
	Label        string        `json:"label,omitempty"`
	Color        palette.Color `json:"color"`
	Width        float64       `json:"width"`
	Curvature    float64       `json:"curvature"`
	LabelVisible bool          `json:"label_visible"`
	Highlighted  bool          `json:"highlighted,omitempty"`
}

// Snapshot is every accessor of a Frame evaluated for every element, in
// graph order. Renderers that cannot call back into Go consume this.
type Snapshot struct {
	Mode        highlight.Mode `json:"mode"`
	Highlighted struct {
		Nodes int `json:"nodes"`
		Edges int `json:"edges"`
	} `json:"highlighted"`
	Nodes []NodeVisual `json:"nodes"`
	Edges []EdgeVisual `json:"links"`
}

// Snapshot evaluates the frame for the whole graph.
func (f Frame) Snapshot() Snapshot {
	g := f.enc.g
	snap := Snapshot{
		Mode:  f.state.Mode,
		Nodes: make([]NodeVisual, len(g.Nodes)),
		Edges: make([]EdgeVisual, len(g.Links)),
	}
	snap.Highlighted.Nodes = f.state.Nodes.Len()
	snap.Highlighted.Edges = f.state.Edges.Len()

	for i := range g.Nodes {
		n := &g.Nodes[i]
		snap.Nodes[i] = NodeVisual{
			ID:           n.ID,
			Label:        f.NodeLabel(n),
			Color:        f.NodeColor(n),
			Size:         f.NodeSize(n),
			LabelVisible: f.NodeLabelVisible(n),
			Highlighted:  f.state.HasNode(n.ID),
		}
	}
	for i := range g.Links {
		e := &g.Links[i]
		snap.Edges[i] = EdgeVisual{
			ID:           e.ID,
			Source:       e.Source,
			Target:       e.Target,
			Label:        f.EdgeLabel(e),
			Color:        f.EdgeColor(e),
			Width:        f.EdgeWidth(e),
			Curvature:    f.EdgeCurvature(e),
			LabelVisible: f.EdgeLabelVisible(e),
			Highlighted:  f.state.HasEdge(e.ID),
		}
	}
	return snap
}
