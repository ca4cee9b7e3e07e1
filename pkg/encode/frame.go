package encode

import (
	"github.com/matzehuels/linkscope/pkg/encode/labels"
	"github.com/matzehuels/linkscope/pkg/encode/palette"
	"github.com/matzehuels/linkscope/pkg/graph"
	"github.com/matzehuels/linkscope/pkg/highlight"
)

// highlightFactor scales the size and width of highlighted elements.
const highlightFactor = 2

// edgeLabelKeys are consulted, in order, for edge label text.
var edgeLabelKeys = []string{"label", "type", "relationship"}

// Frame answers the per-element questions a renderer asks on every redraw.
// It is a small value: copying it is cheap and every accessor is pure, so
// any number of goroutines may use a Frame while newer frames are produced.
type Frame struct {
	enc   *Encoder
	state highlight.State
	zoom  float64
}

// State returns the highlight state the frame was built from.
func (f Frame) State() highlight.State { return f.state }

// Encoder returns the frame's encoder.
func (f Frame) Encoder() *Encoder { return f.enc }

// Zoom returns the zoom level used for label visibility.
func (f Frame) Zoom() float64 { return f.zoom }

// WithZoom returns a copy of f at another zoom level.
func (f Frame) WithZoom(z float64) Frame {
	f.zoom = z
	return f
}

// NodeColor is dimmed gray when something else is highlighted, otherwise the
// mapped color of the node's color attribute or the neutral fallback.
func (f Frame) NodeColor(n *graph.Node) palette.Color {
	if !f.state.Empty() && !f.state.HasNode(n.ID) {
		return palette.DimmedNode
	}
	if f.enc.cfg.NodeColorBy == "" {
		return palette.NodeFallback
	}
	v, _ := n.Attr(f.enc.cfg.NodeColorBy)
	return f.enc.nodeColors.Lookup(text(v), palette.NodeFallback)
}

// NodeSize is the scaled size attribute, doubled for highlighted nodes.
func (f Frame) NodeSize(n *graph.Node) float64 {
	var size float64
	if f.enc.cfg.NodeSizeBy == "" {
		size = f.enc.nodeSize.Scale(nil)
	} else {
		v, _ := n.Attr(f.enc.cfg.NodeSizeBy)
		size = f.enc.nodeSize.Scale(v)
	}
	if f.state.HasNode(n.ID) {
		size *= highlightFactor
	}
	return size
}

// NodeLabelVisible reports whether the node's label is drawn.
func (f Frame) NodeLabelVisible(n *graph.Node) bool {
	return f.labelVisible(n.ID, f.state.HasNode(n.ID))
}

// NodeLabel returns the node's label text.
func (f Frame) NodeLabel(n *graph.Node) string {
	if f.enc.cfg.LabelBy == "" {
		return n.Label()
	}
	return n.Label(f.enc.cfg.LabelBy)
}

// EdgeColor follows the node rule with one twist: a highlighted edge with
// no mapped color is drawn in bright white instead of the usual fallback.
func (f Frame) EdgeColor(e *graph.Edge) palette.Color {
	fallback := palette.EdgeFallback
	if !f.state.Empty() {
		if !f.state.HasEdge(e.ID) {
			return palette.DimmedEdge
		}
		fallback = palette.EdgeHighlight
	}
	if f.enc.cfg.EdgeColorBy == "" {
		return fallback
	}
	v, _ := e.Attr(f.enc.cfg.EdgeColorBy)
	return f.enc.edgeColors.Lookup(text(v), fallback)
}

// EdgeWidth is the scaled width attribute, doubled for highlighted edges.
func (f Frame) EdgeWidth(e *graph.Edge) float64 {
	var width float64
	if f.enc.cfg.EdgeWidthBy == "" {
		width = f.enc.edgeWidth.Scale(nil)
	} else {
		v, _ := e.Attr(f.enc.cfg.EdgeWidthBy)
		width = f.enc.edgeWidth.Scale(v)
	}
	if f.state.HasEdge(e.ID) {
		width *= highlightFactor
	}
	return width
}

// EdgeCurvature returns the curvature resolved at load time.
func (f Frame) EdgeCurvature(e *graph.Edge) float64 { return e.Curvature }

// EdgeLabelVisible reports whether the edge's label is drawn.
func (f Frame) EdgeLabelVisible(e *graph.Edge) bool {
	return f.labelVisible(e.ID, f.state.HasEdge(e.ID))
}

// EdgeLabel returns the edge's label text, or "" when it has none.
func (f Frame) EdgeLabel(e *graph.Edge) string {
	for _, k := range edgeLabelKeys {
		if v, ok := e.Attr(k); ok {
			if s, ok := graph.Text(v); ok {
				return s
			}
		}
	}
	return ""
}

// labelVisible: while a selection, filter or search is active only members
// are labeled. Otherwise the density sampler decides, gated by zoom in 2-D.
func (f Frame) labelVisible(id string, member bool) bool {
	if f.state.Mode.Deliberate() {
		return member
	}
	if !labels.Show(id, f.enc.cfg.LabelDensity) {
		return false
	}
	return f.enc.cfg.Dimensions != 2 || f.zoom > f.enc.cfg.MinLabelZoom
}
