package encode

import (
	"github.com/matzehuels/linkscope/pkg/encode/palette"
	"github.com/matzehuels/linkscope/pkg/encode/scale"
	"github.com/matzehuels/linkscope/pkg/graph"
	"github.com/matzehuels/linkscope/pkg/highlight"
)

// Encoder holds the derived lookup tables for one graph and one
// configuration. It is immutable after Build and safe for concurrent use.
// Changing the graph or the configuration means building a new Encoder.
type Encoder struct {
	g   *graph.Graph
	ix  *graph.Index
	cfg Config

	nodeColors palette.ColorMap
	edgeColors palette.ColorMap
	nodeSize   scale.Range
	edgeWidth  scale.Range
}

// Build validates cfg against g's attributes and derives color maps and
// scale ranges from the full data extent. Edge IDs and curvature must
// already be assigned (the ingestion layer does both at load time).
func Build(g *graph.Graph, cfg Config) (*Encoder, error) {
	if err := cfg.Validate(g.Schema()); err != nil {
		return nil, err
	}

	enc := &Encoder{
		g:   g,
		ix:  graph.NewIndex(g),
		cfg: cfg,
	}

	if cfg.NodeColorBy != "" {
		values := make([]string, 0, len(g.Nodes))
		for i := range g.Nodes {
			v, _ := g.Nodes[i].Attr(cfg.NodeColorBy)
			values = append(values, text(v))
		}
		enc.nodeColors = palette.Build(values)
	}
	if cfg.EdgeColorBy != "" {
		values := make([]string, 0, len(g.Links))
		for i := range g.Links {
			v, _ := g.Links[i].Attr(cfg.EdgeColorBy)
			values = append(values, text(v))
		}
		enc.edgeColors = palette.Build(values)
	}

	enc.nodeSize = constantRange(cfg.NodeSize)
	if cfg.NodeSizeBy != "" {
		values := make([]any, len(g.Nodes))
		for i := range g.Nodes {
			values[i], _ = g.Nodes[i].Attr(cfg.NodeSizeBy)
		}
		enc.nodeSize = scale.NewRange(values, cfg.NodeSize.Min, cfg.NodeSize.Max)
	}

	enc.edgeWidth = constantRange(cfg.EdgeWidth)
	if cfg.EdgeWidthBy != "" {
		values := make([]any, len(g.Links))
		for i := range g.Links {
			values[i], _ = g.Links[i].Attr(cfg.EdgeWidthBy)
		}
		enc.edgeWidth = scale.NewRange(values, cfg.EdgeWidth.Min, cfg.EdgeWidth.Max)
	}

	return enc, nil
}

// constantRange yields the lower bound for every input.
func constantRange(b Bounds) scale.Range {
	return scale.Range{OutMin: b.Min, OutMax: b.Max, Empty: true}
}

func text(v any) string {
	s, _ := graph.Text(v)
	return s
}

// Graph returns the encoded graph.
func (enc *Encoder) Graph() *graph.Graph { return enc.g }

// Index returns the lookup index over the encoded graph.
func (enc *Encoder) Index() *graph.Index { return enc.ix }

// Config returns the configuration the encoder was built with.
func (enc *Encoder) Config() Config { return enc.cfg }

// NodeSizeRange returns the derived node size range.
func (enc *Encoder) NodeSizeRange() scale.Range { return enc.nodeSize }

// EdgeWidthRange returns the derived edge width range.
func (enc *Encoder) EdgeWidthRange() scale.Range { return enc.edgeWidth }

// Frame pairs the encoder with a highlight state snapshot.
func (enc *Encoder) Frame(s highlight.State) Frame {
	return Frame{enc: enc, state: s, zoom: enc.cfg.Zoom}
}

// Legend lists the categorical color assignments, which double as the
// available filter chips.
type Legend struct {
	NodeAttribute string          `json:"node_attribute,omitempty"`
	Nodes         []palette.Entry `json:"nodes"`
	EdgeAttribute string          `json:"edge_attribute,omitempty"`
	Edges         []palette.Entry `json:"edges"`
}

// Legend returns the color legend in value order.
func (enc *Encoder) Legend() Legend {
	return Legend{
		NodeAttribute: enc.cfg.NodeColorBy,
		Nodes:         enc.nodeColors.Entries(),
		EdgeAttribute: enc.cfg.EdgeColorBy,
		Edges:         enc.edgeColors.Entries(),
	}
}

// Chips returns a filter for every legend entry, nodes first.
func (l Legend) Chips() []highlight.Filter {
	chips := make([]highlight.Filter, 0, len(l.Nodes)+len(l.Edges))
	for _, e := range l.Nodes {
		chips = append(chips, highlight.Filter{Kind: highlight.NodeKind, Attribute: l.NodeAttribute, Value: e.Value})
	}
	for _, e := range l.Edges {
		chips = append(chips, highlight.Filter{Kind: highlight.EdgeKind, Attribute: l.EdgeAttribute, Value: e.Value})
	}
	return chips
}
