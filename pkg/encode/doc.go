// Package encode turns a graph, an attribute configuration and a highlight
// state into per-element visual properties.
//
// # Overview
//
// Encoding happens in two stages with very different costs:
//
//  1. [Build] runs when the graph or the [Config] changes. It validates the
//     configured attribute keys against the graph, then derives a color map
//     for each categorical channel (subpackage palette) and a scale range
//     for each numeric channel (subpackage scale) from the full data extent.
//
//  2. [Encoder.Frame] pairs the immutable [Encoder] with a highlight state.
//     Its accessors (NodeColor, NodeSize, EdgeWidth, ...) are pure lookups
//     the renderer may call for every element on every redraw.
//
// Edge curvature (subpackage curve) and label sampling (subpackage labels)
// are consumed here too. Curvature is resolved once at load time by the
// ingestion layer; Frame.EdgeCurvature just returns it.
//
// # Highlight rules
//
// When the highlight state is non-empty, elements outside it are dimmed and
// members are drawn at twice their size or width. Labels follow the active
// mode: with a selection, filter or search active only members are labeled;
// otherwise a deterministic fraction (Config.LabelDensity) is, and in 2-D
// only above Config.MinLabelZoom.
//
// # Usage
//
//	enc, err := encode.Build(g, encode.Suggest(g.Schema()))
//	if err != nil {
//	    return err
//	}
//	frame := enc.Frame(state)
//	for i := range g.Nodes {
//	    draw(frame.NodeColor(&g.Nodes[i]), frame.NodeSize(&g.Nodes[i]))
//	}
package encode
