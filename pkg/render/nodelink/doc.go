// Package nodelink renders encoded graphs as static node-link diagrams.
//
// # Overview
//
// The interactive view is drawn by a browser engine that calls the frame
// accessors on every redraw. This package produces the same picture offline:
// it evaluates an [encode.Frame] once and hands the result to Graphviz, which
// computes positions and writes SVG. Because the frame carries the highlight
// state, a snapshot of a selection or search looks like the live view at
// that moment.
//
// # Usage
//
//	enc, err := encode.Build(g, cfg)
//	frame := enc.Frame(state)
//	dot := nodelink.ToDOT(frame, nodelink.Options{Engine: nodelink.EngineNeato})
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.EngineNeato)
//
// [Render] combines both steps.
//
// # Encoding
//
//   - node color and size map to fillcolor and a fixed circle width
//   - visible node labels become external labels (xlabel)
//   - edge color and width map to color and penwidth
//   - edge IDs become SVG element ids, so parallel edges stay addressable
//
// Translucent colors are written as #rrggbbaa.
//
// # Dependencies
//
// Rendering uses [github.com/goccy/go-graphviz], which embeds Graphviz as
// WebAssembly; no system installation is needed.
package nodelink
