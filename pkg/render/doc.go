// Package render converts rendered snapshots between output formats.
//
// The [nodelink] subpackage turns an encoded frame into SVG. ToPDF and ToPNG
// rasterize that SVG with rsvg-convert (librsvg), which must be on PATH:
//
//	svg, err := nodelink.Render(ctx, frame, nodelink.Options{})
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// [nodelink]: github.com/matzehuels/linkscope/pkg/render/nodelink
package render
