package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/linkscope/pkg/encode"
	"github.com/matzehuels/linkscope/pkg/graph"
)

// Engine is a Graphviz layout engine.
type Engine string

const (
	EngineNeato Engine = "neato"
	EngineFDP   Engine = "fdp"
	EngineSFDP  Engine = "sfdp"
	EngineCirco Engine = "circo"
	EngineDot   Engine = "dot"
)

// DefaultEngine is the force-directed engine, the closest match to the
// interactive view.
const DefaultEngine = EngineNeato

// ValidEngines is the set of supported layout engines.
var ValidEngines = map[Engine]bool{
	EngineNeato: true,
	EngineFDP:   true,
	EngineSFDP:  true,
	EngineCirco: true,
	EngineDot:   true,
}

// ParseEngine validates an engine name. The empty string selects
// [DefaultEngine].
func ParseEngine(s string) (Engine, error) {
	if s == "" {
		return DefaultEngine, nil
	}
	e := Engine(strings.ToLower(s))
	if !ValidEngines[e] {
		return "", fmt.Errorf("invalid engine: %q (must be one of: neato, fdp, sfdp, circo, dot)", s)
	}
	return e, nil
}

// Options configures node-link snapshot rendering.
type Options struct {
	// Engine selects the Graphviz layout. Empty means [DefaultEngine].
	Engine Engine

	// Detailed adds every node attribute to the node tooltip.
	Detailed bool
}

// pointsPerUnit converts a node size into a Graphviz diameter in inches.
const pointsPerUnit = 2.0 / 72.0

// ToDOT converts a frame to Graphviz DOT. Every visual channel comes from
// the frame's accessors, so the output reflects the frame's highlight state:
// dimmed elements keep their translucent color, highlighted ones are drawn
// larger, and only visible labels are emitted.
//
// Edge curvature has no Graphviz equivalent; it is carried as a "curvature"
// attribute for downstream consumers and parallel edges are left to the
// spline router.
func ToDOT(f encode.Frame, opts Options) string {
	engine := opts.Engine
	if engine == "" {
		engine = DefaultEngine
	}
	g := f.Encoder().Graph()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  layout=%s;\n", engine)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  splines=curved;\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, penwidth=0, label=\"\", fontsize=10];\n")
	buf.WriteString("  edge [arrowsize=0.5];\n")
	buf.WriteString("\n")

	for i := range g.Nodes {
		n := &g.Nodes[i]
		attrs := []string{
			fmt.Sprintf("width=%s", strconv.FormatFloat(f.NodeSize(n)*pointsPerUnit, 'f', 3, 64)),
			fmt.Sprintf("fillcolor=%s", quote(f.NodeColor(n).HexA())),
			fmt.Sprintf("tooltip=%s", quote(tooltip(n, f, opts.Detailed))),
		}
		if f.NodeLabelVisible(n) {
			attrs = append(attrs, fmt.Sprintf("xlabel=%s", quote(f.NodeLabel(n))))
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(n.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for i := range g.Links {
		e := &g.Links[i]
		attrs := []string{
			fmt.Sprintf("id=%s", quote(e.ID)),
			fmt.Sprintf("color=%s", quote(f.EdgeColor(e).HexA())),
			fmt.Sprintf("penwidth=%s", fmtFloat(f.EdgeWidth(e))),
			fmt.Sprintf("curvature=%s", fmtFloat(f.EdgeCurvature(e))),
		}
		if label := f.EdgeLabel(e); label != "" && f.EdgeLabelVisible(e) {
			attrs = append(attrs, fmt.Sprintf("label=%s", quote(label)))
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", quote(e.Source), quote(e.Target), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func tooltip(n *graph.Node, f encode.Frame, detailed bool) string {
	label := f.NodeLabel(n)
	if !detailed {
		return label
	}
	lines := []string{label}
	for _, k := range n.AttrKeys() {
		if s, ok := graph.Text(n.Attrs[k]); ok {
			lines = append(lines, k+": "+s)
		}
	}
	return strings.Join(lines, "\n")
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// quote renders s as a DOT double-quoted string. Unlike %q it leaves
// non-ASCII text intact, since DOT has no \u escapes.
func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// =============================================================================
// Rendering
// =============================================================================

// RenderSVG lays out and renders DOT source to SVG in-process.
func RenderSVG(ctx context.Context, dot string, engine Engine) ([]byte, error) {
	if engine == "" {
		engine = DefaultEngine
	}
	if !ValidEngines[engine] {
		return nil, fmt.Errorf("invalid engine: %q", engine)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.Layout(engine))

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// Render converts the frame to DOT and renders it to SVG.
func Render(ctx context.Context, f encode.Frame, opts Options) ([]byte, error) {
	return RenderSVG(ctx, ToDOT(f, opts), opts.Engine)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's fixed pt dimensions with a viewBox
// anchored at the origin so the SVG scales with its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
