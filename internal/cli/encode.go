package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linkscope/pkg/config"
	"github.com/matzehuels/linkscope/pkg/encode"
	"github.com/matzehuels/linkscope/pkg/errors"
	"github.com/matzehuels/linkscope/pkg/graph"
	"github.com/matzehuels/linkscope/pkg/highlight"
	"github.com/matzehuels/linkscope/pkg/io"
)

// =============================================================================
// Encode Flags
// =============================================================================

// encodeFlags are the encoding and highlight flags shared by encode, render
// and explore. Only flags set on the command line override the suggested
// configuration.
type encodeFlags struct {
	colorBy     string
	sizeBy      string
	edgeColorBy string
	widthBy     string
	labelBy     string
	density     float64
	dimensions  int
	zoom        float64

	hover  string
	sel    string
	search string
	filter string
}

func (f *encodeFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.colorBy, "color-by", "", "node attribute driving node color")
	fl.StringVar(&f.sizeBy, "size-by", "", "numeric node attribute driving node size")
	fl.StringVar(&f.edgeColorBy, "edge-color-by", "", "edge attribute driving edge color")
	fl.StringVar(&f.widthBy, "width-by", "", "numeric edge attribute driving edge width")
	fl.StringVar(&f.labelBy, "label-by", "", "node attribute used as label")
	fl.Float64Var(&f.density, "density", 0, "fraction of elements labeled at rest (0-1)")
	fl.IntVar(&f.dimensions, "dimensions", 0, "layout dimensions (2 or 3)")
	fl.Float64Var(&f.zoom, "zoom", 0, "camera zoom for the 2-D label threshold")
}

func (f *encodeFlags) registerHighlight(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.hover, "hover", "", "hover a node (or edge:<id>)")
	fl.StringVar(&f.sel, "select", "", "select a node (or edge:<id>)")
	fl.StringVar(&f.search, "search", "", "highlight nodes whose label contains this text")
	fl.StringVar(&f.filter, "filter", "", "filter chip as attr=value (or edge:attr=value)")
}

// config returns base with every changed flag applied, validated against
// the graph's schema.
func (f *encodeFlags) config(cmd *cobra.Command, base encode.Config, s graph.Schema) (encode.Config, error) {
	changed := cmd.Flags().Changed
	cfg := base
	set := []struct {
		flag string
		dst  *string
		val  string
	}{
		{"color-by", &cfg.NodeColorBy, f.colorBy},
		{"size-by", &cfg.NodeSizeBy, f.sizeBy},
		{"edge-color-by", &cfg.EdgeColorBy, f.edgeColorBy},
		{"width-by", &cfg.EdgeWidthBy, f.widthBy},
		{"label-by", &cfg.LabelBy, f.labelBy},
	}
	for _, o := range set {
		if changed(o.flag) {
			*o.dst = o.val
		}
	}
	if changed("density") {
		cfg.LabelDensity = f.density
	}
	if changed("dimensions") {
		cfg.Dimensions = f.dimensions
	}
	if changed("zoom") {
		cfg.Zoom = f.zoom
	}
	if err := cfg.Validate(s); err != nil {
		return encode.Config{}, err
	}
	return cfg, nil
}

// msgs translates the highlight flags into interaction messages in the
// order a user would produce them: filter, search, click, hover.
func (f *encodeFlags) msgs(enc *encode.Encoder) ([]highlight.Msg, error) {
	var out []highlight.Msg
	if f.filter != "" {
		filter, err := parseFilter(f.filter)
		if err != nil {
			return nil, err
		}
		out = append(out, highlight.FilterToggle{Filter: filter})
	}
	if f.search != "" {
		var keys []string
		if k := enc.Config().LabelBy; k != "" {
			keys = []string{k}
		}
		out = append(out, highlight.SearchChanged{Term: f.search, Keys: keys})
	}
	if f.sel != "" {
		ref, err := parseRef(enc.Index(), f.sel)
		if err != nil {
			return nil, err
		}
		out = append(out, highlight.Click{Ref: ref})
	}
	if f.hover != "" {
		ref, err := parseRef(enc.Index(), f.hover)
		if err != nil {
			return nil, err
		}
		out = append(out, highlight.Hover{Ref: ref})
	}
	return out, nil
}

// state folds the highlight flags into a highlight state.
func (f *encodeFlags) state(enc *encode.Encoder) (highlight.State, error) {
	msgs, err := f.msgs(enc)
	if err != nil {
		return highlight.State{}, err
	}
	var s highlight.State
	for _, m := range msgs {
		s, _ = highlight.Transition(s, m, enc.Index())
	}
	return s, nil
}

// parseRef parses "id", "node:id" or "edge:id" and checks that the element
// exists.
func parseRef(ix *graph.Index, s string) (highlight.Ref, error) {
	kind, id := highlight.NodeKind, s
	if prefix, rest, ok := strings.Cut(s, ":"); ok {
		if k, err := highlight.ParseKind(prefix); err == nil {
			kind, id = k, rest
		}
	}
	found := ix.HasNode(id)
	if kind == highlight.EdgeKind {
		found = ix.HasEdge(id)
	}
	if !found {
		return highlight.Ref{}, errors.New(errors.ErrCodeNotFound, "%s %q not found", kind, id)
	}
	return highlight.Ref{Kind: kind, ID: id}, nil
}

// parseFilter parses "attr=value" or "edge:attr=value".
func parseFilter(s string) (highlight.Filter, error) {
	kind := highlight.NodeKind
	if prefix, rest, ok := strings.Cut(s, ":"); ok {
		if k, err := highlight.ParseKind(prefix); err == nil {
			kind, s = k, rest
		}
	}
	attr, value, ok := strings.Cut(s, "=")
	if !ok || attr == "" {
		return highlight.Filter{}, errors.New(errors.ErrCodeInvalidInput, "filter must be attr=value, got %q", s)
	}
	return highlight.Filter{Kind: kind, Attribute: attr, Value: value}, nil
}

// =============================================================================
// Loading
// =============================================================================

// loadEncoder reads a graph file and builds an encoder from the config
// file's encoding settings overridden by flags.
func (c *CLI) loadEncoder(cmd *cobra.Command, path string, flags *encodeFlags) (*encode.Encoder, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.New(errors.ErrCodeFileNotFound, "file not found: %s", path)
		}
		return nil, nil, err
	}
	g, err := io.ParseUpload(path, data)
	if err != nil {
		return nil, nil, err
	}

	appCfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, nil, err
	}
	schema := g.Schema()
	cfg, err := flags.config(cmd, appCfg.Encode.Suggest(schema), schema)
	if err != nil {
		return nil, nil, err
	}
	enc, err := encode.Build(g, cfg)
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Debug("encoded graph", "file", path, "nodes", g.NodeCount(), "edges", g.EdgeCount(),
		"color_by", cfg.NodeColorBy, "label_by", cfg.LabelBy)
	return enc, data, nil
}

// =============================================================================
// Encode Command
// =============================================================================

// encodeCommand creates the encode command: it prints the snapshot JSON
// describing every element's visual properties under a highlight state.
func (c *CLI) encodeCommand() *cobra.Command {
	var (
		flags  encodeFlags
		output string
		legend bool
	)

	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Print per-element colors, sizes and labels as JSON",
		Long: `Encode reads a graph (JSON or GEXF), applies the attribute encoding and
an optional highlight (hover, selection, search or filter), and prints the
resulting visual properties of every node and link as JSON.`,
		Example: `  linkscope encode companies.json --color-by division
  linkscope encode network.gexf --select acme --density 0.2
  linkscope encode network.gexf --filter division=Finance --legend`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog := newProgress(c.Logger)
			enc, _, err := c.loadEncoder(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			prog.mark("encoded")
			state, err := flags.state(enc)
			if err != nil {
				return err
			}

			var v any = enc.Frame(state).Snapshot()
			if legend {
				v = enc.Legend()
			}
			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return fmt.Errorf("encode snapshot: %w", err)
			}
			data = append(data, '\n')

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Encoded %d nodes in %s mode", enc.Graph().NodeCount(), state.Mode))
			newPrinter(cmd.ErrOrStderr()).file(output)
			return nil
		},
	}

	flags.register(cmd)
	flags.registerHighlight(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&legend, "legend", false, "print the color legend instead of the snapshot")

	return cmd
}
