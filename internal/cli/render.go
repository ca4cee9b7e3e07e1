package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linkscope/pkg/cache"
	"github.com/matzehuels/linkscope/pkg/config"
	"github.com/matzehuels/linkscope/pkg/io"
	"github.com/matzehuels/linkscope/pkg/pipeline"
	"github.com/matzehuels/linkscope/pkg/render/nodelink"
)

// formatGEXF exports the parsed graph instead of rendering a snapshot.
const formatGEXF = "gexf"

// renderOpts holds the render command's own flags.
type renderOpts struct {
	output   string
	format   string
	engine   string
	detailed bool
	scale    float64
	noCache  bool
}

// renderCommand creates the render command for static snapshots.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags encodeFlags
		opts  renderOpts
	)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a highlighted snapshot to SVG, PNG, PDF or DOT",
		Long: `Render lays out a graph with Graphviz and writes a static snapshot in
which colors, sizes, labels and the active highlight match what an
interactive view would show.

The format is taken from --format, else from the output file's extension,
else SVG. The "gexf" format exports the parsed graph itself.`,
		Example: `  linkscope render companies.json -o companies.svg
  linkscope render network.gexf --select acme -o acme.png --scale 3
  linkscope render network.gexf --filter division=Ops -f dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], &flags, opts)
		},
	}

	flags.register(cmd)
	flags.registerHighlight(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <input>.<format>, - for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg, dot, png, pdf, json, gexf")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "graphviz layout engine: neato, fdp, sfdp, circo, dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label every node with its attribute table")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultPNGScale, "PNG rasterization scale")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the snapshot cache")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, flags *encodeFlags, opts renderOpts) error {
	prog := newProgress(c.Logger)

	format, err := resolveFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
	}

	enc, data, err := c.loadEncoder(cmd, input, flags)
	if err != nil {
		return err
	}
	prog.mark("encoded")

	var out []byte
	cached := false
	if format == formatGEXF {
		var buf bytes.Buffer
		if err := io.Write(enc.Graph(), &buf, io.FormatGEXF); err != nil {
			return err
		}
		out = buf.Bytes()
	} else {
		state, err := flags.state(enc)
		if err != nil {
			return err
		}
		engine := opts.engine
		if engine == "" {
			if appCfg, err := config.Load(c.configPath); err == nil {
				engine = appCfg.Render.Engine
			}
		}

		runner, err := c.newRunner(opts.noCache)
		if err != nil {
			return err
		}
		defer runner.Close()

		spin := startSpinner(cmd.Context(), cmd.ErrOrStderr(), "Rendering "+format)
		out, cached, err = runner.RenderWithCacheInfo(cmd.Context(), enc.Frame(state), cache.Hash(data), pipeline.RenderOptions{
			Format:   format,
			Engine:   nodelink.Engine(engine),
			Detailed: opts.detailed,
			Scale:    opts.scale,
			Refresh:  opts.noCache,
		})
		if err != nil {
			spin.fail("Render failed")
			return err
		}
		spin.stop()
		prog.mark("rendered")
	}

	if output == "-" {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	p := newPrinter(cmd.ErrOrStderr())
	prog.done("Rendered " + format)
	p.stats(enc.Graph().NodeCount(), enc.Graph().EdgeCount(), cached)
	p.file(output)
	return nil
}

// resolveFormat picks the output format from the flag, then the output
// file's extension, then SVG.
func resolveFormat(flag, output string) (string, error) {
	format := strings.ToLower(flag)
	if format == "" && output != "" && output != "-" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
	}
	if format == "" {
		return pipeline.FormatSVG, nil
	}
	if format == formatGEXF {
		return format, nil
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return "", err
	}
	return format, nil
}
