package encode

import (
	"math"

	"github.com/matzehuels/linkscope/pkg/errors"
	"github.com/matzehuels/linkscope/pkg/graph"
)

// Bounds is an output interval for a scaled visual channel.
type Bounds struct {
	Min float64 `json:"min" toml:"min" yaml:"min"`
	Max float64 `json:"max" toml:"max" yaml:"max"`
}

// Config selects which attributes drive which visual channels.
// An empty attribute key turns the channel off: colors fall back to the
// neutral default and sizes to the lower bound.
type Config struct {
	NodeColorBy string `json:"node_color_by,omitempty" toml:"node_color_by" yaml:"node_color_by"`
	EdgeColorBy string `json:"edge_color_by,omitempty" toml:"edge_color_by" yaml:"edge_color_by"`
	NodeSizeBy  string `json:"node_size_by,omitempty" toml:"node_size_by" yaml:"node_size_by"`
	EdgeWidthBy string `json:"edge_width_by,omitempty" toml:"edge_width_by" yaml:"edge_width_by"`
	LabelBy     string `json:"label_by,omitempty" toml:"label_by" yaml:"label_by"`

	// LabelDensity is the fraction of elements labeled when no deliberate
	// highlight is active. 0 labels nothing, 1 labels everything.
	LabelDensity float64 `json:"label_density" toml:"label_density" yaml:"label_density"`

	NodeSize  Bounds `json:"node_size" toml:"node_size" yaml:"node_size"`
	EdgeWidth Bounds `json:"edge_width" toml:"edge_width" yaml:"edge_width"`

	// Dimensions is 2 or 3. The zoom threshold only applies in 2-D.
	Dimensions   int     `json:"dimensions" toml:"dimensions" yaml:"dimensions"`
	Zoom         float64 `json:"zoom" toml:"zoom" yaml:"zoom"`
	MinLabelZoom float64 `json:"min_label_zoom" toml:"min_label_zoom" yaml:"min_label_zoom"`
}

// Conventional attribute names picked up by [Suggest].
const (
	ConventionalNodeColor = "division"
	ConventionalEdgeColor = "color"
)

// DefaultConfig returns a configuration with every attribute channel off.
func DefaultConfig() Config {
	return Config{
		LabelDensity: 0.5,
		NodeSize:     Bounds{Min: 4, Max: 12},
		EdgeWidth:    Bounds{Min: 1, Max: 4},
		Dimensions:   3,
		Zoom:         1,
		MinLabelZoom: 1.5,
	}
}

// Suggest returns DefaultConfig with conventional attribute names filled in
// when the schema has them: "division" colors nodes, "color" colors edges,
// and the first default label key present labels nodes.
func Suggest(s graph.Schema) Config {
	cfg := DefaultConfig()
	if s.HasNode(ConventionalNodeColor) {
		cfg.NodeColorBy = ConventionalNodeColor
	}
	if s.HasEdge(ConventionalEdgeColor) {
		cfg.EdgeColorBy = ConventionalEdgeColor
	}
	for _, k := range graph.DefaultLabelKeys {
		if s.HasNode(k) {
			cfg.LabelBy = k
			break
		}
	}
	return cfg
}

// Validate checks the configuration against the attributes the graph
// actually carries. Unknown attribute keys are INVALID_ATTRIBUTE errors;
// out-of-range numeric settings are INVALID_CONFIG errors.
func (c Config) Validate(s graph.Schema) error {
	nodeKeys := []struct{ channel, key string }{
		{"node color", c.NodeColorBy},
		{"node size", c.NodeSizeBy},
		{"label", c.LabelBy},
	}
	for _, k := range nodeKeys {
		if err := checkKey(k.channel, k.key, s.HasNode); err != nil {
			return err
		}
	}
	edgeKeys := []struct{ channel, key string }{
		{"edge color", c.EdgeColorBy},
		{"edge width", c.EdgeWidthBy},
	}
	for _, k := range edgeKeys {
		if err := checkKey(k.channel, k.key, s.HasEdge); err != nil {
			return err
		}
	}

	if c.LabelDensity < 0 || c.LabelDensity > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "label density must be in [0, 1], got %g", c.LabelDensity)
	}
	if err := checkBounds("node size", c.NodeSize); err != nil {
		return err
	}
	if err := checkBounds("edge width", c.EdgeWidth); err != nil {
		return err
	}
	if c.Dimensions != 2 && c.Dimensions != 3 {
		return errors.New(errors.ErrCodeInvalidConfig, "dimensions must be 2 or 3, got %d", c.Dimensions)
	}
	if c.Zoom <= 0 || math.IsNaN(c.Zoom) || math.IsInf(c.Zoom, 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "zoom must be positive, got %g", c.Zoom)
	}
	return nil
}

func checkKey(channel, key string, has func(string) bool) error {
	if key == "" {
		return nil
	}
	if err := errors.ValidateAttributeKey(key); err != nil {
		return err
	}
	if !has(key) {
		return errors.New(errors.ErrCodeInvalidAttribute, "%s attribute %q not found in graph", channel, key)
	}
	return nil
}

func checkBounds(channel string, b Bounds) error {
	if b.Min < 0 || b.Max < b.Min {
		return errors.New(errors.ErrCodeInvalidConfig, "%s bounds must satisfy 0 <= min <= max, got [%g, %g]", channel, b.Min, b.Max)
	}
	return nil
}
