// Package pipeline provides the ingestion and snapshot pipeline shared by the
// CLI and the API server.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Ingest: validate the upload, parse it (JSON or GEXF), assign edge IDs,
//     resolve curvature and store the result as a document
//  2. Render: evaluate an encoded frame into a static artifact (SVG, DOT,
//     PNG, PDF or snapshot JSON)
//
// Both stages are cached by content hash. Parsing the same bytes twice hits
// the graph cache; rendering the same frame twice hits the snapshot cache.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, store, logger)
//	res, err := runner.Ingest(ctx, "network.gexf", data)
//	if err != nil {
//	    return err
//	}
//	enc, err := encode.Build(res.Graph, encode.Suggest(res.Graph.Schema()))
//	svg, err := runner.Render(ctx, enc.Frame(highlight.State{}), res.Hash, pipeline.RenderOptions{})
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/linkscope/pkg/graph"
	"github.com/matzehuels/linkscope/pkg/render/nodelink"
	"github.com/matzehuels/linkscope/pkg/storage"
)

// =============================================================================
// Formats
// =============================================================================

// Output formats for rendered snapshots.
const (
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatDOT:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ContentTypes maps output formats to HTTP content types.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatDOT:  "text/vnd.graphviz",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, dot, png, pdf, json)", format)
	}
	return nil
}

// =============================================================================
// Options
// =============================================================================

// DefaultPNGScale is the rasterization scale for PNG output.
const DefaultPNGScale = 2.0

// RenderOptions configures snapshot rendering.
type RenderOptions struct {
	Format   string          `json:"format,omitempty"`
	Engine   nodelink.Engine `json:"engine,omitempty"`
	Detailed bool            `json:"detailed,omitempty"`
	Scale    float64         `json:"scale,omitempty"`

	// Refresh bypasses the snapshot cache.
	Refresh bool `json:"refresh,omitempty"`
}

// ValidateAndSetDefaults fills empty fields and validates the rest.
func (o *RenderOptions) ValidateAndSetDefaults() error {
	if o.Format == "" {
		o.Format = FormatSVG
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	engine, err := nodelink.ParseEngine(string(o.Engine))
	if err != nil {
		return err
	}
	o.Engine = engine
	if o.Scale <= 0 {
		o.Scale = DefaultPNGScale
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of an ingestion.
type Result struct {
	// Graph is the prepared graph: unique edge IDs, resolved curvature.
	Graph *graph.Graph

	// Document is the stored document, nil when the runner has no store.
	Document *storage.Document

	// Hash is the content hash of the uploaded bytes.
	Hash string

	// Format is the detected input format.
	Format string

	Stats     Stats
	CacheInfo CacheInfo
}

// GraphID returns the stored document ID, or "" without a store.
func (r *Result) GraphID() string {
	if r.Document == nil {
		return ""
	}
	return r.Document.ID
}

// Stats contains ingestion statistics.
type Stats struct {
	NodeCount int
	EdgeCount int
	ParseTime time.Duration
}

// CacheInfo tracks which stages were served from cache or storage.
type CacheInfo struct {
	ParseHit bool // parsed graph came from the cache
	Deduped  bool // an earlier document with the same content was reused
}
