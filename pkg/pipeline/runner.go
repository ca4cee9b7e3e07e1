package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linkscope/pkg/cache"
	"github.com/matzehuels/linkscope/pkg/encode"
	"github.com/matzehuels/linkscope/pkg/errors"
	"github.com/matzehuels/linkscope/pkg/graph"
	"github.com/matzehuels/linkscope/pkg/io"
	"github.com/matzehuels/linkscope/pkg/observability"
	"github.com/matzehuels/linkscope/pkg/render"
	"github.com/matzehuels/linkscope/pkg/render/nodelink"
	"github.com/matzehuels/linkscope/pkg/storage"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for its backends; it doesn't keep results.
// Multiple goroutines can safely share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  storage.Store
	Logger *log.Logger
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If store is nil, ingested graphs are not persisted.
func NewRunner(c cache.Cache, keyer cache.Keyer, store storage.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Store:  store,
		Logger: logger,
	}
}

// =============================================================================
// Ingest
// =============================================================================

// Ingest validates and parses an uploaded file, then stores the prepared
// graph. Uploading identical bytes again reuses the earlier document.
// On any error nothing is stored.
func (r *Runner) Ingest(ctx context.Context, filename string, data []byte) (*Result, error) {
	if err := errors.ValidateUploadFilename(filename); err != nil {
		return nil, err
	}
	format, err := io.DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnParseStart(ctx, string(format), filename)
	g, hit, err := r.ParseWithCacheInfo(ctx, format, data)
	elapsed := time.Since(start)
	if err != nil {
		observability.Pipeline().OnParseComplete(ctx, string(format), filename, 0, 0, elapsed, err)
		r.Logger.Warn("upload rejected", "file", filename, "err", err)
		return nil, err
	}
	observability.Pipeline().OnParseComplete(ctx, string(format), filename, g.NodeCount(), g.EdgeCount(), elapsed, nil)

	res := &Result{
		Graph:  g,
		Hash:   cache.Hash(data),
		Format: string(format),
		Stats: Stats{
			NodeCount: g.NodeCount(),
			EdgeCount: g.EdgeCount(),
			ParseTime: elapsed,
		},
		CacheInfo: CacheInfo{ParseHit: hit},
	}

	if r.Store != nil {
		doc, deduped, err := r.store(ctx, res, filename)
		if err != nil {
			return nil, err
		}
		res.Document = doc
		res.CacheInfo.Deduped = deduped
	}

	r.Logger.Info("ingested graph",
		"file", filename,
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"cached", hit,
		"duration", elapsed)
	return res, nil
}

func (r *Runner) store(ctx context.Context, res *Result, filename string) (*storage.Document, bool, error) {
	existing, err := r.Store.FindByHash(ctx, res.Hash)
	if err != nil {
		return nil, false, err
	}
	if existing != nil && existing.Format == res.Format {
		return existing, true, nil
	}
	doc := storage.NewDocument(res.Graph, filename, res.Format, res.Hash)
	if err := r.Store.Put(ctx, doc); err != nil {
		return nil, false, err
	}
	return doc, false, nil
}

// ParseWithCacheInfo loads data in the given format with caching and
// reports whether the graph came from the cache.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, format io.Format, data []byte) (*graph.Graph, bool, error) {
	key := r.Keyer.GraphKey(cache.Hash(data), string(format))

	if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		if g, err := graph.UnmarshalGraph(cached); err == nil {
			observability.Cache().OnCacheHit(ctx, "graph")
			return g, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "graph")

	g, err := io.Load(data, format)
	if err != nil {
		return nil, false, err
	}

	if encoded, err := graph.MarshalGraph(g); err == nil {
		if err := r.Cache.Set(ctx, key, encoded, cache.GraphTTL); err != nil {
			r.Logger.Debug("graph cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "graph", len(encoded))
		}
	}
	return g, false, nil
}

// Parse is a convenience wrapper that discards the cache hit info.
func (r *Runner) Parse(ctx context.Context, format io.Format, data []byte) (*graph.Graph, error) {
	g, _, err := r.ParseWithCacheInfo(ctx, format, data)
	return g, err
}

// Load returns a stored graph document.
func (r *Runner) Load(ctx context.Context, id string) (*storage.Document, error) {
	if r.Store == nil {
		return nil, errors.New(errors.ErrCodeGraphNotFound, "graph %q not found", id)
	}
	if err := errors.ValidateID(id); err != nil {
		return nil, errors.New(errors.ErrCodeGraphNotFound, "graph %q not found", id)
	}
	return r.Store.Get(ctx, id)
}

// =============================================================================
// Render
// =============================================================================

// snapshotKeyConfig is everything besides the highlight sets that changes
// a rendered artifact.
type snapshotKeyConfig struct {
	Config   encode.Config   `json:"config"`
	Zoom     float64         `json:"zoom"`
	Mode     string          `json:"mode"`
	Engine   nodelink.Engine `json:"engine"`
	Detailed bool            `json:"detailed"`
	Scale    float64         `json:"scale"`
}

// RenderWithCacheInfo renders a frame with caching and reports whether the
// artifact came from the cache. graphHash identifies the frame's graph.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, f encode.Frame, graphHash string, opts RenderOptions) ([]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "%v", err)
	}

	state := f.State()
	key := r.Keyer.SnapshotKey(graphHash, cache.SnapshotKeyOpts{
		Format: opts.Format,
		Config: snapshotKeyConfig{
			Config:   f.Encoder().Config(),
			Zoom:     f.Zoom(),
			Mode:     state.Mode.String(),
			Engine:   opts.Engine,
			Detailed: opts.Detailed,
			Scale:    opts.Scale,
		},
		Nodes: state.Nodes.Sorted(),
		Edges: state.Edges.Sorted(),
	})

	if !opts.Refresh && graphHash != "" {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "snapshot")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "snapshot")
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Format, f.Encoder().Graph().NodeCount())
	data, err := RenderFrame(ctx, f, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Format, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if graphHash != "" {
		if err := r.Cache.Set(ctx, key, data, cache.SnapshotTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "snapshot", len(data))
		}
	}
	r.Logger.Debug("rendered snapshot", "format", opts.Format, "bytes", len(data), "duration", time.Since(start))
	return data, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, f encode.Frame, graphHash string, opts RenderOptions) ([]byte, error) {
	data, _, err := r.RenderWithCacheInfo(ctx, f, graphHash, opts)
	return data, err
}

// RenderFrame renders f without caching. opts must have been validated.
func RenderFrame(ctx context.Context, f encode.Frame, opts RenderOptions) ([]byte, error) {
	switch opts.Format {
	case FormatJSON:
		return json.MarshalIndent(f.Snapshot(), "", "  ")
	case FormatDOT:
		return []byte(nodelink.ToDOT(f, nodelink.Options{Engine: opts.Engine, Detailed: opts.Detailed})), nil
	}

	svg, err := nodelink.Render(ctx, f, nodelink.Options{Engine: opts.Engine, Detailed: opts.Detailed})
	if err != nil {
		return nil, fmt.Errorf("render svg: %w", err)
	}
	switch opts.Format {
	case FormatPNG:
		return render.ToPNG(ctx, svg, opts.Scale)
	case FormatPDF:
		return render.ToPDF(ctx, svg)
	}
	return svg, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	var errs []error
	if r.Cache != nil {
		errs = append(errs, r.Cache.Close())
	}
	if r.Store != nil {
		errs = append(errs, r.Store.Close())
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
