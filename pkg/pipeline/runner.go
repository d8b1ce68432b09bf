package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lifeline/pkg/cache"
	"github.com/matzehuels/lifeline/pkg/diagram"
	"github.com/matzehuels/lifeline/pkg/observability"
	"github.com/matzehuels/lifeline/pkg/sequence"
	"github.com/matzehuels/lifeline/pkg/sequence/layout"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; multiple
// goroutines can share one Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
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
		Logger: logger,
	}
}

// Execute runs the complete parse → layout → render pipeline with caching.
// source names the input in logs and hooks.
func (r *Runner) Execute(ctx context.Context, source string, data []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Parse
	parseStart := time.Now()
	d, err := r.Parse(ctx, source, data)
	if err != nil {
		return nil, err
	}
	result.Diagram = d
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.ActorCount = len(d.ActorOrder())
	result.Stats.EventCount = len(d.Events)

	opts.Logger.Info("parsed document",
		"source", source,
		"actors", result.Stats.ActorCount,
		"events", result.Stats.EventCount,
		"duration", result.Stats.ParseTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, hash, layoutHit, err := r.layoutWithHash(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.DocumentHash = hash
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"width", l.Extent.Width,
		"height", l.Extent.Height,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, d, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Parse validates and converts a JSON document, reporting to the pipeline
// hooks.
func (r *Runner) Parse(ctx context.Context, source string, data []byte) (*sequence.Diagram, error) {
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, source)
	start := time.Now()

	d, err := ParseDocument(data)
	n := 0
	if d != nil {
		n = len(d.Events)
	}
	hooks.OnParseComplete(ctx, source, n, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ComputeLayoutWithCacheInfo computes the layout of d, reusing a cached
// layout for the same document and config.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, d *sequence.Diagram, opts Options) (layout.Layout, bool, error) {
	l, _, hit, err := r.layoutWithHash(ctx, d, opts)
	return l, hit, err
}

// ComputeLayout is ComputeLayoutWithCacheInfo without the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, d *sequence.Diagram, opts Options) (layout.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, d, opts)
	return l, err
}

func (r *Runner) layoutWithHash(ctx context.Context, d *sequence.Diagram, opts Options) (layout.Layout, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Layout{}, "", false, err
	}

	docHash, err := DocumentHash(d)
	if err != nil {
		return layout.Layout{}, "", false, err
	}
	keyOpts, err := opts.LayoutKeyOpts()
	if err != nil {
		return layout.Layout{}, "", false, err
	}
	cacheKey := r.Keyer.LayoutKey(docHash, keyOpts)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := diagram.UnmarshalLayout(data); err == nil {
				return cached, docHash, true, nil
			}
			opts.Logger.Debug("discarding unreadable cached layout", "key", cacheKey)
		}
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(d.ActorOrder()), len(d.Events))
	start := time.Now()
	l, err := GenerateLayout(d, opts)
	hooks.OnLayoutComplete(ctx, time.Since(start), err)
	if err != nil {
		return layout.Layout{}, docHash, false, err
	}

	if data, err := diagram.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			opts.Logger.Warn("cache write failed", "key", cacheKey, "err", err)
		}
	}
	return l, docHash, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info. d is only needed for the overview formats.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l layout.Layout, d *sequence.Diagram, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := diagram.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := RenderFromLayout(ctx, l, d, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("cache write failed", "key", key, "err", err)
		}
	}
	return rendered, false, nil
}

// Render is RenderWithCacheInfo without the cache hit info.
func (r *Runner) Render(ctx context.Context, l layout.Layout, d *sequence.Diagram, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, d, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
