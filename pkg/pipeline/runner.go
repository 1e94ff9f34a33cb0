package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vidtree/pkg/cache"
	"github.com/matzehuels/vidtree/pkg/catalog"
	"github.com/matzehuels/vidtree/pkg/errors"
	"github.com/matzehuels/vidtree/pkg/layout"
	"github.com/matzehuels/vidtree/pkg/observability"
	"github.com/matzehuels/vidtree/pkg/treemap"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the API and the browser use this to share caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the default layout and artifact TTLs when positive.
	TTL time.Duration
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

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	cat, err := Load(ctx, opts.Catalog)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Catalog = cat
	result.Stats.Videos = len(cat.Videos)
	result.Stats.LoadTime = time.Since(loadStart)

	r.Logger.Info("loaded catalog",
		"videos", len(cat.Videos),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, key, layoutHit, err := r.generate(ctx, cat.Filter(opts.Folder).Items(), opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.LayoutKey = key
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"blocks", len(l.Blocks),
		"groups", len(l.Groups),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Generate lays out a catalogue (restricted to opts.Folder) with caching and
// reports whether the layout came from the cache.
func (r *Runner) Generate(ctx context.Context, cat *catalog.Catalog, opts Options) (layout.Layout, bool, error) {
	if cat == nil {
		return layout.Layout{}, false, errors.New(errors.ErrCodeInvalidInput, "catalog is required")
	}
	l, _, hit, err := r.generate(ctx, cat.Filter(opts.Folder).Items(), opts)
	return l, hit, err
}

// LayoutItems lays out a raw item list with caching and reports whether the
// layout came from the cache.
func (r *Runner) LayoutItems(ctx context.Context, items []treemap.Item, opts Options) (layout.Layout, bool, error) {
	l, _, hit, err := r.generate(ctx, items, opts)
	return l, hit, err
}

// generate is the cached layout stage. Refresh skips the cache read but
// still stores the recomputed layout.
func (r *Runner) generate(ctx context.Context, items []treemap.Item, opts Options) (layout.Layout, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Layout{}, "", false, err
	}

	cacheKey := r.Keyer.LayoutKey(cache.ItemsHash(items), opts.LayoutKeyOpts())
	cacheHooks := observability.Cache()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		switch {
		case err != nil:
			cacheHooks.OnCacheError(ctx, keyTypeLayout, "get", err)
			opts.Logger.Debug("layout cache read failed", "key", cacheKey, "error", err)
		case hit:
			if cached, err := layout.UnmarshalLayout(data); err == nil {
				cacheHooks.OnCacheHit(ctx, keyTypeLayout)
				return cached, cacheKey, true, nil
			}
			// Undecodable entries are recomputed and overwritten
			opts.Logger.Debug("discarding undecodable layout", "key", cacheKey)
		}
		cacheHooks.OnCacheMiss(ctx, keyTypeLayout)
	}

	// Compute layout
	hooks := observability.Pipeline()
	kind := opts.kind()
	hooks.OnLayoutStart(ctx, kind, len(items))
	start := time.Now()
	l, err := Compute(items, opts)
	hooks.OnLayoutComplete(ctx, kind, len(l.Blocks), time.Since(start), err)
	if err != nil {
		return layout.Layout{}, "", false, err
	}
	opts.Logger.Debug("computed treemap",
		"layout", opts.describe(),
		"items", len(items),
		"visible", l.Stats.Visible,
		"worst_aspect", l.Stats.WorstAspect)

	// Cache the result
	if data, err := layout.MarshalLayout(l); err == nil {
		r.store(ctx, keyTypeLayout, cacheKey, data, r.ttl(cache.LayoutTTL), opts.Logger)
	}

	return l, cacheKey, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Compute cache key from layout data
	layoutData, err := layout.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)
	cacheHooks := observability.Cache()

	// Try to get all formats from cache
	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil {
				cacheHooks.OnCacheError(ctx, keyTypeArtifact, "get", err)
			}
			if err != nil || !hit {
				cacheHooks.OnCacheMiss(ctx, keyTypeArtifact)
				break
			}
			cacheHooks.OnCacheHit(ctx, keyTypeArtifact)
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil // All artifacts from cache
		}
	}

	// Render all formats
	rendered, err := Render(ctx, l, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.store(ctx, keyTypeArtifact, cacheKey, data, r.ttl(cache.ArtifactTTL), opts.Logger)
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// store writes a cache entry. Cache write failures never fail the pipeline.
func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration, logger *log.Logger) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		observability.Cache().OnCacheError(ctx, keyType, "set", err)
		logger.Debug("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
