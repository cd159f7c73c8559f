package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/clustermap/pkg/cache"
	"github.com/matzehuels/clustermap/pkg/cluster"
	"github.com/matzehuels/clustermap/pkg/compose"
	"github.com/matzehuels/clustermap/pkg/observability"
	"github.com/matzehuels/clustermap/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
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

// Execute runs compose and render with caching.
func (r *Runner) Execute(ctx context.Context, x mat.Matrix, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	composeStart := time.Now()
	f, info, err := r.ComposeWithCacheInfo(ctx, x, opts)
	if err != nil {
		return nil, err
	}
	result.Figure = f
	result.Stats.Rows, result.Stats.Cols = f.Dims()
	result.Stats.ComposeTime = time.Since(composeStart)
	result.CacheInfo = info

	opts.Logger.Info("composed figure",
		"rows", result.Stats.Rows,
		"cols", result.Stats.Cols,
		"cached_rows", info.RowLinkageHit,
		"cached_cols", info.ColLinkageHit,
		"duration", result.Stats.ComposeTime)

	renderStart := time.Now()
	artifacts, hash, hit, err := r.renderWithCacheInfo(ctx, f, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.FigureHash = hash
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComposeWithCacheInfo composes a figure, reading and writing linkages
// through the cache. Linkers set on opts.Compose bypass the cache.
func (r *Runner) ComposeWithCacheInfo(ctx context.Context, x mat.Matrix, opts Options) (*compose.Figure, CacheInfo, error) {
	r.applyLogger(&opts)
	copts := opts.Compose
	if copts.Logger == nil {
		copts.Logger = opts.Logger
	}

	var rows, cols *cachedLinker
	if copts.RowLinker == nil {
		rows = r.linker(ctx, compose.AxisRows, copts, opts.Refresh)
		copts.RowLinker = rows
	}
	if copts.ColLinker == nil {
		cols = r.linker(ctx, compose.AxisCols, copts, opts.Refresh)
		copts.ColLinker = cols
	}

	f, err := compose.Compose(ctx, x, copts)
	if err != nil {
		return nil, CacheInfo{}, err
	}
	return f, CacheInfo{
		RowLinkageHit: rows != nil && rows.hit,
		ColLinkageHit: cols != nil && cols.hit,
	}, nil
}

// Compose is ComposeWithCacheInfo without the cache hit info.
func (r *Runner) Compose(ctx context.Context, x mat.Matrix, opts Options) (*compose.Figure, error) {
	f, _, err := r.ComposeWithCacheInfo(ctx, x, opts)
	return f, err
}

// RenderWithCacheInfo renders all requested formats, returning them from the
// cache when every format is present for this figure.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, f *compose.Figure, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	artifacts, _, hit, err := r.renderWithCacheInfo(ctx, f, opts)
	return artifacts, hit, err
}

func (r *Runner) renderWithCacheInfo(ctx context.Context, f *compose.Figure, opts Options) (artifacts map[string][]byte, hash string, hit bool, err error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	figureData, err := render.RenderJSON(f, render.WithJSONData(), render.WithJSONLinkage())
	if err != nil {
		return nil, "", false, fmt.Errorf("serialize figure for cache key: %w", err)
	}
	hash = cache.Hash(figureData)

	if !opts.Refresh {
		cached := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
			data, ok := r.get(ctx, key)
			if !ok {
				break
			}
			cached[format] = data
		}
		if len(cached) == len(opts.Formats) {
			return cached, hash, true, nil
		}
	}

	artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(ctx, f, format, opts)
		if err != nil {
			return nil, "", false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		r.set(ctx, r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format)), data, cache.TTLArtifact)
	}
	return artifacts, hash, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) get(ctx context.Context, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		hit = false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, key)
	} else {
		observability.Cache().OnCacheMiss(ctx, key)
	}
	return data, hit
}

func (r *Runner) set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
}

func (r *Runner) linker(ctx context.Context, axis string, opts compose.Options, refresh bool) *cachedLinker {
	return &cachedLinker{
		ctx:     ctx,
		runner:  r,
		axis:    axis,
		inner:   cluster.Agglomerative{Metric: opts.Metric, Method: opts.Method},
		refresh: refresh,
	}
}

// cachedLinker memoizes the built-in clustering by matrix content.
type cachedLinker struct {
	ctx     context.Context
	runner  *Runner
	axis    string
	inner   cluster.Agglomerative
	refresh bool
	hit     bool
}

func (c *cachedLinker) Link(m mat.Matrix) (cluster.Linkage, error) {
	metric, err := cluster.ParseMetric(string(c.inner.Metric))
	if err != nil {
		return nil, err
	}
	method, err := cluster.ParseMethod(string(c.inner.Method))
	if err != nil {
		return nil, err
	}
	c.inner = cluster.Agglomerative{Metric: metric, Method: method}
	key := c.runner.Keyer.LinkageKey(cache.HashMatrix(m), cache.LinkageKeyOpts{
		Axis:   c.axis,
		Metric: string(metric),
		Method: string(method),
	})

	ctx := c.ctx
	n, _ := m.Dims()
	if !c.refresh {
		data, ok := c.runner.get(ctx, key)
		if ok {
			var l cluster.Linkage
			if err := json.Unmarshal(data, &l); err == nil && l.Validate(n) == nil {
				c.hit = true
				return l, nil
			}
			_ = c.runner.Cache.Delete(ctx, key)
		}
	}

	l, err := c.inner.Link(m)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(l); err == nil {
		c.runner.set(ctx, key, data, cache.TTLLinkage)
	}
	return l, nil
}
