package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tablescape/pkg/cache"
	"github.com/matzehuels/tablescape/pkg/graph"
	"github.com/matzehuels/tablescape/pkg/layout"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL applies to every cache entry the runner writes. Zero never expires.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), KeySchema)
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
	if err := opts.setDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	d, err := Load(ctx, opts.Source)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = len(d.Nodes)
	result.Stats.EdgeCount = len(d.Edges)

	logger.Info("loaded diagram",
		"tables", len(d.Nodes),
		"relationships", len(d.Edges),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	res, hash, layoutHit, err := r.LayoutWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.DiagramHash = hash
	result.Diagram = res.Diagram()
	result.Diagram.Viewport = d.Viewport
	result.Ranks = res.Ranks
	result.CacheInfo.LayoutHit = layoutHit

	if opts.Groups {
		result.Groups = BuildGroups(res.Nodes, res.Edges, opts.Config.Viewport, logger)
		result.Stats.GroupCount = len(result.Groups)
	}
	result.Stats.LayoutTime = time.Since(layoutStart)

	logger.Info("computed layout",
		"algorithm", opts.Config.Layout.Algorithm,
		"groups", result.Stats.GroupCount,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, res, result.Groups, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo computes a layout with caching. It also returns the
// diagram's content hash and whether the layout came from cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, d graph.Diagram, opts Options) (layout.Result, string, bool, error) {
	if err := opts.Config.Validate(); err != nil {
		return layout.Result{}, "", false, err
	}
	logger := r.logger(opts)

	data, err := graph.MarshalDiagram(graph.Diagram{Nodes: d.Nodes, Edges: d.Edges})
	if err != nil {
		return layout.Result{}, "", false, fmt.Errorf("serialize diagram for cache key: %w", err)
	}
	hash := cache.Hash(data)
	if opts.KeepPositions {
		return layout.Result{Nodes: graph.CloneNodes(d.Nodes), Edges: graph.CloneEdges(d.Edges)}, hash, false, nil
	}
	cacheKey := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if e, err := UnmarshalExport(data); err == nil {
				return layout.Result{Nodes: e.Nodes, Edges: e.Edges, Ranks: e.Ranks}, hash, true, nil
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			logger.Debug("layout cache read failed", "err", err)
		}
	}

	res, err := ComputeLayout(ctx, d, opts.Config)
	if err != nil {
		return layout.Result{}, "", false, err
	}

	if data, err := MarshalExport(Export{Diagram: res.Diagram(), Ranks: res.Ranks}); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.TTL); err != nil {
			logger.Debug("layout cache write failed", "err", err)
		}
	}

	return res, hash, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache info.
func (r *Runner) Layout(ctx context.Context, d graph.Diagram, opts Options) (layout.Result, error) {
	res, _, _, err := r.LayoutWithCacheInfo(ctx, d, opts)
	return res, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res layout.Result, groups []graph.TableGroup, opts Options) (map[string][]byte, bool, error) {
	if len(opts.Formats) == 0 {
		opts.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}
	logger := r.logger(opts)

	// Compute cache key from the laid-out diagram and its groups
	layoutData, err := MarshalExport(Export{Diagram: res.Diagram(), Groups: groups})
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)))
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil // All artifacts from cache
		}
	}

	rendered, err := Render(ctx, res, groups, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			logger.Debug("artifact cache write failed", "format", format, "err", err)
		}
	}

	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
