// Package config loads tablescape settings.
//
// Sources are merged with koanf in increasing precedence:
//
//  1. built-in defaults ([Default])
//  2. a config file: tablescape.toml (decoded with BurntSushi/toml) or
//     tablescape.yaml / .yml
//  3. TABLESCAPE_ environment variables; a double underscore separates
//     sections, so TABLESCAPE_VIEWPORT__MAX_NODES_IN_VIEW sets
//     viewport.max_nodes_in_view
//  4. command line flags that were explicitly set
package config

import (
	"strings"
	"time"

	"github.com/matzehuels/tablescape/pkg/cache"
	"github.com/matzehuels/tablescape/pkg/errors"
	"github.com/matzehuels/tablescape/pkg/layout"
	"github.com/matzehuels/tablescape/pkg/viewport"
)

// Layout algorithms selectable by name.
const (
	AlgorithmAuto    = "auto"
	AlgorithmForce   = "force"
	AlgorithmGrouped = "grouped"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the complete tablescape configuration.
type Config struct {
	Verbose  bool            `koanf:"verbose"`
	Layout   LayoutConfig    `koanf:"layout"`
	Force    ForceConfig     `koanf:"force"`
	Viewport viewport.Config `koanf:"viewport"`
	Cache    CacheConfig     `koanf:"cache"`
}

// LayoutConfig selects and tunes the layout algorithm.
type LayoutConfig struct {
	Algorithm         string  `koanf:"algorithm"`
	Direction         string  `koanf:"direction"`
	NodeSpacing       float64 `koanf:"node_spacing"`
	RankSpacing       float64 `koanf:"rank_spacing"`
	AlignNodes        bool    `koanf:"align_nodes"`
	MinimizeCrossings bool    `koanf:"minimize_crossings"`
	GroupBy           string  `koanf:"group_by"`
	OrderingPasses    int     `koanf:"ordering_passes"`
}

// ForceConfig sizes the force simulation canvas and bounds its run.
type ForceConfig struct {
	Width     float64 `koanf:"width"`
	Height    float64 `koanf:"height"`
	Steps     int     `koanf:"steps"`
	Tolerance float64 `koanf:"tolerance"`
}

// CacheConfig selects where layout results are cached.
type CacheConfig struct {
	Backend string            `koanf:"backend"`
	Dir     string            `koanf:"dir"`
	TTL     time.Duration     `koanf:"ttl"`
	Redis   cache.RedisConfig `koanf:"redis"`
}

// Default returns the built-in configuration.
func Default() Config {
	opts := layout.DefaultOptions()
	return Config{
		Layout: LayoutConfig{
			Algorithm:         AlgorithmAuto,
			Direction:         string(opts.Direction),
			NodeSpacing:       opts.NodeSpacing,
			RankSpacing:       opts.RankSpacing,
			AlignNodes:        opts.AlignNodes,
			MinimizeCrossings: opts.MinimizeEdgeCrossings,
			GroupBy:           string(layout.GroupByRelationship),
			OrderingPasses:    layout.DefaultPasses,
		},
		Force: ForceConfig{
			Width:     1200,
			Height:    800,
			Steps:     300,
			Tolerance: 0.5,
		},
		Viewport: viewport.DefaultConfig(),
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     7 * 24 * time.Hour,
			Redis:   cache.RedisConfig{Addr: "localhost:6379", Prefix: "tablescape:"},
		},
	}
}

// Validate reports the first invalid setting as an INVALID_CONFIG error.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInvalidConfig, format, args...)
	}

	switch c.Layout.Algorithm {
	case AlgorithmAuto, AlgorithmForce, AlgorithmGrouped:
	default:
		return invalid("unknown layout algorithm %q (want auto, force or grouped)", c.Layout.Algorithm)
	}
	if _, err := layout.ParseDirection(c.Layout.Direction); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "layout.direction")
	}
	if _, err := layout.ParseGroupBy(c.Layout.GroupBy); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "layout.group_by")
	}
	if c.Layout.NodeSpacing < 0 || c.Layout.RankSpacing < 0 {
		return invalid("layout spacing must not be negative")
	}
	if c.Layout.OrderingPasses < 0 {
		return invalid("layout.ordering_passes must not be negative")
	}
	if c.Force.Width <= 0 || c.Force.Height <= 0 {
		return invalid("force canvas must have a positive size, got %gx%g", c.Force.Width, c.Force.Height)
	}
	if c.Force.Steps < 0 || c.Force.Tolerance < 0 {
		return invalid("force steps and tolerance must not be negative")
	}
	if c.Viewport.MaxNodesInView < 0 {
		return invalid("viewport.max_nodes_in_view must not be negative")
	}
	if c.Viewport.ViewportBuffer < 0 {
		return invalid("viewport.buffer must not be negative")
	}
	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return invalid("cache.redis.addr is required for the redis backend")
		}
	default:
		return invalid("unknown cache backend %q (want none, file or redis)", c.Cache.Backend)
	}
	return nil
}

// LayoutOptions converts the layout section into AutoLayout options.
// Validate must have succeeded.
func (c Config) LayoutOptions() layout.Options {
	dir, _ := layout.ParseDirection(c.Layout.Direction)
	opts := layout.Options{
		Direction:             dir,
		NodeSpacing:           c.Layout.NodeSpacing,
		RankSpacing:           c.Layout.RankSpacing,
		AlignNodes:            c.Layout.AlignNodes,
		MinimizeEdgeCrossings: c.Layout.MinimizeCrossings,
	}
	if c.Layout.OrderingPasses > 0 {
		opts.Orderer = layout.Barycentric{Passes: c.Layout.OrderingPasses}
	}
	return opts
}

// GroupBy returns the parsed group_by setting. Validate must have succeeded.
func (c Config) GroupBy() layout.GroupBy {
	g, _ := layout.ParseGroupBy(c.Layout.GroupBy)
	return g
}

// envKey maps TABLESCAPE_VIEWPORT__MAX_NODES_IN_VIEW to
// viewport.max_nodes_in_view.
func envKey(prefix, s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, prefix)), "__", ".")
}
