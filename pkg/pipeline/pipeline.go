// Package pipeline provides the load → layout → render pipeline for
// tablescape.
//
// The CLI and tests share this package so every entry point lays out and
// exports diagrams the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read a diagram JSON file (or stdin) and validate it
//  2. Layout: compute positions with the configured algorithm, then cluster
//     the result into table groups
//  3. Render: export the laid-out diagram as DOT, SVG, PNG, PDF or JSON
//
// Layouts and artifacts are cached by content hash.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Config:  cfg,
//	    Source:  "schema.json",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tablescape/pkg/cache"
	"github.com/matzehuels/tablescape/pkg/config"
	"github.com/matzehuels/tablescape/pkg/errors"
	"github.com/matzehuels/tablescape/pkg/graph"
	"github.com/matzehuels/tablescape/pkg/render"
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// StdinSource makes Load read from standard input.
const StdinSource = "-"

// KeySchema prefixes every cache key. Bump it when the cached export format
// changes so stale entries are never decoded.
const KeySchema = "v1:"

// DefaultPNGScale doubles the resolution of PNG exports.
const DefaultPNGScale = 2.0

// Options contains all configuration for a pipeline run.
type Options struct {
	// Config carries layout, viewport and cache settings.
	Config config.Config

	// Source is a diagram file path or StdinSource.
	Source string

	// Formats lists the exports to produce. Empty means svg.
	Formats []string

	// Groups clusters the laid-out tables and colours the exports by group.
	Groups bool

	// Detailed lists columns in rendered tables.
	Detailed bool

	// KeepPositions skips the layout stage and uses the stored positions,
	// for diagrams that were laid out before.
	KeepPositions bool

	// Refresh bypasses cached layouts and artifacts.
	Refresh bool

	Logger *log.Logger
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Diagram is the laid-out diagram.
	Diagram graph.Diagram

	// Ranks maps table IDs to rank indices. Nil for force layouts.
	Ranks map[string]int

	// Groups holds the table groups when Options.Groups is set.
	Groups []graph.TableGroup

	// DiagramHash is the content hash of the input diagram.
	DiagramHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	GroupCount int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormats checks that every format is supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateFormat(f, render.Formats...); err != nil {
			return err
		}
	}
	return nil
}

// setDefaults validates the options and fills in defaults.
func (o *Options) setDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}
	return nil
}

// LayoutKeyOpts returns cache key options for layout computation.
// Options that the selected algorithm ignores are left out so they do not
// split the cache.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	l := o.Config.Layout
	k := cache.LayoutKeyOpts{Algorithm: l.Algorithm}
	switch l.Algorithm {
	case config.AlgorithmForce:
		k.Width = o.Config.Force.Width
		k.Height = o.Config.Force.Height
		k.Steps = o.Config.Force.Steps
		k.Tolerance = o.Config.Force.Tolerance
	case config.AlgorithmGrouped:
		k.GroupBy = l.GroupBy
	default:
		k.Direction = l.Direction
		k.NodeSpacing = l.NodeSpacing
		k.RankSpacing = l.RankSpacing
		k.Align = l.AlignNodes
		k.Minimize = l.MinimizeCrossings
		k.Passes = l.OrderingPasses
	}
	return k
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Groups: o.Groups, Detailed: o.Detailed}
}
