// Package cli implements the tablescape command-line interface.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/tablescape/pkg/buildinfo"
	"github.com/matzehuels/tablescape/pkg/cache"
	"github.com/matzehuels/tablescape/pkg/config"
	"github.com/matzehuels/tablescape/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "tablescape"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before every command runs.
	Config config.Config

	// configPath is the --config flag; configFile is the file actually read.
	configPath string
	configFile string

	out io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output (not logs).
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Tablescape lays out and explores database schema diagrams",
		Long: `Tablescape computes layouts for database schema diagrams (tables and their
relationships), clusters large diagrams into groups, and reports what a
viewport would render.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd.Flags())
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default: ./tablescape.toml or tablescape.yaml if present)")
	pf.BoolP("verbose", "v", false, "enable verbose logging")
	pf.Bool("no-cache", false, "disable caching")
	pf.String("cache-backend", config.CacheFile, "cache backend: none, file, redis")
	pf.String("cache-dir", "", "cache directory (default: user cache dir)")
	pf.String("redis-addr", "", "redis address for the redis cache backend")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.groupsCommand())
	root.AddCommand(c.visibleCommand())
	root.AddCommand(c.simulateCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig merges defaults, config file, environment and flags into
// c.Config.
func (c *CLI) loadConfig(flags *pflag.FlagSet) error {
	cfg, path, err := config.Load(config.Options{Path: c.configPath, Flags: flags})
	if err != nil {
		return err
	}
	c.Config = cfg
	c.configFile = path
	if cfg.Verbose {
		c.SetLogLevel(LogDebug)
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return nil
}

// =============================================================================
// Flags
// =============================================================================

// addLayoutFlags registers the flags that select and tune a layout. Defaults
// are shown for help only; a flag overrides the config only when set.
func addLayoutFlags(fs *pflag.FlagSet) {
	d := config.Default()
	fs.StringP("algorithm", "a", d.Layout.Algorithm, "layout algorithm: auto, force, grouped")
	fs.StringP("direction", "d", d.Layout.Direction, "rank direction for auto layout: TB, BT, LR, RL")
	fs.Float64("node-spacing", d.Layout.NodeSpacing, "gap between tables in a rank")
	fs.Float64("rank-spacing", d.Layout.RankSpacing, "gap between ranks")
	fs.Bool("align", d.Layout.AlignNodes, "pack ranks against the leading edge")
	fs.Bool("no-minimize", false, "keep edge types as given instead of restyling long edges")
	fs.Int("passes", d.Layout.OrderingPasses, "barycentric ordering sweeps")
	fs.String("group-by", d.Layout.GroupBy, "grouped layout partitioning: relationship, schema")
	fs.Float64("width", d.Force.Width, "force layout canvas width")
	fs.Float64("height", d.Force.Height, "force layout canvas height")
	fs.Int("steps", d.Force.Steps, "maximum force simulation steps")
}

// addViewportFlags registers the flags that tune the viewport manager.
func addViewportFlags(fs *pflag.FlagSet) {
	d := config.Default()
	fs.Int("max-nodes", d.Viewport.MaxNodesInView, "maximum tables rendered at once")
	fs.Float64("buffer", d.Viewport.ViewportBuffer, "extra margin around the viewport, in screen units")
	fs.Bool("no-lazy", false, "render every table regardless of the viewport")
	fs.Bool("no-grouping", false, "disable proximity grouping")
	fs.Bool("no-background", false, "process background work in one pass")
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(store, nil, c.Logger)
	r.TTL = c.Config.Cache.TTL
	return r, nil
}

// newCache opens the configured cache backend. An unreachable redis server
// degrades to no caching rather than failing the command.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	cc := c.Config.Cache
	switch cc.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cc.Redis)
		if errors.Is(err, cache.ErrUnavailable) {
			c.Logger.Warn("cache disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		if err != nil {
			return nil, err
		}
		return cache.Instrument(rc), nil
	default:
		dir, err := c.cacheDir()
		if err != nil {
			c.Logger.Debug("cache disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return cache.Instrument(fc), nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, falling back to
// $XDG_CACHE_HOME/tablescape or ~/.cache/tablescape.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// outputPath derives <input base><suffix> when explicit is empty. Reading
// from stdin writes next to the working directory as diagram<suffix>.
func outputPath(input, explicit, suffix string) string {
	if explicit != "" {
		return explicit
	}
	if input == pipeline.StdinSource {
		return "diagram" + suffix
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
