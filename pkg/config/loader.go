package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/matzehuels/tablescape/pkg/errors"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TABLESCAPE_"

// FileNames are the config files Discover looks for, in order.
var FileNames = []string{"tablescape.toml", "tablescape.yaml", "tablescape.yml"}

// flagKeys maps command line flags to config keys. Flags not listed here
// are not configuration.
var flagKeys = map[string]string{
	"verbose":       "verbose",
	"algorithm":     "layout.algorithm",
	"direction":     "layout.direction",
	"node-spacing":  "layout.node_spacing",
	"rank-spacing":  "layout.rank_spacing",
	"align":         "layout.align_nodes",
	"group-by":      "layout.group_by",
	"passes":        "layout.ordering_passes",
	"width":         "force.width",
	"height":        "force.height",
	"steps":         "force.steps",
	"max-nodes":     "viewport.max_nodes_in_view",
	"buffer":        "viewport.buffer",
	"cache-dir":     "cache.dir",
	"cache-backend": "cache.backend",
	"redis-addr":    "cache.redis.addr",
	"no-lazy":       "viewport.lazy_rendering",
	"no-grouping":   "viewport.grouping",
	"no-minimize":   "layout.minimize_crossings",
	"no-cache":      "cache.backend",
	"no-background": "viewport.background_layout",
}

// Options controls Load.
type Options struct {
	// Path is an explicit config file. When empty, Discover is used.
	Path string
	// Dir is searched by Discover. Defaults to the working directory.
	Dir string
	// Flags, when set, override every other source for flags the user
	// changed.
	Flags *pflag.FlagSet
	// Environ replaces os.Environ, mostly for tests.
	Environ []string
}

// Discover returns the first of FileNames present in dir, or "".
func Discover(dir string) string {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load merges defaults, the config file, environment and flags, then
// validates the result. It returns the config and the file used, if any.
func Load(opts Options) (Config, string, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultMap(), "."), nil); err != nil {
		return Config{}, "", errors.Wrap(errors.ErrCodeInternal, err, "load defaults")
	}

	path := opts.Path
	if path == "" {
		dir := opts.Dir
		if dir == "" {
			dir, _ = os.Getwd()
		}
		path = Discover(dir)
	}
	if path != "" {
		if err := loadFile(k, path); err != nil {
			return Config{}, path, err
		}
	}

	if err := loadEnv(k, opts.Environ); err != nil {
		return Config{}, path, err
	}

	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, flagValue(opts.Flags)), nil); err != nil {
			return Config{}, path, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, path, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, path, err
	}
	return cfg, path, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		raw, err := os.ReadFile(path)
		if err != nil {
			return errors.WrapFile(errors.ErrCodeInvalidConfig, err, path)
		}
		var m map[string]any
		if err := toml.Unmarshal(raw, &m); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if err := k.Load(confmap.Provider(m, ""), nil); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %s", path)
		}
	case ".yaml", ".yml":
		if _, err := os.Stat(path); err != nil {
			return errors.WrapFile(errors.ErrCodeInvalidConfig, err, path)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unsupported config file %s (want .toml, .yaml or .yml)", path)
	}
	return nil
}

func loadEnv(k *koanf.Koanf, environ []string) error {
	if environ == nil {
		err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string { return envKey(EnvPrefix, s) }), nil)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "load environment")
		}
		return nil
	}

	m := make(map[string]any)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		m[envKey(EnvPrefix, name)] = value
	}
	if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "load environment")
	}
	return nil
}

// flagValue loads only flags the user changed. Negative flags (--no-lazy
// and friends) switch their setting off.
func flagValue(fs *pflag.FlagSet) func(*pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		key, ok := flagKeys[f.Name]
		if !ok || !f.Changed {
			return "", nil
		}
		if strings.HasPrefix(f.Name, "no-") {
			set, _ := fs.GetBool(f.Name)
			if !set {
				return "", nil
			}
			if f.Name == "no-cache" {
				return key, CacheNone
			}
			return key, false
		}
		return key, posflag.FlagVal(fs, f)
	}
}

// defaultMap flattens Default into koanf keys.
func defaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"verbose":                    d.Verbose,
		"layout.algorithm":           d.Layout.Algorithm,
		"layout.direction":           d.Layout.Direction,
		"layout.node_spacing":        d.Layout.NodeSpacing,
		"layout.rank_spacing":        d.Layout.RankSpacing,
		"layout.align_nodes":         d.Layout.AlignNodes,
		"layout.minimize_crossings":  d.Layout.MinimizeCrossings,
		"layout.group_by":            d.Layout.GroupBy,
		"layout.ordering_passes":     d.Layout.OrderingPasses,
		"force.width":                d.Force.Width,
		"force.height":               d.Force.Height,
		"force.steps":                d.Force.Steps,
		"force.tolerance":            d.Force.Tolerance,
		"viewport.lazy_rendering":    d.Viewport.EnableLazyRendering,
		"viewport.max_nodes_in_view": d.Viewport.MaxNodesInView,
		"viewport.buffer":            d.Viewport.ViewportBuffer,
		"viewport.grouping":          d.Viewport.EnableGrouping,
		"viewport.background_layout": d.Viewport.EnableBackgroundLayout,
		"cache.backend":              d.Cache.Backend,
		"cache.dir":                  d.Cache.Dir,
		"cache.ttl":                  d.Cache.TTL.String(),
		"cache.redis.addr":           d.Cache.Redis.Addr,
		"cache.redis.password":       d.Cache.Redis.Password,
		"cache.redis.db":             d.Cache.Redis.DB,
		"cache.redis.prefix":         d.Cache.Redis.Prefix,
	}
}
