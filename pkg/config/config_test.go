package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/matzehuels/tablescape/pkg/errors"
	"github.com/matzehuels/tablescape/pkg/layout"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, path, err := Load(Options{Dir: t.TempDir(), Environ: []string{}})
	if err != nil {
		t.Fatal(err)
	}
	if path != "" {
		t.Errorf("path = %q, want none", path)
	}
	want := Default()
	if cfg.Layout != want.Layout || cfg.Force != want.Force || cfg.Viewport != want.Viewport {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
	if cfg.Cache.TTL != want.Cache.TTL || cfg.Cache.Backend != CacheFile {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tablescape.toml", `
[layout]
direction = "LR"
node_spacing = 80

[viewport]
max_nodes_in_view = 50
lazy_rendering = false

[cache]
ttl = "1h"
`)

	cfg, path, err := Load(Options{Dir: dir, Environ: []string{}})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "tablescape.toml" {
		t.Errorf("path = %q", path)
	}
	if cfg.Layout.Direction != "LR" || cfg.Layout.NodeSpacing != 80 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Layout.RankSpacing != 150 {
		t.Errorf("unset rank spacing = %v, want default", cfg.Layout.RankSpacing)
	}
	if cfg.Viewport.MaxNodesInView != 50 || cfg.Viewport.EnableLazyRendering {
		t.Errorf("viewport = %+v", cfg.Viewport)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("ttl = %v", cfg.Cache.TTL)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "custom.yaml", `
layout:
  algorithm: grouped
  group_by: schema
force:
  width: 1600
`)

	cfg, _, err := Load(Options{Path: p, Environ: []string{}})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Layout.Algorithm != AlgorithmGrouped || cfg.GroupBy() != layout.GroupBySchema {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Force.Width != 1600 || cfg.Force.Height != 800 {
		t.Errorf("force = %+v", cfg.Force)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tablescape.toml", `
[layout]
direction = "LR"
node_spacing = 80
rank_spacing = 90
`)
	environ := []string{
		"TABLESCAPE_LAYOUT__DIRECTION=BT",
		"TABLESCAPE_LAYOUT__NODE_SPACING=60",
		"TABLESCAPE_VIEWPORT__MAX_NODES_IN_VIEW=25",
		"OTHER_VAR=ignored",
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("direction", "TB", "")
	fs.Float64("node-spacing", 100, "")
	fs.Bool("no-cache", false, "")
	fs.Bool("no-lazy", false, "")
	fs.String("output", "", "")
	if err := fs.Parse([]string{"--direction=RL", "--no-cache", "--output=x.json"}); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := Load(Options{Dir: dir, Environ: environ, Flags: fs})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"flag beats env", cfg.Layout.Direction, "RL"},
		{"env beats file", cfg.Layout.NodeSpacing, 60.0},
		{"file beats default", cfg.Layout.RankSpacing, 90.0},
		{"env only", cfg.Viewport.MaxNodesInView, 25},
		{"negative flag", cfg.Cache.Backend, CacheNone},
		{"unchanged negative flag", cfg.Viewport.EnableLazyRendering, true},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	ini := writeFile(t, dir, "tablescape.ini", "x=1")
	bad := writeFile(t, dir, "bad.toml", "[layout\n")
	badDir := writeFile(t, dir, "dir.toml", "[layout]\ndirection = \"diagonal\"\n")

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing file", Options{Path: filepath.Join(dir, "nope.toml")}, errors.ErrCodeFileNotFound},
		{"missing yaml", Options{Path: filepath.Join(dir, "nope.yaml")}, errors.ErrCodeFileNotFound},
		{"unsupported extension", Options{Path: ini}, errors.ErrCodeInvalidConfig},
		{"malformed toml", Options{Path: bad}, errors.ErrCodeInvalidConfig},
		{"invalid direction", Options{Path: badDir}, errors.ErrCodeInvalidConfig},
		{"invalid env", Options{Dir: dir, Environ: []string{"TABLESCAPE_CACHE__BACKEND=s3"}}, errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.opts.Environ == nil {
				tt.opts.Environ = []string{}
			}
			_, _, err := Load(tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"algorithm", func(c *Config) { c.Layout.Algorithm = "spring" }},
		{"group by", func(c *Config) { c.Layout.GroupBy = "owner" }},
		{"spacing", func(c *Config) { c.Layout.NodeSpacing = -1 }},
		{"passes", func(c *Config) { c.Layout.OrderingPasses = -1 }},
		{"canvas", func(c *Config) { c.Force.Width = 0 }},
		{"steps", func(c *Config) { c.Force.Steps = -1 }},
		{"max nodes", func(c *Config) { c.Viewport.MaxNodesInView = -5 }},
		{"buffer", func(c *Config) { c.Viewport.ViewportBuffer = -1 }},
		{"redis addr", func(c *Config) { c.Cache.Backend = CacheRedis; c.Cache.Redis.Addr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLayoutOptions(t *testing.T) {
	cfg := Default()
	cfg.Layout.Direction = "rl"
	cfg.Layout.AlignNodes = true
	cfg.Layout.OrderingPasses = 4

	opts := cfg.LayoutOptions()
	if opts.Direction != layout.RightLeft || !opts.AlignNodes {
		t.Errorf("LayoutOptions() = %+v", opts)
	}
	if b, ok := opts.Orderer.(layout.Barycentric); !ok || b.Passes != 4 {
		t.Errorf("Orderer = %#v", opts.Orderer)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	if got := Discover(dir); got != "" {
		t.Errorf("Discover(empty) = %q", got)
	}
	writeFile(t, dir, "tablescape.yml", "verbose: true\n")
	writeFile(t, dir, "tablescape.toml", "verbose = true\n")
	if got := Discover(dir); filepath.Base(got) != "tablescape.toml" {
		t.Errorf("Discover() = %q, want the toml file first", got)
	}
}

func TestEnvKey(t *testing.T) {
	if got := envKey(EnvPrefix, "TABLESCAPE_VIEWPORT__MAX_NODES_IN_VIEW"); got != "viewport.max_nodes_in_view" {
		t.Errorf("envKey() = %q", got)
	}
}
