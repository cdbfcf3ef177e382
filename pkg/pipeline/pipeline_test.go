package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tablescape/pkg/cache"
	"github.com/matzehuels/tablescape/pkg/config"
	tserrors "github.com/matzehuels/tablescape/pkg/errors"
	"github.com/matzehuels/tablescape/pkg/graph"
	"github.com/matzehuels/tablescape/pkg/observability"
)

const sampleDiagram = `{
  "nodes": [
    {"id": "users", "position": {"x": 0, "y": 0}, "data": {"name": "users", "columns": [{"name": "id", "primaryKey": true}]}},
    {"id": "orders", "position": {"x": 10, "y": 0}, "data": {"name": "orders"}},
    {"id": "items", "position": {"x": 20, "y": 0}, "data": {"name": "items"}}
  ],
  "edges": [
    {"id": "e1", "source": "users", "target": "orders", "type": "oneToMany"},
    {"id": "e2", "source": "orders", "target": "items"}
  ]
}`

func writeDiagram(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "diagram.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quietRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	return NewRunner(c, nil, log.New(io.Discard))
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		formats []string
		wantErr bool
	}{
		{[]string{"svg"}, false},
		{[]string{"dot", "svg", "png", "pdf", "json"}, false},
		{[]string{"SVG"}, false},
		{nil, false},
		{[]string{"svg", "gif"}, true},
		{[]string{""}, true},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.formats, ","), func(t *testing.T) {
			err := ValidateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
			if err != nil && !tserrors.Is(err, tserrors.ErrCodeInvalidFormat) {
				t.Errorf("error code = %s, want %s", tserrors.GetCode(err), tserrors.ErrCodeInvalidFormat)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	d, err := Load(ctx, writeDiagram(t, sampleDiagram))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(d.Nodes) != 3 || len(d.Edges) != 2 {
		t.Errorf("loaded %d nodes, %d edges", len(d.Nodes), len(d.Edges))
	}

	tests := []struct {
		name   string
		source string
		want   tserrors.Code
	}{
		{"Missing", filepath.Join(t.TempDir(), "nope.json"), tserrors.ErrCodeFileNotFound},
		{"Malformed", writeDiagram(t, "{"), tserrors.ErrCodeInvalidDiagram},
		{"DuplicateID", writeDiagram(t, `{"nodes":[{"id":"a"},{"id":"a"}]}`), tserrors.ErrCodeInvalidDiagram},
		{"EmptyPath", "", tserrors.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(ctx, tt.source)
			if got := tserrors.GetCode(err); got != tt.want {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestLoadStdin(t *testing.T) {
	d, err := load(context.Background(), StdinSource, strings.NewReader(sampleDiagram))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(d.Nodes) != 3 {
		t.Errorf("nodes = %d, want 3", len(d.Nodes))
	}

	_, err = load(context.Background(), StdinSource, strings.NewReader("nope"))
	if !tserrors.Is(err, tserrors.ErrCodeInvalidDiagram) {
		t.Errorf("err = %v, want INVALID_DIAGRAM", err)
	}
}

type recordingPipelineHooks struct {
	observability.NoopPipelineHooks
	loads   []int
	layouts []string
	renders []string
}

func (h *recordingPipelineHooks) OnLoadComplete(_ context.Context, _ string, n int, _ time.Duration, _ error) {
	h.loads = append(h.loads, n)
}

func (h *recordingPipelineHooks) OnLayoutComplete(_ context.Context, algorithm string, _ time.Duration, _ error) {
	h.layouts = append(h.layouts, algorithm)
}

func (h *recordingPipelineHooks) OnRenderComplete(_ context.Context, format string, _ time.Duration, _ error) {
	h.renders = append(h.renders, format)
}

func TestComputeLayout(t *testing.T) {
	d, err := load(context.Background(), StdinSource, strings.NewReader(sampleDiagram))
	if err != nil {
		t.Fatal(err)
	}

	for _, algorithm := range []string{config.AlgorithmAuto, config.AlgorithmForce, config.AlgorithmGrouped} {
		t.Run(algorithm, func(t *testing.T) {
			cfg := config.Default()
			cfg.Layout.Algorithm = algorithm
			res, err := ComputeLayout(context.Background(), d, cfg)
			if err != nil {
				t.Fatalf("ComputeLayout: %v", err)
			}
			if len(res.Nodes) != len(d.Nodes) {
				t.Fatalf("nodes = %d, want %d", len(res.Nodes), len(d.Nodes))
			}
			for i, n := range res.Nodes {
				if n.ID != d.Nodes[i].ID {
					t.Errorf("node %d = %s, want %s", i, n.ID, d.Nodes[i].ID)
				}
			}
		})
	}

	t.Run("AutoRanks", func(t *testing.T) {
		res, err := ComputeLayout(context.Background(), d, config.Default())
		if err != nil {
			t.Fatal(err)
		}
		want := map[string]int{"users": 0, "orders": 1, "items": 2}
		for id, rank := range want {
			if res.Ranks[id] != rank {
				t.Errorf("rank[%s] = %d, want %d", id, res.Ranks[id], rank)
			}
		}
	})

	t.Run("RelationshipEdgeKept", func(t *testing.T) {
		res, err := ComputeLayout(context.Background(), d, config.Default())
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range res.Edges {
			if e.ID == "e1" && e.Type != graph.EdgeTypeOneToMany {
				t.Errorf("edge e1 type = %q, want %q", e.Type, graph.EdgeTypeOneToMany)
			}
		}
	})
}

func TestComputeLayoutForceCancelled(t *testing.T) {
	d, err := load(context.Background(), StdinSource, strings.NewReader(sampleDiagram))
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Layout.Algorithm = config.AlgorithmForce

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ComputeLayout(ctx, d, cfg); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestComputeLayoutHooks(t *testing.T) {
	h := &recordingPipelineHooks{}
	observability.SetPipelineHooks(h)
	defer observability.Reset()

	r := quietRunner(t, nil)
	_, err := r.Execute(context.Background(), Options{
		Config:  config.Default(),
		Source:  writeDiagram(t, sampleDiagram),
		Formats: []string{"dot", "json"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(h.loads) != 1 || h.loads[0] != 3 {
		t.Errorf("loads = %v, want [3]", h.loads)
	}
	if len(h.layouts) != 1 || h.layouts[0] != config.AlgorithmAuto {
		t.Errorf("layouts = %v", h.layouts)
	}
	if strings.Join(h.renders, ",") != "dot,json" {
		t.Errorf("renders = %v", h.renders)
	}
}

func TestLayoutKeyOpts(t *testing.T) {
	a := Options{Config: config.Default()}
	a.Config.Layout.Algorithm = config.AlgorithmForce
	b := a
	b.Config.Layout.Direction = "LR"

	if a.LayoutKeyOpts() != b.LayoutKeyOpts() {
		t.Error("direction should not affect force layout keys")
	}

	b.Config.Force.Steps = 7
	if a.LayoutKeyOpts() == b.LayoutKeyOpts() {
		t.Error("steps should affect force layout keys")
	}

	b = a
	b.Config.Force.Tolerance = a.Config.Force.Tolerance + 1
	if a.LayoutKeyOpts() == b.LayoutKeyOpts() {
		t.Error("tolerance should affect force layout keys")
	}

	c := Options{Config: config.Default()}
	d := c
	d.Config.Layout.Direction = "LR"
	if c.LayoutKeyOpts() == d.LayoutKeyOpts() {
		t.Error("direction should affect auto layout keys")
	}

	d = c
	d.Config.Layout.OrderingPasses = c.Config.Layout.OrderingPasses + 10
	if c.LayoutKeyOpts() == d.LayoutKeyOpts() {
		t.Error("ordering passes should affect auto layout keys")
	}
}

func TestRunnerLayoutCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(t, fc)
	ctx := context.Background()
	d, err := load(ctx, StdinSource, strings.NewReader(sampleDiagram))
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Config: config.Default()}

	first, hash, hit, err := r.LayoutWithCacheInfo(ctx, d, opts)
	if err != nil || hit {
		t.Fatalf("first call: hit=%v err=%v", hit, err)
	}
	if hash == "" {
		t.Error("empty diagram hash")
	}

	second, hash2, hit, err := r.LayoutWithCacheInfo(ctx, d, opts)
	if err != nil || !hit {
		t.Fatalf("second call: hit=%v err=%v", hit, err)
	}
	if hash2 != hash {
		t.Errorf("hash changed: %s != %s", hash2, hash)
	}
	for i := range first.Nodes {
		if first.Nodes[i].Position != second.Nodes[i].Position {
			t.Errorf("node %s: cached %v, computed %v", first.Nodes[i].ID, second.Nodes[i].Position, first.Nodes[i].Position)
		}
	}
	if second.Ranks["items"] != first.Ranks["items"] {
		t.Error("ranks not cached")
	}

	opts.Refresh = true
	if _, _, hit, _ := r.LayoutWithCacheInfo(ctx, d, opts); hit {
		t.Error("Refresh should bypass the cache")
	}

	opts.Refresh = false
	opts.Config.Layout.Direction = "LR"
	if _, _, hit, _ := r.LayoutWithCacheInfo(ctx, d, opts); hit {
		t.Error("a new direction should miss the cache")
	}

	opts.Config.Layout.OrderingPasses++
	if _, _, hit, _ := r.LayoutWithCacheInfo(ctx, d, opts); hit {
		t.Error("new ordering passes should miss the cache")
	}
}

func TestRunnerForceToleranceCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(t, fc)
	ctx := context.Background()
	d, err := load(ctx, StdinSource, strings.NewReader(sampleDiagram))
	if err != nil {
		t.Fatal(err)
	}

	// A huge tolerance stops the simulation after its first step.
	opts := Options{Config: config.Default()}
	opts.Config.Layout.Algorithm = config.AlgorithmForce
	opts.Config.Force.Steps = 300
	opts.Config.Force.Tolerance = 1e9
	early, _, _, err := r.LayoutWithCacheInfo(ctx, d, opts)
	if err != nil {
		t.Fatal(err)
	}

	opts.Config.Force.Tolerance = 0
	settled, _, hit, err := r.LayoutWithCacheInfo(ctx, d, opts)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Fatal("a new tolerance should miss the cache")
	}

	fresh, err := ComputeLayout(ctx, d, opts.Config)
	if err != nil {
		t.Fatal(err)
	}
	for i := range fresh.Nodes {
		if settled.Nodes[i].Position != fresh.Nodes[i].Position {
			t.Errorf("node %s: got %v, want %v", fresh.Nodes[i].ID, settled.Nodes[i].Position, fresh.Nodes[i].Position)
		}
	}
	if len(early.Nodes) != len(settled.Nodes) {
		t.Errorf("node count changed: %d != %d", len(early.Nodes), len(settled.Nodes))
	}
}

func TestRunnerExecute(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(t, fc)
	defer r.Close()

	opts := Options{
		Config:  config.Default(),
		Source:  writeDiagram(t, sampleDiagram),
		Formats: []string{"dot", "json"},
	}

	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.NodeCount != 3 || res.Stats.EdgeCount != 2 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Errorf("first run cache info = %+v", res.CacheInfo)
	}
	if !strings.HasPrefix(string(res.Artifacts["dot"]), "digraph G {") {
		t.Errorf("dot artifact = %q", res.Artifacts["dot"])
	}
	if !strings.Contains(string(res.Artifacts["dot"]), `layout=neato`) {
		t.Error("dot artifact should pin positions")
	}

	exported, err := UnmarshalExport(res.Artifacts["json"])
	if err != nil {
		t.Fatal(err)
	}
	if len(exported.Nodes) != 3 || exported.Ranks["orders"] != 1 {
		t.Errorf("exported = %+v", exported)
	}

	again, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.LayoutHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v", again.CacheInfo)
	}
	if string(again.Artifacts["dot"]) != string(res.Artifacts["dot"]) {
		t.Error("cached dot differs")
	}
}

func TestRunnerExecuteErrors(t *testing.T) {
	r := quietRunner(t, nil)
	ctx := context.Background()

	_, err := r.Execute(ctx, Options{Config: config.Default(), Source: writeDiagram(t, sampleDiagram), Formats: []string{"gif"}})
	if !tserrors.Is(err, tserrors.ErrCodeInvalidFormat) {
		t.Errorf("bad format: %v", err)
	}

	bad := config.Default()
	bad.Layout.Algorithm = "spiral"
	_, err = r.Execute(ctx, Options{Config: bad, Source: writeDiagram(t, sampleDiagram)})
	if !tserrors.Is(err, tserrors.ErrCodeInvalidConfig) {
		t.Errorf("bad config: %v", err)
	}

	_, err = r.Execute(ctx, Options{Config: config.Default(), Source: filepath.Join(t.TempDir(), "missing.json")})
	if !tserrors.Is(err, tserrors.ErrCodeFileNotFound) {
		t.Errorf("missing file: %v", err)
	}
}

func TestExecuteWithGroups(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"nodes":[`)
	for i := 0; i < 24; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"id":"t%d","position":{"x":%d,"y":0}}`, i, i*10)
	}
	b.WriteString(`]}`)

	cfg := config.Default()
	cfg.Layout.Algorithm = config.AlgorithmForce
	cfg.Force.Steps = 0

	r := quietRunner(t, nil)
	res, err := r.Execute(context.Background(), Options{
		Config:  cfg,
		Source:  writeDiagram(t, b.String()),
		Formats: []string{"dot", "json"},
		Groups:  true,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.GroupCount != 1 || len(res.Groups[0].NodeIDs) != 24 {
		t.Fatalf("groups = %+v", res.Groups)
	}
	if !strings.Contains(string(res.Artifacts["dot"]), res.Groups[0].Color) {
		t.Error("group colour missing from dot output")
	}
	exported, err := UnmarshalExport(res.Artifacts["json"])
	if err != nil {
		t.Fatal(err)
	}
	if len(exported.Groups) != 1 {
		t.Errorf("exported groups = %d, want 1", len(exported.Groups))
	}
}

func TestBuildGroupsSmallDiagram(t *testing.T) {
	nodes := make([]graph.Node, 5)
	for i := range nodes {
		nodes[i] = graph.Node{ID: fmt.Sprint(i)}
	}
	if g := BuildGroups(nodes, nil, config.Default().Viewport, nil); g != nil {
		t.Errorf("groups = %v, want nil", g)
	}
}

func TestRunnerKeepPositions(t *testing.T) {
	d, err := load(context.Background(), StdinSource, strings.NewReader(sampleDiagram))
	if err != nil {
		t.Fatal(err)
	}
	res, _, hit, err := quietRunner(t, nil).LayoutWithCacheInfo(context.Background(), d, Options{
		Config:        config.Default(),
		KeepPositions: true,
	})
	if err != nil || hit {
		t.Fatalf("hit=%v err=%v", hit, err)
	}
	for i, n := range res.Nodes {
		if n.Position != d.Nodes[i].Position {
			t.Errorf("%s moved from %v to %v", n.ID, d.Nodes[i].Position, n.Position)
		}
	}
	if res.Ranks != nil {
		t.Errorf("ranks = %v, want nil", res.Ranks)
	}
}

func TestNewRunnerKeySchema(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := Options{Config: config.Default()}
	if key := r.Keyer.LayoutKey("abc", opts.LayoutKeyOpts()); !strings.HasPrefix(key, KeySchema) {
		t.Errorf("LayoutKey = %q, want prefix %q", key, KeySchema)
	}
	if key := r.Keyer.ArtifactKey("abc", opts.ArtifactKeyOpts(FormatSVG)); !strings.HasPrefix(key, KeySchema) {
		t.Errorf("ArtifactKey = %q, want prefix %q", key, KeySchema)
	}
}
