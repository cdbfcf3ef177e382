package viewport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tablescape/pkg/graph"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeScheduler struct {
	yields int
	sleeps []time.Duration
}

func (s *fakeScheduler) Yield(ctx context.Context) error {
	s.yields++
	return ctx.Err()
}

func (s *fakeScheduler) Sleep(ctx context.Context, d time.Duration) error {
	s.sleeps = append(s.sleeps, d)
	return ctx.Err()
}

func newTestManager(cfg Config, opts ...Option) *Manager {
	base := []Option{WithLogger(log.New(io.Discard)), WithMemoryProbe(nil)}
	return New(cfg, append(base, opts...)...)
}

func nodesAt(points ...graph.Point) []graph.Node {
	nodes := make([]graph.Node, len(points))
	for i, p := range points {
		nodes[i] = graph.Node{ID: fmt.Sprintf("n%d", i), Position: p}
	}
	return nodes
}

func TestVisibleNodesLazyDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableLazyRendering = false
	m := newTestManager(cfg)

	in := nodesAt(graph.Point{X: 1e6, Y: 1e6}, graph.Point{})
	out := m.VisibleNodes(in, graph.Viewport{Zoom: 1})
	if len(out) != len(in) || &out[0] != &in[0] {
		t.Error("VisibleNodes should return the input slice unchanged")
	}
}

func TestVisibleNodes(t *testing.T) {
	tests := []struct {
		name string
		vp   graph.Viewport
		node graph.Node
		want bool
	}{
		{"Inside", graph.Viewport{Zoom: 1, Width: 1000, Height: 800}, graph.Node{Position: graph.Point{X: 10, Y: 10}}, true},
		{"InBuffer", graph.Viewport{Zoom: 1, Width: 1000, Height: 800}, graph.Node{Position: graph.Point{X: 1150, Y: 0}}, true},
		{"PastBuffer", graph.Viewport{Zoom: 1, Width: 1000, Height: 800}, graph.Node{Position: graph.Point{X: 1300, Y: 0}}, false},
		{"TouchesLeftEdge", graph.Viewport{Zoom: 1, Width: 1000, Height: 800}, graph.Node{Position: graph.Point{X: -400, Y: 0}}, true},
		{"LeftOfBuffer", graph.Viewport{Zoom: 1, Width: 1000, Height: 800}, graph.Node{Position: graph.Point{X: -401, Y: 0}}, false},
		{"ExplicitSize", graph.Viewport{Zoom: 1, Width: 1000, Height: 800}, graph.Node{Position: graph.Point{X: -700, Y: 0}, Width: 500}, true},
		{"BelowBuffer", graph.Viewport{Zoom: 1, Width: 1000, Height: 800}, graph.Node{Position: graph.Point{X: 0, Y: 1001}}, false},
		// zoom 2 panned by -1000: layout x in [400, 1100]
		{"ZoomedInside", graph.Viewport{X: -1000, Zoom: 2, Width: 1000, Height: 800}, graph.Node{Position: graph.Point{X: 1050, Y: 0}}, true},
		{"ZoomedOutside", graph.Viewport{X: -1000, Zoom: 2, Width: 1000, Height: 800}, graph.Node{Position: graph.Point{X: 150, Y: 0}}, false},
		{"DefaultScreen", graph.Viewport{Zoom: 1}, graph.Node{Position: graph.Point{X: 1900, Y: 1000}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(DefaultConfig())
			tt.node.ID = "n"
			got := m.VisibleNodes([]graph.Node{tt.node}, tt.vp)
			if (len(got) == 1) != tt.want {
				t.Errorf("visible = %v, want %v", len(got) == 1, tt.want)
			}
		})
	}
}

func TestVisibleNodesTruncates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxNodesInView = 3
	m := newTestManager(cfg)

	var points []graph.Point
	for i := 0; i < 10; i++ {
		points = append(points, graph.Point{X: float64(i * 10)})
	}
	out := m.VisibleNodes(nodesAt(points...), graph.Viewport{Zoom: 1})

	if got := graph.NodeIDs(out); strings.Join(got, ",") != "n0,n1,n2" {
		t.Errorf("VisibleNodes() = %v, want first three", got)
	}
	if got := m.LastVisible(); len(got) != 3 {
		t.Errorf("LastVisible() = %v", got)
	}
}

func TestCreateTableGroupsPreconditions(t *testing.T) {
	nodes := nodesAt(make([]graph.Point, 19)...)

	m := newTestManager(DefaultConfig())
	if got := m.CreateTableGroups(nodes, nil); len(got) != 0 {
		t.Errorf("19 nodes: got %d groups", len(got))
	}

	cfg := DefaultConfig()
	cfg.EnableGrouping = false
	m = newTestManager(cfg)
	nodes = append(nodes, graph.Node{ID: "extra"})
	if got := m.CreateTableGroups(nodes, nil); len(got) != 0 {
		t.Errorf("grouping disabled: got %d groups", len(got))
	}
}

func TestCreateTableGroups(t *testing.T) {
	var points []graph.Point
	for i := 0; i < 10; i++ {
		points = append(points, graph.Point{X: float64(i * 10), Y: 0})
	}
	for i := 0; i < 10; i++ {
		points = append(points, graph.Point{X: float64(i * 1000), Y: 5000})
	}
	nodes := nodesAt(points...)

	m := newTestManager(DefaultConfig())
	groups := m.CreateTableGroups(nodes, nil)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	g := groups[0]
	if g.ID != "group-0" || g.Name != "Group 1" || g.Color != Palette[0] {
		t.Errorf("first group = %+v", g)
	}
	if len(g.NodeIDs) != 10 || g.Position != (graph.Point{X: 45, Y: 0}) {
		t.Errorf("first group members=%d centroid=%v", len(g.NodeIDs), g.Position)
	}

	other := groups[1]
	if other.ID != OtherGroupID || other.Name != OtherGroupName || other.Color != OtherGroupColor {
		t.Errorf("remainder group = %+v", other)
	}
	if len(other.NodeIDs) != 10 || other.Position != (graph.Point{X: 4500, Y: 5000}) {
		t.Errorf("remainder members=%d centroid=%v", len(other.NodeIDs), other.Position)
	}

	if m.GroupCount() != 2 {
		t.Errorf("GroupCount() = %d", m.GroupCount())
	}
}

func TestCreateTableGroupsSeedDistance(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	var points []graph.Point
	for i := 0; i < 25; i++ {
		points = append(points, graph.Point{X: r.Float64() * 2000, Y: r.Float64() * 2000})
	}
	nodes := nodesAt(points...)
	byID := make(map[string]graph.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	m := newTestManager(DefaultConfig())
	groups := m.CreateTableGroups(nodes, nil)

	seen := make(map[string]int)
	for gi, g := range groups {
		for _, id := range g.NodeIDs {
			seen[id]++
		}
		if g.ID == OtherGroupID {
			continue
		}
		if g.Color != Palette[gi%len(Palette)] {
			t.Errorf("%s color = %s", g.ID, g.Color)
		}
		seed := byID[g.NodeIDs[0]]
		for _, id := range g.NodeIDs[1:] {
			if d := seed.Position.Distance(byID[id].Position); d > ClusterDistance {
				t.Errorf("%s: %s is %.1f from seed %s", g.ID, id, d, seed.ID)
			}
		}
	}
	for _, n := range nodes {
		if seen[n.ID] != 1 {
			t.Errorf("%s appears in %d groups", n.ID, seen[n.ID])
		}
	}
	if len(seen) != len(nodes) {
		t.Errorf("groups cover %d ids, want %d", len(seen), len(nodes))
	}
}

func TestGroupAccessors(t *testing.T) {
	nodes := nodesAt(make([]graph.Point, 20)...)
	m := newTestManager(DefaultConfig())
	m.CreateTableGroups(nodes, nil)

	g, ok := m.Group("group-0")
	if !ok || len(g.NodeIDs) != 20 {
		t.Fatalf("Group(group-0) = %+v, %v", g, ok)
	}

	// returned groups are copies
	g.NodeIDs[0] = "mutated"
	if again, _ := m.Group("group-0"); again.NodeIDs[0] != "n0" {
		t.Error("Group() leaked internal state")
	}

	if collapsed, ok := m.ToggleGroupCollapse("group-0"); !ok || !collapsed {
		t.Errorf("ToggleGroupCollapse() = %v, %v", collapsed, ok)
	}
	if collapsed, _ := m.ToggleGroupCollapse("group-0"); collapsed {
		t.Error("second toggle should expand")
	}
	if _, ok := m.ToggleGroupCollapse("missing"); ok {
		t.Error("toggle of missing group reported ok")
	}

	if !m.UpdateGroup("group-0", func(g *graph.TableGroup) { g.Name = "Core"; g.ID = "renamed" }) {
		t.Fatal("UpdateGroup() = false")
	}
	if g, _ := m.Group("group-0"); g.Name != "Core" {
		t.Errorf("name = %q, want Core", g.Name)
	}

	if !m.DeleteGroup("group-0") || m.DeleteGroup("group-0") {
		t.Error("DeleteGroup should succeed once")
	}
	if len(m.Groups()) != 0 {
		t.Errorf("Groups() = %v", m.Groups())
	}

	m.CreateTableGroups(nodes, nil)
	m.ClearCache()
	if m.GroupCount() != 0 {
		t.Error("ClearCache() kept groups")
	}
}

func TestCreateTableGroupsReplacesCache(t *testing.T) {
	m := newTestManager(DefaultConfig())
	m.CreateTableGroups(nodesAt(make([]graph.Point, 20)...), nil)
	m.ToggleGroupCollapse("group-0")

	var spread []graph.Point
	for i := 0; i < 20; i++ {
		spread = append(spread, graph.Point{X: float64(i) * 1000})
	}
	m.CreateTableGroups(nodesAt(spread...), nil)

	groups := m.Groups()
	if len(groups) != 1 || groups[0].ID != OtherGroupID {
		t.Fatalf("Groups() = %+v, want only the remainder group", groups)
	}
	if _, ok := m.Group("group-0"); ok {
		t.Error("stale group survived a new clustering pass")
	}
}

func TestMetrics(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	mem := 64.0
	m := newTestManager(DefaultConfig(),
		WithClock(clock.Now),
		WithMemoryProbe(func() (float64, bool) { return mem, true }),
	)

	m.StartRenderCycle()
	clock.Advance(10 * time.Millisecond)
	m.EndRenderCycle(150, 40, 35)

	got := m.Metrics()
	if got.LastRenderTime != 10*time.Millisecond {
		t.Errorf("LastRenderTime = %v", got.LastRenderTime)
	}
	if got.FPS != 0 {
		t.Errorf("FPS before a full window = %v", got.FPS)
	}
	if got.TotalNodes != 150 || got.VisibleNodes != 40 || got.RenderedNodes != 35 {
		t.Errorf("counts = %+v", got)
	}
	if got.MemoryUsageMB == nil || *got.MemoryUsageMB != 64 {
		t.Errorf("MemoryUsageMB = %v", got.MemoryUsageMB)
	}

	// 25 more frames fill the rest of the one second window
	for i := 0; i < 25; i++ {
		clock.Advance(39 * time.Millisecond)
		m.StartRenderCycle()
		clock.Advance(time.Millisecond)
		m.EndRenderCycle(150, 40, 35)
	}
	if got := m.Metrics().FPS; got != 26 {
		t.Errorf("FPS = %v, want 26", got)
	}
}

func TestMetricsWithoutMemoryProbe(t *testing.T) {
	m := newTestManager(DefaultConfig())
	m.StartRenderCycle()
	m.EndRenderCycle(1, 1, 1)
	if m.Metrics().MemoryUsageMB != nil {
		t.Error("MemoryUsageMB should be nil without a probe")
	}
}

func TestRecommendations(t *testing.T) {
	mb := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		metrics Metrics
		cfg     func(*Config)
		want    []string
	}{
		{
			name:    "Healthy",
			metrics: Metrics{TotalNodes: 30, FPS: 60, LastRenderTime: 5 * time.Millisecond, MemoryUsageMB: mb(20)},
		},
		{
			name:    "LazyRendering",
			metrics: Metrics{TotalNodes: 150},
			cfg:     func(c *Config) { c.EnableLazyRendering = false },
			want:    []string{"lazy rendering"},
		},
		{
			name:    "Grouping",
			metrics: Metrics{TotalNodes: 60},
			cfg:     func(c *Config) { c.EnableGrouping = false },
			want:    []string{"grouping"},
		},
		{
			name:    "SlowFrames",
			metrics: Metrics{FPS: 12, LastRenderTime: 40 * time.Millisecond},
			want:    []string{"Frame rate", "16ms"},
		},
		{
			name:    "Memory",
			metrics: Metrics{MemoryUsageMB: mb(250)},
			want:    []string{"Memory"},
		},
		{
			name:    "BackgroundLayout",
			metrics: Metrics{TotalNodes: 300},
			cfg:     func(c *Config) { c.EnableBackgroundLayout = false },
			want:    []string{"background layout"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			recs := Recommend(tt.metrics, cfg)
			if len(recs) != len(tt.want) {
				t.Fatalf("Recommend() = %q, want %d entries", recs, len(tt.want))
			}
			for i, w := range tt.want {
				if !strings.Contains(recs[i], w) {
					t.Errorf("recs[%d] = %q, want it to mention %q", i, recs[i], w)
				}
			}
		})
	}
}

func TestRecommendationsAfterLargeRender(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableLazyRendering = false
	m := newTestManager(cfg)

	m.StartRenderCycle()
	m.EndRenderCycle(150, 150, 150)

	found := false
	for _, r := range m.Recommendations() {
		if strings.Contains(strings.ToLower(r), "lazy rendering") {
			found = true
		}
	}
	if !found {
		t.Errorf("Recommendations() = %q, want a lazy rendering suggestion", m.Recommendations())
	}
}

func TestUpdateConfig(t *testing.T) {
	m := newTestManager(DefaultConfig())
	cfg := m.Config()
	cfg.MaxNodesInView = 5
	m.UpdateConfig(cfg)
	if m.Config().MaxNodesInView != 5 {
		t.Errorf("MaxNodesInView = %d", m.Config().MaxNodesInView)
	}
}

func TestGenerations(t *testing.T) {
	m := newTestManager(DefaultConfig())
	if m.IsCurrent("") {
		t.Error("empty generation should never be current")
	}
	g1 := m.BeginGeneration()
	if !m.IsCurrent(g1) {
		t.Error("fresh generation should be current")
	}
	g2 := m.BeginGeneration()
	if g1 == g2 || m.IsCurrent(g1) || !m.IsCurrent(g2) {
		t.Errorf("g1=%s g2=%s", g1, g2)
	}
}

func TestErrStaleGenerationIsSentinel(t *testing.T) {
	err := fmt.Errorf("layout: %w", ErrStaleGeneration)
	if !errors.Is(err, ErrStaleGeneration) {
		t.Error("wrapped ErrStaleGeneration not detected")
	}
}
