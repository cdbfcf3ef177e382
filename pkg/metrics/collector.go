package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/tablescape/pkg/viewport"
)

// Source provides render metrics. *viewport.Manager implements it.
type Source interface {
	Metrics() viewport.Metrics
	GroupCount() int
}

type snapshot struct {
	m      viewport.Metrics
	groups int
}

// Collector is a prometheus.Collector over a viewport Source.
//
// Viewport managers are single-goroutine, while Prometheus scrapes from its
// own goroutine. The collector therefore never reads the source during a
// scrape: the render loop calls Update to copy the current values into a
// locked snapshot, and Collect reports that snapshot.
type Collector struct {
	source Source

	mu   sync.Mutex
	last snapshot

	totalNodes    *prometheus.Desc
	visibleNodes  *prometheus.Desc
	renderedNodes *prometheus.Desc
	fps           *prometheus.Desc
	renderSeconds *prometheus.Desc
	memoryMB      *prometheus.Desc
	groups        *prometheus.Desc
}

// NewCollector creates a collector for source. namespace prefixes every
// metric name.
func NewCollector(source Source, namespace string) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "viewport", name), help, nil, nil)
	}
	return &Collector{
		source:        source,
		totalNodes:    desc("total_nodes", "Number of nodes in the diagram at the last frame"),
		visibleNodes:  desc("visible_nodes", "Number of nodes selected by viewport culling at the last frame"),
		renderedNodes: desc("rendered_nodes", "Number of nodes drawn at the last frame"),
		fps:           desc("fps", "Frames started during the last full one second window"),
		renderSeconds: desc("render_seconds", "Duration of the last render cycle in seconds"),
		memoryMB:      desc("memory_megabytes", "Heap in use in megabytes, when available"),
		groups:        desc("groups", "Number of cached table groups"),
	}
}

// Update copies the source's current metrics into the snapshot reported by
// Collect. Call it from the goroutine that owns the source.
func (c *Collector) Update() {
	s := snapshot{m: c.source.Metrics(), groups: c.source.GroupCount()}
	c.mu.Lock()
	c.last = s
	c.mu.Unlock()
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalNodes
	ch <- c.visibleNodes
	ch <- c.renderedNodes
	ch <- c.fps
	ch <- c.renderSeconds
	ch <- c.memoryMB
	ch <- c.groups
}

// Collect implements prometheus.Collector. The memory gauge is omitted
// while the source reports no memory figure.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	s := c.last
	c.mu.Unlock()

	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}
	gauge(c.totalNodes, float64(s.m.TotalNodes))
	gauge(c.visibleNodes, float64(s.m.VisibleNodes))
	gauge(c.renderedNodes, float64(s.m.RenderedNodes))
	gauge(c.fps, s.m.FPS)
	gauge(c.renderSeconds, s.m.LastRenderTime.Seconds())
	if s.m.MemoryUsageMB != nil {
		gauge(c.memoryMB, *s.m.MemoryUsageMB)
	}
	gauge(c.groups, float64(s.groups))
}

var _ prometheus.Collector = (*Collector)(nil)
