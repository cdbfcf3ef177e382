package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/tablescape/pkg/observability"
)

// Hooks records observability events as Prometheus metrics.
type Hooks struct {
	LoadsTotal       *prometheus.CounterVec
	LayoutsTotal     *prometheus.CounterVec
	LayoutDuration   *prometheus.HistogramVec
	RendersTotal     *prometheus.CounterVec
	RenderDuration   *prometheus.HistogramVec
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	CacheBytesTotal  *prometheus.CounterVec
	CullsTotal       prometheus.Counter
	CulledNodes      prometheus.Histogram
	GroupingDuration prometheus.Histogram
	GroupsBuilt      prometheus.Gauge
	YieldsTotal      prometheus.Counter
}

// NewHooks creates and registers the hook metrics on reg.
func NewHooks(reg prometheus.Registerer, namespace string) *Hooks {
	f := promauto.With(reg)
	return &Hooks{
		LoadsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagram_loads_total",
			Help:      "Total number of diagram loads",
		}, []string{"status"}),
		LayoutsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layouts_total",
			Help:      "Total number of layout computations",
		}, []string{"algorithm", "status"}),
		LayoutDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Layout computation latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"algorithm"}),
		RendersTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Total number of exports",
		}, []string{"format", "status"}),
		RenderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Export latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		CacheHitsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		}, []string{"key_type"}),
		CacheMissesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		}, []string{"key_type"}),
		CacheBytesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Total bytes written to the cache",
		}, []string{"key_type"}),
		CullsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "viewport_culls_total",
			Help:      "Total number of visibility passes",
		}),
		CulledNodes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "viewport_culled_ratio",
			Help:      "Fraction of nodes dropped by a visibility pass",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		GroupingDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "viewport_grouping_duration_seconds",
			Help:      "Clustering pass latency in seconds",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1},
		}),
		GroupsBuilt: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "viewport_groups_built",
			Help:      "Number of groups produced by the last clustering pass",
		}),
		YieldsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "viewport_yields_total",
			Help:      "Total number of suspension points reached by chunked work",
		}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (h *Hooks) OnLoadStart(context.Context, string) {}

func (h *Hooks) OnLoadComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	h.LoadsTotal.WithLabelValues(status(err)).Inc()
}

func (h *Hooks) OnLayoutStart(context.Context, string, int) {}

func (h *Hooks) OnLayoutComplete(_ context.Context, algorithm string, d time.Duration, err error) {
	h.LayoutsTotal.WithLabelValues(algorithm, status(err)).Inc()
	h.LayoutDuration.WithLabelValues(algorithm).Observe(d.Seconds())
}

func (h *Hooks) OnRenderStart(context.Context, string) {}

func (h *Hooks) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	h.RendersTotal.WithLabelValues(format, status(err)).Inc()
	h.RenderDuration.WithLabelValues(format).Observe(d.Seconds())
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.CacheHitsTotal.WithLabelValues(keyType).Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.CacheMissesTotal.WithLabelValues(keyType).Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.CacheBytesTotal.WithLabelValues(keyType).Add(float64(size))
}

func (h *Hooks) OnCull(total, visible int) {
	h.CullsTotal.Inc()
	if total > 0 {
		h.CulledNodes.Observe(float64(total-visible) / float64(total))
	}
}

func (h *Hooks) OnGroupsBuilt(_, groupCount int, d time.Duration) {
	h.GroupingDuration.Observe(d.Seconds())
	h.GroupsBuilt.Set(float64(groupCount))
}

func (h *Hooks) OnYield(int, int) { h.YieldsTotal.Inc() }

// Register installs h as the global pipeline, cache and viewport hooks.
func (h *Hooks) Register() {
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetViewportHooks(h)
}

var (
	_ observability.PipelineHooks = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
	_ observability.ViewportHooks = (*Hooks)(nil)
)
