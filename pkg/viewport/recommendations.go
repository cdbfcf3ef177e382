package viewport

import "time"

// Recommendation thresholds.
const (
	lazyRenderingNodes    = 100
	groupingNodes         = 50
	backgroundLayoutNodes = 200
	minFPS                = 30.0
	frameBudget           = 16 * time.Millisecond
	highMemoryMB          = 100.0
)

// Recommendations returns human-readable suggestions derived from the
// current metrics and configuration. It does not change any state.
func (m *Manager) Recommendations() []string {
	return Recommend(m.metrics, m.cfg)
}

// Recommend is the pure form of Manager.Recommendations.
func Recommend(metrics Metrics, cfg Config) []string {
	var recs []string
	if metrics.TotalNodes > lazyRenderingNodes && !cfg.EnableLazyRendering {
		recs = append(recs, "Enable lazy rendering to draw only the tables near the viewport")
	}
	if metrics.TotalNodes > groupingNodes && !cfg.EnableGrouping {
		recs = append(recs, "Enable table grouping to collapse dense regions of the diagram")
	}
	if metrics.FPS > 0 && metrics.FPS < minFPS {
		recs = append(recs, "Frame rate is low; reduce the number of tables in view or lower maxNodesInView")
	}
	if metrics.LastRenderTime > frameBudget {
		recs = append(recs, "Render time exceeds the 16ms frame budget; consider simplifying edges or collapsing groups")
	}
	if metrics.MemoryUsageMB != nil && *metrics.MemoryUsageMB > highMemoryMB {
		recs = append(recs, "Memory usage is high; clear cached groups or split the diagram")
	}
	if metrics.TotalNodes > backgroundLayoutNodes && !cfg.EnableBackgroundLayout {
		recs = append(recs, "Enable background layout so large layouts do not block interaction")
	}
	return recs
}
