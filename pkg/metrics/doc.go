// Package metrics exports tablescape telemetry to Prometheus.
//
// Two pieces are provided:
//
//   - [Collector] publishes a viewport's render metrics (node counts, FPS,
//     render time, memory, group count) as gauges.
//   - [Hooks] implements the [observability] hook interfaces with counters
//     and histograms for layout, rendering, cache traffic and viewport work.
//
// Everything is registered on a caller-supplied *prometheus.Registry so
// tests and embedders never touch the global default registry:
//
//	reg := prometheus.NewRegistry()
//	hooks := metrics.NewHooks(reg, "tablescape")
//	observability.SetPipelineHooks(hooks)
//	observability.SetViewportHooks(hooks)
//
//	col := metrics.NewCollector(manager, "tablescape")
//	reg.MustRegister(col)
//	// from the render loop, after EndRenderCycle:
//	col.Update()
package metrics
