// Package viewport keeps large diagrams responsive.
//
// A [Manager] is created per diagram session and owns all mutable state:
// configuration, the group map, the last visible set, render metrics and the
// current generation token. There are no package level caches.
//
// # Culling
//
// [Manager.VisibleNodes] keeps the nodes whose bounding boxes touch the
// viewport expanded by [Config.ViewportBuffer], capped at
// [Config.MaxNodesInView].
//
// # Grouping
//
// [Manager.CreateTableGroups] clusters nearby tables into collapsible
// [graph.TableGroup] values. Clusters are seeded greedily in input order.
//
// # Chunked Work
//
// [Manager.ProcessBackgroundLayout] and [Manager.LoadNodesProgressively] split
// work into steps of a [Task] and hand control to a [Scheduler] between
// steps. Those suspension points are the only places where a cancelled
// context or a superseded generation stops the work:
//
//	gen := m.BeginGeneration()
//	err := m.ProcessBackgroundLayout(viewport.WithGeneration(ctx, gen), nodes, apply)
//	if errors.Is(err, viewport.ErrStaleGeneration) {
//	    // a newer layout was requested; drop this one
//	}
//
// # Metrics
//
// Wrap every frame in [Manager.StartRenderCycle] and
// [Manager.EndRenderCycle]; [Manager.Metrics] and
// [Manager.Recommendations] report on the result.
//
// [graph.TableGroup]: github.com/matzehuels/tablescape/pkg/graph
package viewport
