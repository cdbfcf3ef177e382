// Package layout computes positions for the tables of a diagram.
//
// # Algorithms
//
// Three layouts are provided. All of them are pure functions over a snapshot
// of the diagram: they copy the input, never fail, and treat edges with a
// missing endpoint as absent.
//
//   - [AutoLayout]: a layered (Sugiyama style) layout. Relationships point
//     from earlier ranks to later ranks along [Options.Direction].
//   - [ForceDirectedLayout]: a single step of a spring-electrical simulation,
//     meant to be called once per animation frame. [Simulation] keeps the
//     state between frames.
//   - [HierarchicalGroupLayout]: partitions the diagram by connected
//     component or by schema, runs AutoLayout on every partition, and tiles
//     the results.
//
// # Layered Layout
//
// AutoLayout builds a [dag.DAG] and runs it through [transform.Normalize],
// then orders every rank with an [Orderer] ([Barycentric] by default) and
// assigns coordinates:
//
//	res := layout.AutoLayout(nodes, edges, layout.DefaultOptions())
//	for _, n := range res.Nodes {
//	    fmt.Println(n.ID, n.Position, res.Ranks[n.ID])
//	}
//
// Table sizes come from the node when the editor measured it, and from
// [EstimateWidth] and [EstimateHeight] otherwise.
//
// # Edge Styling
//
// With [Options.MinimizeEdgeCrossings], [StyleEdges] switches long edges to
// smoothstep routing and animates the longest ones. Relationship edges keep
// the style the editor gave them.
//
// [dag.DAG]: github.com/matzehuels/tablescape/pkg/dag
// [transform.Normalize]: github.com/matzehuels/tablescape/pkg/dag/transform
package layout
