// Package dag provides the layered graph the layout engine works on.
//
// # Overview
//
// A table diagram is an arbitrary directed graph: relationships may form
// cycles, span several ranks, or point at tables that are not in the diagram.
// The layout engine turns it into a [DAG] whose nodes carry a row (rank), a
// size, and a left-to-right order within their row. Edges connect nodes in
// consecutive rows once the graph has been normalized by the [transform]
// subpackage.
//
// # Basic Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "users", Width: 240, Height: 110})
//	g.AddNode(dag.Node{ID: "orders", Row: 1, Width: 240, Height: 160})
//	g.AddEdge(dag.Edge{From: "users", To: "orders"})
//
// Every listing method ([DAG.Nodes], [DAG.NodesInRow], [DAG.Sources]) returns
// nodes in insertion order, so identical input produces identical layouts.
//
// # Node Types
//
//   - [NodeKindRegular]: tables from the diagram
//   - [NodeKindVirtual]: zero-size synthetic nodes that break long edges into
//     single-row segments
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] use a Fenwick tree to count
// inversions in O(E log V) time. The ordering phase uses them to keep the best
// ordering seen across its sweeps, and [CountPairCrossings] to decide adjacent
// swaps.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use.
//
// [transform]: github.com/matzehuels/tablescape/pkg/dag/transform
package dag
