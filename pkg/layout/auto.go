package layout

import (
	"math"

	"github.com/matzehuels/tablescape/pkg/dag"
	"github.com/matzehuels/tablescape/pkg/dag/transform"
	"github.com/matzehuels/tablescape/pkg/graph"
)

// AutoLayout computes a layered layout of the diagram.
//
// Nodes are sized by NodeSize. Edges with a missing endpoint, self loops and
// repeated edges do not take part in ranking. The pipeline is:
//
//  1. Break cycles by reversing back edges
//  2. Assign ranks by longest path
//  3. Subdivide edges spanning several ranks with virtual nodes
//  4. Order every rank with opts.Orderer
//  5. Assign coordinates along the cross and rank axes
//
// The returned positions are top-left corners, translated so the bounding
// box of all tables starts at the origin. Every node gets the source and
// target ports of opts.Direction. When opts.MinimizeEdgeCrossings is set,
// edges are restyled by length (see StyleEdges).
//
// AutoLayout never fails; empty input returns an empty result.
func AutoLayout(nodes []graph.Node, edges []graph.Edge, opts Options) Result {
	if len(nodes) == 0 {
		return Result{Nodes: []graph.Node{}, Edges: graph.CloneEdges(edges), Ranks: map[string]int{}}
	}
	dir := opts.direction()

	g := buildDAG(nodes, edges, dir)
	transform.Normalize(g)

	rows := g.RowIDs()
	orders := opts.orderer().OrderRows(g)
	for _, r := range rows {
		g.SetRowOrder(r, orders[r])
	}

	cross := assignCrossCoords(g, rows, orders, opts.NodeSpacing, opts.AlignNodes)
	rank := assignRankCoords(g, rows, opts.RankSpacing)

	centers := make(map[string]graph.Point, len(nodes))
	ranks := make(map[string]int, len(nodes))
	for _, n := range g.Nodes() {
		if n.IsVirtual() {
			continue
		}
		c, r := cross[n.ID], rank[n.Row]
		if dir == BottomTop || dir == RightLeft {
			r = -r
		}
		if dir.Horizontal() {
			centers[n.ID] = graph.Point{X: r, Y: c}
		} else {
			centers[n.ID] = graph.Point{X: c, Y: r}
		}
		ranks[n.ID] = n.Row
	}

	placed := place(nodes, centers, dir)
	styled := graph.CloneEdges(edges)
	if opts.MinimizeEdgeCrossings {
		styled = StyleEdges(placed, edges)
	}
	return Result{Nodes: placed, Edges: styled, Ranks: ranks}
}

// buildDAG adds one node per table in input order. Width and Height of the
// DAG nodes are the extents along the cross and rank axes respectively.
func buildDAG(nodes []graph.Node, edges []graph.Edge, dir Direction) *dag.DAG {
	g := dag.New()
	for _, n := range nodes {
		w, h := NodeSize(n)
		if dir.Horizontal() {
			w, h = h, w
		}
		_ = g.AddNode(dag.Node{ID: n.ID, Width: w, Height: h})
	}
	for _, e := range edges {
		if e.Source == e.Target || g.HasEdge(e.Source, e.Target) {
			continue
		}
		// dangling edges are rejected by AddEdge
		_ = g.AddEdge(dag.Edge{From: e.Source, To: e.Target})
	}
	return g
}

// place converts centres into top-left positions and translates them so the
// bounding box starts at the origin.
func place(nodes []graph.Node, centers map[string]graph.Point, dir Direction) []graph.Node {
	minX, minY := math.Inf(1), math.Inf(1)
	for _, n := range nodes {
		c := centers[n.ID]
		w, h := NodeSize(n)
		minX = min(minX, c.X-w/2)
		minY = min(minY, c.Y-h/2)
	}

	source, target := dir.Ports()
	out := graph.CloneNodes(nodes)
	for i := range out {
		c := centers[out[i].ID]
		w, h := NodeSize(out[i])
		out[i].Position = graph.Point{X: c.X - w/2 - minX, Y: c.Y - h/2 - minY}
		out[i].SourcePosition = source
		out[i].TargetPosition = target
	}
	return out
}
