package layout

import (
	"math"

	"github.com/matzehuels/tablescape/pkg/dag"
	"github.com/matzehuels/tablescape/pkg/dag/transform"
	"github.com/matzehuels/tablescape/pkg/graph"
)

// Tiling constants for HierarchicalGroupLayout.
const (
	tileOrigin   = 50.0
	tileMaxWidth = 800.0
	tileGap      = 100.0
)

// GroupOptions returns the options every partition of HierarchicalGroupLayout
// is laid out with.
func GroupOptions() Options {
	return Options{
		Direction:   LeftRight,
		NodeSpacing: 80,
		RankSpacing: 120,
	}
}

// HierarchicalGroupLayout partitions the diagram, lays out each partition
// with AutoLayout(GroupOptions()) and tiles the partitions left to right
// from (50, 50), wrapping to a new row once the next partition would pass
// x = 800.
//
// With GroupByRelationship the partitions are the connected components of
// the relationship graph; with GroupBySchema they are the schema tags, with
// untagged tables in the "default" partition. Partitions are tiled in the
// order of their first table.
//
// Every input node appears exactly once in the output, in input order. Edges
// are returned unchanged.
func HierarchicalGroupLayout(nodes []graph.Node, edges []graph.Edge, groupBy GroupBy) Result {
	out := graph.CloneNodes(nodes)
	if out == nil {
		out = []graph.Node{}
	}
	result := Result{Nodes: out, Edges: graph.CloneEdges(edges), Ranks: make(map[string]int, len(nodes))}
	if len(nodes) == 0 {
		return result
	}

	index := graph.Index(out)
	offsetX, offsetY := tileOrigin, tileOrigin
	rowHeight := 0.0
	inRow := 0

	for _, part := range partition(nodes, edges, groupBy) {
		sub := AutoLayout(part, subEdges(part, edges), GroupOptions())
		w, h := bounds(sub.Nodes)

		if offsetX+w > tileMaxWidth && inRow > 0 {
			offsetX = tileOrigin
			offsetY += rowHeight + tileGap
			rowHeight = 0
			inRow = 0
		}

		for _, n := range sub.Nodes {
			i := index[n.ID]
			out[i].Position = n.Position.Add(graph.Point{X: offsetX, Y: offsetY})
			out[i].SourcePosition = n.SourcePosition
			out[i].TargetPosition = n.TargetPosition
		}
		for id, r := range sub.Ranks {
			result.Ranks[id] = r
		}

		offsetX += w + tileGap
		rowHeight = math.Max(rowHeight, h)
		inRow++
	}
	return result
}

// partition splits nodes into the groups laid out independently. Members of
// each group keep input order.
func partition(nodes []graph.Node, edges []graph.Edge, groupBy GroupBy) [][]graph.Node {
	if groupBy == GroupBySchema {
		var order []string
		buckets := make(map[string][]graph.Node)
		for _, n := range nodes {
			s := n.SchemaOrDefault()
			if _, ok := buckets[s]; !ok {
				order = append(order, s)
			}
			buckets[s] = append(buckets[s], n)
		}
		parts := make([][]graph.Node, len(order))
		for i, s := range order {
			parts[i] = buckets[s]
		}
		return parts
	}

	g := dag.New()
	for _, n := range nodes {
		_ = g.AddNode(dag.Node{ID: n.ID})
	}
	for _, e := range edges {
		_ = g.AddEdge(dag.Edge{From: e.Source, To: e.Target})
	}

	byID := make(map[string]graph.Node, len(nodes))
	for _, n := range nodes {
		if _, ok := byID[n.ID]; !ok {
			byID[n.ID] = n
		}
	}
	comps := transform.Components(g)
	parts := make([][]graph.Node, len(comps))
	for i, ids := range comps {
		parts[i] = make([]graph.Node, len(ids))
		for j, id := range ids {
			parts[i][j] = byID[id]
		}
	}
	return parts
}

func subEdges(part []graph.Node, edges []graph.Edge) []graph.Edge {
	members := graph.Index(part)
	var out []graph.Edge
	for _, e := range edges {
		_, okS := members[e.Source]
		_, okT := members[e.Target]
		if okS && okT {
			out = append(out, e)
		}
	}
	return out
}

// bounds returns the extent of a laid out partition measured from the origin.
func bounds(nodes []graph.Node) (w, h float64) {
	for _, n := range nodes {
		nw, nh := NodeSize(n)
		w = math.Max(w, n.Position.X+nw)
		h = math.Max(h, n.Position.Y+nh)
	}
	return w, h
}
