package layout

import (
	"testing"

	"github.com/matzehuels/tablescape/pkg/graph"
)

func TestHierarchicalGroupLayoutBySchema(t *testing.T) {
	nodes := []graph.Node{table("a", 0), table("b", 0), table("c", 0)}
	nodes[0].Data.Schema = "auth"
	nodes[1].Data.Schema = "sales"
	// c has no schema and lands in "default"

	res := HierarchicalGroupLayout(nodes, nil, GroupBySchema)
	pos := positions(res.Nodes)

	w, h := EstimateWidth(0), EstimateHeight(0)
	want := map[string]graph.Point{
		"a": {X: 50, Y: 50},
		"b": {X: 50 + w + 100, Y: 50},
		// 50 + 2(w+100) + w > 800 wraps to a new row
		"c": {X: 50, Y: 50 + h + 100},
	}
	for id, p := range want {
		if pos[id] != p {
			t.Errorf("%s = %v, want %v", id, pos[id], p)
		}
	}
}

func TestHierarchicalGroupLayoutByRelationship(t *testing.T) {
	nodes := []graph.Node{table("a", 1), table("x", 1), table("b", 1), table("y", 1)}
	edges := []graph.Edge{edge("a", "b"), edge("y", "x"), edge("b", "ghost")}

	res := HierarchicalGroupLayout(nodes, edges, GroupByRelationship)

	if len(res.Edges) != len(edges) {
		t.Fatalf("edges = %d, want %d", len(res.Edges), len(edges))
	}
	for i := range edges {
		if res.Edges[i] != edges[i] {
			t.Errorf("edge %d modified", i)
		}
	}

	ids := graph.NodeIDs(res.Nodes)
	for i, n := range nodes {
		if ids[i] != n.ID {
			t.Fatalf("output order = %v", ids)
		}
	}

	pos := positions(res.Nodes)
	// components are laid out left to right
	if pos["a"].Y != pos["b"].Y || pos["a"].X >= pos["b"].X {
		t.Errorf("a=%v b=%v should flow left to right", pos["a"], pos["b"])
	}
	if pos["y"].X >= pos["x"].X {
		t.Errorf("y=%v x=%v should flow left to right", pos["y"], pos["x"])
	}
	for _, n := range res.Nodes {
		if n.Position.X < 50 || n.Position.Y < 50 {
			t.Errorf("%s = %v lies before the tiling origin", n.ID, n.Position)
		}
		if n.SourcePosition != graph.PortRight || n.TargetPosition != graph.PortLeft {
			t.Errorf("%s ports = %s/%s", n.ID, n.SourcePosition, n.TargetPosition)
		}
	}
}

func TestHierarchicalGroupLayoutEmpty(t *testing.T) {
	res := HierarchicalGroupLayout(nil, nil, GroupBySchema)
	if res.Nodes == nil || len(res.Nodes) != 0 {
		t.Errorf("Nodes = %#v", res.Nodes)
	}
}

func TestHierarchicalGroupLayoutWideGroupStartsRow(t *testing.T) {
	// A chain wider than 800 still goes first without wrapping.
	var nodes []graph.Node
	var edges []graph.Edge
	for i := 0; i < 5; i++ {
		nodes = append(nodes, table(string(rune('a'+i)), 1))
		if i > 0 {
			edges = append(edges, edge(nodes[i-1].ID, nodes[i].ID))
		}
	}
	res := HierarchicalGroupLayout(nodes, edges, GroupByRelationship)
	if got := res.Nodes[0].Position; got.X != 50 || got.Y != 50 {
		t.Errorf("first table = %v, want (50, 50)", got)
	}
}
