package layout_test

import (
	"fmt"

	"github.com/matzehuels/tablescape/pkg/graph"
	"github.com/matzehuels/tablescape/pkg/layout"
)

func ExampleAutoLayout() {
	nodes := []graph.Node{{ID: "users"}, {ID: "orders"}, {ID: "items"}}
	edges := []graph.Edge{
		{ID: "e1", Source: "users", Target: "orders"},
		{ID: "e2", Source: "orders", Target: "items"},
	}

	res := layout.AutoLayout(nodes, edges, layout.DefaultOptions())
	for _, n := range res.Nodes {
		fmt.Printf("%s rank=%d y=%.0f target=%s\n", n.ID, res.Ranks[n.ID], n.Position.Y, n.TargetPosition)
	}
	// Output:
	// users rank=0 y=0 target=top
	// orders rank=1 y=235 target=top
	// items rank=2 y=470 target=top
}

func ExampleForceDirectedLayout() {
	nodes := []graph.Node{
		{ID: "a", Position: graph.Point{X: 0, Y: 0}},
		{ID: "b", Position: graph.Point{X: 5000, Y: 5000}},
	}

	res := layout.ForceDirectedLayout(nodes, nil, 1200, 800)
	for _, n := range res.Nodes {
		fmt.Printf("%s (%.0f, %.0f)\n", n.ID, n.Position.X, n.Position.Y)
	}
	// Output:
	// a (50, 50)
	// b (1000, 650)
}

func ExampleHierarchicalGroupLayout() {
	nodes := []graph.Node{
		{ID: "users", Data: graph.TableData{Schema: "auth"}},
		{ID: "orders", Data: graph.TableData{Schema: "sales"}},
	}

	res := layout.HierarchicalGroupLayout(nodes, nil, layout.GroupBySchema)
	for _, n := range res.Nodes {
		fmt.Printf("%s (%.0f, %.0f)\n", n.ID, n.Position.X, n.Position.Y)
	}
	// Output:
	// users (50, 50)
	// orders (390, 50)
}
