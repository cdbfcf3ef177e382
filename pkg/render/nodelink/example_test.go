package nodelink_test

import (
	"fmt"

	"github.com/matzehuels/tablescape/pkg/graph"
	"github.com/matzehuels/tablescape/pkg/render/nodelink"
)

func ExampleToDOT() {
	d := graph.Diagram{
		Nodes: []graph.Node{{ID: "users"}, {ID: "orders"}},
		Edges: []graph.Edge{{ID: "e1", Source: "users", Target: "orders", Type: graph.EdgeTypeOneToMany}},
	}

	fmt.Print(nodelink.ToDOT(d, nodelink.Options{}))
	// Output:
	// digraph G {
	//   rankdir=TB;
	//   ranksep=0.8;
	//   nodesep=0.4;
	//   bgcolor="transparent";
	//   node [shape=box, style="rounded,filled", fillcolor="#ffffff", color="#94a3b8", fontname="Helvetica", fontsize=12];
	//   edge [color="#64748b", arrowsize=0.7];
	//
	//   "users" [label="users"];
	//   "orders" [label="orders"];
	//
	//   "users" -> "orders" [dir=both, arrowhead=crow, arrowtail=tee];
	// }
}
