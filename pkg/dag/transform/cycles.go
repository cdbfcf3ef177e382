package transform

import "github.com/matzehuels/tablescape/pkg/dag"

// BreakCycles makes g acyclic by reversing back edges found by a depth-first
// search and returns how many edges were changed.
//
// The search starts from the sources in insertion order and then from any
// node still unvisited, so the result only depends on the order nodes and
// edges were added. A back edge u→v is replaced by v→u marked Reversed; if
// v→u already exists, or u == v, the back edge is dropped instead.
//
// The traversal uses an explicit stack, so arbitrarily deep relationship
// chains cannot exhaust the goroutine stack.
func BreakCycles(g *dag.DAG) int {
	const (
		white = iota
		gray
		black
	)

	type frame struct {
		id   string
		next int
	}

	color := make(map[string]int, g.NodeCount())
	var backEdges [][2]string

	visit := func(root string) {
		color[root] = gray
		stack := []frame{{id: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.Children(top.id)
			if top.next == len(children) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++
			switch color[child] {
			case white:
				color[child] = gray
				stack = append(stack, frame{id: child})
			case gray:
				backEdges = append(backEdges, [2]string{top.id, child})
			}
		}
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			visit(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			visit(n.ID)
		}
	}

	for _, e := range backEdges {
		g.RemoveEdge(e[0], e[1])
		if e[0] == e[1] || g.HasEdge(e[1], e[0]) {
			continue
		}
		// Both endpoints exist, so this only fails on a broken graph; the
		// back edge is then dropped.
		_ = g.AddEdge(dag.Edge{From: e[1], To: e[0], Reversed: true})
	}
	return len(backEdges)
}
