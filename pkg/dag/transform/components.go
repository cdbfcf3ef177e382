package transform

import "github.com/matzehuels/tablescape/pkg/dag"

// Components partitions the nodes of g into weakly connected components,
// treating every edge as undirected.
//
// Components are returned in the order of their first node, and the members
// of each component keep the graph's insertion order. The search uses an
// explicit stack.
func Components(g *dag.DAG) [][]string {
	nodes := g.Nodes()
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}

	comp := make([]int, len(nodes))
	for i := range comp {
		comp[i] = -1
	}

	count := 0
	for i, n := range nodes {
		if comp[i] >= 0 {
			continue
		}
		comp[i] = count
		stack := []string{n.ID}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, nbrs := range [][]string{g.Children(id), g.Parents(id)} {
				for _, nb := range nbrs {
					j, ok := index[nb]
					if !ok || comp[j] >= 0 {
						continue
					}
					comp[j] = count
					stack = append(stack, nb)
				}
			}
		}
		count++
	}

	result := make([][]string, count)
	for i, n := range nodes {
		result[comp[i]] = append(result[comp[i]], n.ID)
	}
	return result
}
