package layout

import (
	"slices"

	"github.com/matzehuels/tablescape/pkg/dag"
)

// DefaultPasses is the number of barycenter sweeps AutoLayout runs.
const DefaultPasses = 24

// Orderer decides the left-to-right sequence of nodes within each row of a
// normalized DAG. Implementations must not modify g.
type Orderer interface {
	OrderRows(g *dag.DAG) map[int][]string
}

// Barycentric implements the Sugiyama barycenter heuristic. Each sweep sorts
// every row by the mean position of its neighbours in the previous row,
// alternating downward (parents) and upward (children) sweeps, then runs a
// transpose pass that swaps adjacent nodes while that removes crossings. The
// ordering with the fewest crossings seen is returned.
//
// The initial order is the row order of g, which is insertion order unless
// the caller changed it, so the result is deterministic.
type Barycentric struct {
	Passes int
}

// OrderRows implements Orderer.
func (b Barycentric) OrderRows(g *dag.DAG) map[int][]string {
	orders := g.RowOrders()
	rows := g.RowIDs()
	if len(rows) == 0 {
		return orders
	}

	passes := b.Passes
	if passes <= 0 {
		passes = DefaultPasses
	}

	best := cloneOrders(orders)
	bestCrossings := dag.CountCrossings(g, orders)

	for pass := 0; pass < passes && bestCrossings > 0; pass++ {
		down := pass%2 == 0
		if down {
			for i := 1; i < len(rows); i++ {
				orders[rows[i]] = sortByBarycenter(orders[rows[i]], orders[rows[i-1]], g.Parents)
			}
		} else {
			for i := len(rows) - 2; i >= 0; i-- {
				orders[rows[i]] = sortByBarycenter(orders[rows[i]], orders[rows[i+1]], g.Children)
			}
		}
		transpose(g, rows, orders)

		if c := dag.CountCrossings(g, orders); c < bestCrossings {
			bestCrossings = c
			best = cloneOrders(orders)
		}
	}
	return best
}

// sortByBarycenter orders row by the mean position of each node's neighbours
// in adj. Nodes without neighbours keep their current index as barycenter.
func sortByBarycenter(row, adj []string, neighbours func(string) []string) []string {
	adjPos := dag.PosMap(adj)

	type entry struct {
		id     string
		center float64
	}
	entries := make([]entry, len(row))
	for i, id := range row {
		sum, n := 0.0, 0
		for _, nb := range neighbours(id) {
			if p, ok := adjPos[nb]; ok {
				sum += float64(p)
				n++
			}
		}
		center := float64(i)
		if n > 0 {
			center = sum / float64(n)
		}
		entries[i] = entry{id, center}
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		switch {
		case a.center < b.center:
			return -1
		case a.center > b.center:
			return 1
		}
		return 0
	})

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.id
	}
	return out
}

// transpose swaps adjacent nodes whenever the swap strictly reduces the
// crossings with both neighbouring rows, repeating until no swap helps.
func transpose(g *dag.DAG, rows []int, orders map[int][]string) {
	for improved := true; improved; {
		improved = false
		for i, r := range rows {
			row := orders[r]
			if len(row) < 2 {
				continue
			}
			var above, below map[string]int
			if i > 0 {
				above = dag.PosMap(orders[rows[i-1]])
			}
			if i < len(rows)-1 {
				below = dag.PosMap(orders[rows[i+1]])
			}
			for j := 0; j < len(row)-1; j++ {
				a, b := row[j], row[j+1]
				before := dag.CountPairCrossings(g, a, b, above, true) +
					dag.CountPairCrossings(g, a, b, below, false)
				after := dag.CountPairCrossings(g, b, a, above, true) +
					dag.CountPairCrossings(g, b, a, below, false)
				if after < before {
					row[j], row[j+1] = b, a
					improved = true
				}
			}
		}
	}
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for r, ids := range orders {
		out[r] = slices.Clone(ids)
	}
	return out
}
