package layout

import "github.com/matzehuels/tablescape/pkg/dag"

// balancePasses is the number of alternating neighbour-balancing sweeps.
const balancePasses = 4

// assignCrossCoords returns the centre of every node along the cross axis
// (perpendicular to rank flow). Each row is first packed left to right with
// nodeSpacing between neighbours (half the gap next to virtual nodes). Unless
// align is set, rows are then pulled towards the mean centre of their
// neighbours in the adjacent row while keeping the minimum separation.
func assignCrossCoords(g *dag.DAG, rows []int, orders map[int][]string, nodeSpacing float64, align bool) map[string]float64 {
	pos := make(map[string]float64, g.NodeCount())
	for _, r := range rows {
		cursor := 0.0
		for i, id := range orders[r] {
			n, _ := g.Node(id)
			if i > 0 {
				prev, _ := g.Node(orders[r][i-1])
				cursor += gap(prev, n, nodeSpacing)
			}
			pos[id] = cursor + n.Width/2
			cursor += n.Width
		}
	}
	if align {
		return pos
	}

	for pass := 0; pass < balancePasses; pass++ {
		if pass%2 == 0 {
			for i := 1; i < len(rows); i++ {
				balanceRow(g, orders[rows[i]], pos, g.Parents, nodeSpacing)
			}
		} else {
			for i := len(rows) - 2; i >= 0; i-- {
				balanceRow(g, orders[rows[i]], pos, g.Children, nodeSpacing)
			}
		}
	}
	return pos
}

// balanceRow moves the nodes of row towards their desired centres: the mean
// of their neighbours' centres, or their current centre when they have none.
// A forward pass restores the minimum separation, then the whole row shifts
// by the mean remaining offset so it stays centred on its neighbours.
func balanceRow(g *dag.DAG, row []string, pos map[string]float64, neighbours func(string) []string, nodeSpacing float64) {
	if len(row) == 0 {
		return
	}

	desired := make([]float64, len(row))
	for i, id := range row {
		sum, n := 0.0, 0
		for _, nb := range neighbours(id) {
			if p, ok := pos[nb]; ok {
				sum += p
				n++
			}
		}
		if n > 0 {
			desired[i] = sum / float64(n)
		} else {
			desired[i] = pos[id]
		}
	}

	placed := make([]float64, len(row))
	for i, id := range row {
		placed[i] = desired[i]
		if i == 0 {
			continue
		}
		prev, _ := g.Node(row[i-1])
		n, _ := g.Node(id)
		minCenter := placed[i-1] + prev.Width/2 + gap(prev, n, nodeSpacing) + n.Width/2
		if placed[i] < minCenter {
			placed[i] = minCenter
		}
	}

	offset := 0.0
	for i := range row {
		offset += desired[i] - placed[i]
	}
	offset /= float64(len(row))

	for i, id := range row {
		pos[id] = placed[i] + offset
	}
}

func gap(a, b *dag.Node, nodeSpacing float64) float64 {
	if a.IsVirtual() || b.IsVirtual() {
		return nodeSpacing / 2
	}
	return nodeSpacing
}

// assignRankCoords returns the centre of every row along the rank axis. Each
// row is as thick as its largest node.
func assignRankCoords(g *dag.DAG, rows []int, rankSpacing float64) map[int]float64 {
	centers := make(map[int]float64, len(rows))
	start := 0.0
	for i, r := range rows {
		thick := 0.0
		for _, n := range g.NodesInRow(r) {
			thick = max(thick, n.Height)
		}
		if i > 0 {
			start += rankSpacing
		}
		centers[r] = start + thick/2
		start += thick
	}
	return centers
}
