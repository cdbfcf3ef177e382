package transform

import (
	"fmt"

	"github.com/matzehuels/tablescape/pkg/dag"
)

// Subdivide breaks edges that span multiple rows into sequences of single-row
// edges connected by zero-size virtual nodes:
//
//	Before: users (row 0) → audit (row 3)
//	After:  users → users_v_1 → users_v_2 → audit
//
// Each virtual node carries a MasterID linking back to the edge source, and
// the Reversed flag of the original edge is kept on every segment.
//
// Virtual node IDs have the form "master_v_row"; on collision a numeric
// suffix is appended ("users_v_1__2").
//
// Virtual IDs are fresh and segments join consecutive rows, so adding them
// cannot fail. Should it anyway, the long edge is kept unsplit.
//
// Time complexity is O(V·D) where D is the row count.
func Subdivide(g *dag.DAG) {
	gen := newIDGen(g.Nodes())

	var toRemove []dag.Edge
	for _, e := range g.Edges() {
		src, srcOK := g.Node(e.From)
		dst, dstOK := g.Node(e.To)
		if !srcOK || !dstOK || dst.Row <= src.Row+1 {
			continue
		}

		prevID := src.ID
		ok := true
		for row := src.Row + 1; row < dst.Row && ok; row++ {
			prevID, ok = addVirtual(g, gen, prevID, src.ID, row, e.Reversed)
		}
		if !ok || g.AddEdge(dag.Edge{From: prevID, To: dst.ID, Reversed: e.Reversed}) != nil {
			continue
		}
		toRemove = append(toRemove, e)
	}

	for _, e := range toRemove {
		g.RemoveEdge(e.From, e.To)
	}
}

func addVirtual(g *dag.DAG, gen *idGen, from, master string, row int, reversed bool) (string, bool) {
	id := gen.next(master, row)
	if err := g.AddNode(dag.Node{
		ID:       id,
		Row:      row,
		Kind:     dag.NodeKindVirtual,
		MasterID: master,
	}); err != nil {
		return "", false
	}
	if err := g.AddEdge(dag.Edge{From: from, To: id, Reversed: reversed}); err != nil {
		return "", false
	}
	return id, true
}

type idGen struct {
	used map[string]struct{}
}

func newIDGen(nodes []*dag.Node) *idGen {
	m := make(map[string]struct{}, len(nodes)*2)
	for _, n := range nodes {
		m[n.ID] = struct{}{}
	}
	return &idGen{used: m}
}

func (gen *idGen) next(base string, row int) string {
	prefix := fmt.Sprintf("%s_v_%d", base, row)
	id := prefix
	for i := 1; ; i++ {
		if _, exists := gen.used[id]; !exists {
			gen.used[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s__%d", prefix, i)
	}
}
