package transform

import "github.com/matzehuels/tablescape/pkg/dag"

// Normalize prepares g for ordering: cycles are broken, rows assigned, and
// long edges subdivided. On return g satisfies [dag.DAG.Validate].
func Normalize(g *dag.DAG) *dag.DAG {
	BreakCycles(g)
	AssignLayers(g)
	Subdivide(g)
	return g
}
