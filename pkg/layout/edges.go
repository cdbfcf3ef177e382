package layout

import "github.com/matzehuels/tablescape/pkg/graph"

// Edge restyling thresholds, in layout units.
const (
	animateDistance    = 300.0
	smoothStepDistance = 200.0
)

// StyleEdges returns a copy of edges restyled by the distance between the
// top-left corners of their endpoints: edges longer than 300 are animated,
// edges longer than 200 become smoothstep and the rest straight.
//
// Relationship edges (oneToOne, oneToMany, manyToOne, manyToMany) and edges
// whose endpoints are not in nodes are returned unchanged.
func StyleEdges(nodes []graph.Node, edges []graph.Edge) []graph.Edge {
	if edges == nil {
		return nil
	}
	index := graph.Index(nodes)
	out := make([]graph.Edge, len(edges))
	for i, e := range edges {
		out[i] = e
		if graph.IsRelationshipType(e.Type) {
			continue
		}
		si, okS := index[e.Source]
		ti, okT := index[e.Target]
		if !okS || !okT {
			continue
		}
		d := nodes[si].Position.Distance(nodes[ti].Position)
		out[i].Animated = d > animateDistance
		if d > smoothStepDistance {
			out[i].Type = graph.EdgeTypeSmoothStep
		} else {
			out[i].Type = graph.EdgeTypeStraight
		}
	}
	return out
}
