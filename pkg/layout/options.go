package layout

import (
	"fmt"
	"strings"

	"github.com/matzehuels/tablescape/pkg/graph"
)

// Direction is the flow of ranks across the canvas.
type Direction string

const (
	TopBottom Direction = "TB"
	BottomTop Direction = "BT"
	LeftRight Direction = "LR"
	RightLeft Direction = "RL"
)

// ParseDirection accepts TB, BT, LR or RL in any case.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToUpper(strings.TrimSpace(s))); d {
	case TopBottom, BottomTop, LeftRight, RightLeft:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Horizontal reports whether ranks advance along the x axis.
func (d Direction) Horizontal() bool { return d == LeftRight || d == RightLeft }

// Ports returns the sides an edge leaves its source from and enters its
// target at.
func (d Direction) Ports() (source, target graph.Port) {
	switch d {
	case BottomTop:
		return graph.PortTop, graph.PortBottom
	case LeftRight:
		return graph.PortRight, graph.PortLeft
	case RightLeft:
		return graph.PortLeft, graph.PortRight
	default:
		return graph.PortBottom, graph.PortTop
	}
}

// GroupBy selects how HierarchicalGroupLayout partitions nodes.
type GroupBy string

const (
	// GroupByRelationship partitions by connected component.
	GroupByRelationship GroupBy = "relationship"
	// GroupBySchema partitions by the schema tag of each table.
	GroupBySchema GroupBy = "schema"
)

// ParseGroupBy accepts "relationship" or "schema".
func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(strings.ToLower(strings.TrimSpace(s))); g {
	case GroupByRelationship, GroupBySchema:
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGroupBy, s)
}

// Options controls AutoLayout.
type Options struct {
	Direction   Direction
	NodeSpacing float64 // gap between neighbours within a rank
	RankSpacing float64 // gap between consecutive ranks

	// AlignNodes packs every rank against the leading edge instead of
	// centring nodes over their neighbours.
	AlignNodes bool

	// MinimizeEdgeCrossings restyles non-relationship edges by length.
	MinimizeEdgeCrossings bool

	// Orderer decides the order within each rank. Nil uses
	// Barycentric{Passes: DefaultPasses}.
	Orderer Orderer
}

// DefaultOptions returns the options used when the caller has no preference.
func DefaultOptions() Options {
	return Options{
		Direction:             TopBottom,
		NodeSpacing:           100,
		RankSpacing:           150,
		AlignNodes:            false,
		MinimizeEdgeCrossings: true,
	}
}

func (o Options) orderer() Orderer {
	if o.Orderer != nil {
		return o.Orderer
	}
	return Barycentric{Passes: DefaultPasses}
}

func (o Options) direction() Direction {
	if o.Direction == "" {
		return TopBottom
	}
	return o.Direction
}

// Result is the output of every layout algorithm. Nodes are copies of the
// input in input order with new positions; Edges are the input edges,
// possibly restyled.
type Result struct {
	Nodes []graph.Node
	Edges []graph.Edge
	// Ranks maps table IDs to their rank index. Nil for force layouts.
	Ranks map[string]int
}

// Diagram wraps the result for serialization.
func (r Result) Diagram() graph.Diagram {
	return graph.Diagram{Nodes: r.Nodes, Edges: r.Edges}
}
