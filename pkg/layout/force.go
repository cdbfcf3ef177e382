package layout

import (
	"math"

	"github.com/matzehuels/tablescape/pkg/graph"
)

// Force model constants.
const (
	repulsionStrength  = 5000.0
	attractionStrength = 0.01
	stepSize           = 0.1
	minDistance        = 1.0

	// Clamp margins: positions stay inside [50, width-200] × [50, height-150].
	boundsMargin = 50.0
	boundsRight  = 200.0
	boundsBottom = 150.0
)

// ForceDirectedLayout advances a spring-electrical simulation by exactly one
// explicit Euler step and returns the new positions.
//
// Every unordered pair of nodes repels with 5000/d², every edge with both
// endpoints present attracts with d·0.01, and each node moves by 0.1 times
// its accumulated force. Distances are floored at 1. No velocity is kept
// between calls: callers converge the layout by calling repeatedly, typically
// once per animation frame (see Simulation).
//
// Positions are then clamped to x ∈ [50, width-200] and y ∈ [50, height-150].
// When the canvas is too small for that range the lower bound wins.
func ForceDirectedLayout(nodes []graph.Node, edges []graph.Edge, width, height float64) Result {
	out := graph.CloneNodes(nodes)
	if out == nil {
		out = []graph.Node{}
	}
	forces := computeForces(out, edges)
	for i := range out {
		p := out[i].Position.Add(graph.Point{X: forces[i].X * stepSize, Y: forces[i].Y * stepSize})
		out[i].Position = clamp(p, width, height)
	}
	return Result{Nodes: out, Edges: graph.CloneEdges(edges)}
}

func computeForces(nodes []graph.Node, edges []graph.Edge) []graph.Point {
	forces := make([]graph.Point, len(nodes))

	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			dx := nodes[j].Position.X - nodes[i].Position.X
			dy := nodes[j].Position.Y - nodes[i].Position.Y
			d := math.Max(minDistance, math.Hypot(dx, dy))
			f := repulsionStrength / (d * d)
			fx, fy := f*dx/d, f*dy/d
			forces[i].X -= fx
			forces[i].Y -= fy
			forces[j].X += fx
			forces[j].Y += fy
		}
	}

	index := graph.Index(nodes)
	for _, e := range edges {
		si, okS := index[e.Source]
		ti, okT := index[e.Target]
		if !okS || !okT || si == ti {
			continue
		}
		dx := nodes[ti].Position.X - nodes[si].Position.X
		dy := nodes[ti].Position.Y - nodes[si].Position.Y
		d := math.Max(minDistance, math.Hypot(dx, dy))
		f := d * attractionStrength
		fx, fy := f*dx/d, f*dy/d
		forces[si].X += fx
		forces[si].Y += fy
		forces[ti].X -= fx
		forces[ti].Y -= fy
	}
	return forces
}

func clamp(p graph.Point, width, height float64) graph.Point {
	return graph.Point{
		X: math.Max(boundsMargin, math.Min(p.X, width-boundsRight)),
		Y: math.Max(boundsMargin, math.Min(p.Y, height-boundsBottom)),
	}
}

// Simulation drives ForceDirectedLayout across frames. It owns a copy of the
// nodes and replaces them after every step.
type Simulation struct {
	Width, Height float64

	nodes []graph.Node
	edges []graph.Edge
	steps int
}

// NewSimulation starts a simulation from the given positions.
func NewSimulation(nodes []graph.Node, edges []graph.Edge, width, height float64) *Simulation {
	return &Simulation{
		Width:  width,
		Height: height,
		nodes:  graph.CloneNodes(nodes),
		edges:  graph.CloneEdges(edges),
	}
}

// Step advances one frame and returns the largest distance any node moved.
func (s *Simulation) Step() float64 {
	next := ForceDirectedLayout(s.nodes, s.edges, s.Width, s.Height).Nodes
	moved := 0.0
	for i := range next {
		moved = math.Max(moved, next[i].Position.Distance(s.nodes[i].Position))
	}
	s.nodes = next
	s.steps++
	return moved
}

// Run advances up to maxSteps frames, stopping early once no node moves
// more than tolerance. It returns the number of steps taken.
func (s *Simulation) Run(maxSteps int, tolerance float64) int {
	for i := 0; i < maxSteps; i++ {
		if s.Step() <= tolerance {
			return i + 1
		}
	}
	return maxSteps
}

// Nodes returns a copy of the current positions.
func (s *Simulation) Nodes() []graph.Node { return graph.CloneNodes(s.nodes) }

// Steps returns the number of frames simulated so far.
func (s *Simulation) Steps() int { return s.steps }

// Result returns the current state as a layout result.
func (s *Simulation) Result() Result {
	return Result{Nodes: s.Nodes(), Edges: graph.CloneEdges(s.edges)}
}
