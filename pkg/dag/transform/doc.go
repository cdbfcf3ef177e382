// Package transform provides the graph transformations that turn an arbitrary
// relationship graph into a proper layered [dag.DAG].
//
// # Overview
//
// After [Normalize]:
//
//   - The graph is acyclic ([BreakCycles])
//   - Every node has a row equal to its longest path from a source ([AssignLayers])
//   - Edges connect only consecutive rows ([Subdivide])
//
// # Cycle Breaking
//
// Foreign keys form cycles often enough (self references, mutual references
// between two tables). [BreakCycles] reverses the back edges of a depth-first
// search so the relationship still influences ranking, just in the opposite
// direction.
//
// # Layer Assignment
//
// [AssignLayers] places each node one row after its deepest parent.
//
// # Edge Subdivision
//
// [Subdivide] inserts zero-size virtual nodes along edges that span more than
// one row so the ordering phase can route them between tables.
//
// # Components
//
// [Components] splits the graph into weakly connected components. The grouped
// layout lays each component out on its own.
//
// All traversals are iterative.
//
// # Usage
//
//	transform.Normalize(g) // Modifies g in place
package transform
