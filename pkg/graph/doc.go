// Package graph defines the diagram model shared by every tablescape component.
//
// A diagram is a set of tables ([Node]) and relationships ([Edge]) positioned in
// layout space, plus the [Viewport] the host surface is currently showing. The
// package is data only: layout engines and the viewport manager read these
// values and return updated copies, they never create or delete nodes.
//
// # Core Types
//
//   - [Node]: a table with a top-left position, optional explicit size and a
//     [TableData] payload carrying its columns and schema tag
//   - [Edge]: a directed relationship between two node IDs, optionally anchored
//     at column-level handles
//   - [Viewport]: the pan/zoom transform of the visible screen
//   - [TableGroup]: a collapsible cluster of nodes produced by the viewport manager
//
// # Referential Integrity
//
// Edges whose Source or Target does not match a node are not errors. Every
// consumer silently excludes them from traversal. [Index] builds the lookup
// used to resolve endpoints.
//
// # Serialization
//
// Diagrams use a React-Flow style JSON document:
//
//	{
//	  "nodes": [{"id": "users", "position": {"x": 0, "y": 0},
//	             "data": {"name": "users", "columns": [{"name": "id"}]}}],
//	  "edges": [{"id": "e1", "source": "orders", "target": "users", "type": "oneToMany"}],
//	  "viewport": {"x": 0, "y": 0, "zoom": 1}
//	}
//
// Common operations:
//
//	d, _ := graph.ReadDiagramFile("schema.json")
//	graph.WriteDiagramFile(d, "schema.layout.json")
//	data, _ := graph.MarshalDiagram(d)
//
// # Concurrency
//
// Values are plain structs and slices. Callers must synchronize access when
// sharing a diagram between goroutines.
package graph
