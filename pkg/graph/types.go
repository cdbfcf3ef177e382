package graph

import "math"

// =============================================================================
// Constants
// =============================================================================

// Edge types understood by the layout engine.
const (
	EdgeTypeDefault    = "default"
	EdgeTypeStraight   = "straight"
	EdgeTypeSmoothStep = "smoothstep"

	// Relationship edge types. Layout never restyles these.
	EdgeTypeOneToOne   = "oneToOne"
	EdgeTypeOneToMany  = "oneToMany"
	EdgeTypeManyToOne  = "manyToOne"
	EdgeTypeManyToMany = "manyToMany"
)

// DefaultSchema is the schema bucket for nodes without a schema tag.
const DefaultSchema = "default"

// Default screen size used when a Viewport does not carry one.
const (
	DefaultScreenWidth  = 1920.0
	DefaultScreenHeight = 1080.0
)

// IsRelationshipType reports whether t is one of the protected relationship
// edge types.
func IsRelationshipType(t string) bool {
	switch t {
	case EdgeTypeOneToOne, EdgeTypeOneToMany, EdgeTypeManyToOne, EdgeTypeManyToMany:
		return true
	}
	return false
}

// =============================================================================
// Geometry
// =============================================================================

// Point is a coordinate in layout space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Port names the side of a node an edge attaches to.
type Port string

const (
	PortTop    Port = "top"
	PortBottom Port = "bottom"
	PortLeft   Port = "left"
	PortRight  Port = "right"
)

// =============================================================================
// Node - Table
// =============================================================================

// Column describes one column of a table. Layout only uses the column count.
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	PrimaryKey bool   `json:"primaryKey,omitempty"`
	Nullable   bool   `json:"nullable,omitempty"`
}

// TableData is the payload owned by the editor.
type TableData struct {
	Name    string   `json:"name,omitempty"`
	Schema  string   `json:"schema,omitempty"`
	Columns []Column `json:"columns,omitempty"`
}

// Node is a table positioned in layout space. Position is the top-left corner.
// Width and Height are zero when the editor has not measured the node.
type Node struct {
	ID             string    `json:"id"`
	Position       Point     `json:"position"`
	Width          float64   `json:"width,omitempty"`
	Height         float64   `json:"height,omitempty"`
	Data           TableData `json:"data"`
	SourcePosition Port      `json:"sourcePosition,omitempty"`
	TargetPosition Port      `json:"targetPosition,omitempty"`
}

// SchemaOrDefault returns the node's schema tag, or DefaultSchema when empty.
func (n Node) SchemaOrDefault() string {
	if n.Data.Schema == "" {
		return DefaultSchema
	}
	return n.Data.Schema
}

// SizeOr returns the node's explicit size, substituting w and h for unset
// dimensions.
func (n Node) SizeOr(w, h float64) (float64, float64) {
	if n.Width > 0 {
		w = n.Width
	}
	if n.Height > 0 {
		h = n.Height
	}
	return w, h
}

// =============================================================================
// Edge - Relationship
// =============================================================================

// Edge is a directed relationship from Source to Target.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Type         string `json:"type,omitempty"`
	Animated     bool   `json:"animated,omitempty"`
}

// =============================================================================
// Viewport
// =============================================================================

// Viewport is the pan/zoom transform of the visible screen: a layout point p is
// drawn at p*Zoom + (X, Y). Zoom must be positive; callers own that invariant.
type Viewport struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Zoom   float64 `json:"zoom"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// ScreenSize returns the screen dimensions, falling back to the defaults.
func (v Viewport) ScreenSize() (float64, float64) {
	w, h := v.Width, v.Height
	if w <= 0 {
		w = DefaultScreenWidth
	}
	if h <= 0 {
		h = DefaultScreenHeight
	}
	return w, h
}

// =============================================================================
// TableGroup
// =============================================================================

// TableGroup is a collapsible cluster of nodes. Position is the centroid of the
// members at the time the group was built.
type TableGroup struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	NodeIDs   []string `json:"nodeIds"`
	Position  Point    `json:"position"`
	Collapsed bool     `json:"collapsed"`
	Color     string   `json:"color"`
}

// Contains reports whether the group has the given member.
func (g TableGroup) Contains(id string) bool {
	for _, m := range g.NodeIDs {
		if m == id {
			return true
		}
	}
	return false
}

// =============================================================================
// Helpers
// =============================================================================

// Index maps node IDs to their position in nodes. Later duplicates win.
func Index(nodes []Node) map[string]int {
	m := make(map[string]int, len(nodes))
	for i, n := range nodes {
		m[n.ID] = i
	}
	return m
}

// NodeIDs extracts the IDs of nodes in order.
func NodeIDs(nodes []Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

// CloneNodes returns a copy of nodes. Column slices are shared.
func CloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	copy(out, nodes)
	return out
}

// CloneEdges returns a copy of edges.
func CloneEdges(edges []Edge) []Edge {
	if edges == nil {
		return nil
	}
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}
