package viewport

import "github.com/matzehuels/tablescape/pkg/graph"

// Size assumed for nodes the editor has not measured.
const (
	DefaultNodeWidth  = 200.0
	DefaultNodeHeight = 150.0
)

// Rect is an axis-aligned rectangle in layout space.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Intersects reports whether r and o overlap or touch. Rectangles are
// disjoint only when one lies strictly outside the other on some axis.
func (r Rect) Intersects(o Rect) bool {
	return !(o.Right < r.Left || o.Left > r.Right || o.Bottom < r.Top || o.Top > r.Bottom)
}

// VisibleRect converts the screen rectangle of vp into layout space and
// expands it by buffer screen units on every side. vp.Zoom must be positive.
func VisibleRect(vp graph.Viewport, buffer float64) Rect {
	w, h := vp.ScreenSize()
	b := buffer / vp.Zoom
	return Rect{
		Left:   -vp.X/vp.Zoom - b,
		Top:    -vp.Y/vp.Zoom - b,
		Right:  (-vp.X+w)/vp.Zoom + b,
		Bottom: (-vp.Y+h)/vp.Zoom + b,
	}
}

// Bounds returns the bounding box of n, using the default size for unset
// dimensions.
func Bounds(n graph.Node) Rect {
	w, h := n.SizeOr(DefaultNodeWidth, DefaultNodeHeight)
	return Rect{Left: n.Position.X, Top: n.Position.Y, Right: n.Position.X + w, Bottom: n.Position.Y + h}
}

// VisibleNodes returns the nodes whose bounds intersect the buffered
// viewport, in input order, truncated to MaxNodesInView. Nodes past the cap
// are dropped without any priority.
//
// With lazy rendering disabled the input slice itself is returned.
// vp.Zoom must be positive; a zero zoom is a caller error.
func (m *Manager) VisibleNodes(nodes []graph.Node, vp graph.Viewport) []graph.Node {
	if !m.cfg.EnableLazyRendering {
		return nodes
	}

	view := VisibleRect(vp, m.cfg.ViewportBuffer)
	visible := make([]graph.Node, 0, min(len(nodes), max(m.cfg.MaxNodesInView, 0)))
	for _, n := range nodes {
		if len(visible) >= m.cfg.MaxNodesInView {
			break
		}
		if view.Intersects(Bounds(n)) {
			visible = append(visible, n)
		}
	}

	m.visible = graph.NodeIDs(visible)
	m.hooks.OnCull(len(nodes), len(visible))
	return visible
}

// LastVisible returns the IDs selected by the most recent VisibleNodes call
// with lazy rendering enabled.
func (m *Manager) LastVisible() []string {
	out := make([]string, len(m.visible))
	copy(out, m.visible)
	return out
}
