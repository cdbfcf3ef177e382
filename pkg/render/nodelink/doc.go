// Package nodelink renders table diagrams as Graphviz node-link images.
//
// # Usage
//
// Convert a laid-out diagram to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(res.Diagram(), nodelink.Options{Pinned: true, Groups: groups})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Pinned and Free Layouts
//
// With [Options.Pinned] every table is fixed at the position computed by the
// layout package (neato with pinned nodes, y axis flipped) and Graphviz only
// routes edges. Without it, Graphviz dot ranks the diagram itself following
// [Options.Direction], and each table group becomes a cluster.
//
// # Styling
//
// Group members are filled with a light tint of their group colour, blended
// in Lab space with [github.com/lucasb-eyer/go-colorful] after parsing the
// CSS colour with [github.com/mazznoer/csscolorparser]. Relationship edges
// get crow's foot arrowheads by cardinality; animated edges are dashed.
//
// # Dependencies
//
// SVG rendering runs Graphviz in process through [github.com/goccy/go-graphviz].
package nodelink
