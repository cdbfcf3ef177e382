package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/tablescape/pkg/graph"
	"github.com/matzehuels/tablescape/pkg/layout"
)

// pointsPerInch converts layout units to Graphviz inches.
const pointsPerInch = 72.0

// Options configures DOT generation.
type Options struct {
	// Pinned keeps the computed layout: nodes are fixed at their positions
	// and Graphviz only routes edges. Otherwise Graphviz dot lays the
	// diagram out itself.
	Pinned bool

	// Direction sets rankdir when Pinned is false.
	Direction layout.Direction

	// Groups colour their members. Without pinning each group also becomes
	// a cluster.
	Groups []graph.TableGroup

	// Detailed lists columns under each table name.
	Detailed bool
}

// ToDOT converts a diagram to Graphviz DOT.
func ToDOT(d graph.Diagram, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.Pinned {
		buf.WriteString("  layout=neato;\n")
		buf.WriteString("  inputscale=72;\n")
		buf.WriteString("  overlap=true;\n")
		buf.WriteString("  splines=true;\n")
	} else {
		dir := opts.Direction
		if dir == "" {
			dir = layout.TopBottom
		}
		fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
		buf.WriteString("  ranksep=0.8;\n")
		buf.WriteString("  nodesep=0.4;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fillcolor=%q, color=%q, fontname=\"Helvetica\", fontsize=12];\n", defaultFill, defaultBorder)
	fmt.Fprintf(&buf, "  edge [color=%q, arrowsize=0.7];\n", edgeColor)
	buf.WriteString("\n")

	memberOf := make(map[string]int)
	for gi, g := range opts.Groups {
		for _, id := range g.NodeIDs {
			if _, seen := memberOf[id]; !seen {
				memberOf[id] = gi
			}
		}
	}

	writeNode := func(indent string, n graph.Node) {
		attrs := nodeAttrs(n, opts)
		if gi, ok := memberOf[n.ID]; ok {
			fill, border := groupColors(opts.Groups[gi].Color)
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill), fmt.Sprintf("color=%q", border), fmt.Sprintf("fontcolor=%q", fontColor(fill)))
		}
		fmt.Fprintf(&buf, "%s%q [%s];\n", indent, n.ID, strings.Join(attrs, ", "))
	}

	if opts.Pinned || len(opts.Groups) == 0 {
		for _, n := range d.Nodes {
			writeNode("  ", n)
		}
	} else {
		index := graph.Index(d.Nodes)
		for gi, g := range opts.Groups {
			fill, border := groupColors(g.Color)
			fmt.Fprintf(&buf, "  subgraph \"cluster_%d\" {\n", gi)
			fmt.Fprintf(&buf, "    label=%q;\n", g.Name)
			fmt.Fprintf(&buf, "    style=\"rounded,filled\";\n    fillcolor=%q;\n    color=%q;\n", fill, border)
			for _, id := range g.NodeIDs {
				if i, ok := index[id]; ok && memberOf[id] == gi {
					writeNode("    ", d.Nodes[i])
				}
			}
			buf.WriteString("  }\n")
		}
		for _, n := range d.Nodes {
			if _, grouped := memberOf[n.ID]; !grouped {
				writeNode("  ", n)
			}
		}
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		attrs := edgeAttrs(e)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n graph.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
	if opts.Pinned {
		w, h := layout.NodeSize(n)
		cx := n.Position.X + w/2
		cy := n.Position.Y + h/2
		// Graphviz y grows upwards.
		attrs = append(attrs,
			fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(cx), fmtFloat(-cy)),
			fmt.Sprintf("width=%s", fmtFloat(w/pointsPerInch)),
			fmt.Sprintf("height=%s", fmtFloat(h/pointsPerInch)),
			"fixedsize=true",
		)
	}
	return attrs
}

func fmtLabel(n graph.Node, detailed bool) string {
	title := n.Data.Name
	if title == "" {
		title = n.ID
	}
	if !detailed || len(n.Data.Columns) == 0 {
		return title
	}

	lines := []string{title}
	for _, c := range n.Data.Columns {
		line := c.Name
		if c.Type != "" {
			line += ": " + c.Type
		}
		if c.PrimaryKey {
			line += " (pk)"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// edgeAttrs maps relationship cardinality to crow's foot arrows and
// animated edges to dashed lines.
func edgeAttrs(e graph.Edge) []string {
	var attrs []string
	switch e.Type {
	case graph.EdgeTypeOneToOne:
		attrs = append(attrs, "dir=both", "arrowhead=tee", "arrowtail=tee")
	case graph.EdgeTypeOneToMany:
		attrs = append(attrs, "dir=both", "arrowhead=crow", "arrowtail=tee")
	case graph.EdgeTypeManyToOne:
		attrs = append(attrs, "dir=both", "arrowhead=tee", "arrowtail=crow")
	case graph.EdgeTypeManyToMany:
		attrs = append(attrs, "dir=both", "arrowhead=crow", "arrowtail=crow")
	}
	if e.Animated {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderSVG renders DOT source to SVG in process. The layout engine is taken
// from the source: neato for pinned diagrams, dot otherwise.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	if strings.Contains(dot, "layout=neato;") {
		g.SetLayout("neato")
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one
// whose width and height match the viewBox, so the image scales cleanly.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
