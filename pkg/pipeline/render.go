package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/tablescape/pkg/graph"
	"github.com/matzehuels/tablescape/pkg/layout"
	"github.com/matzehuels/tablescape/pkg/observability"
	"github.com/matzehuels/tablescape/pkg/render"
	"github.com/matzehuels/tablescape/pkg/render/nodelink"
)

// Export is the JSON artifact: the laid-out diagram plus its groups.
type Export struct {
	graph.Diagram
	Ranks  map[string]int     `json:"ranks,omitempty"`
	Groups []graph.TableGroup `json:"groups,omitempty"`
}

// Render generates output artifacts in the requested formats. Graph-based
// formats keep the computed positions; Graphviz only routes edges.
// The SVG is produced once and shared by the png and pdf conversions.
func Render(ctx context.Context, res layout.Result, groups []graph.TableGroup, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(res.Diagram(), nodelink.Options{
		Pinned:   true,
		Groups:   groups,
		Detailed: opts.Detailed,
	})

	var svg []byte
	svgFor := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = nodelink.RenderSVG(ctx, dot)
		return svg, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(ctx, format, dot, svgFor, res, groups)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, format, dot string, svgFor func() ([]byte, error), res layout.Result, groups []graph.TableGroup) (data []byte, err error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()
	defer func() {
		hooks.OnRenderComplete(ctx, format, time.Since(start), err)
	}()

	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return svgFor()
	case FormatPNG:
		svg, err := svgFor()
		if err != nil {
			return nil, err
		}
		return render.ToPNG(ctx, svg, DefaultPNGScale)
	case FormatPDF:
		svg, err := svgFor()
		if err != nil {
			return nil, err
		}
		return render.ToPDF(ctx, svg)
	case FormatJSON:
		return MarshalExport(Export{Diagram: res.Diagram(), Ranks: res.Ranks, Groups: groups})
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// MarshalExport encodes an export as indented JSON.
func MarshalExport(e Export) ([]byte, error) {
	if e.Nodes == nil {
		e.Nodes = []graph.Node{}
	}
	if e.Edges == nil {
		e.Edges = []graph.Edge{}
	}
	return json.MarshalIndent(e, "", "  ")
}

// UnmarshalExport decodes a JSON artifact.
func UnmarshalExport(data []byte) (Export, error) {
	var e Export
	if err := json.Unmarshal(data, &e); err != nil {
		return Export{}, fmt.Errorf("decode export: %w", err)
	}
	return e, nil
}
