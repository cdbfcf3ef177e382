// Package render exports laid-out diagrams as images.
//
// The [nodelink] subpackage turns a diagram into Graphviz DOT and renders
// SVG in process. The conversions here turn that SVG into other formats
// using the external rsvg-convert tool (from librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
package render
