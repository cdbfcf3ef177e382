package nodelink

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"
)

// Default colours for nodes outside any group.
const (
	defaultFill   = "#ffffff"
	defaultBorder = "#94a3b8"
	edgeColor     = "#64748b"
)

// tintAmount is how far group fills are blended towards white.
const tintAmount = 0.82

// groupColors returns the fill and border colours for members of a group
// with the given CSS colour. The fill is the colour blended towards white
// in Lab space so labels stay readable. Unparseable colours fall back to
// the defaults.
func groupColors(css string) (fill, border string) {
	parsed, err := csscolorparser.Parse(css)
	if err != nil {
		return defaultFill, defaultBorder
	}
	c := colorful.Color{R: parsed.R, G: parsed.G, B: parsed.B}
	white := colorful.Color{R: 1, G: 1, B: 1}
	return c.BlendLab(white, tintAmount).Clamped().Hex(), c.Clamped().Hex()
}

// fontColor picks black or white text for a background.
func fontColor(bg string) string {
	parsed, err := csscolorparser.Parse(bg)
	if err != nil {
		return "black"
	}
	l, _, _ := colorful.Color{R: parsed.R, G: parsed.G, B: parsed.B}.Lab()
	if l < 0.55 {
		return "white"
	}
	return "black"
}
