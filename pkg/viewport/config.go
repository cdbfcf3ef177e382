package viewport

// Config toggles the render workload strategies of a Manager.
type Config struct {
	// EnableLazyRendering turns on viewport culling. When off, VisibleNodes
	// returns its input unchanged.
	EnableLazyRendering bool `json:"enableLazyRendering" koanf:"lazy_rendering"`
	// MaxNodesInView caps the number of nodes VisibleNodes returns.
	MaxNodesInView int `json:"maxNodesInView" koanf:"max_nodes_in_view"`
	// ViewportBuffer extends the visible rectangle on every side, in screen
	// units.
	ViewportBuffer float64 `json:"viewportBuffer" koanf:"buffer"`
	// EnableGrouping turns on proximity clustering.
	EnableGrouping bool `json:"enableGrouping" koanf:"grouping"`
	// EnableBackgroundLayout splits background work into yielding chunks.
	EnableBackgroundLayout bool `json:"enableBackgroundLayout" koanf:"background_layout"`
}

// DefaultConfig returns the configuration a Manager starts with.
func DefaultConfig() Config {
	return Config{
		EnableLazyRendering:    true,
		MaxNodesInView:         100,
		ViewportBuffer:         200,
		EnableGrouping:         true,
		EnableBackgroundLayout: true,
	}
}
