package cache

import "strings"

// Key prefixes, also used as the keyType reported to cache hooks.
const (
	KeyTypeLayout   = "layout"
	KeyTypeArtifact = "artifact"
)

// Keyer builds cache keys. Implementations must be deterministic.
type Keyer interface {
	// LayoutKey identifies a layout of the diagram with the given hash.
	LayoutKey(diagramHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered export of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds every option that changes a layout result.
type LayoutKeyOpts struct {
	Algorithm   string  `json:"algorithm"`
	Direction   string  `json:"direction,omitempty"`
	NodeSpacing float64 `json:"node_spacing,omitempty"`
	RankSpacing float64 `json:"rank_spacing,omitempty"`
	Align       bool    `json:"align,omitempty"`
	Minimize    bool    `json:"minimize,omitempty"`
	Passes      int     `json:"passes,omitempty"`
	GroupBy     string  `json:"group_by,omitempty"`
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	Steps       int     `json:"steps,omitempty"`
	Tolerance   float64 `json:"tolerance,omitempty"`
}

// ArtifactKeyOpts holds every option that changes a rendered export.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Groups   bool   `json:"groups,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(diagramHash string, opts LayoutKeyOpts) string {
	return hashKey(KeyTypeLayout, diagramHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, layoutHash, opts)
}

// KeyType returns the type segment of a key built by DefaultKeyer, also
// when scoped, or "unknown".
func KeyType(key string) string {
	for _, t := range []string{KeyTypeLayout, KeyTypeArtifact} {
		if strings.HasPrefix(key, t+":") || strings.Contains(key, ":"+t+":") {
			return t
		}
	}
	return "unknown"
}
