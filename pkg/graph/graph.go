package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Diagram is the serialization format for a table diagram.
type Diagram struct {
	Nodes    []Node    `json:"nodes"`
	Edges    []Edge    `json:"edges"`
	Viewport *Viewport `json:"viewport,omitempty"`
}

// =============================================================================
// Diagram Serialization API
// =============================================================================

// MarshalDiagram converts a diagram to indented JSON bytes.
func MarshalDiagram(d Diagram) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeDiagramTo(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalDiagram decodes JSON bytes into a diagram.
func UnmarshalDiagram(data []byte) (Diagram, error) {
	return readDiagramFrom(bytes.NewReader(data))
}

// WriteDiagramFile writes a diagram to a JSON file.
func WriteDiagramFile(d Diagram, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeDiagramTo(d, f)
}

// WriteDiagram writes a diagram as JSON to w.
func WriteDiagram(d Diagram, w io.Writer) error {
	return writeDiagramTo(d, w)
}

// ReadDiagramFile reads a JSON diagram file.
func ReadDiagramFile(path string) (Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		return Diagram{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readDiagramFrom(f)
}

// ReadDiagram decodes a JSON diagram from r.
func ReadDiagram(r io.Reader) (Diagram, error) {
	return readDiagramFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeDiagramTo(d Diagram, w io.Writer) error {
	if d.Nodes == nil {
		d.Nodes = []Node{}
	}
	if d.Edges == nil {
		d.Edges = []Edge{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readDiagramFrom(r io.Reader) (Diagram, error) {
	var d Diagram
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Diagram{}, fmt.Errorf("decode: %w", err)
	}
	if err := validateDiagram(d); err != nil {
		return Diagram{}, err
	}
	return d, nil
}

// validateDiagram rejects structural problems the layout cannot recover from.
// Dangling edges are allowed.
func validateDiagram(d Diagram) error {
	seen := make(map[string]struct{}, len(d.Nodes))
	for i, n := range d.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node %d: %w", i, ErrEmptyNodeID)
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("node %s: %w", n.ID, ErrDuplicateNodeID)
		}
		seen[n.ID] = struct{}{}
	}
	if d.Viewport != nil && d.Viewport.Zoom < 0 {
		return ErrInvalidZoom
	}
	return nil
}
