package graph

import "errors"

var (
	// ErrEmptyNodeID is returned when a decoded diagram contains a node without an ID.
	ErrEmptyNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned when two decoded nodes share an ID.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidZoom is returned when a decoded viewport has a negative zoom.
	ErrInvalidZoom = errors.New("viewport zoom must be positive")
)
