package layout

import "errors"

var (
	// ErrInvalidDirection is returned by ParseDirection.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrInvalidGroupBy is returned by ParseGroupBy.
	ErrInvalidGroupBy = errors.New("invalid group-by")
)
