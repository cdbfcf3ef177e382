package errors

import (
	"slices"
	"strings"
	"unicode"

	"github.com/mazznoer/csscolorparser"
)

// ValidateFormat checks that format is one of allowed, case-insensitively.
func ValidateFormat(format string, allowed ...string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(allowed, strings.ToLower(format)) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidatePath validates an output file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateColor checks that s is a CSS colour the renderers can parse.
func ValidateColor(s string) error {
	if _, err := csscolorparser.Parse(s); err != nil {
		return Wrap(ErrCodeInvalidDiagram, err, "invalid colour %q", s)
	}
	return nil
}
