package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxPathLength bounds catalogue paths; longer values are almost certainly
// corrupt input rather than real files.
const maxPathLength = 4096

// ValidateVideoPath validates a catalogue entry path.
//
// Absolute and relative paths are both accepted, since catalogues are
// produced by scanners that may record either. The rules are:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - No ".." segments
func ValidateVideoPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters: %q", path)
		}
	}

	for _, seg := range strings.Split(strings.ReplaceAll(path, "\\", "/"), "/") {
		if seg == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain parent segments (..): %q", path)
		}
	}

	return nil
}

// ValidateSize validates an entry size. Sizes must be finite and non-negative;
// zero is allowed and lays out as an empty tile.
func ValidateSize(path string, size float64) error {
	if math.IsNaN(size) || math.IsInf(size, 0) {
		return New(ErrCodeInvalidInput, "size of %q is not a finite number", path)
	}
	if size < 0 {
		return New(ErrCodeInvalidInput, "size of %q is negative: %g", path, size)
	}
	return nil
}

// ValidateDimensions validates a layout canvas size.
func ValidateDimensions(width, height float64) error {
	if math.IsNaN(width) || math.IsNaN(height) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return New(ErrCodeInvalidInput, "canvas dimensions must be finite")
	}
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidInput, "canvas dimensions must be positive (got %gx%g)", width, height)
	}
	return nil
}
