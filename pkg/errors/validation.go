package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePath validates a user-supplied file path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(strings.ReplaceAll(path, "\\", "/"), "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// hexColorRegex matches #rgb, #rrggbb and #rrggbbaa colors.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// ValidateColor validates a hex color string as accepted by the renderers.
func ValidateColor(color string) error {
	if !hexColorRegex.MatchString(color) {
		return New(ErrCodeInvalidInput, "invalid color %q (want #rgb, #rrggbb or #rrggbbaa)", color)
	}
	return nil
}

// ValidatePositive returns a configuration error naming field if v <= 0.
func ValidatePositive(field string, v float64) error {
	if !(v > 0) {
		return New(ErrCodeConfiguration, "%s must be positive, got %g", field, v)
	}
	return nil
}

// ValidateNonNegative returns a configuration error naming field if v < 0.
func ValidateNonNegative(field string, v float64) error {
	if !(v >= 0) {
		return New(ErrCodeConfiguration, "%s must not be negative, got %g", field, v)
	}
	return nil
}

// ValidateFormat checks that format is one of the keys of valid.
func ValidateFormat(format string, valid map[string]bool) error {
	if !valid[format] {
		return New(ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	return nil
}

// ValidateSourceKind checks that kind names a known attractor source.
func ValidateSourceKind(kind string, valid map[string]bool) error {
	if !valid[kind] {
		return New(ErrCodeInvalidSource, "unknown attractor source %q", kind)
	}
	return nil
}
