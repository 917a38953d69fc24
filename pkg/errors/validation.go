package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxIDLength is the longest identifier accepted for charts, lanes, items,
// links and flags.
const MaxIDLength = 128

// idRegex matches identifiers safe to embed in SVG ids, URLs and cache keys.
var idRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateID validates an element identifier.
//
// The rules are conservative so ids can be used verbatim as SVG element ids
// and URL path segments:
//   - No empty ids
//   - Maximum length of MaxIDLength characters
//   - Letters, digits, '.', '_', ':' and '-' only, starting with a letter or digit
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "id cannot be empty")
	}
	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidID, "id too long (max %d characters)", MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid id: %q", id)
	}
	return nil
}

// colorRegex matches #rgb and #rrggbb hex colors.
var colorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor validates a hex color. The empty string is accepted and
// means "use the default color".
func ValidateColor(color string) error {
	if color == "" {
		return nil
	}
	if !colorRegex.MatchString(color) {
		return New(ErrCodeInvalidInput, "invalid color %q (want #rgb or #rrggbb)", color)
	}
	return nil
}

// ValidatePath validates an output or input file path for safety.
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

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
