package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxLabelLength bounds entity labels. Labels are rendered as SVG text and used
// as stable identities across frames, so absurdly long values are rejected.
const MaxLabelLength = 256

// ValidateLabel validates an entity label.
//
// Rules:
//   - No empty labels (after trimming whitespace)
//   - No control characters
//   - Maximum length of MaxLabelLength characters
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeInvalidDataset, "label cannot be empty")
	}

	if len(label) > MaxLabelLength {
		return New(ErrCodeInvalidDataset, "label too long (max %d characters)", MaxLabelLength)
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDataset, "label %q contains invalid control characters", label)
		}
	}

	return nil
}

var (
	hexColorRegex  = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	funcColorRegex = regexp.MustCompile(`^(rgb|rgba|hsl|hsla)\(\s*[0-9.%\s,/-]+\)$`)
	namedColorRe   = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)
)

// ValidateColor validates a CSS color value as accepted by SVG renderers:
// hex (#rgb, #rgba, #rrggbb, #rrggbbaa), rgb()/rgba()/hsl()/hsla() functions,
// or a plain named color such as "steelblue" or "transparent".
func ValidateColor(color string) error {
	if color == "" {
		return New(ErrCodeInvalidInput, "color cannot be empty")
	}
	if hexColorRegex.MatchString(color) || funcColorRegex.MatchString(color) || namedColorRe.MatchString(color) {
		return nil
	}
	return New(ErrCodeInvalidInput, "invalid color: %q", color)
}

// ValidateImageRef validates an entity image reference.
// An empty reference is valid (the entity has no image). Otherwise the
// reference must be an http(s) URL, a data: URI, or a relative path.
func ValidateImageRef(ref string) error {
	if ref == "" {
		return nil
	}
	for _, r := range ref {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "image reference contains invalid characters")
		}
	}
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ValidateURL(ref)
	case strings.HasPrefix(ref, "data:"):
		if !strings.Contains(ref, ",") {
			return New(ErrCodeInvalidInput, "malformed data URI")
		}
		return nil
	default:
		return ValidatePath(ref)
	}
}

// ValidatePath validates a relative file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
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

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
