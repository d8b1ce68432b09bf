package errors

import (
	"net/url"
	"path/filepath"
	"strings"
	"unicode"
)

// maxIDLength bounds actor identifiers. Longer ids are almost certainly
// a parser bug rather than a real participant name.
const maxIDLength = 256

// ValidateActorID validates an actor identifier.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters
//   - Maximum length of 256 characters
func ValidateActorID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "actor id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "actor id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "actor id %q contains control characters", id)
		}
	}

	return nil
}

// ValidateLabel validates free text such as message, note or section labels.
// Newlines and tabs are allowed, other control characters and null bytes are not.
func ValidateLabel(text string) error {
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}
	return nil
}

// ValidateLink validates an actor link before it is written into an SVG
// href. Relative references and http, https and mailto URLs are accepted;
// any other scheme, such as javascript: or data:, is rejected. Whitespace
// and control characters are rejected outright since browsers strip them
// before reading the scheme.
func ValidateLink(link string) error {
	if link == "" {
		return nil
	}
	for _, r := range link {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "link %q contains whitespace or control characters", link)
		}
	}
	u, err := url.Parse(link)
	if err != nil {
		return New(ErrCodeInvalidInput, "link %q is not a valid URL", link)
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return nil
	}
	return New(ErrCodeInvalidInput, "link scheme %q is not allowed (use http, https, mailto or a relative link)", u.Scheme)
}

// ValidateOutputPath validates a file path the CLI is about to write to.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - Must not name a directory (trailing separator)
func ValidateOutputPath(path string) error {
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

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "path must name a file, not a directory")
	}

	return nil
}
