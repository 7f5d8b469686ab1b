package schema

import (
	"path"
	"strings"
)

// Resource identifies the content shown by a surface. Resources are
// normalized slash-separated paths; equality is exact and containment
// follows path nesting.
type Resource string

// NewResource normalizes raw into a Resource.
func NewResource(raw string) (Resource, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidResource
	}
	trimmed = strings.ReplaceAll(trimmed, "\\", "/")
	cleaned := path.Clean(trimmed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidResource
	}
	return Resource(cleaned), nil
}

// Equal reports whether both resources identify the same content.
func (r Resource) Equal(other Resource) bool {
	return r != "" && r == other
}

// Contains reports whether other equals r or is logically nested
// beneath it.
func (r Resource) Contains(other Resource) bool {
	if r == "" || other == "" {
		return false
	}
	if r == other {
		return true
	}
	prefix := string(r)
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return strings.HasPrefix(string(other), prefix)
}

// Base returns the last path element, used for surface titles.
func (r Resource) Base() string {
	if r == "" {
		return ""
	}
	return path.Base(string(r))
}
