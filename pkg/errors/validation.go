package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxIDLen    = 256
	maxPathLen  = 500
	maxScopeLen = 128
)

// ValidateNodeID checks a node or flow id from a payload. Ids end up in
// cache keys, DOT documents and cell ids, so they must be printable and
// free of quotes and backslashes.
func ValidateNodeID(id string) error {
	switch {
	case id == "":
		return New(ErrCodeInvalidGraph, "id cannot be empty")
	case len(id) > maxIDLen:
		return New(ErrCodeInvalidGraph, "id too long (max %d characters)", maxIDLen)
	case strings.IndexFunc(id, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidGraph, "id %q contains control characters", id)
	case strings.ContainsAny(id, `"\`):
		return New(ErrCodeInvalidGraph, "id %q contains quotes or backslashes", id)
	}
	return nil
}

// ValidatePath checks a file path given on the command line.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return New(ErrCodeInvalidPath, "path cannot be empty")
	case len(path) > maxPathLen:
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLen)
	case strings.IndexFunc(path, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidPath, "path contains control characters")
	}
	return nil
}

var scopePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateCacheScope checks a cache key prefix. The empty scope is valid.
func ValidateCacheScope(scope string) error {
	switch {
	case scope == "":
		return nil
	case len(scope) > maxScopeLen:
		return New(ErrCodeInvalidInput, "cache scope too long (max %d characters)", maxScopeLen)
	case !scopePattern.MatchString(scope):
		return New(ErrCodeInvalidInput, "invalid cache scope: %q", scope)
	}
	return nil
}
