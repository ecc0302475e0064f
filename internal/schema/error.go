// Package schema provides the shared primitives for strict configuration
// validation: the single error kind carrying a dotted field path, YAML
// document loading, and closed-key-set and type checks over raw mappings.
//
// Validation in this project is fail-closed and fail-fast: unknown keys
// are rejected, and the first violation aborts the run. Mappings are
// walked in sorted key order so the first error reported for a given
// document is deterministic.
package schema

import "fmt"

// Error is the error kind produced by configuration validation and
// resolution. Path is the dotted location of the offending field; it may
// be empty for errors that are not tied to a single field.
type Error struct {
	Path   string
	Reason string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return e.Path + ": " + e.Reason
}

// NewError creates a validation error for the given field path.
func NewError(path, reason string) *Error {
	return &Error{Path: path, Reason: reason}
}

// Errorf creates a validation error with a formatted reason.
func Errorf(path, format string, args ...any) *Error {
	return &Error{Path: path, Reason: fmt.Sprintf(format, args...)}
}
