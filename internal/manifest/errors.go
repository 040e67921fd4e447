package manifest

import (
	"errors"
	"fmt"
)

// ParseError records a manifest file that could not be read or decoded.
// The store substitutes the empty manifest and keeps going.
type ParseError struct {
	// Path is the manifest file, relative to the sandbox root.
	Path  string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.Path, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// IsParseError reports whether err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
