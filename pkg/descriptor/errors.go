package descriptor

import (
	"errors"
	"fmt"
)

var (
	// ErrPackageNotFound indicates the package registry cannot resolve a name
	ErrPackageNotFound = errors.New("package not found")

	// ErrInvalidPackage indicates the package reference is malformed
	ErrInvalidPackage = errors.New("invalid package")

	// ErrUnsupportedFormat indicates a descriptor file format that cannot be parsed
	ErrUnsupportedFormat = errors.New("unsupported descriptor format")
)

// Error wraps an error with additional context
type Error struct {
	Op      string // Operation that failed
	Package string // Package name if applicable
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Package, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
