// errors.go
package devshell

import (
	"errors"

	"github.com/arc-language/devshell/pkg/descriptor"
	"github.com/arc-language/devshell/pkg/env"
	"github.com/arc-language/devshell/pkg/nix"
)

var (
	// ErrPackageNotFound indicates no resolver knows the package
	ErrPackageNotFound = descriptor.ErrPackageNotFound

	// ErrInvalidPackage indicates the package reference is malformed
	ErrInvalidPackage = descriptor.ErrInvalidPackage

	// ErrUnsupportedFormat indicates a descriptor file format that cannot be parsed
	ErrUnsupportedFormat = descriptor.ErrUnsupportedFormat

	// ErrHashMismatch indicates a store object differs from the binary cache
	ErrHashMismatch = nix.ErrHashMismatch

	// ErrUnsupportedShell indicates activation code was requested for an unknown shell
	ErrUnsupportedShell = env.ErrUnsupportedShell

	// ErrUnknownResolver indicates a resolver name the configuration cannot build
	ErrUnknownResolver = errors.New("unknown resolver")
)

// Error wraps an error with the operation and package it concerns
type Error = descriptor.Error
