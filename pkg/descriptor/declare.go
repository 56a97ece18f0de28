package descriptor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_+-][A-Za-z0-9_+-]*(\.[A-Za-z0-9_+-]+)*$`)

// ValidateName checks that name is a well-formed attribute path.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidPackage)
	}
	if !nameRe.MatchString(name) {
		return fmt.Errorf("%w: malformed name %q", ErrInvalidPackage, name)
	}
	return nil
}

// Declare resolves refs in order and returns the package set. The first
// failure aborts the declaration; no partial set is ever returned.
func Declare(ctx context.Context, resolver Resolver, refs []Reference) (*PackageSet, error) {
	packages := make([]Package, 0, len(refs))

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := ValidateName(ref.Name); err != nil {
			return nil, &Error{Op: "declare", Package: ref.Name, Err: err}
		}

		res, err := resolve(ctx, resolver, ref)
		if err != nil {
			return nil, &Error{Op: "declare", Package: ref.Name, Err: err}
		}
		if ref.NoLibs {
			res.LibDir = ""
		}

		packages = append(packages, Package{Reference: ref, Resolution: res})
	}

	return &PackageSet{packages: packages}, nil
}

func resolve(ctx context.Context, resolver Resolver, ref Reference) (Resolution, error) {
	if ref.LibDir != "" {
		return Resolution{Name: ref.Name, LibDir: ref.LibDir, Source: SourceExplicit}, nil
	}
	if resolver == nil {
		return Resolution{}, fmt.Errorf("%w: no resolver configured", ErrPackageNotFound)
	}

	res, err := resolver.Resolve(ctx, ref)
	if err != nil {
		return Resolution{}, err
	}
	if res.Name == "" {
		res.Name = ref.Name
	}
	return res, nil
}

// ComputeLibraryPath joins the library directories of set with the host
// path-list separator, preserving declaration order. Packages without a
// library directory are skipped; duplicates are kept.
func ComputeLibraryPath(set *PackageSet) string {
	return JoinLibraryPath(set.LibraryDirs(), os.PathListSeparator)
}

// JoinLibraryPath joins dirs with sep, dropping empty entries.
func JoinLibraryPath(dirs []string, sep rune) string {
	var parts []string
	for _, dir := range dirs {
		if dir != "" {
			parts = append(parts, dir)
		}
	}
	return strings.Join(parts, string(sep))
}

// IsNotFound reports whether err means an unresolvable package name.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPackageNotFound)
}
