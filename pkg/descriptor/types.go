package descriptor

import "context"

// Resolution sources reported by the built-in resolvers.
const (
	SourceExplicit = "explicit"
	SourceStatic   = "static"
	SourceStore    = "store"
	SourceNix      = "nix"
	SourceIndex    = "index"
	SourceLayout   = "layout"
)

// Reference names one external package required by the environment.
type Reference struct {
	Name   string // Attribute path, e.g. "xorg.libX11"
	LibDir string // Explicit library directory; skips the registry when set
	NoLibs bool   // Tool-only package, never contributes a library directory
}

// Resolution is what a registry knows about a reference.
type Resolution struct {
	Name      string // Name as declared
	StorePath string // Installation root, empty when unknown
	LibDir    string // Library directory, empty when the package exposes none
	Source    string // Resolver that answered
}

// HasLibDir reports whether the package contributes to the library path.
func (r Resolution) HasLibDir() bool {
	return r.LibDir != ""
}

// Resolver resolves package references against an external registry.
// Implementations return an error wrapping ErrPackageNotFound for names the
// registry does not know.
type Resolver interface {
	Resolve(ctx context.Context, ref Reference) (Resolution, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, ref Reference) (Resolution, error)

// Resolve calls f(ctx, ref).
func (f ResolverFunc) Resolve(ctx context.Context, ref Reference) (Resolution, error) {
	return f(ctx, ref)
}

// Package is a declared reference together with its resolution.
type Package struct {
	Reference
	Resolution Resolution
}

// PackageSet is the ordered, duplicate-preserving result of Declare.
// It is never mutated after construction.
type PackageSet struct {
	packages []Package
}

// Len returns the number of declared packages, duplicates included.
func (s *PackageSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.packages)
}

// At returns the i-th package in declaration order.
func (s *PackageSet) At(i int) Package {
	return s.packages[i]
}

// Packages returns a copy of the packages in declaration order.
func (s *PackageSet) Packages() []Package {
	if s == nil {
		return nil
	}
	out := make([]Package, len(s.packages))
	copy(out, s.packages)
	return out
}

// Names returns the declared names in order.
func (s *PackageSet) Names() []string {
	names := make([]string, 0, s.Len())
	for _, p := range s.Packages() {
		names = append(names, p.Name)
	}
	return names
}

// LibraryDirs returns the library directory of every package exposing one,
// in declaration order and without de-duplication.
func (s *PackageSet) LibraryDirs() []string {
	var dirs []string
	for _, p := range s.Packages() {
		if p.Resolution.HasLibDir() {
			dirs = append(dirs, p.Resolution.LibDir)
		}
	}
	return dirs
}

// Duplicates returns every name declared more than once with its count.
func (s *PackageSet) Duplicates() map[string]int {
	counts := make(map[string]int)
	for _, p := range s.Packages() {
		counts[p.Name]++
	}
	for name, n := range counts {
		if n < 2 {
			delete(counts, name)
		}
	}
	return counts
}

// Descriptor is a parsed environment descriptor file.
type Descriptor struct {
	Name       string            `yaml:"name" toml:"name" json:"name"`
	Packages   []Reference       `yaml:"packages" toml:"packages" json:"packages"`
	Env        map[string]string `yaml:"env,omitempty" toml:"env" json:"env,omitempty"`
	ExpectLibs []string          `yaml:"expect_libs,omitempty" toml:"expect_libs" json:"expect_libs,omitempty"`
	LibraryVar string            `yaml:"library_var,omitempty" toml:"library_var" json:"library_var,omitempty"`
}
