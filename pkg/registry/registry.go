package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ErrNotFound indicates the registry has no entry for a name or backend
var ErrNotFound = errors.New("registry: not found")

// Entry represents a single deps/<name>/index.toml file
type Entry struct {
	Name     string            `toml:"name"`
	Libs     []string          `toml:"libs"`
	Backends map[string]string `toml:"backends"`
}

// Registry provides lookup into the cached deps/ folder
type Registry struct {
	depsDir string
}

// New creates a Registry pointed at the cached deps directory
func New(cacheDir string) *Registry {
	return &Registry{
		depsDir: filepath.Join(cacheDir, "deps"),
	}
}

// Exists reports whether the deps directory has been synced.
func (r *Registry) Exists() bool {
	info, err := os.Stat(r.depsDir)
	return err == nil && info.IsDir()
}

// Resolve takes a canonical package name and a backend,
// returns the backend-specific package name.
// e.g. Resolve("opengl", "nix") -> "libGL"
func (r *Registry) Resolve(name string, backend string) (string, error) {
	entry, err := r.Load(name)
	if err != nil {
		return "", err
	}

	pkgName, ok := entry.Backends[backend]
	if !ok || pkgName == "" {
		return "", fmt.Errorf("%w: package '%s' has no entry for backend '%s'", ErrNotFound, name, backend)
	}

	return pkgName, nil
}

// Load reads and parses deps/<name>/index.toml.
func (r *Registry) Load(name string) (*Entry, error) {
	if !r.Exists() {
		return nil, fmt.Errorf("%w: deps not found, run sync first", ErrNotFound)
	}

	path := filepath.Join(r.depsDir, name, "index.toml")

	data, err := os.ReadFile(path)
	if err != nil {
		// Check if the directory exists, to give a better error message.
		if _, statErr := os.Stat(filepath.Dir(path)); statErr == nil {
			return nil, fmt.Errorf("registry: found package '%s' directory, but missing index.toml", name)
		}
		return nil, fmt.Errorf("%w: package '%s'", ErrNotFound, name)
	}

	var entry Entry
	if _, err := toml.Decode(string(data), &entry); err != nil {
		return nil, fmt.Errorf("registry: failed to parse '%s': %w", name, err)
	}
	if entry.Name == "" {
		entry.Name = name
	}

	return &entry, nil
}
