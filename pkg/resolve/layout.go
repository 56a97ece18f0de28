package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arc-language/devshell/pkg/descriptor"
	"github.com/arc-language/devshell/pkg/env"
)

// LayoutResolver finds packages unpacked under <root>/<name> and picks the
// first library directory of the backend's layout that exists.
type LayoutResolver struct {
	root   string
	layout env.PackageLayout
}

// Layout creates a LayoutResolver for packages installed by backend.
func Layout(root, backend string) *LayoutResolver {
	return &LayoutResolver{root: root, layout: env.GetPackageLayout(backend)}
}

// Resolve implements descriptor.Resolver.
func (l *LayoutResolver) Resolve(ctx context.Context, ref descriptor.Reference) (descriptor.Resolution, error) {
	if l.root == "" {
		return descriptor.Resolution{}, descriptor.ErrPackageNotFound
	}

	pkgDir := filepath.Join(l.root, ref.Name)
	info, err := os.Stat(pkgDir)
	if err != nil || !info.IsDir() {
		return descriptor.Resolution{}, fmt.Errorf("%w: %s not under %s", descriptor.ErrPackageNotFound, ref.Name, l.root)
	}

	res := descriptor.Resolution{
		Name:      ref.Name,
		StorePath: pkgDir,
		Source:    descriptor.SourceLayout,
	}
	for _, rel := range l.layout.Libraries {
		dir := filepath.Join(pkgDir, rel)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			res.LibDir = dir
			break
		}
	}
	return res, nil
}
