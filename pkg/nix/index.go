// index.go
package nix

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/arc-language/devshell/pkg/descriptor"
)

// LoadIndex decodes an attribute index: a JSON array of Package records.
func LoadIndex(r io.Reader) ([]Package, error) {
	var records []Package
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding nix index: %w", err)
	}
	return records, nil
}

// Index resolves attributes through a synced attribute index. Only store
// paths already realized locally count as found; the rest are left to the
// resolvers after it.
type Index struct {
	byAttr map[string]Package
}

// NewIndex builds a resolver from index records. Later duplicates of an
// attribute replace earlier ones.
func NewIndex(records []Package) *Index {
	byAttr := make(map[string]Package, len(records))
	for _, p := range records {
		byAttr[p.Attribute] = p
	}
	return &Index{byAttr: byAttr}
}

// Len returns the number of indexed attributes.
func (i *Index) Len() int {
	return len(i.byAttr)
}

// Lookup returns the record for attr.
func (i *Index) Lookup(attr string) (Package, bool) {
	p, ok := i.byAttr[attr]
	return p, ok
}

// Resolve implements descriptor.Resolver.
func (i *Index) Resolve(ctx context.Context, ref descriptor.Reference) (descriptor.Resolution, error) {
	p, ok := i.byAttr[ref.Name]
	if !ok {
		return descriptor.Resolution{}, fmt.Errorf("%w: %s not in index", descriptor.ErrPackageNotFound, ref.Name)
	}
	if _, err := os.Stat(p.StorePath); err != nil {
		return descriptor.Resolution{}, fmt.Errorf("%w: %s is not realized", descriptor.ErrPackageNotFound, p.StorePath)
	}

	return descriptor.Resolution{
		Name:      ref.Name,
		StorePath: p.StorePath,
		LibDir:    libDirOf(p.StorePath),
		Source:    descriptor.SourceIndex,
	}, nil
}
