package resolve

import (
	"context"

	"github.com/arc-language/devshell/pkg/descriptor"
)

// Static resolves names from a fixed table.
type Static map[string]descriptor.Resolution

// Resolve implements descriptor.Resolver.
func (s Static) Resolve(ctx context.Context, ref descriptor.Reference) (descriptor.Resolution, error) {
	res, ok := s[ref.Name]
	if !ok {
		return descriptor.Resolution{}, descriptor.ErrPackageNotFound
	}
	res.Name = ref.Name
	if res.Source == "" {
		res.Source = descriptor.SourceStatic
	}
	return res, nil
}
