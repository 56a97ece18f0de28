package resolve

import (
	"context"
	"errors"

	"github.com/arc-language/devshell/pkg/descriptor"
	"github.com/arc-language/devshell/pkg/registry"
)

// Aliaser maps a canonical package name to a backend-specific one.
type Aliaser interface {
	Resolve(name string, backend string) (string, error)
}

// AliasedResolver rewrites names through the deps/ registry before handing
// them to next. Names without a registry entry pass through unchanged.
type AliasedResolver struct {
	aliases Aliaser
	backend string
	next    descriptor.Resolver
}

// Aliased wraps next with registry aliasing for backend.
func Aliased(aliases Aliaser, backend string, next descriptor.Resolver) *AliasedResolver {
	return &AliasedResolver{aliases: aliases, backend: backend, next: next}
}

// Resolve implements descriptor.Resolver. The resolution keeps the name as
// declared.
func (a *AliasedResolver) Resolve(ctx context.Context, ref descriptor.Reference) (descriptor.Resolution, error) {
	target := ref
	alias, err := a.aliases.Resolve(ref.Name, a.backend)
	switch {
	case err == nil:
		target.Name = alias
	case errors.Is(err, registry.ErrNotFound):
	default:
		return descriptor.Resolution{}, err
	}

	res, err := a.next.Resolve(ctx, target)
	if err != nil {
		return descriptor.Resolution{}, err
	}
	res.Name = ref.Name
	return res, nil
}
