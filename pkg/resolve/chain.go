package resolve

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/arc-language/devshell/pkg/descriptor"
)

// Named is a resolver tagged with a name for logging.
type Named struct {
	Name     string
	Resolver descriptor.Resolver
}

// ChainResolver asks each resolver in order. A not-found answer moves on to
// the next resolver; any other error stops the chain.
type ChainResolver struct {
	resolvers []Named
	logger    *slog.Logger
}

// Chain builds a ChainResolver. A nil logger discards output.
func Chain(logger *slog.Logger, resolvers ...Named) *ChainResolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ChainResolver{resolvers: resolvers, logger: logger}
}

// Names returns the resolver names in lookup order.
func (c *ChainResolver) Names() []string {
	names := make([]string, 0, len(c.resolvers))
	for _, r := range c.resolvers {
		names = append(names, r.Name)
	}
	return names
}

// Resolve implements descriptor.Resolver.
func (c *ChainResolver) Resolve(ctx context.Context, ref descriptor.Reference) (descriptor.Resolution, error) {
	for _, r := range c.resolvers {
		res, err := r.Resolver.Resolve(ctx, ref)
		if err == nil {
			c.logger.Debug("resolved package",
				"package", ref.Name,
				"resolver", r.Name,
				"store_path", res.StorePath,
				"lib_dir", res.LibDir)
			return res, nil
		}
		if !descriptor.IsNotFound(err) {
			return descriptor.Resolution{}, fmt.Errorf("%s resolver: %w", r.Name, err)
		}
		c.logger.Debug("package not found", "package", ref.Name, "resolver", r.Name)
	}

	return descriptor.Resolution{}, fmt.Errorf("%w (tried %v)", descriptor.ErrPackageNotFound, c.Names())
}
