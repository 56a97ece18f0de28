// devshell.go
package devshell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"slices"

	"github.com/arc-language/devshell/pkg/descriptor"
	"github.com/arc-language/devshell/pkg/env"
	"github.com/arc-language/devshell/pkg/index"
	"github.com/arc-language/devshell/pkg/nix"
	"github.com/arc-language/devshell/pkg/platform"
	"github.com/arc-language/devshell/pkg/registry"
	"github.com/arc-language/devshell/pkg/resolve"
)

// Re-export descriptor and environment types for convenience
type (
	Descriptor  = descriptor.Descriptor
	Reference   = descriptor.Reference
	Resolution  = descriptor.Resolution
	PackageSet  = descriptor.PackageSet
	Environment = env.Environment
	Variable    = env.Variable
	// RegistryEntry is the metadata for a package from the deps/ registry.
	RegistryEntry = registry.Entry
)

// Shell resolves descriptors into environments and starts processes in them.
// It holds no mutable state after New returns.
type Shell struct {
	config   *Config
	logger   *slog.Logger
	chain    *resolve.ChainResolver
	resolver descriptor.Resolver
	registry *registry.Registry // nil until deps/ has been synced
}

// Activation is a declared descriptor with its derived environment.
type Activation struct {
	Descriptor  *Descriptor
	Packages    *PackageSet
	Environment *Environment
}

// New builds a Shell whose resolver chain follows cfg.Resolvers.
func New(cfg *Config) (*Shell, error) {
	cfg = cfg.withDefaults()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if cfg.Backend == BackendAuto {
		cfg.Backend = detectBackend(logger)
	}

	s := &Shell{config: cfg, logger: logger}

	var named []resolve.Named
	for _, name := range cfg.Resolvers {
		r, err := s.buildResolver(name)
		if err != nil {
			return nil, err
		}
		if r != nil {
			named = append(named, resolve.Named{Name: name, Resolver: r})
		}
	}
	if cfg.Nix.Enabled && !slices.Contains(cfg.Resolvers, ResolverNix) {
		r, _ := s.buildResolver(ResolverNix)
		named = append(named, resolve.Named{Name: ResolverNix, Resolver: r})
	}

	s.chain = resolve.Chain(logger, named...)
	s.resolver = s.chain

	if reg := registry.New(cfg.CachePath); reg.Exists() {
		s.registry = reg
		s.resolver = resolve.Aliased(reg, cfg.Backend, s.chain)
		logger.Debug("registry aliasing enabled", "cache", cfg.CachePath, "backend", cfg.Backend)
	}

	logger.Debug("resolver chain ready", "resolvers", s.chain.Names())
	return s, nil
}

// buildResolver returns the resolver for name, or nil when it has nothing
// to offer on this host.
func (s *Shell) buildResolver(name string) (descriptor.Resolver, error) {
	cfg := s.config

	switch name {
	case ResolverStore:
		return nix.NewStore(cfg.StoreDir, s.logger), nil

	case ResolverIndex:
		system, err := nix.DetectPlatform()
		if err != nil {
			s.logger.Debug("index resolver disabled", "error", err)
			return nil, nil
		}
		idx, err := index.Load(cfg.CachePath, system)
		if errors.Is(err, index.ErrNoIndex) {
			s.logger.Debug("index resolver disabled", "error", err)
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("loading index: %w", err)
		}
		s.logger.Debug("loaded nix index", "system", system, "attributes", idx.Len())
		return idx, nil

	case ResolverLayout:
		return resolve.Layout(cfg.InstallPath, cfg.Backend), nil

	case ResolverNix:
		if !cfg.Nix.Enabled {
			return nil, nil
		}
		cli := nix.NewCLI(cfg.Nix.Flake, s.logger)
		if !cli.Available() {
			s.logger.Warn("nix resolver enabled but no nix binary found")
		}
		return cli, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownResolver, name)
}

// detectBackend picks the registry backend preferred on this host.
func detectBackend(logger *slog.Logger) string {
	plat, err := platform.Detect()
	if err != nil || plat.Preferred == "" {
		logger.Debug("no preferred backend detected, using nix", "error", err)
		return "nix"
	}
	logger.Debug("detected platform", "platform", plat.String())
	return plat.Preferred
}

// Resolvers returns the active resolver names in lookup order.
func (s *Shell) Resolvers() []string {
	return s.chain.Names()
}

// Config returns the effective configuration.
func (s *Shell) Config() Config {
	return *s.config
}

// Declare resolves refs through the resolver chain.
func (s *Shell) Declare(ctx context.Context, refs []Reference) (*PackageSet, error) {
	return descriptor.Declare(ctx, s.resolver, refs)
}

// Environment derives the environment of a declared descriptor.
func (s *Shell) Environment(d *Descriptor, set *PackageSet) *Environment {
	return env.New(set, env.Options{
		LibraryVar:  d.LibraryVar,
		Name:        d.Name,
		Fingerprint: descriptor.Fingerprint(d.Packages),
		Static:      d.Env,
	})
}

// Activate declares d and derives its environment.
func (s *Shell) Activate(ctx context.Context, d *Descriptor) (*Activation, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	set, err := s.Declare(ctx, d.Packages)
	if err != nil {
		return nil, err
	}

	if dups := set.Duplicates(); len(dups) > 0 {
		s.logger.Debug("duplicate package declarations", "packages", dups)
	}

	return &Activation{
		Descriptor:  d,
		Packages:    set,
		Environment: s.Environment(d, set),
	}, nil
}

// Command prepares name to run inside e. The child's environment is built
// from os.Environ(); the current process is left untouched.
func (s *Shell) Command(ctx context.Context, e *Environment, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = e.Environ(os.Environ())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

// RegistryEntry returns the deps/ registry entry for a canonical name.
func (s *Shell) RegistryEntry(name string) (*RegistryEntry, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("%w: registry has not been synced", registry.ErrNotFound)
	}
	return s.registry.Load(name)
}

// Sync refreshes the index and deps/ registry under CachePath. Resolvers of
// this Shell keep what they loaded; build a new Shell to use the result.
func (s *Shell) Sync(ctx context.Context, progress io.Writer) (*index.Result, error) {
	system, err := nix.DetectPlatform()
	if err != nil {
		return nil, err
	}

	s.logger.Info("syncing package index", "url", s.config.Registry.URL, "branch", s.config.Registry.Branch)
	return index.Sync(ctx, s.config.CachePath, s.config.Registry.URL, s.config.Registry.Branch, system, progress)
}
