// config.go
package devshell

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/arc-language/devshell/pkg/index"
	"github.com/arc-language/devshell/pkg/nix"
)

// Resolver names accepted in Config.Resolvers.
const (
	ResolverStore  = "store"
	ResolverIndex  = "index"
	ResolverLayout = "layout"
	ResolverNix    = "nix"
)

// BackendAuto selects the backend from the registries found on the host.
const BackendAuto = "auto"

// Config holds configuration for building a Shell
type Config struct {
	// StoreDir is the Nix store scanned by the store resolver
	StoreDir string

	// InstallPath holds packages unpacked as <InstallPath>/<name>
	InstallPath string

	// Backend selects registry aliases and the install tree layout;
	// BackendAuto detects it
	Backend string

	// CachePath holds the synced index and deps/ registry
	CachePath string

	// Resolvers lists resolver names in lookup order
	Resolvers []string

	// Logger for debug output; nil discards
	Logger *slog.Logger

	// Nix-specific configuration
	Nix *NixConfig

	// Registry repository configuration
	Registry *RegistryConfig
}

// NixConfig holds Nix-specific configuration
type NixConfig struct {
	Enabled  bool          // Resolve through the nix CLI after the other resolvers
	Flake    string        // Default: nixpkgs
	CacheURL string        // Default: https://cache.nixos.org
	Timeout  time.Duration // Binary cache request timeout
}

// RegistryConfig locates the registry repository synced into CachePath
type RegistryConfig struct {
	URL    string
	Branch string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		StoreDir:    nix.DefaultStoreDir,
		InstallPath: filepath.Join(homeDir, ".devshell"),
		Backend:     "nix",
		CachePath:   filepath.Join(homeDir, ".cache", "devshell"),
		Resolvers:   []string{ResolverStore, ResolverIndex, ResolverLayout},
		Nix: &NixConfig{
			Flake:    nix.DefaultFlake,
			CacheURL: nix.DefaultCacheURL,
			Timeout:  nix.DefaultTimeout,
		},
		Registry: &RegistryConfig{
			URL:    index.RepoURL,
			Branch: index.RepoBranch,
		},
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}

	out := *c
	if out.StoreDir == "" {
		out.StoreDir = d.StoreDir
	}
	if out.InstallPath == "" {
		out.InstallPath = d.InstallPath
	}
	if out.Backend == "" {
		out.Backend = d.Backend
	}
	if out.CachePath == "" {
		out.CachePath = d.CachePath
	}
	if len(out.Resolvers) == 0 {
		out.Resolvers = d.Resolvers
	}
	if out.Nix == nil {
		out.Nix = d.Nix
	}
	if out.Registry == nil {
		out.Registry = d.Registry
	}
	return &out
}
