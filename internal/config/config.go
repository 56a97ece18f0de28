package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/arc-language/devshell"
	"github.com/arc-language/devshell/pkg/index"
	"github.com/arc-language/devshell/pkg/nix"
)

// Config holds all devshell configuration.
type Config struct {
	Descriptor  string         `mapstructure:"descriptor"`
	Shell       string         `mapstructure:"shell"`
	StoreDir    string         `mapstructure:"store_dir"`
	InstallPath string         `mapstructure:"install_path"`
	Backend     string         `mapstructure:"backend"`
	CachePath   string         `mapstructure:"cache_path"`
	Resolvers   []string       `mapstructure:"resolvers"`
	Nix         NixConfig      `mapstructure:"nix"`
	Registry    RegistryConfig `mapstructure:"registry"`
	Log         LogConfig      `mapstructure:"log"`
}

// NixConfig holds Nix resolver and binary cache configuration.
type NixConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Flake    string        `mapstructure:"flake"`
	CacheURL string        `mapstructure:"cache_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// RegistryConfig locates the registry repository used by sync.
type RegistryConfig struct {
	URL    string `mapstructure:"url"`
	Branch string `mapstructure:"branch"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultPath returns $XDG_CONFIG_HOME/devshell/config.yaml, falling back
// to ~/.config.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "devshell", "config.yaml")
}

// LoadConfig loads configuration from file and environment. An empty
// configPath reads DefaultPath when it exists.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	home, _ := os.UserHomeDir()

	v.SetDefault("descriptor", "")
	v.SetDefault("shell", "")
	v.SetDefault("store_dir", nix.DefaultStoreDir)
	v.SetDefault("install_path", filepath.Join(home, ".devshell"))
	v.SetDefault("backend", "nix")
	v.SetDefault("cache_path", filepath.Join(home, ".cache", "devshell"))
	v.SetDefault("resolvers", []string{devshell.ResolverStore, devshell.ResolverIndex, devshell.ResolverLayout})
	v.SetDefault("nix.enabled", false)
	v.SetDefault("nix.flake", nix.DefaultFlake)
	v.SetDefault("nix.cache_url", nix.DefaultCacheURL)
	v.SetDefault("nix.timeout", nix.DefaultTimeout.String())
	v.SetDefault("registry.url", index.RepoURL)
	v.SetDefault("registry.branch", index.RepoBranch)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultPath()
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// Missing files fall back to defaults; an explicit file that
			// exists but cannot be read is an error.
			if explicit {
				if _, statErr := os.Stat(configPath); statErr == nil {
					return nil, fmt.Errorf("failed to read config file: %w", err)
				}
			}
		}
	}

	v.SetEnvPrefix("DEVSHELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ShellConfig converts the loaded configuration into the facade's Config.
func (c *Config) ShellConfig(logger *slog.Logger) *devshell.Config {
	return &devshell.Config{
		StoreDir:    c.StoreDir,
		InstallPath: c.InstallPath,
		Backend:     c.Backend,
		CachePath:   c.CachePath,
		Resolvers:   c.Resolvers,
		Logger:      logger,
		Nix: &devshell.NixConfig{
			Enabled:  c.Nix.Enabled,
			Flake:    c.Nix.Flake,
			CacheURL: c.Nix.CacheURL,
			Timeout:  c.Nix.Timeout,
		},
		Registry: &devshell.RegistryConfig{
			URL:    c.Registry.URL,
			Branch: c.Registry.Branch,
		},
	}
}

// SetupLogger creates a logger with the configured level and format.
// Output goes to stderr so stdout stays usable for eval.
func SetupLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
