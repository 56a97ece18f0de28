// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arc-language/devshell"
	"github.com/arc-language/devshell/internal/config"
)

// app carries the state shared by every command of one invocation.
type app struct {
	cfgFile  string
	file     string
	logLevel string
	debug    bool

	config *config.Config
	logger *slog.Logger
	sh     *devshell.Shell
}

// Execute executes the root command
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "devshell",
		Short: "Reproducible development shells",
		Long: `devshell - Reproducible development shells

Declares the packages a project needs, resolves them against the Nix store
and runs commands with a library search path derived from them.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initConfig,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/devshell/config.yaml)")
	flags.StringVarP(&a.file, "file", "f", "", "environment descriptor (default is ./devshell.yaml, else the built-in one)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		shellCmd(a),
		runCmd(a),
		envCmd(a),
		libpathCmd(a),
		packagesCmd(a),
		infoCmd(a),
		checkCmd(a),
		verifyCmd(a),
		syncCmd(a),
		initCmd(a),
		versionCmd(),
	)
	return rootCmd
}

func (a *app) initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(a.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Override config with flags
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.debug {
		cfg.Log.Level = "debug"
	}
	if a.file != "" {
		cfg.Descriptor = a.file
	}

	a.config = cfg
	a.logger = config.SetupLogger(cfg)
	return nil
}

// shell builds the facade on first use so commands that never resolve
// anything do not scan the store.
func (a *app) shell() (*devshell.Shell, error) {
	if a.sh != nil {
		return a.sh, nil
	}
	sh, err := devshell.New(a.config.ShellConfig(a.logger))
	if err != nil {
		return nil, err
	}
	a.sh = sh
	return sh, nil
}

// activate loads the descriptor and resolves it.
func (a *app) activate(ctx context.Context) (*devshell.Shell, *devshell.Activation, error) {
	d, err := devshell.LoadDescriptor(a.config.Descriptor)
	if err != nil {
		return nil, nil, err
	}

	sh, err := a.shell()
	if err != nil {
		return nil, nil, err
	}

	act, err := sh.Activate(ctx, d)
	if err != nil {
		return nil, nil, err
	}
	return sh, act, nil
}
