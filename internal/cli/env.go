// internal/cli/env.go
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func envCmd(a *app) *cobra.Command {
	var shellName string

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Print shell code that activates the environment",
		Long: `Print export statements for the derived environment.

Examples:
  eval "$(devshell env)"
  devshell env --shell fish | source`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, act, err := a.activate(cmd.Context())
			if err != nil {
				return err
			}

			if shellName == "" {
				shellName = detectShell(a.config.Shell)
			}
			script, err := act.Environment.ActivateScript(shellName)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), script)
			return nil
		},
	}

	cmd.Flags().StringVar(&shellName, "shell", "", "shell syntax: bash, zsh, sh or fish (default from $SHELL)")
	return cmd
}

// detectShell names the syntax of the configured or login shell.
func detectShell(configured string) string {
	switch name := filepath.Base(firstNonEmpty(configured, os.Getenv("SHELL"))); name {
	case "bash", "zsh", "sh", "fish":
		return name
	}
	return "sh"
}

func libpathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "libpath",
		Short: "Print the derived library search path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, act, err := a.activate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), act.Environment.LibraryPath())
			return nil
		},
	}
}
