// internal/cli/shell.go
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func shellCmd(a *app) *cobra.Command {
	var shellPath string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell in the environment",
		Long: `Resolve the descriptor and start $SHELL with the derived environment.
The exit status of the shell becomes the exit status of devshell.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, act, err := a.activate(cmd.Context())
			if err != nil {
				return err
			}

			program := firstNonEmpty(shellPath, a.config.Shell, os.Getenv("SHELL"), "/bin/sh")
			a.logger.Info("starting shell", "shell", program, "name", act.Descriptor.Name)

			child := sh.Command(cmd.Context(), act.Environment, program)
			return runChild(child)
		},
	}

	cmd.Flags().StringVar(&shellPath, "shell", "", "shell to start (default is $SHELL)")
	return cmd
}

func runCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run -- <command> [args...]",
		Short: "Run a command in the environment",
		Long: `Run a command with the derived environment.

Examples:
  devshell run -- cargo build
  devshell run -f gfx.yaml -- ./target/debug/demo`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, act, err := a.activate(cmd.Context())
			if err != nil {
				return err
			}

			child := sh.Command(cmd.Context(), act.Environment, args[0], args[1:]...)
			if err := runChild(child); err != nil {
				if _, ok := err.(*ExitError); ok {
					return err
				}
				return fmt.Errorf("running %s: %w", args[0], err)
			}
			return nil
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
