// internal/cli/sync.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func syncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Update the package index and registry",
		Long:  `Clone the registry repository and copy its Nix attribute index and deps/ registry into the cache.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, err := a.shell()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Updating package index from %s...\n", a.config.Registry.URL)
			result, err := sh.Sync(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, f := range result.IndexFiles {
				fmt.Fprintf(out, "index: %s\n", f)
			}
			fmt.Fprintf(out, "deps: %s\n", result.DepsDir)
			if result.Revision != "" {
				fmt.Fprintf(out, "revision: %s\n", result.Revision)
			}
			fmt.Fprintln(out, "Package index updated successfully.")
			return nil
		},
	}
}
