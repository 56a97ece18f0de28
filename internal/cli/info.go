// internal/cli/info.go
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arc-language/devshell"
)

func infoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info [package]",
		Short: "Show how a single package resolves",
		Long:  `Resolve one package name through the configured resolvers and show the result together with its registry entry.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, err := a.shell()
			if err != nil {
				return err
			}

			set, err := sh.Declare(cmd.Context(), []devshell.Reference{{Name: args[0]}})
			if err != nil {
				return err
			}
			res := set.At(0).Resolution

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Package: %s\n", res.Name)
			fmt.Fprintf(out, "Source: %s\n", res.Source)
			fmt.Fprintf(out, "Store path: %s\n", orDash(res.StorePath))
			fmt.Fprintf(out, "Library dir: %s\n", orDash(res.LibDir))

			if entry, err := sh.RegistryEntry(args[0]); err == nil {
				if len(entry.Libs) > 0 {
					fmt.Fprintf(out, "Libraries: %s\n", strings.Join(entry.Libs, ", "))
				}
				for backend, name := range entry.Backends {
					fmt.Fprintf(out, "Backend %s: %s\n", backend, name)
				}
			}
			return nil
		},
	}
}
