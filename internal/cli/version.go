// internal/cli/version.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is overridden at link time with -X.
var Version = "0.1.0"

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "devshell version %s\n", Version)
			fmt.Fprintln(out, "Reproducible development shells")
			fmt.Fprintln(out, "https://github.com/arc-language/devshell")
		},
	}
}
