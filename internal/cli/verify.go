// internal/cli/verify.go
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arc-language/devshell"
)

func verifyCmd(a *app) *cobra.Command {
	var cacheURL string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify store packages against the binary cache",
		Long: `Serialize every package resolved into the Nix store as a NAR and compare
its SHA-256 with the NarHash the binary cache advertises.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, act, err := a.activate(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, r := range sh.Verify(cmd.Context(), act.Packages, cacheURL) {
				switch {
				case r.Skipped:
					fmt.Fprintf(out, "  skipped   %s (%s)\n", r.Package.Name, r.Package.Resolution.Source)
				case errors.Is(r.Err, devshell.ErrHashMismatch):
					failed++
					fmt.Fprintf(out, "  MISMATCH  %s: expected %s, got %s\n", r.Package.Name, r.Result.Expected, r.Result.Actual)
				case r.Err != nil:
					failed++
					fmt.Fprintf(out, "  error     %s: %v\n", r.Package.Name, r.Err)
				default:
					fmt.Fprintf(out, "  ok        %s %s\n", r.Package.Name, r.Result.Actual)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d packages failed verification", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cacheURL, "cache", "", "binary cache URL (default from config nix.cache_url)")
	return cmd
}
