// internal/cli/list.go
package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func packagesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "packages",
		Aliases: []string{"list"},
		Short:   "List the declared packages and how they resolved",
		Long: `List every declared package in declaration order with the resolver
that answered, its store path and its library directory. Names declared
more than once are marked with *.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, act, err := a.activate(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			dups := act.Packages.Duplicates()

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSOURCE\tSTORE PATH\tLIB DIR")
			for _, p := range act.Packages.Packages() {
				name := p.Name
				if dups[name] > 0 {
					name += "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					name, p.Resolution.Source, orDash(p.Resolution.StorePath), orDash(p.Resolution.LibDir))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(out, "\n%d packages, resolvers: %v\n", act.Packages.Len(), sh.Resolvers())
			if len(dups) > 0 {
				fmt.Fprintln(out, "* = declared more than once")
			}
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
