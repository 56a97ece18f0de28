// internal/cli/check.go
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arc-language/devshell"
)

func checkCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that every expected library is on the library path",
		Long: `Resolve the descriptor, then look up each library listed under
expect_libs, plus the libraries the registry records for declared packages,
in the derived library directories.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sh, act, err := a.activate(cmd.Context())
			if err != nil {
				return err
			}

			expected := expectedLibraries(sh, act)
			missing := act.Environment.Missing(expected)

			out := cmd.OutOrStdout()
			for _, name := range expected {
				if lib := act.Environment.FindSharedLibrary(name); lib != nil {
					fmt.Fprintf(out, "  ok       %s (%s)\n", name, lib.Path)
				} else {
					fmt.Fprintf(out, "  missing  %s\n", name)
				}
			}

			if all {
				fmt.Fprintln(out, "Libraries on the search path:")
				for _, lib := range act.Environment.FindAllLibraries() {
					fmt.Fprintf(out, "  %s (%s)\n", lib.Name, lib.Path)
				}
			}

			if len(missing) > 0 {
				return fmt.Errorf("%d of %d libraries missing: %s", len(missing), len(expected), strings.Join(missing, ", "))
			}
			fmt.Fprintf(out, "All %d libraries found in %d directories\n", len(expected), len(act.Environment.LibraryDirs()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "also list every library found in the library directories")
	return cmd
}

// expectedLibraries merges expect_libs with registry libs, first
// occurrence wins.
func expectedLibraries(sh *devshell.Shell, act *devshell.Activation) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	for _, name := range act.Descriptor.ExpectLibs {
		add(name)
	}
	for _, p := range act.Packages.Packages() {
		if p.NoLibs {
			continue
		}
		if entry, err := sh.RegistryEntry(p.Name); err == nil {
			for _, name := range entry.Libs {
				add(name)
			}
		}
	}
	return names
}
