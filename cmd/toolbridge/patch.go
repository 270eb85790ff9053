// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPatchCommand(app *App) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "patch --root <root> -- <tool> [args...]",
		Short: "Print a command line as it would run on the toolchain's side",
		Long: `Resolve the toolchain root, build the command line 'run' would start and
print it after patching, without starting anything. Arguments and
environment values that name mappable host paths are shown in their guest
form.`,
		Example: `  toolbridge patch --root '\\wsl$\Ubuntu\home\me\.cargo' --workdir . -- cargo build`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := app.resolveToolchain(flags.root, flags.name, flags.elevate)
			if err != nil {
				return err
			}
			cl, err := flags.commandLine(tc, args)
			if err != nil {
				return err
			}
			patched, err := tc.PatchCommandLine(cl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), patched.String())
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
