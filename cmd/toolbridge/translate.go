// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"toolbridge/internal/toolchain"
)

func newTranslateCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate paths between the host and a toolchain's side",
		Long: `Translate paths between host form and the form used on the toolchain's
side. Paths that cannot be mapped are printed unchanged, one per line in input
order.`,
	}

	cmd.AddCommand(
		newTranslateSubcommand(app, "to-remote", "Translate host paths to the toolchain's side",
			`  toolbridge translate to-remote --root '\\wsl$\Ubuntu\home\me\.cargo' 'C:\Users\me\project'`,
			toolchain.Toolchain.ToRemotePath),
		newTranslateSubcommand(app, "to-local", "Translate paths on the toolchain's side to host paths",
			`  toolbridge translate to-local --root '\\wsl$\Ubuntu\home\me\.cargo' /mnt/c/Users/me/project`,
			toolchain.Toolchain.ToLocalPath),
		newTranslateSubcommand(app, "home", "Expand a leading ~ with the home directory on the toolchain's side",
			`  toolbridge translate home --root docker://builder/usr/local/cargo '~/.cargo/bin'`,
			toolchain.Toolchain.ExpandUserHome),
	)

	return cmd
}

func newTranslateSubcommand(app *App, use, short, example string, translate func(toolchain.Toolchain, string) string) *cobra.Command {
	var flags toolchainFlags

	cmd := &cobra.Command{
		Use:     use + " <path>...",
		Short:   short,
		Example: example,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := app.resolveToolchain(flags.root, flags.name, false)
			if err != nil {
				return err
			}
			for _, p := range args {
				fmt.Fprintln(cmd.OutOrStdout(), translate(tc, p))
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
