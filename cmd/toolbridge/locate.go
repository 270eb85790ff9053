// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"toolbridge/internal/issue"
	"toolbridge/internal/toolchain"
	"toolbridge/pkg/types"
)

// toolchainFlags are the flags shared by every command that resolves a root.
type toolchainFlags struct {
	root string
	name string
}

func (f *toolchainFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.root, "root", "", "toolchain root (UNC path, <engine>://<container>/<path>, or host path)")
	cmd.Flags().StringVar(&f.name, "name", "", "toolchain name (default: channel from rust-toolchain in the working directory)")
	_ = cmd.MarkFlagRequired("root")
}

func newLocateCommand(app *App) *cobra.Command {
	var (
		flags toolchainFlags
		cargo bool
	)

	cmd := &cobra.Command{
		Use:   "locate <tool>",
		Short: "Print the host path of a toolchain executable",
		Long: `Resolve the toolchain root and print the path, addressed from the host,
of the executable for <tool>. With --cargo the per-user cargo bin directory of
the toolchain's side is searched instead of the toolchain itself.

Exits with status 1 when the executable does not exist.`,
		Example: `  toolbridge locate rustc --root '\\wsl$\Ubuntu\home\me\.rustup\toolchains\stable'
  toolbridge locate rustfmt --cargo --root docker://builder/usr/local/cargo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := app.resolveToolchain(flags.root, flags.name, false)
			if err != nil {
				return err
			}
			return locateExecutable(cmd, tc, args[0], cargo)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&cargo, "cargo", false, "search the cargo bin directory instead of the toolchain")

	return cmd
}

func locateExecutable(cmd *cobra.Command, tc toolchain.Toolchain, tool string, cargo bool) error {
	var (
		path   types.HostPath
		exists bool
	)
	if cargo {
		path, exists = tc.PathToCargoExecutable(tool), tc.HasCargoExecutable(tool)
	} else {
		path, exists = tc.PathToExecutable(tool), tc.HasExecutable(tool)
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)
	if exists {
		return nil
	}

	err := issue.NewErrorContext().
		WithOperation("locate executable").
		WithResource(string(path)).
		WithSuggestion("Install the tool into the toolchain, or retry with --cargo for cargo-installed tools").
		Wrap(fmt.Errorf("%s not found in %s", tool, tc.Location())).
		BuildError()
	return &ExitError{Code: 1, Err: newServiceError(err, issue.ExecutableNotFoundId, "")}
}
