// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newVersionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the toolbridge version and the detected container engine",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: ""},
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "toolbridge "+getVersionString())

			engine, err := app.Engines(cmd.Context())
			if err != nil {
				slog.Debug("no container engine detected", "error", err)
				return
			}
			v, err := engine.Version(cmd.Context())
			if err != nil {
				slog.Debug("container engine version unavailable", "engine", engine.Name(), "error", err)
				return
			}
			fmt.Fprintf(out, "container engine: %s %s\n", engine.Name(), v)
		},
	}
}
