// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"toolbridge/internal/config"
	"toolbridge/internal/issue"
)

// skipConfigAnnotation marks commands that must run without loading the
// configuration file (e.g. when the file itself is broken).
const skipConfigAnnotation = "toolbridge.skip-config"

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "toolbridge",
		Short: "Run host tooling against toolchains in WSL and containers",
		Long: TitleStyle.Render("toolbridge") + SubtitleStyle.Render(" - Run host tooling against toolchains in WSL and containers") + `

toolbridge resolves a toolchain root to a local installation, a WSL
distribution or a running container, translates paths between the host
and the guest, and rewrites command lines so that tools run on the
guest's side of the boundary.

` + SubtitleStyle.Render("Toolchain roots:") + `
  \\wsl$\Ubuntu\home\me\.cargo       WSL distribution
  docker://builder/usr/local/cargo   Docker container
  podman://builder/usr/local/cargo   Podman container
  /home/me/.cargo                    Host installation

` + SubtitleStyle.Render("Examples:") + `
  toolbridge locate cargo --root \\wsl$\Ubuntu\home\me\.cargo
  toolbridge run --root docker://builder/usr/local/cargo -- cargo build
  toolbridge translate to-remote --root docker://builder/usr/local/cargo .
  toolbridge config show`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if _, skip := cmd.Annotations[skipConfigAnnotation]; !skip {
				if _, err := app.loadConfig(cmd.Context()); err != nil {
					return configLoadError(err)
				}
			}
			cfg := app.config()
			applyColorScheme(string(cfg.UI.ColorScheme))
			setupLogging(app.stderr, app.verbose || cfg.UI.Verbose)
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is "+defaultConfigHint()+")")

	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(
		newLocateCommand(app),
		newRunCommand(app),
		newPatchCommand(app),
		newTranslateCommand(app),
		newConfigCommand(app),
		newVersionCommand(app),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the production App and runs the CLI. This is called by
// main.main().
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := NewRootCommand(app)

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// handleError renders errors returned by command handlers. Errors known to
// the issue catalog get their help page above the message.
func (a *App) handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		// The child process already reported its failure.
		return
	}

	err = classifyError(err)
	var svcErr *ServiceError
	var ae *issue.ActionableError
	switch {
	case errors.As(err, &svcErr):
		renderServiceError(w, svcErr, a.issueStyle())
		fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, a.verbose))
	case errors.As(err, &ae):
		fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, a.verbose))
	default:
		fang.DefaultErrorHandler(w, styles, err)
	}
}

// issueStyle picks the glamour style matching the configured color scheme.
func (a *App) issueStyle() string {
	if a.config().UI.ColorScheme == config.ColorSchemeLight {
		return "light"
	}
	return "dark"
}

func defaultConfigHint() string {
	path, err := config.FilePath(config.LoadOptions{})
	if err != nil {
		return config.ConfigFileName + "." + config.ConfigFileExt
	}
	return path
}
