// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"toolbridge/internal/issue"
	"toolbridge/internal/toolchain"
	"toolbridge/pkg/fspath"
	"toolbridge/pkg/types"
)

// runFlags are the flags of commands that build a command line.
type runFlags struct {
	toolchainFlags
	workDir   string
	env       []string
	stdinFile string
	tty       bool
	elevate   bool
	cargo     bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	f.toolchainFlags.register(cmd)
	cmd.Flags().StringVar(&f.workDir, "workdir", "", "working directory (host path, or guest path starting with /)")
	cmd.Flags().StringArrayVar(&f.env, "env", nil, "environment variable as KEY=VALUE (repeatable)")
	cmd.Flags().StringVar(&f.stdinFile, "stdin-file", "", "host file to feed as standard input")
	cmd.Flags().BoolVar(&f.tty, "tty", false, "attach the tool to a pseudo-terminal")
	cmd.Flags().BoolVar(&f.elevate, "elevate", false, "run as root inside the guest")
	cmd.Flags().BoolVar(&f.cargo, "cargo", false, "resolve the tool from the cargo bin directory")
}

// commandLine builds the host command line for args. A tool given as a path is
// used verbatim; a bare name is resolved through the toolchain.
func (f *runFlags) commandLine(tc toolchain.Toolchain, args []string) (*toolchain.CommandLine, error) {
	cl := toolchain.NewCommandLine(resolveTool(tc, args[0], f.cargo), args[1:]...)

	for _, kv := range f.env {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --env value %q: want KEY=VALUE", kv)
		}
		cl.SetEnv(key, value)
	}

	if f.workDir != "" {
		wd, err := hostAbs(f.workDir)
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		cl.WorkDir = wd
	}
	if f.stdinFile != "" {
		in, err := hostAbs(f.stdinFile)
		if err != nil {
			return nil, fmt.Errorf("resolving input file: %w", err)
		}
		cl.InputFile = in
	}
	cl.PTY = f.tty

	return cl, nil
}

func resolveTool(tc toolchain.Toolchain, tool string, cargo bool) string {
	if strings.ContainsAny(tool, `/\`) {
		return tool
	}
	if cargo {
		return string(tc.PathToCargoExecutable(tool))
	}
	return string(tc.PathToExecutable(tool))
}

// hostAbs makes relative host paths absolute. Guest-style and Windows-style
// paths are kept for the toolchain to interpret.
func hostAbs(p string) (string, error) {
	if fspath.IsGuestAbs(p) || fspath.IsWindowsStyle(p) {
		return p, nil
	}
	return filepath.Abs(p)
}

func newRunCommand(app *App) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run --root <root> -- <tool> [args...]",
		Short: "Run a tool on the toolchain's side",
		Long: `Resolve the toolchain root, rewrite the command line for the toolchain's
side and run it, streaming its output. toolbridge exits with the tool's exit
code.

A bare tool name is resolved in the toolchain (or its cargo bin directory with
--cargo); a tool given as a path is used as is.`,
		Example: `  toolbridge run --root '\\wsl$\Ubuntu\home\me\.cargo' --workdir . -- cargo build
  toolbridge run --root docker://builder/usr/local/cargo --env RUST_LOG=debug -- cargo test`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := app.resolveToolchain(flags.root, flags.name, flags.elevate)
			if err != nil {
				return err
			}
			cl, err := flags.commandLine(tc, args)
			if err != nil {
				return err
			}
			if cl.InputFile == "" {
				cl.Stdin = cmd.InOrStdin()
			}
			return runTool(cmd, tc, cl)
		},
	}

	flags.register(cmd)
	return cmd
}

// runTool patches cl, starts it and streams its output until it exits. A
// non-zero exit becomes an ExitError without a message of its own.
func runTool(cmd *cobra.Command, tc toolchain.Toolchain, cl *toolchain.CommandLine) error {
	patched, err := tc.PatchCommandLine(cl)
	if err != nil {
		return err
	}
	slog.Debug("running tool", "command", patched.String())

	handle, err := tc.StartProcess(cmd.Context(), patched)
	if err != nil {
		return err
	}
	defer handle.Close()

	var wg sync.WaitGroup
	stream := func(w io.Writer, r io.Reader) {
		defer wg.Done()
		// A terminal reports EIO once the child side closes.
		if _, err := io.Copy(w, r); err != nil && !errors.Is(err, syscall.EIO) {
			slog.Debug("output stream ended", "error", err)
		}
	}
	wg.Add(2)
	go stream(cmd.OutOrStdout(), handle.Stdout())
	go stream(cmd.ErrOrStderr(), handle.Stderr())
	wg.Wait()

	code, err := handle.Wait()
	if err != nil {
		return fmt.Errorf("waiting for %s: %w", patched.Exe, err)
	}
	switch {
	case code.IsSuccess():
		return nil
	case code.IsCommandNotFound():
		return &ExitError{Code: code, Err: toolExitError(patched, code, issue.ExecutableNotFoundId,
			"Check that the tool is installed on the toolchain's side",
			"Use 'toolbridge locate' to see where the tool is expected")}
	case code.IsNotExecutable():
		return &ExitError{Code: code, Err: toolExitError(patched, code, issue.PermissionDeniedId,
			"Check the file's execute permission on the toolchain's side")}
	default:
		return &ExitError{Code: code}
	}
}

// toolExitError explains the exit codes shells reserve for commands they
// could not start.
func toolExitError(cl *toolchain.CommandLine, code types.ExitCode, id issue.Id, suggestions ...string) error {
	err := issue.NewErrorContext().
		WithOperation("run tool").
		WithResource(cl.Exe).
		WithSuggestions(suggestions...).
		Wrap(fmt.Errorf("exit status %s", code)).
		BuildError()
	return newServiceError(err, id, "")
}
