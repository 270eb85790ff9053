// SPDX-License-Identifier: MPL-2.0

package wsl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os/exec"
	"slices"
	"strings"
	"sync"

	"mvdan.cc/sh/v3/syntax"

	"toolbridge/internal/issue"
	"toolbridge/internal/toolchain"
	"toolbridge/pkg/fspath"
	"toolbridge/pkg/types"
)

const (
	// DefaultExecutable is the WSL launcher on the Windows host.
	DefaultExecutable = "wsl.exe"
	// DefaultMountRoot is where WSL mounts host drives.
	DefaultMountRoot = "/mnt/"
	// DefaultShell interprets the launch script inside the guest.
	DefaultShell = "/bin/sh"
)

// ErrHomeUnknown is returned when the guest reports no home directory.
var ErrHomeUnknown = errors.New("guest home directory is unknown")

type (
	// ExecCommandFunc builds host commands (wsl.exe invocations).
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Distribution is one WSL distribution. It is safe for concurrent use; the
	// guest home directory is probed at most once.
	Distribution struct {
		name        string
		uncRoot     types.HostPath
		executable  string
		mountRoot   string
		shell       string
		execCommand ExecCommandFunc

		home func() (string, error)
	}

	// Option configures a Distribution.
	Option func(*Distribution)
)

// WithExecutable sets the wsl.exe path.
func WithExecutable(path string) Option {
	return func(d *Distribution) {
		if path != "" {
			d.executable = path
		}
	}
}

// WithMountRoot sets where host drives are mounted in the guest
// (automount.root in wsl.conf).
func WithMountRoot(root string) Option {
	return func(d *Distribution) {
		if root != "" {
			d.mountRoot = "/" + strings.Trim(root, "/") + "/"
			if d.mountRoot == "//" {
				d.mountRoot = "/"
			}
		}
	}
}

// WithShell sets the guest shell used to run launch scripts.
func WithShell(shell string) Option {
	return func(d *Distribution) {
		if shell != "" {
			d.shell = shell
		}
	}
}

// WithUNCPrefix selects the share prefix used to address the guest.
func WithUNCPrefix(prefix string) Option {
	return func(d *Distribution) {
		if p, ok := matchPrefix(prefix); ok {
			d.uncRoot = types.HostPath(p + d.name)
		}
	}
}

// WithExecCommand overrides how wsl.exe is invoked for probes.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(d *Distribution) {
		d.execCommand = fn
	}
}

// NewDistribution creates a handle for the named distribution.
func NewDistribution(name string, opts ...Option) *Distribution {
	d := &Distribution{
		name:        name,
		uncRoot:     types.HostPath(UNCPrefix + name),
		executable:  DefaultExecutable,
		mountRoot:   DefaultMountRoot,
		shell:       DefaultShell,
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.home = sync.OnceValues(d.probeHome)
	return d
}

// Name returns the distribution name.
func (d *Distribution) Name() string { return d.name }

// UNCRoot returns the host share addressing the guest root.
func (d *Distribution) UNCRoot() types.HostPath { return d.uncRoot }

// LocalPath maps a guest path to the host: paths under the drive mount root
// become drive paths, other absolute paths go through the UNC share.
func (d *Distribution) LocalPath(remote string) (string, bool) {
	if !fspath.IsGuestAbs(remote) {
		return "", false
	}

	if rest, ok := strings.CutPrefix(remote, d.mountRoot); ok {
		drive, tail, _ := strings.Cut(rest, "/")
		if len(drive) == 1 && isLetter(drive[0]) {
			return strings.ToUpper(drive) + `:\` + strings.ReplaceAll(strings.Trim(tail, "/"), "/", `\`), true
		}
	}

	return d.HostAddress(remote), true
}

// RemotePath maps a host path into the guest: drive paths go under the mount
// root, paths on this distribution's share become guest paths. Anything else,
// including shares of other distributions, is unmappable.
func (d *Distribution) RemotePath(local string) (string, bool) {
	if _, distro, guestPath, ok := ParseUNC(local); ok {
		if !strings.EqualFold(distro, d.name) {
			return "", false
		}
		return guestPath, true
	}

	if len(local) < 2 || !isLetter(local[0]) || local[1] != ':' {
		return "", false
	}
	if len(local) > 2 && local[2] != '\\' && local[2] != '/' {
		// Drive-relative paths (C:foo) have no guest equivalent.
		return "", false
	}

	tail := strings.Trim(strings.ReplaceAll(local[2:], `\`, "/"), "/")
	guest := d.mountRoot + strings.ToLower(local[:1])
	if tail != "" {
		guest = fspath.JoinGuest(guest, tail)
	}
	return guest, true
}

// ExpandUserHome expands a leading "~" using the guest's $HOME. If the home
// directory cannot be determined the path is returned unchanged.
func (d *Distribution) ExpandUserHome(remote string) string {
	if remote != "~" && !strings.HasPrefix(remote, "~/") {
		return remote
	}
	home, err := d.home()
	if err != nil {
		slog.Warn("cannot expand guest home directory", "distribution", d.name, "error", err)
		return remote
	}
	return home + strings.TrimPrefix(remote, "~")
}

// HostAddress returns the UNC path of a guest path.
func (d *Distribution) HostAddress(guest string) string {
	return string(fspath.JoinHost(d.uncRoot, guest))
}

// PatchCommandLine wraps cl into a wsl.exe invocation running a guest shell
// script that exports the environment, enters the working directory and
// execs the command.
func (d *Distribution) PatchCommandLine(cl *toolchain.CommandLine, opts toolchain.PatchOptions) (*toolchain.CommandLine, error) {
	script, err := d.launchScript(cl, opts)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("build WSL launch script").
			WithResource(cl.Exe).
			WithSuggestion("Environment variable names must be valid shell identifiers").
			Wrap(err).
			BuildError()
	}

	entry := []string{"--distribution", d.name}
	if opts.Elevate {
		entry = append(entry, "--user", "root")
	}
	entry = append(entry, "--exec", d.shell, "-c")

	patched := &toolchain.CommandLine{
		Exe:   d.executable,
		Env:   map[string]string{},
		Stdin: cl.Stdin,
		PTY:   cl.PTY,
	}
	patched.AddGroup("wsl", entry...)
	patched.AddGroup("script", script)
	return patched, nil
}

func (d *Distribution) launchScript(cl *toolchain.CommandLine, opts toolchain.PatchOptions) (string, error) {
	var sb strings.Builder

	for _, k := range slices.Sorted(maps.Keys(cl.Env)) {
		if !syntax.ValidName(k) {
			return "", fmt.Errorf("invalid environment variable name %q", k)
		}
		v, err := syntax.Quote(cl.Env[k], syntax.LangPOSIX)
		if err != nil {
			return "", fmt.Errorf("quoting %s: %w", k, err)
		}
		fmt.Fprintf(&sb, "export %s=%s && ", k, v)
	}

	if opts.WorkDir != "" {
		wd, err := syntax.Quote(opts.WorkDir, syntax.LangPOSIX)
		if err != nil {
			return "", fmt.Errorf("quoting working directory: %w", err)
		}
		fmt.Fprintf(&sb, "cd %s && ", wd)
	}

	exe := cl.Exe
	if guest, ok := d.RemotePath(exe); ok {
		exe = guest
	}
	words := append([]string{exe}, cl.Args()...)
	sb.WriteString("exec")
	for _, w := range words {
		q, err := syntax.Quote(w, syntax.LangPOSIX)
		if err != nil {
			return "", fmt.Errorf("quoting argument: %w", err)
		}
		sb.WriteByte(' ')
		sb.WriteString(q)
	}

	if opts.InputRedirection != "" {
		in, err := syntax.Quote(opts.InputRedirection, syntax.LangPOSIX)
		if err != nil {
			return "", fmt.Errorf("quoting input redirection: %w", err)
		}
		sb.WriteString(" < ")
		sb.WriteString(in)
	}

	return sb.String(), nil
}

func (d *Distribution) probeHome() (string, error) {
	cmd := d.execCommand(context.Background(), d.executable, "--distribution", d.name, "--exec", "printenv", "HOME")
	out, err := cmd.Output()
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("probe guest home directory").
			WithResource(d.name).
			WithSuggestion("Check that the distribution exists: wsl.exe --list --verbose").
			Wrap(err).
			BuildError()
	}
	home := strings.TrimSpace(string(out))
	if !fspath.IsGuestAbs(home) {
		return "", fmt.Errorf("%w: %s printed %q", ErrHomeUnknown, d.name, home)
	}
	slog.Debug("probed guest home directory", "distribution", d.name, "home", home)
	return strings.TrimRight(home, "/"), nil
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

var _ toolchain.Distribution = (*Distribution)(nil)
