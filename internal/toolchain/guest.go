// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"toolbridge/internal/process"
	"toolbridge/pkg/fspath"
	"toolbridge/pkg/platform"
	"toolbridge/pkg/types"
)

type (
	// GuestToolchain is a toolchain living inside a guest distribution. Its
	// location is a guest-native absolute path.
	GuestToolchain struct {
		location   string
		name       string
		dist       Distribution
		translator *PathTranslator
		launcher   *process.Launcher

		hostListSeparator string
		elevate           bool
	}

	// GuestOption configures a GuestToolchain.
	GuestOption func(*GuestToolchain)
)

// WithLauncher sets the process launcher used by StartProcess.
func WithLauncher(l *process.Launcher) GuestOption {
	return func(t *GuestToolchain) {
		t.launcher = l
	}
}

// WithHostListSeparator overrides the separator host path lists are split on.
func WithHostListSeparator(sep string) GuestOption {
	return func(t *GuestToolchain) {
		t.hostListSeparator = sep
	}
}

// WithElevation makes patched command lines run as the guest superuser.
func WithElevation(elevate bool) GuestOption {
	return func(t *GuestToolchain) {
		t.elevate = elevate
	}
}

// NewGuestToolchain creates a toolchain rooted at the guest path location.
func NewGuestToolchain(location, name string, dist Distribution, opts ...GuestOption) *GuestToolchain {
	t := &GuestToolchain{
		location:          location,
		name:              name,
		dist:              dist,
		translator:        NewPathTranslator(dist),
		launcher:          process.NewLauncher(),
		hostListSeparator: platform.HostListSeparator,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *GuestToolchain) Location() string { return t.location }

func (t *GuestToolchain) HostLocation() types.HostPath {
	return t.translator.HostAddress(t.location)
}

func (t *GuestToolchain) Name() string { return t.name }

// Distribution returns the guest this toolchain lives in.
func (t *GuestToolchain) Distribution() Distribution { return t.dist }

func (t *GuestToolchain) FileSeparator() string { return fspath.GuestSeparator }

// PatchCommandLine rewrites a host command line for execution in the guest.
// Every parameter and every segment of every environment value is translated;
// strings that are not mappable paths pass through untouched. The caller's
// command line is not modified.
func (t *GuestToolchain) PatchCommandLine(cl *CommandLine) (*CommandLine, error) {
	patched := cl.Clone()

	for i := range patched.Groups {
		params := patched.Groups[i].Params
		for j, p := range params {
			params[j] = t.ToRemotePath(p)
		}
	}

	for key, value := range patched.Env {
		segments := strings.Split(value, t.hostListSeparator)
		for i, s := range segments {
			segments[i] = t.ToRemotePath(s)
		}
		patched.Env[key] = strings.Join(segments, fspath.GuestListSeparator)
	}

	// A guest-style working directory is a caller convention; bring it back to
	// host form so both sides agree on what it names.
	if strings.HasPrefix(patched.WorkDir, fspath.GuestSeparator) {
		patched.WorkDir = t.ToLocalPath(patched.WorkDir)
	}

	opts := PatchOptions{Elevate: t.elevate}
	if patched.WorkDir != "" {
		opts.WorkDir = t.ToRemotePath(patched.WorkDir)
	}
	if patched.InputFile != "" {
		opts.InputRedirection = t.ToRemotePath(patched.InputFile)
	}

	out, err := t.dist.PatchCommandLine(patched, opts)
	if err != nil {
		return nil, fmt.Errorf("patching command line for %s: %w", cl.Exe, err)
	}
	slog.Debug("patched guest command line", "exe", out.Exe, "guest_workdir", opts.WorkDir)
	return out, nil
}

// StartProcess launches a command line already produced by PatchCommandLine.
func (t *GuestToolchain) StartProcess(ctx context.Context, cl *CommandLine) (*process.Handle, error) {
	return start(ctx, t.launcher, cl)
}

func (t *GuestToolchain) ToLocalPath(remote string) string { return t.translator.ToLocalPath(remote) }

func (t *GuestToolchain) ToRemotePath(local string) string { return t.translator.ToRemotePath(local) }

func (t *GuestToolchain) ExpandUserHome(remote string) string {
	return t.translator.ExpandUserHome(remote)
}

// ExecutableName returns tool unchanged: guest binaries carry no suffix.
func (t *GuestToolchain) ExecutableName(tool string) string { return tool }

// PathToExecutable returns the host address of tool under the install root.
// It does not check that the file exists.
func (t *GuestToolchain) PathToExecutable(tool string) types.HostPath {
	return absOrSelf(fspath.JoinHost(t.HostLocation(), t.ExecutableName(tool)))
}

// PathToCargoExecutable prefers the install root and falls back to the guest
// user's ~/.cargo/bin. The fallback is returned whether or not it exists.
func (t *GuestToolchain) PathToCargoExecutable(tool string) types.HostPath {
	primary := t.PathToExecutable(tool)
	if isRegularFile(primary) {
		return primary
	}
	cargoBin := t.translator.HostAddress(t.ExpandUserHome(CargoBinDir))
	return absOrSelf(fspath.JoinHost(cargoBin, t.ExecutableName(tool)))
}

func (t *GuestToolchain) HasExecutable(tool string) bool {
	return isRegularFile(t.PathToExecutable(tool))
}

func (t *GuestToolchain) HasCargoExecutable(tool string) bool {
	return isRegularFile(t.PathToCargoExecutable(tool))
}

// absOrSelf makes p absolute, keeping p when the working directory is unknown.
func absOrSelf(p types.HostPath) types.HostPath {
	abs, err := fspath.AbsHost(p)
	if err != nil {
		return p
	}
	return abs
}
