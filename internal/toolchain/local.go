// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"toolbridge/internal/process"
	"toolbridge/pkg/fspath"
	"toolbridge/pkg/platform"
	"toolbridge/pkg/types"
)

// LocalToolchain is a toolchain installed on the host. Path translation is the
// identity and patching only copies the command line.
type LocalToolchain struct {
	location types.HostPath
	name     string
	launcher *process.Launcher

	exeSuffix string
	userHome  func() (string, error)
}

// NewLocalToolchain creates a host toolchain rooted at location.
func NewLocalToolchain(location types.HostPath, name string) *LocalToolchain {
	return &LocalToolchain{
		location:  location,
		name:      name,
		launcher:  process.NewLauncher(),
		exeSuffix: platform.ExecutableSuffix(),
		userHome:  os.UserHomeDir,
	}
}

func (t *LocalToolchain) Location() string { return string(t.location) }

func (t *LocalToolchain) HostLocation() types.HostPath { return t.location }

func (t *LocalToolchain) Name() string { return t.name }

func (t *LocalToolchain) FileSeparator() string { return string(filepath.Separator) }

func (t *LocalToolchain) PatchCommandLine(cl *CommandLine) (*CommandLine, error) {
	return cl.Clone(), nil
}

func (t *LocalToolchain) StartProcess(ctx context.Context, cl *CommandLine) (*process.Handle, error) {
	return start(ctx, t.launcher, cl)
}

func (t *LocalToolchain) ToLocalPath(remote string) string { return remote }

func (t *LocalToolchain) ToRemotePath(local string) string { return local }

// ExpandUserHome expands a leading "~" to the host user's home directory.
func (t *LocalToolchain) ExpandUserHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := t.userHome()
	if err != nil {
		return p
	}
	return filepath.Join(home, filepath.FromSlash(strings.TrimPrefix(p, "~")))
}

// ExecutableName appends the host executable suffix (".exe" on Windows).
func (t *LocalToolchain) ExecutableName(tool string) string {
	if t.exeSuffix == "" || strings.HasSuffix(strings.ToLower(tool), t.exeSuffix) {
		return tool
	}
	return tool + t.exeSuffix
}

func (t *LocalToolchain) PathToExecutable(tool string) types.HostPath {
	return absOrSelf(fspath.JoinHost(t.location, t.ExecutableName(tool)))
}

func (t *LocalToolchain) PathToCargoExecutable(tool string) types.HostPath {
	primary := t.PathToExecutable(tool)
	if isRegularFile(primary) {
		return primary
	}
	cargoBin := types.HostPath(t.ExpandUserHome(CargoBinDir))
	return absOrSelf(fspath.JoinHost(cargoBin, t.ExecutableName(tool)))
}

func (t *LocalToolchain) HasExecutable(tool string) bool {
	return isRegularFile(t.PathToExecutable(tool))
}

func (t *LocalToolchain) HasCargoExecutable(tool string) bool {
	return isRegularFile(t.PathToCargoExecutable(tool))
}
