// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"errors"
	"os"

	"toolbridge/internal/process"
	"toolbridge/pkg/types"
)

// CargoBinDir is the per-user directory holding cargo-installed binaries.
const CargoBinDir = "~/.cargo/bin"

// ErrNoToolchain is returned by Lookup when no provider yields a toolchain.
var ErrNoToolchain = errors.New("no toolchain found")

// Toolchain is a toolchain installation, local or guest. Implementations are
// immutable after construction and safe for concurrent use.
type Toolchain interface {
	// Location is the install root in the toolchain's own addressing.
	Location() string
	// HostLocation is the install root addressed from the host.
	HostLocation() types.HostPath
	// Name is the optional display name.
	Name() string

	// FileSeparator is the separator of the toolchain's file system.
	FileSeparator() string
	// PatchCommandLine returns a copy of cl rewritten for the toolchain's side.
	PatchCommandLine(cl *CommandLine) (*CommandLine, error)
	// StartProcess launches an already patched command line.
	StartProcess(ctx context.Context, cl *CommandLine) (*process.Handle, error)

	ToLocalPath(remote string) string
	ToRemotePath(local string) string
	ExpandUserHome(remote string) string

	ExecutableName(tool string) string
	PathToExecutable(tool string) types.HostPath
	PathToCargoExecutable(tool string) types.HostPath
	HasExecutable(tool string) bool
	HasCargoExecutable(tool string) bool
}

// isRegularFile reports whether p names an existing regular file on the host.
// Any stat failure counts as absence.
func isRegularFile(p types.HostPath) bool {
	info, err := os.Stat(string(p))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

var (
	_ Toolchain = (*GuestToolchain)(nil)
	_ Toolchain = (*LocalToolchain)(nil)
	_ Provider  = LocalProvider{}
)
