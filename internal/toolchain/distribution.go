// SPDX-License-Identifier: MPL-2.0

package toolchain

type (
	// Distribution is one guest environment and its translation primitives.
	// Implementations must be safe for concurrent use.
	Distribution interface {
		// LocalPath maps a guest path to its host form.
		LocalPath(remotePath string) (string, bool)
		// RemotePath maps a host path to its guest form.
		RemotePath(localPath string) (string, bool)
		// ExpandUserHome expands a leading "~" to the guest home directory.
		ExpandUserHome(remotePath string) string
		// HostAddress returns a host-openable address for a guest absolute path.
		HostAddress(guestPath string) string
		// PatchCommandLine wraps an already translated command line so that it
		// runs inside the guest.
		PatchCommandLine(cl *CommandLine, opts PatchOptions) (*CommandLine, error)
	}

	// PatchOptions are the launch settings a distribution applies when it wraps
	// a command line.
	PatchOptions struct {
		// InputRedirection is a guest path to feed to standard input.
		InputRedirection string
		// WorkDir is the guest working directory.
		WorkDir string
		// Elevate runs the command as the guest superuser.
		Elevate bool
	}
)
