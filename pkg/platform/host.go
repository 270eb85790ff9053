// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"runtime"
)

// HostListSeparator is the separator the host uses for PATH-like values.
const HostListSeparator = string(os.PathListSeparator)

// ExecutableSuffixFor returns the suffix host executables carry on goos.
func ExecutableSuffixFor(goos string) string {
	if goos == Windows {
		return ".exe"
	}
	return ""
}

// ExecutableSuffix returns the executable suffix for the running host.
func ExecutableSuffix() string {
	return ExecutableSuffixFor(runtime.GOOS)
}

// IsWindows reports whether the running host is Windows.
func IsWindows() bool {
	return runtime.GOOS == Windows
}
