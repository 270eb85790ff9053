// SPDX-License-Identifier: MPL-2.0

// Package fspath provides path helpers that understand both addressing
// worlds toolbridge deals with: host paths (native, drive-letter or UNC) and
// guest-native POSIX paths. filepath is only correct for the former when the
// host OS matches the path style, so Windows-style paths are joined by hand.
package fspath

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"toolbridge/pkg/types"
)

// GuestSeparator is the separator used by every supported guest environment.
const GuestSeparator = "/"

// GuestListSeparator joins path lists inside the guest (PATH, LD_LIBRARY_PATH).
const GuestListSeparator = ":"

// IsWindowsStyle reports whether p is a drive-letter path (C:\x, C:/x) or a
// UNC path (\\server\share). These are joined with backslashes on every host.
func IsWindowsStyle(p string) bool {
	if types.HostPath(p).IsUNC() {
		return true
	}
	return len(p) >= 3 && isDriveLetter(p[0]) && p[1] == ':' && (p[2] == '\\' || p[2] == '/')
}

// IsURLStyle reports whether p is an opaque scheme address such as
// docker://builder/usr/bin. Such addresses are joined with "/" and never made
// absolute against the working directory.
func IsURLStyle(p string) bool {
	scheme, _, ok := strings.Cut(p, "://")
	return ok && scheme != "" && !strings.ContainsAny(scheme, `/\`)
}

// JoinHost joins elem onto a host-addressable base. UNC and drive-letter bases
// keep backslash separators regardless of the OS running the tests or the CLI.
func JoinHost(base types.HostPath, elem ...string) types.HostPath {
	if IsURLStyle(string(base)) {
		scheme, rest, _ := strings.Cut(string(base), "://")
		return types.HostPath(scheme + "://" + path.Join(append([]string{rest}, elem...)...))
	}
	if !IsWindowsStyle(string(base)) {
		parts := make([]string, 1, 1+len(elem))
		parts[0] = string(base)
		parts = append(parts, elem...)
		return types.HostPath(filepath.Join(parts...))
	}
	return types.HostPath(joinWindows(string(base), elem...))
}

// AbsHost makes a host path absolute. Windows-style paths are already
// absolute by construction and are only cleaned; scheme addresses are kept.
func AbsHost(p types.HostPath) (types.HostPath, error) {
	if IsURLStyle(string(p)) {
		return p, nil
	}
	if IsWindowsStyle(string(p)) {
		return types.HostPath(joinWindows(string(p))), nil
	}
	abs, err := filepath.Abs(string(p))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return types.HostPath(abs), nil
}

// JoinGuest joins guest-native path elements with "/".
func JoinGuest(elem ...string) string {
	return path.Join(elem...)
}

// IsGuestAbs reports whether p is an absolute guest-native path.
func IsGuestAbs(p string) bool {
	return strings.HasPrefix(p, GuestSeparator)
}

// joinWindows joins and cleans a Windows-style path, preserving the UNC or
// drive prefix.
func joinWindows(base string, elem ...string) string {
	var prefix, rest string
	switch {
	case strings.HasPrefix(base, `\\`):
		prefix, rest = `\\`, base[2:]
	default:
		prefix, rest = base[:2]+`\`, base[2:]
	}

	segments := []string{strings.ReplaceAll(rest, `\`, "/")}
	for _, e := range elem {
		segments = append(segments, strings.ReplaceAll(e, `\`, "/"))
	}
	joined := strings.TrimPrefix(path.Join(segments...), "/")
	if joined == "." {
		joined = ""
	}
	return prefix + strings.ReplaceAll(joined, "/", `\`)
}

func isDriveLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
