// SPDX-License-Identifier: MPL-2.0

package wsl

import (
	"strings"
)

const (
	// UNCPrefix is the classic share prefix for WSL file systems.
	UNCPrefix = `\\wsl$\`
	// LocalhostUNCPrefix is the share prefix used by newer Windows builds.
	LocalhostUNCPrefix = `\\wsl.localhost\`
)

var uncPrefixes = []string{UNCPrefix, LocalhostUNCPrefix}

// HasUNCPrefix reports whether p addresses a WSL share. The comparison is
// case-insensitive and accepts forward slashes.
func HasUNCPrefix(p string) bool {
	_, ok := matchPrefix(p)
	return ok
}

// ParseUNC splits a WSL share path into the prefix it used, the distribution
// name and the guest absolute path:
//
//	\\wsl$\Ubuntu\home\user  ->  `\\wsl$\`, "Ubuntu", "/home/user"
func ParseUNC(p string) (prefix, distro, guestPath string, ok bool) {
	prefix, ok = matchPrefix(p)
	if !ok {
		return "", "", "", false
	}

	rest := strings.ReplaceAll(p[len(prefix):], "/", `\`)
	distro, tail, _ := strings.Cut(rest, `\`)
	if distro == "" {
		return "", "", "", false
	}

	guestPath = "/" + strings.Trim(strings.ReplaceAll(tail, `\`, "/"), "/")
	return prefix, distro, guestPath, true
}

// matchPrefix returns the canonical form of the share prefix p starts with.
func matchPrefix(p string) (string, bool) {
	normalized := strings.ReplaceAll(p, "/", `\`)
	for _, prefix := range uncPrefixes {
		if len(normalized) >= len(prefix) && strings.EqualFold(normalized[:len(prefix)], prefix) {
			return prefix, true
		}
	}
	return "", false
}
