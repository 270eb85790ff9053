// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidHostPath is the sentinel error wrapped by InvalidHostPathError.
var ErrInvalidHostPath = errors.New("invalid host path")

type (
	// HostPath is a path the host's file APIs can open: a native path or a
	// UNC path reaching into a guest filesystem (\\wsl$\Ubuntu\home\user).
	// A valid path must be non-empty and not whitespace-only.
	HostPath string

	// InvalidHostPathError is returned when a HostPath value is empty or
	// whitespace-only.
	InvalidHostPathError struct {
		Value HostPath
	}
)

// String returns the string representation of the HostPath.
func (p HostPath) String() string { return string(p) }

// Validate returns an error if the HostPath is empty or whitespace-only.
func (p HostPath) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return &InvalidHostPathError{Value: p}
	}
	return nil
}

// IsUNC reports whether the path uses UNC addressing (leading double backslash).
func (p HostPath) IsUNC() bool {
	return strings.HasPrefix(string(p), `\\`)
}

// Error implements the error interface for InvalidHostPathError.
func (e *InvalidHostPathError) Error() string {
	return fmt.Sprintf("invalid host path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidHostPath for errors.Is() compatibility.
func (e *InvalidHostPathError) Unwrap() error { return ErrInvalidHostPath }
