// SPDX-License-Identifier: MPL-2.0

// Package types holds small typed primitives shared across toolbridge packages:
// host-addressable paths and process exit codes.
package types
