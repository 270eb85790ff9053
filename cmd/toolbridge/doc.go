// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the toolbridge CLI: resolving toolchain roots,
// translating paths and running tools inside WSL distributions, containers or
// on the host.
package cmd
