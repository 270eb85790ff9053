// SPDX-License-Identifier: MPL-2.0

// Package toolchain models a development toolchain that may live on the host or
// inside a guest environment reachable from the host, such as a WSL
// distribution or a running container.
//
// Callers resolve a Toolchain once through Lookup and an ordered provider list,
// then build command lines in host terms. PatchCommandLine rewrites every
// argument, environment value and working directory for the toolchain's side
// of the boundary, and StartProcess launches the result.
package toolchain
