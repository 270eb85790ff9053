// SPDX-License-Identifier: MPL-2.0

// Package container implements toolchain distributions backed by running
// Docker or Podman containers.
//
// A toolchain root such as docker://builder/usr/local/cargo/bin names a
// container and a path inside it. Host paths are mapped through the
// container's bind mounts, read once from the engine's inspect output, and
// processes are started with "<engine> exec". When toolbridge itself runs in a
// Flatpak or Snap sandbox, engine invocations are spawned on the host.
package container
