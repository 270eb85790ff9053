// SPDX-License-Identifier: MPL-2.0

// Package process starts host processes and exposes them through a Handle with
// the lifecycle callers expect from a local process: output streams, an exit
// code future, and terminate/kill. Guest toolchains hand it command lines that
// have already been patched to enter the guest, so nothing here knows about
// WSL or containers.
package process
