// SPDX-License-Identifier: MPL-2.0

// Package wsl implements toolchain distributions backed by Windows Subsystem
// for Linux. Guest files are reached from the host through the UNC shares
// \\wsl$\<distro> and \\wsl.localhost\<distro>; host drives are mounted in
// the guest under /mnt/<letter>. Processes are started through wsl.exe.
package wsl
