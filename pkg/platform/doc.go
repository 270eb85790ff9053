// SPDX-License-Identifier: MPL-2.0

// Package platform provides host-platform facts toolbridge needs when it
// crosses into a guest environment: the host path-list separator, executable
// suffixes, and whether the process itself runs inside an application sandbox
// (Flatpak, Snap) that hides the real host from child processes.
package platform
