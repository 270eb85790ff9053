// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. The issue catalog adds Markdown help pages, rendered with
// glamour by the CLI, for the failures users hit most when a toolchain lives in
// another environment (unreachable distribution, missing executable, broken
// config).
package issue
