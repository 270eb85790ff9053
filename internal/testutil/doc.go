// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by tests: overriding the user home
// directory and bounding how many container integration tests run at once.
package testutil
