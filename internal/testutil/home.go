// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"runtime"
	"testing"
)

// SetHomeDir points the platform's home directory variable at dir for the rest
// of the test: USERPROFILE on Windows, HOME elsewhere. Like t.Setenv, it cannot
// be used in parallel tests.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    testutil.SetHomeDir(t, t.TempDir())
//	    // Test code that uses os.UserHomeDir...
//	}
func SetHomeDir(t testing.TB, dir string) {
	t.Helper()

	switch runtime.GOOS {
	case "windows":
		t.Setenv("USERPROFILE", dir)
	default:
		t.Setenv("HOME", dir)
	}
}
