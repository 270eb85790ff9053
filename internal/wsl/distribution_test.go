// SPDX-License-Identifier: MPL-2.0

package wsl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
	"testing"

	"toolbridge/internal/issue"
	"toolbridge/internal/toolchain"
)

// helperCommand returns an ExecCommandFunc running TestHelperProcess, which
// prints stdout and exits with exitCode. calls counts invocations.
func helperCommand(stdout string, exitCode int, calls *atomic.Int32, got *[]string) ExecCommandFunc {
	return func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		calls.Add(1)
		if got != nil {
			*got = append([]string{name}, arg...)
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess", "--")
		cmd.Env = []string{
			"GO_WANT_HELPER_PROCESS=1",
			"GO_HELPER_STDOUT=" + stdout,
			fmt.Sprintf("GO_HELPER_EXIT_CODE=%d", exitCode),
		}
		return cmd
	}
}

func TestDistribution_RemotePath(t *testing.T) {
	t.Parallel()

	d := NewDistribution("Ubuntu")
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{`C:\Users\me\proj`, "/mnt/c/Users/me/proj", true},
		{`D:/data/file.rs`, "/mnt/d/data/file.rs", true},
		{`C:\`, "/mnt/c", true},
		{`C:`, "/mnt/c", true},
		{`\\wsl$\Ubuntu\home\me`, "/home/me", true},
		{`\\wsl.localhost\ubuntu\etc`, "/etc", true},
		{`\\wsl$\Debian\home\me`, "", false},
		{`C:foo`, "", false},
		{"/home/me", "", false},
		{"--release", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := d.RemotePath(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("RemotePath(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDistribution_LocalPath(t *testing.T) {
	t.Parallel()

	d := NewDistribution("Ubuntu")
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"/mnt/c/Users/me/proj", `C:\Users\me\proj`, true},
		{"/mnt/d", `D:\`, true},
		{"/home/me/proj", `\\wsl$\Ubuntu\home\me\proj`, true},
		{"/mnt/wsl/shared", `\\wsl$\Ubuntu\mnt\wsl\shared`, true},
		{"relative/path", "", false},
		{`C:\Users`, "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := d.LocalPath(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("LocalPath(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDistribution_RoundTrip(t *testing.T) {
	t.Parallel()

	d := NewDistribution("Ubuntu", WithMountRoot("/win"))
	for _, local := range []string{`C:\Users\me\proj\src\main.rs`, `\\wsl$\Ubuntu\home\me\.cargo\bin\cargo`} {
		remote, ok := d.RemotePath(local)
		if !ok {
			t.Fatalf("RemotePath(%q) unmappable", local)
		}
		back, ok := d.LocalPath(remote)
		if !ok || back != local {
			t.Errorf("LocalPath(RemotePath(%q)) = %q, %v", local, back, ok)
		}
	}
	if got, _ := d.RemotePath(`E:\x`); got != "/win/e/x" {
		t.Errorf("custom mount root: RemotePath() = %q", got)
	}
}

func TestDistribution_HostAddress(t *testing.T) {
	t.Parallel()

	d := NewDistribution("Ubuntu", WithUNCPrefix(LocalhostUNCPrefix))
	if got := d.HostAddress("/home/user/.rustup/toolchains/stable/bin"); got != `\\wsl.localhost\Ubuntu\home\user\.rustup\toolchains\stable\bin` {
		t.Errorf("HostAddress() = %q", got)
	}
	if got := d.UNCRoot(); got != `\\wsl.localhost\Ubuntu` {
		t.Errorf("UNCRoot() = %q", got)
	}
}

func TestDistribution_ExpandUserHome(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	var got []string
	d := NewDistribution("Ubuntu", WithExecutable(`C:\Windows\System32\wsl.exe`),
		WithExecCommand(helperCommand("/home/user\n", 0, &calls, &got)))

	if p := d.ExpandUserHome("/opt/x"); p != "/opt/x" {
		t.Errorf("ExpandUserHome() = %q, want unchanged", p)
	}
	if calls.Load() != 0 {
		t.Error("paths without ~ must not probe the guest")
	}

	if p := d.ExpandUserHome("~/.cargo/bin"); p != "/home/user/.cargo/bin" {
		t.Errorf("ExpandUserHome() = %q", p)
	}
	if p := d.ExpandUserHome("~"); p != "/home/user" {
		t.Errorf("ExpandUserHome(~) = %q", p)
	}
	if calls.Load() != 1 {
		t.Errorf("home probed %d times, want 1", calls.Load())
	}

	want := []string{`C:\Windows\System32\wsl.exe`, "--distribution", "Ubuntu", "--exec", "printenv", "HOME"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("probe command = %q, want %q", got, want)
	}
}

func TestDistribution_ExpandUserHomeProbeFailure(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	d := NewDistribution("Gone", WithExecCommand(helperCommand("", 1, &calls, nil)))
	if p := d.ExpandUserHome("~/.cargo/bin"); p != "~/.cargo/bin" {
		t.Errorf("ExpandUserHome() = %q, want unchanged on probe failure", p)
	}
	_, err := d.home()
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Resource != "Gone" {
		t.Errorf("probe error = %v, want actionable error for Gone", err)
	}

	blank := NewDistribution("Blank", WithExecCommand(helperCommand("\n", 0, &calls, nil)))
	if _, err := blank.home(); !errors.Is(err, ErrHomeUnknown) {
		t.Errorf("probe error = %v, want ErrHomeUnknown", err)
	}
}

func TestDistribution_PatchCommandLine(t *testing.T) {
	t.Parallel()

	d := NewDistribution("Ubuntu", WithShell("/bin/bash"))
	cl := toolchain.NewCommandLine(`\\wsl$\Ubuntu\home\me\.cargo\bin\cargo`, "build", "--manifest-path", "/mnt/c/my proj/Cargo.toml").
		SetEnv("RUSTFLAGS", "-C target-cpu=native").
		SetEnv("CARGO_HOME", "/home/me/.cargo")
	cl.WorkDir = `C:\my proj`
	cl.PTY = true

	patched, err := d.PatchCommandLine(cl, toolchain.PatchOptions{
		WorkDir:          "/mnt/c/my proj",
		InputRedirection: "/tmp/in.txt",
		Elevate:          true,
	})
	if err != nil {
		t.Fatalf("PatchCommandLine() error = %v", err)
	}

	if patched.Exe != DefaultExecutable {
		t.Errorf("Exe = %q", patched.Exe)
	}
	entry, _ := patched.Group("wsl")
	wantEntry := "--distribution Ubuntu --user root --exec /bin/bash -c"
	if strings.Join(entry.Params, " ") != wantEntry {
		t.Errorf("entry = %q, want %q", entry.Params, wantEntry)
	}

	script, _ := patched.Group("script")
	wantScript := "export CARGO_HOME=/home/me/.cargo && export RUSTFLAGS='-C target-cpu=native' && " +
		"cd '/mnt/c/my proj' && exec /home/me/.cargo/bin/cargo build --manifest-path '/mnt/c/my proj/Cargo.toml' < /tmp/in.txt"
	if len(script.Params) != 1 || script.Params[0] != wantScript {
		t.Errorf("script = %q\nwant     %q", script.Params, wantScript)
	}

	if patched.WorkDir != "" || len(patched.Env) != 0 || patched.InputFile != "" {
		t.Errorf("host-side fields should be consumed: %+v", patched)
	}
	if !patched.PTY {
		t.Error("PTY should be preserved")
	}
}

func TestDistribution_PatchCommandLineMinimal(t *testing.T) {
	t.Parallel()

	d := NewDistribution("Ubuntu")
	patched, err := d.PatchCommandLine(toolchain.NewCommandLine("rustc", "--version"), toolchain.PatchOptions{})
	if err != nil {
		t.Fatalf("PatchCommandLine() error = %v", err)
	}
	want := "wsl.exe --distribution Ubuntu --exec /bin/sh -c 'exec rustc --version'"
	if got := patched.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestDistribution_PatchCommandLineInvalidEnv(t *testing.T) {
	t.Parallel()

	d := NewDistribution("Ubuntu")
	cl := toolchain.NewCommandLine("cargo").SetEnv("NOT-VALID", "x")
	_, err := d.PatchCommandLine(cl, toolchain.PatchOptions{})
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("PatchCommandLine() error = %v, want actionable error", err)
	}
}

// TestHelperProcess stands in for wsl.exe in the probe tests.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	fmt.Fprint(os.Stdout, os.Getenv("GO_HELPER_STDOUT"))
	code := 0
	fmt.Sscanf(os.Getenv("GO_HELPER_EXIT_CODE"), "%d", &code)
	os.Exit(code)
}
