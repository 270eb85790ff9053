// SPDX-License-Identifier: MPL-2.0

package container

import (
	"errors"
	"slices"
	"testing"

	"toolbridge/internal/issue"
	"toolbridge/internal/toolchain"
)

// builderMounts is the mount table of a typical Rust build container started
// from a Windows host.
func builderMounts() []Mount {
	return []Mount{
		{Type: "bind", Source: `C:\Users\me\proj`, Destination: "/src", RW: true},
		{Type: "bind", Source: `C:\Users\me\proj\target`, Destination: "/build/target", RW: true},
		{Type: "bind", Source: "/home/me/cache", Destination: "/cache/", RW: true},
		{Type: "volume", Source: "/var/lib/docker/volumes/cargo/_data", Destination: "/usr/local/cargo", RW: true},
	}
}

func TestParseRoot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		root       string
		wantScheme string
		wantID     ContainerID
		wantPath   string
		wantOK     bool
	}{
		{"docker://builder/usr/local/cargo", "docker", "builder", "/usr/local/cargo", true},
		{"PODMAN://rust-dev", "podman", "rust-dev", "/", true},
		{"container://abc123/opt//rust/", "container", "abc123", "/opt/rust", true},
		{"docker:///usr/local", "", "", "", false},
		{"lxc://box/usr", "", "", "", false},
		{`\\wsl$\Ubuntu\usr`, "", "", "", false},
		{"/usr/local/cargo", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.root, func(t *testing.T) {
			t.Parallel()
			scheme, id, guestPath, ok := ParseRoot(tt.root)
			if ok != tt.wantOK || scheme != tt.wantScheme || id != tt.wantID || guestPath != tt.wantPath {
				t.Errorf("ParseRoot(%q) = %q, %q, %q, %v", tt.root, scheme, id, guestPath, ok)
			}
		})
	}
}

func TestDistribution_LocalPath(t *testing.T) {
	t.Parallel()

	d := NewDistribution(newFakeEngine(builderMounts()...), "docker", "builder")
	tests := []struct {
		remote string
		want   string
		wantOK bool
	}{
		{"/src", `C:\Users\me\proj`, true},
		{"/src/crates/core/lib.rs", `C:\Users\me\proj\crates\core\lib.rs`, true},
		{"/build/target/debug/app", `C:\Users\me\proj\target\debug\app`, true},
		{"/srcdir/x", "", false},
		{"/usr/local/cargo/bin/cargo", "", false},
		{"relative/path", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			t.Parallel()
			got, ok := d.LocalPath(tt.remote)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("LocalPath(%q) = %q, %v; want %q, %v", tt.remote, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDistribution_RemotePath(t *testing.T) {
	t.Parallel()

	d := NewDistribution(newFakeEngine(builderMounts()...), "docker", "builder")
	tests := []struct {
		local  string
		want   string
		wantOK bool
	}{
		{`C:\Users\me\proj\Cargo.toml`, "/src/Cargo.toml", true},
		{`C:\Users\me\proj\target\release`, "/build/target/release", true},
		{`C:\Users\me\projects\other`, "", false},
		{"/home/me/cache/registry", "/cache/registry", true},
		{"docker://builder/usr/local/cargo/bin", "/usr/local/cargo/bin", true},
		{"docker://other/usr/bin", "", false},
		{"podman://builder/usr/bin", "", false},
		{"--release", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.local, func(t *testing.T) {
			t.Parallel()
			got, ok := d.RemotePath(tt.local)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("RemotePath(%q) = %q, %v; want %q, %v", tt.local, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDistribution_HostAddress(t *testing.T) {
	t.Parallel()

	d := NewDistribution(newFakeEngine(builderMounts()...), "docker", "builder")
	if got := d.HostAddress("/src/src/main.rs"); got != `C:\Users\me\proj\src\main.rs` {
		t.Errorf("HostAddress(mounted) = %q", got)
	}
	if got := d.HostAddress("/usr/local/cargo/bin"); got != "docker://builder/usr/local/cargo/bin" {
		t.Errorf("HostAddress(unmounted) = %q", got)
	}
}

func TestDistribution_MountsReadOnce(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine(builderMounts()...)
	d := NewDistribution(engine, "docker", "builder")
	for range 3 {
		d.LocalPath("/src/a")
		d.RemotePath(`C:\Users\me\proj\a`)
	}
	if engine.inspectCalls != 1 {
		t.Errorf("inspect ran %d times, want 1", engine.inspectCalls)
	}

	mounts, err := d.Mounts()
	if err != nil {
		t.Fatalf("Mounts() error = %v", err)
	}
	if len(mounts) != 3 {
		t.Errorf("Mounts() kept %d entries, want the 3 binds", len(mounts))
	}
}

func TestDistribution_InspectFailure(t *testing.T) {
	t.Parallel()

	errGone := errors.New("No such container: builder")
	engine := newFakeEngine()
	engine.mountsErr = errGone
	d := NewDistribution(engine, "docker", "builder")

	if _, ok := d.LocalPath("/src"); ok {
		t.Error("LocalPath() succeeded without a mount table")
	}
	_, err := d.Mounts()
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || !errors.Is(err, errGone) {
		t.Fatalf("Mounts() error = %v, want actionable error wrapping the engine failure", err)
	}
	if len(ae.Suggestions) == 0 {
		t.Error("expected a suggestion for a missing container")
	}
}

func TestDistribution_ExpandUserHome(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	engine.output = "/home/rust/\n"
	d := NewDistribution(engine, "podman", "builder")

	tests := []struct{ in, want string }{
		{"~", "/home/rust"},
		{"~/.cargo/bin", "/home/rust/.cargo/bin"},
		{"~rust/x", "~rust/x"},
		{"/opt", "/opt"},
	}
	for _, tt := range tests {
		if got := d.ExpandUserHome(tt.in); got != tt.want {
			t.Errorf("ExpandUserHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if len(engine.outputCalls) != 1 {
		t.Fatalf("home probed %d times, want 1", len(engine.outputCalls))
	}
	want := []string{"exec", "builder", "printenv", "HOME"}
	if !slices.Equal(engine.outputCalls[0], want) {
		t.Errorf("probe args = %q, want %q", engine.outputCalls[0], want)
	}
}

func TestDistribution_ExpandUserHomeProbeFailure(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	engine.outputErr = errors.New("exit status 1")
	d := NewDistribution(engine, "docker", "builder")
	if got := d.ExpandUserHome("~/.cargo/bin"); got != "~/.cargo/bin" {
		t.Errorf("ExpandUserHome() = %q, want input unchanged", got)
	}
}

func TestDistribution_PatchCommandLine(t *testing.T) {
	t.Parallel()

	d := NewDistribution(newFakeEngine(builderMounts()...), "docker", "builder")

	tests := []struct {
		name string
		cl   func() *toolchain.CommandLine
		opts toolchain.PatchOptions
		want []string
	}{
		{
			name: "plain",
			cl: func() *toolchain.CommandLine {
				return toolchain.NewCommandLine("/usr/local/cargo/bin/cargo", "build", "--release")
			},
			want: []string{"exec", "-i", "builder", "/usr/local/cargo/bin/cargo", "build", "--release"},
		},
		{
			name: "workdir env and elevation",
			cl: func() *toolchain.CommandLine {
				cl := toolchain.NewCommandLine("/usr/local/cargo/bin/cargo", "test")
				cl.SetEnv("RUST_BACKTRACE", "1")
				cl.PTY = true
				return cl
			},
			opts: toolchain.PatchOptions{WorkDir: "/src", Elevate: true},
			want: []string{
				"exec", "-i", "-t", "-w", "/src", "-u", "root", "-e", "RUST_BACKTRACE=1",
				"builder", "/usr/local/cargo/bin/cargo", "test",
			},
		},
		{
			name: "host executable is translated",
			cl: func() *toolchain.CommandLine {
				return toolchain.NewCommandLine(`C:\Users\me\proj\target\debug\app`)
			},
			want: []string{"exec", "-i", "builder", "/build/target/debug/app"},
		},
		{
			name: "input redirection",
			cl: func() *toolchain.CommandLine {
				return toolchain.NewCommandLine("/build/target/debug/app", "--quiet")
			},
			opts: toolchain.PatchOptions{InputRedirection: "/src/input.txt"},
			want: []string{
				"exec", "-i", "builder",
				"/bin/sh", "-c", `exec "$0" "$@" < /src/input.txt`, "/build/target/debug/app", "--quiet",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := tt.cl()
			got, err := d.PatchCommandLine(in, tt.opts)
			if err != nil {
				t.Fatalf("PatchCommandLine() error = %v", err)
			}
			if got.Exe != "/usr/bin/docker" {
				t.Errorf("Exe = %q", got.Exe)
			}
			g, ok := got.Group("exec")
			if !ok {
				t.Fatalf("missing exec group in %v", got.Groups)
			}
			if !slices.Equal(g.Params, tt.want) {
				t.Errorf("exec params = %q\nwant          %q", g.Params, tt.want)
			}
			if len(got.Env) != 0 || got.WorkDir != "" || got.InputFile != "" {
				t.Errorf("host-side launch settings leaked: %+v", got)
			}
			if got.PTY != in.PTY {
				t.Errorf("PTY = %v, want %v", got.PTY, in.PTY)
			}
		})
	}
}

func TestDistribution_PatchCommandLineNoEngine(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	engine.program = ""
	d := NewDistribution(engine, "docker", "builder")

	_, err := d.PatchCommandLine(toolchain.NewCommandLine("cargo"), toolchain.PatchOptions{})
	if !errors.Is(err, ErrNoBinary) {
		t.Errorf("PatchCommandLine() error = %v, want ErrNoBinary", err)
	}
}

func TestDistribution_GuestToolchain(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine(builderMounts()...)
	engine.output = "/root"
	tc := toolchain.NewGuestToolchain("/usr/local/cargo/bin", "stable", NewDistribution(engine, "docker", "builder"))

	if got := tc.HostLocation(); got != "docker://builder/usr/local/cargo/bin" {
		t.Errorf("HostLocation() = %q", got)
	}
	if tc.HasExecutable("cargo") {
		t.Error("HasExecutable() = true for a path only reachable inside the container")
	}
	if got := tc.PathToCargoExecutable("rustfmt"); got != "docker://builder/root/.cargo/bin/rustfmt" {
		t.Errorf("PathToCargoExecutable() = %q", got)
	}

	cl := toolchain.NewCommandLine("cargo", "build", "--manifest-path", `C:\Users\me\proj\Cargo.toml`)
	cl.WorkDir = `C:\Users\me\proj`
	patched, err := tc.PatchCommandLine(cl)
	if err != nil {
		t.Fatalf("PatchCommandLine() error = %v", err)
	}
	g, _ := patched.Group("exec")
	want := []string{"exec", "-i", "-w", "/src", "builder", "cargo", "build", "--manifest-path", "/src/Cargo.toml"}
	if !slices.Equal(g.Params, want) {
		t.Errorf("exec params = %q\nwant          %q", g.Params, want)
	}
}
