// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"testing"

	"toolbridge/internal/toolchain"
)

func TestProvider_IsApplicable(t *testing.T) {
	t.Parallel()

	p := &Provider{}
	tests := map[string]bool{
		"docker://builder/usr/local/cargo": true,
		"Podman://rust/opt":                true,
		"container://abc/":                 true,
		"ssh://host/usr":                   false,
		`\\wsl$\Ubuntu\home`:               false,
		"/usr/local/cargo":                 false,
	}
	for root, want := range tests {
		if got := p.IsApplicable(root); got != want {
			t.Errorf("IsApplicable(%q) = %v, want %v", root, got, want)
		}
	}
}

func TestProvider_Toolchain(t *testing.T) {
	t.Parallel()

	var requested []EngineType
	p := &Provider{
		DefaultEngine: EngineTypeDocker,
		NewEngine: func(_ context.Context, et EngineType) (Engine, error) {
			requested = append(requested, et)
			e := newFakeEngine()
			e.name = et.String()
			return e, nil
		},
	}

	tc, ok := p.Toolchain("docker://builder/usr/local/cargo/bin", "stable")
	if !ok {
		t.Fatal("Toolchain() should parse a docker root")
	}
	guest, isGuest := tc.(*toolchain.GuestToolchain)
	if !isGuest {
		t.Fatalf("Toolchain() = %T, want *toolchain.GuestToolchain", tc)
	}
	if guest.Location() != "/usr/local/cargo/bin" || guest.Name() != "stable" {
		t.Errorf("toolchain = %q %q", guest.Location(), guest.Name())
	}

	again, _ := p.Toolchain("docker://builder/opt", "")
	if again.(*toolchain.GuestToolchain).Distribution() != guest.Distribution() {
		t.Error("toolchains of one container should share the distribution")
	}

	if _, ok := p.Toolchain("container://builder/opt", ""); !ok {
		t.Fatal("Toolchain() should parse a container root")
	}
	if _, ok := p.Toolchain("podman://builder/opt", ""); !ok {
		t.Fatal("Toolchain() should parse a podman root")
	}

	// docker:// and container:// (defaulting to docker) share one engine.
	if len(requested) != 2 || requested[0] != EngineTypeDocker || requested[1] != EngineTypePodman {
		t.Errorf("engines created = %v", requested)
	}
}

func TestProvider_DefaultEngineIsPodman(t *testing.T) {
	t.Parallel()

	var requested EngineType
	p := &Provider{NewEngine: func(_ context.Context, et EngineType) (Engine, error) {
		requested = et
		return newFakeEngine(), nil
	}}
	if _, ok := p.Toolchain("container://builder/", ""); !ok {
		t.Fatal("Toolchain() failed")
	}
	if requested != EngineTypePodman {
		t.Errorf("default engine = %q, want podman", requested)
	}
}

func TestProvider_NoEngine(t *testing.T) {
	t.Parallel()

	p := &Provider{NewEngine: func(context.Context, EngineType) (Engine, error) {
		return nil, &ErrEngineNotAvailable{Engine: "docker", Reason: "not installed"}
	}}
	if _, ok := p.Toolchain("docker://builder/usr", ""); ok {
		t.Error("Toolchain() should fail without an engine")
	}

	_, err := toolchain.Lookup([]toolchain.Provider{p}, "docker://builder/usr", "")
	if !errors.Is(err, toolchain.ErrNoToolchain) {
		t.Errorf("Lookup() error = %v, want ErrNoToolchain", err)
	}
}

func TestProvider_MalformedRoot(t *testing.T) {
	t.Parallel()

	p := &Provider{NewEngine: func(context.Context, EngineType) (Engine, error) {
		t.Error("engine created for a malformed root")
		return nil, errors.New("unreachable")
	}}
	if _, ok := p.Toolchain("docker:///usr/local", ""); ok {
		t.Error("Toolchain() accepted a root without a container")
	}
}
