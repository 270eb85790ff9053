// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"

	"toolbridge/internal/testutil"
	"toolbridge/internal/toolchain"
)

// checkTestcontainersAvailable safely checks if testcontainers can be used.
func checkTestcontainersAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

// TestDistribution_Integration drives a real container through the docker
// CLI. It requires Docker to be available.
func TestDistribution_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	engine, err := NewEngine(ctx, EngineTypeDocker)
	if err != nil || engine.Name() != string(EngineTypeDocker) {
		t.Skipf("skipping container integration tests: docker not available: %v", err)
	}
	if !checkTestcontainersAvailable() {
		t.Skip("skipping container integration tests: testcontainers provider not available")
	}
	testutil.AcquireContainerSlot(t)

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "alpine:3.20",
			Cmd:   []string{"sleep", "infinity"},
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting container: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("terminating container: %v", err)
		}
	})

	id := ContainerID(c.GetContainerID())
	dist := NewDistribution(engine, string(EngineTypeDocker), id)

	t.Run("Mounts", func(t *testing.T) {
		mounts, err := dist.Mounts()
		if err != nil {
			t.Fatalf("Mounts() error = %v", err)
		}
		if len(mounts) != 0 {
			t.Errorf("Mounts() = %+v, want no binds", mounts)
		}
	})

	t.Run("ExpandUserHome", func(t *testing.T) {
		if got := dist.ExpandUserHome("~/.cargo/bin"); got != "/root/.cargo/bin" {
			t.Errorf("ExpandUserHome() = %q", got)
		}
	})

	t.Run("HostAddress", func(t *testing.T) {
		want := "docker://" + string(id) + "/usr/bin"
		if got := dist.HostAddress("/usr/bin"); got != want {
			t.Errorf("HostAddress() = %q, want %q", got, want)
		}
	})

	t.Run("Run", func(t *testing.T) {
		tc := toolchain.NewGuestToolchain("/bin", "", dist)
		cl := toolchain.NewCommandLine("/bin/sh", "-c", `echo "$GREETING from $(pwd)"`)
		cl.SetEnv("GREETING", "hello")
		cl.WorkDir = "/tmp"

		patched, err := tc.PatchCommandLine(cl)
		if err != nil {
			t.Fatalf("PatchCommandLine() error = %v", err)
		}
		h, err := tc.StartProcess(ctx, patched)
		if err != nil {
			t.Fatalf("StartProcess() error = %v", err)
		}
		defer h.Close()

		out, err := io.ReadAll(h.Stdout())
		if err != nil {
			t.Fatalf("reading stdout: %v", err)
		}
		code, err := h.Wait()
		if err != nil || !code.IsSuccess() {
			t.Fatalf("Wait() = %v, %v", code, err)
		}
		if got := strings.TrimSpace(string(out)); got != "hello from /tmp" {
			t.Errorf("output = %q", got)
		}
	})
}
