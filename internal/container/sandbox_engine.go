// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"

	"toolbridge/pkg/platform"
)

type (
	// BaseCLIProvider is implemented by engines that embed BaseCLIEngine.
	BaseCLIProvider interface {
		BaseCLI() *BaseCLIEngine
	}

	// SandboxAwareEngine wraps a container Engine to handle execution from within
	// application sandboxes (Flatpak, Snap).
	//
	// Inside a sandbox the engine CLI and its daemon live on the real host, and
	// the sandbox has its own file system namespace. Every engine invocation is
	// therefore spawned on the host (flatpak-spawn --host, snap run --shell) so
	// bind mount sources reported by inspect are host paths.
	SandboxAwareEngine struct {
		Engine
		sandboxType platform.SandboxType
	}
)

// NewSandboxAwareEngine wraps an Engine with sandbox awareness.
// If not running in a sandbox, the engine is returned unwrapped.
func NewSandboxAwareEngine(engine Engine) Engine {
	if !platform.IsInSandbox() {
		return engine
	}
	return newSandboxAwareEngine(engine, platform.DetectSandbox())
}

func newSandboxAwareEngine(engine Engine, sandboxType platform.SandboxType) *SandboxAwareEngine {
	return &SandboxAwareEngine{Engine: engine, sandboxType: sandboxType}
}

// Command prepends the sandbox spawn prefix.
//
// For Flatpak: flatpak-spawn --host <binary> <args...>
// For Snap: snap run --shell <binary> <args...>
func (e *SandboxAwareEngine) Command(args ...string) (string, []string) {
	program, argv := e.Engine.Command(args...)
	prefix := platform.SpawnPrefixFor(e.sandboxType)
	if len(prefix) == 0 {
		return program, argv
	}

	full := make([]string, 0, len(prefix)+len(argv))
	full = append(full, prefix[1:]...)
	full = append(full, program)
	full = append(full, argv...)
	return prefix[0], full
}

// Output runs the engine on the host through the spawn prefix.
func (e *SandboxAwareEngine) Output(ctx context.Context, args ...string) (string, error) {
	base, ok := e.Engine.(BaseCLIProvider)
	if !ok {
		return e.Engine.Output(ctx, args...)
	}
	program, argv := e.Command(args...)
	return base.BaseCLI().run(ctx, program, argv)
}

// InspectMounts reads the mount table through the spawn prefix.
func (e *SandboxAwareEngine) InspectMounts(ctx context.Context, containerID ContainerID) ([]Mount, error) {
	base, ok := e.Engine.(BaseCLIProvider)
	if !ok {
		return e.Engine.InspectMounts(ctx, containerID)
	}
	return inspectMounts(ctx, e, base.BaseCLI().InspectMountsArgs(containerID))
}

// Available checks the wrapped engine through the spawn prefix.
func (e *SandboxAwareEngine) Available(ctx context.Context) bool {
	if e.BinaryPath() == "" {
		return false
	}
	_, err := e.Output(ctx, "version")
	return err == nil
}
