// SPDX-License-Identifier: MPL-2.0

package container

import "context"

// PodmanEngine implements the Engine interface using Podman CLI.
type PodmanEngine struct {
	*BaseCLIEngine
}

// NewPodmanEngine creates a new Podman engine.
func NewPodmanEngine(opts ...BaseCLIEngineOption) *PodmanEngine {
	return &PodmanEngine{
		BaseCLIEngine: NewBaseCLIEngine(string(EngineTypePodman), opts...),
	}
}

// Available checks if Podman is available.
func (e *PodmanEngine) Available(ctx context.Context) bool {
	return e.available(ctx, "{{.Version}}")
}

// Version returns the Podman version.
func (e *PodmanEngine) Version(ctx context.Context) (string, error) {
	return e.versionOutput(ctx, "{{.Version}}")
}
