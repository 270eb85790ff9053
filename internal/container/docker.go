// SPDX-License-Identifier: MPL-2.0

package container

import "context"

// DockerEngine implements the Engine interface using Docker CLI.
type DockerEngine struct {
	*BaseCLIEngine
}

// NewDockerEngine creates a new Docker engine.
func NewDockerEngine(opts ...BaseCLIEngineOption) *DockerEngine {
	return &DockerEngine{
		BaseCLIEngine: NewBaseCLIEngine(string(EngineTypeDocker), opts...),
	}
}

// Available checks that the Docker daemon answers, not just that the CLI exists.
func (e *DockerEngine) Available(ctx context.Context) bool {
	return e.available(ctx, "{{.Server.Version}}")
}

// Version returns the Docker server version.
func (e *DockerEngine) Version(ctx context.Context) (string, error) {
	return e.versionOutput(ctx, "{{.Server.Version}}")
}
