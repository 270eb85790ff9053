// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	EngineTypePodman EngineType = "podman"
	EngineTypeDocker EngineType = "docker"
)

var (
	// ErrInvalidEngineType is the sentinel error wrapped by InvalidEngineTypeError.
	ErrInvalidEngineType = errors.New("invalid container engine type")

	// ErrInvalidContainerID is the sentinel error wrapped by InvalidContainerIDError.
	ErrInvalidContainerID = errors.New("invalid container ID")
)

type (
	// Engine is a container engine CLI.
	Engine interface {
		// Name returns the engine name (docker or podman).
		Name() string
		// Available checks if the engine is usable on this host.
		Available(ctx context.Context) bool
		// Version returns the engine version.
		Version(ctx context.Context) (string, error)
		// BinaryPath returns the resolved engine binary.
		BinaryPath() string
		// ExecArgs builds the arguments of an exec command (without the binary).
		ExecArgs(containerID ContainerID, command []string, opts ExecOptions) []string
		// Command returns the program and full argument list that run the engine
		// with args on the host.
		Command(args ...string) (program string, argv []string)
		// InspectMounts returns the mount table of a running container.
		InspectMounts(ctx context.Context, containerID ContainerID) ([]Mount, error)
		// Output runs the engine with args and returns its standard output.
		Output(ctx context.Context, args ...string) (string, error)
	}

	// ExecOptions configures an exec command.
	ExecOptions struct {
		// WorkDir is the working directory inside the container.
		WorkDir string
		// Env holds variables set for the command.
		Env map[string]string
		// User runs the command as the given user.
		User string
		// Interactive keeps stdin open.
		Interactive bool
		// TTY allocates a pseudo-TTY.
		TTY bool
	}

	// EngineType identifies the container engine type.
	EngineType string

	// InvalidEngineTypeError is returned when an EngineType is not recognized.
	InvalidEngineTypeError struct {
		Value EngineType
	}

	// ContainerID is a container name or ID.
	// A valid ID must be non-empty and not whitespace-only.
	ContainerID string

	// InvalidContainerIDError is returned when a ContainerID is empty or
	// whitespace-only.
	InvalidContainerIDError struct {
		Value ContainerID
	}

	// ErrEngineNotAvailable is returned when a container engine is not available.
	ErrEngineNotAvailable struct {
		Engine string
		Reason string
	}
)

// Validate returns an error if the EngineType is not docker or podman.
func (t EngineType) Validate() error {
	switch t {
	case EngineTypeDocker, EngineTypePodman:
		return nil
	default:
		return &InvalidEngineTypeError{Value: t}
	}
}

// String returns the string representation of the EngineType.
func (t EngineType) String() string { return string(t) }

// Error implements the error interface.
func (e *InvalidEngineTypeError) Error() string {
	return fmt.Sprintf("invalid container engine %q (valid: docker, podman)", e.Value)
}

// Unwrap returns ErrInvalidEngineType for errors.Is() compatibility.
func (e *InvalidEngineTypeError) Unwrap() error { return ErrInvalidEngineType }

// Validate returns an error if the ContainerID is empty or whitespace-only.
func (id ContainerID) Validate() error {
	if strings.TrimSpace(string(id)) == "" {
		return &InvalidContainerIDError{Value: id}
	}
	return nil
}

// String returns the string representation of the ContainerID.
func (id ContainerID) String() string { return string(id) }

// Error implements the error interface.
func (e *InvalidContainerIDError) Error() string {
	return fmt.Sprintf("invalid container ID %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidContainerID for errors.Is() compatibility.
func (e *InvalidContainerIDError) Unwrap() error { return ErrInvalidContainerID }

func (e *ErrEngineNotAvailable) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// NewEngine returns the preferred engine, falling back to the other one when
// it is not available. The result is sandbox aware.
func NewEngine(ctx context.Context, preferred EngineType, opts ...BaseCLIEngineOption) (Engine, error) {
	if err := preferred.Validate(); err != nil {
		return nil, err
	}

	candidates := []Engine{NewPodmanEngine(opts...), NewDockerEngine(opts...)}
	if preferred == EngineTypeDocker {
		candidates[0], candidates[1] = candidates[1], candidates[0]
	}
	for _, e := range candidates {
		if e.Available(ctx) {
			return NewSandboxAwareEngine(e), nil
		}
	}

	return nil, &ErrEngineNotAvailable{
		Engine: preferred.String(),
		Reason: fmt.Sprintf("%s is not installed or not accessible, and %s fallback is also not available",
			candidates[0].Name(), candidates[1].Name()),
	}
}
