// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os/exec"
	"slices"
	"strings"
	"time"
)

const (
	inspectAttempts = 3
	inspectBackoff  = 200 * time.Millisecond
)

// ErrNoBinary is returned when the engine CLI is not installed.
var ErrNoBinary = errors.New("engine binary not found")

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// BaseCLIEngineOption configures a BaseCLIEngine.
	BaseCLIEngineOption func(*BaseCLIEngine)

	// BaseCLIEngine provides the implementation shared by CLI-based engines.
	// Docker and Podman embed it; only availability and version probing differ.
	BaseCLIEngine struct {
		name        string
		binaryPath  string
		execCommand ExecCommandFunc
	}

	// Mount is one entry of a container's mount table as reported by inspect.
	Mount struct {
		Type        string `json:"Type"`
		Source      string `json:"Source"`
		Destination string `json:"Destination"`
		RW          bool   `json:"RW"`
	}
)

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.execCommand = fn
	}
}

// WithBinaryPath overrides the engine binary found on PATH.
func WithBinaryPath(path string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		if path != "" {
			e.binaryPath = path
		}
	}
}

// NewBaseCLIEngine creates a base engine for the named binary.
func NewBaseCLIEngine(name string, opts ...BaseCLIEngineOption) *BaseCLIEngine {
	path, _ := exec.LookPath(name)
	e := &BaseCLIEngine{
		name:        name,
		binaryPath:  path,
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the engine name used in error messages.
func (e *BaseCLIEngine) Name() string {
	return e.name
}

// BinaryPath returns the path to the container engine binary.
func (e *BaseCLIEngine) BinaryPath() string {
	return e.binaryPath
}

// ExecArgs constructs arguments for a container exec command.
//
// Generated command: <binary> exec [options] <container> <command...>
func (e *BaseCLIEngine) ExecArgs(containerID ContainerID, command []string, opts ExecOptions) []string {
	args := []string{"exec"}

	if opts.Interactive {
		args = append(args, "-i")
	}

	if opts.TTY {
		args = append(args, "-t")
	}

	if opts.WorkDir != "" {
		args = append(args, "-w", opts.WorkDir)
	}

	if opts.User != "" {
		args = append(args, "-u", opts.User)
	}

	for _, k := range slices.Sorted(maps.Keys(opts.Env)) {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, opts.Env[k]))
	}

	args = append(args, string(containerID))
	args = append(args, command...)

	return args
}

// Command returns the engine binary and args unchanged.
func (e *BaseCLIEngine) Command(args ...string) (string, []string) {
	return e.binaryPath, args
}

// InspectMountsArgs constructs arguments for reading a container's mounts.
func (e *BaseCLIEngine) InspectMountsArgs(containerID ContainerID) []string {
	return []string{"inspect", "--format", "{{json .Mounts}}", string(containerID)}
}

// InspectMounts returns the mount table of a running container. Transient
// engine failures are retried.
func (e *BaseCLIEngine) InspectMounts(ctx context.Context, containerID ContainerID) ([]Mount, error) {
	return inspectMounts(ctx, e, e.InspectMountsArgs(containerID))
}

// Output executes the engine and returns its standard output.
func (e *BaseCLIEngine) Output(ctx context.Context, args ...string) (string, error) {
	return e.run(ctx, e.binaryPath, args)
}

func (e *BaseCLIEngine) run(ctx context.Context, program string, argv []string) (string, error) {
	if program == "" {
		return "", fmt.Errorf("%s: %w", e.name, ErrNoBinary)
	}
	cmd := e.execCommand(ctx, program, argv...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("command %s %v failed: %w: %s", program, argv, err, msg)
		}
		return "", fmt.Errorf("command %s %v failed: %w", program, argv, err)
	}

	return out.String(), nil
}

// outputRunner is the part of an engine inspectMounts needs.
type outputRunner interface {
	Name() string
	Output(ctx context.Context, args ...string) (string, error)
}

// inspectMounts runs an inspect command through engine and decodes the JSON
// mount list.
func inspectMounts(ctx context.Context, engine outputRunner, args []string) ([]Mount, error) {
	var out string
	err := RetryWithBackoff(ctx, inspectAttempts, inspectBackoff, func(int) (bool, error) {
		var runErr error
		out, runErr = engine.Output(ctx, args...)
		return IsTransientError(runErr), runErr
	})
	if err != nil {
		return nil, err
	}

	out = strings.TrimSpace(out)
	if out == "" || out == "null" {
		return nil, nil
	}
	var mounts []Mount
	if err := json.Unmarshal([]byte(out), &mounts); err != nil {
		return nil, fmt.Errorf("decoding %s mount table: %w", engine.Name(), err)
	}
	return mounts, nil
}

// versionOutput runs a version query and trims the result.
func (e *BaseCLIEngine) versionOutput(ctx context.Context, format string) (string, error) {
	out, err := e.Output(ctx, "version", "--format", format)
	if err != nil {
		return "", fmt.Errorf("failed to get %s version: %w", e.name, err)
	}
	return strings.TrimSpace(out), nil
}

// available reports whether the binary exists and answers a version query.
func (e *BaseCLIEngine) available(ctx context.Context, format string) bool {
	if e.binaryPath == "" {
		return false
	}
	_, err := e.versionOutput(ctx, format)
	return err == nil
}

// BaseCLI returns the BaseCLIEngine itself. Embedding engines promote it, so
// SandboxAwareEngine can reach the shared plumbing without a type switch.
func (e *BaseCLIEngine) BaseCLI() *BaseCLIEngine {
	return e
}
