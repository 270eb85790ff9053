// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"slices"
	"sync"
)

// fakeEngine is an in-memory Engine. Exec arguments are built by the real
// BaseCLIEngine so tests see the exact argv the CLI would receive.
type fakeEngine struct {
	name      string
	program   string
	mounts    []Mount
	mountsErr error
	output    string
	outputErr error

	mu           sync.Mutex
	inspectCalls int
	outputCalls  [][]string
}

func newFakeEngine(mounts ...Mount) *fakeEngine {
	return &fakeEngine{name: "docker", program: "/usr/bin/docker", mounts: mounts}
}

func (f *fakeEngine) Name() string                            { return f.name }
func (f *fakeEngine) Available(context.Context) bool          { return f.program != "" }
func (f *fakeEngine) Version(context.Context) (string, error) { return "27.3.1", nil }
func (f *fakeEngine) BinaryPath() string                      { return f.program }

func (f *fakeEngine) ExecArgs(id ContainerID, command []string, opts ExecOptions) []string {
	return (&BaseCLIEngine{}).ExecArgs(id, command, opts)
}

func (f *fakeEngine) Command(args ...string) (string, []string) {
	return f.program, args
}

func (f *fakeEngine) InspectMounts(context.Context, ContainerID) ([]Mount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inspectCalls++
	return slices.Clone(f.mounts), f.mountsErr
}

func (f *fakeEngine) Output(_ context.Context, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputCalls = append(f.outputCalls, slices.Clone(args))
	return f.output, f.outputErr
}

var _ Engine = (*fakeEngine)(nil)
