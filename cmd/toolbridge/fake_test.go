// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"strings"
	"sync"

	"toolbridge/internal/config"
	"toolbridge/internal/container"
	"toolbridge/internal/toolchain"
)

const (
	fakeScheme   = "fake://box"
	fakeHostRoot = `C:\work`
	fakeGuestDir = "/work"
)

type (
	// fakeConfig returns a fixed configuration and counts loads.
	fakeConfig struct {
		mu    sync.Mutex
		cfg   *config.Config
		err   error
		calls int
		opts  config.LoadOptions
	}

	// fakeDistribution maps C:\work <-> /work and addresses guest paths as
	// fake://box/<path>.
	fakeDistribution struct{}

	// fakeProvider resolves fake://box/<path> roots onto fakeDistribution.
	fakeProvider struct {
		elevate bool
	}

	// syncBuffer is a strings.Builder safe for the concurrent writers a run
	// command and the logger produce.
	syncBuffer struct {
		mu sync.Mutex
		sb strings.Builder
	}
)

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.String()
}

func (f *fakeConfig) Load(_ context.Context, opts config.LoadOptions) (*config.Config, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	if f.cfg == nil {
		return config.DefaultConfig(), nil
	}
	return f.cfg, nil
}

func (f *fakeConfig) loadCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (fakeDistribution) RemotePath(local string) (string, bool) {
	if rest, ok := strings.CutPrefix(local, fakeScheme); ok {
		return rest, true
	}
	rest, ok := strings.CutPrefix(local, fakeHostRoot)
	if !ok || (rest != "" && rest[0] != '\\') {
		return "", false
	}
	return fakeGuestDir + strings.ReplaceAll(rest, `\`, "/"), true
}

func (fakeDistribution) LocalPath(remote string) (string, bool) {
	rest, ok := strings.CutPrefix(remote, fakeGuestDir)
	if !ok || (rest != "" && rest[0] != '/') {
		return "", false
	}
	return fakeHostRoot + strings.ReplaceAll(rest, "/", `\`), true
}

func (fakeDistribution) ExpandUserHome(remote string) string {
	if remote == "~" || strings.HasPrefix(remote, "~/") {
		return "/home/builder" + strings.TrimPrefix(remote, "~")
	}
	return remote
}

func (fakeDistribution) HostAddress(guest string) string { return fakeScheme + guest }

func (d fakeDistribution) PatchCommandLine(cl *toolchain.CommandLine, opts toolchain.PatchOptions) (*toolchain.CommandLine, error) {
	exe, ok := d.RemotePath(cl.Exe)
	if !ok {
		exe = cl.Exe
	}
	out := cl.Clone()
	out.Exe = "guest-run"
	out.WorkDir = ""
	var wrapper []string
	if opts.WorkDir != "" {
		wrapper = append(wrapper, "--cd", opts.WorkDir)
	}
	if opts.Elevate {
		wrapper = append(wrapper, "--root")
	}
	out.Groups = append([]toolchain.ParamsGroup{{ID: "guest", Params: append(wrapper, exe)}}, out.Groups...)
	return out, nil
}

func (fakeProvider) IsApplicable(root string) bool { return strings.HasPrefix(root, fakeScheme+"/") }

func (p fakeProvider) Toolchain(root, name string) (toolchain.Toolchain, bool) {
	guest := strings.TrimPrefix(root, fakeScheme)
	return toolchain.NewGuestToolchain(guest, name, fakeDistribution{},
		toolchain.WithHostListSeparator(";"),
		toolchain.WithElevation(p.elevate),
	), true
}

// fakeEngine reports a fixed name and version; other Engine methods are not
// used by the CLI outside providers.
type fakeEngine struct {
	container.Engine
	name       string
	version    string
	versionErr error
}

func (e fakeEngine) Name() string { return e.name }

func (e fakeEngine) Version(context.Context) (string, error) { return e.version, e.versionErr }

func noEngine(context.Context) (container.Engine, error) {
	return nil, &container.ErrEngineNotAvailable{Engine: "podman", Reason: "not installed"}
}

var errNoVersion = errors.New("daemon not running")

// newTestApp builds an App over fake providers, followed by the local one.
func newTestApp(cfg *fakeConfig) (app *App, stdout, stderr *syncBuffer) {
	stdout, stderr = &syncBuffer{}, &syncBuffer{}
	app = NewApp(Dependencies{
		Config: cfg,
		Providers: func(_ *config.Config, elevate bool) []toolchain.Provider {
			return []toolchain.Provider{fakeProvider{elevate: elevate}, toolchain.LocalProvider{}}
		},
		Engines: noEngine,
		Stdin:   strings.NewReader(""),
		Stdout:  stdout,
		Stderr:  stderr,
	})
	return app, stdout, stderr
}

// execute runs the command tree with args and returns the handler error.
func execute(app *App, args ...string) error {
	root := NewRootCommand(app)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}
