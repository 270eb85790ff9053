// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	"mvdan.cc/sh/v3/syntax"

	"toolbridge/internal/issue"
	"toolbridge/internal/toolchain"
	"toolbridge/pkg/fspath"
	"toolbridge/pkg/types"
)

// SchemeContainer addresses a container through the configured engine.
const SchemeContainer = "container"

// Distribution is a running container seen as a toolchain distribution. Host
// paths map into the container only through bind mounts. The mount table and
// the guest home directory are read once.
type Distribution struct {
	engine    Engine
	scheme    string
	container ContainerID

	mounts func() ([]Mount, error)
	home   func() (string, error)
}

// NewDistribution creates a distribution for container, driven by engine.
// scheme is used to address guest files that no bind mount exposes.
func NewDistribution(engine Engine, scheme string, container ContainerID) *Distribution {
	d := &Distribution{engine: engine, scheme: scheme, container: container}
	d.mounts = sync.OnceValues(d.loadMounts)
	d.home = sync.OnceValues(d.probeHome)
	return d
}

// ParseRoot splits <scheme>://<container>/<guest path>. Recognized schemes are
// docker, podman and container.
func ParseRoot(root string) (scheme string, id ContainerID, guestPath string, ok bool) {
	scheme, rest, found := strings.Cut(root, "://")
	if !found {
		return "", "", "", false
	}
	scheme = strings.ToLower(scheme)
	switch scheme {
	case string(EngineTypeDocker), string(EngineTypePodman), SchemeContainer:
	default:
		return "", "", "", false
	}

	name, tail, _ := strings.Cut(rest, "/")
	id = ContainerID(name)
	if id.Validate() != nil {
		return "", "", "", false
	}
	return scheme, id, path.Clean("/" + tail), true
}

// Container returns the container ID.
func (d *Distribution) Container() ContainerID { return d.container }

// Mounts returns the bind mounts of the container.
func (d *Distribution) Mounts() ([]Mount, error) { return d.mounts() }

// LocalPath maps a guest path to the host through the bind mount containing it.
func (d *Distribution) LocalPath(remote string) (string, bool) {
	if !fspath.IsGuestAbs(remote) {
		return "", false
	}
	m, rel, ok := d.longestMatch(remote, func(m Mount) string { return m.Destination }, "/")
	if !ok {
		return "", false
	}
	return string(fspath.JoinHost(types.HostPath(m.Source), rel)), true
}

// RemotePath maps a host path into the container through the bind mount whose
// source contains it.
func (d *Distribution) RemotePath(local string) (string, bool) {
	if fspath.IsURLStyle(local) {
		return d.parseOwnAddress(local)
	}
	m, rel, ok := d.longestMatch(local, func(m Mount) string { return m.Source }, `/\`)
	if !ok {
		return "", false
	}
	return fspath.JoinGuest(m.Destination, strings.ReplaceAll(rel, `\`, "/")), true
}

// ExpandUserHome expands a leading "~" with the container user's $HOME.
func (d *Distribution) ExpandUserHome(remote string) string {
	if remote != "~" && !strings.HasPrefix(remote, "~/") {
		return remote
	}
	home, err := d.home()
	if err != nil {
		slog.Warn("cannot expand container home directory", "container", d.container, "error", err)
		return remote
	}
	return home + strings.TrimPrefix(remote, "~")
}

// HostAddress returns the host path of a bind-mounted guest path, or the
// opaque <scheme>://<container><path> address when no mount exposes it.
func (d *Distribution) HostAddress(guest string) string {
	if local, ok := d.LocalPath(guest); ok {
		return local
	}
	return d.scheme + "://" + string(d.container) + path.Clean("/"+guest)
}

// PatchCommandLine turns cl into "<engine> exec" against the container.
func (d *Distribution) PatchCommandLine(cl *toolchain.CommandLine, opts toolchain.PatchOptions) (*toolchain.CommandLine, error) {
	exe := cl.Exe
	if guest, ok := d.RemotePath(exe); ok {
		exe = guest
	}
	command := append([]string{exe}, cl.Args()...)

	if opts.InputRedirection != "" {
		in, err := syntax.Quote(opts.InputRedirection, syntax.LangPOSIX)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("quote input redirection").
				WithResource(opts.InputRedirection).
				Wrap(err).
				BuildError()
		}
		// "$0" "$@" keeps the arguments out of the shell's word splitting.
		command = append([]string{"/bin/sh", "-c", `exec "$0" "$@" < ` + in}, command...)
	}

	execOpts := ExecOptions{
		WorkDir:     opts.WorkDir,
		Env:         cl.Env,
		Interactive: true,
		TTY:         cl.PTY,
	}
	if opts.Elevate {
		execOpts.User = "root"
	}

	program, argv := d.engine.Command(d.engine.ExecArgs(d.container, command, execOpts)...)
	if program == "" {
		return nil, issue.NewErrorContext().
			WithOperation("locate container engine").
			WithResource(d.engine.Name()).
			WithSuggestion("Install Docker or Podman, or set container.engine in the config").
			Wrap(ErrNoBinary).
			BuildError()
	}

	patched := &toolchain.CommandLine{
		Exe:   program,
		Env:   map[string]string{},
		Stdin: cl.Stdin,
		PTY:   cl.PTY,
	}
	patched.AddGroup("exec", argv...)
	return patched, nil
}

// longestMatch finds the bind mount whose key (source or destination) is the
// longest path prefix of p, and returns the remainder relative to it.
func (d *Distribution) longestMatch(p string, key func(Mount) string, seps string) (Mount, string, bool) {
	mounts, err := d.mounts()
	if err != nil {
		return Mount{}, "", false
	}

	var best Mount
	var bestRel string
	bestLen, found := 0, false
	for _, m := range mounts {
		k := strings.TrimRight(key(m), seps)
		rel, ok := strings.CutPrefix(p, k)
		if !ok || (rel != "" && !strings.ContainsRune(seps, rune(rel[0]))) {
			continue
		}
		if !found || len(k) > bestLen {
			best, bestRel, bestLen, found = m, strings.TrimLeft(rel, seps), len(k), true
		}
	}
	return best, bestRel, found
}

// parseOwnAddress maps one of this distribution's opaque addresses back to a
// guest path.
func (d *Distribution) parseOwnAddress(addr string) (string, bool) {
	scheme, id, guestPath, ok := ParseRoot(addr)
	if !ok || scheme != d.scheme || id != d.container {
		return "", false
	}
	return guestPath, true
}

func (d *Distribution) loadMounts() ([]Mount, error) {
	all, err := d.engine.InspectMounts(context.Background(), d.container)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("inspect container").
			WithResource(string(d.container)).
			WithSuggestion(fmt.Sprintf("Check that the container is running: %s ps", d.engine.Name())).
			Wrap(err).
			BuildError()
	}

	binds := make([]Mount, 0, len(all))
	for _, m := range all {
		if m.Type == "bind" && m.Source != "" && m.Destination != "" {
			binds = append(binds, m)
		}
	}
	slog.Debug("read container mount table", "container", d.container, "binds", len(binds), "total", len(all))
	return binds, nil
}

func (d *Distribution) probeHome() (string, error) {
	out, err := d.engine.Output(context.Background(),
		d.engine.ExecArgs(d.container, []string{"printenv", "HOME"}, ExecOptions{})...)
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("probe container home directory").
			WithResource(string(d.container)).
			Wrap(err).
			BuildError()
	}
	home := strings.TrimSpace(out)
	if !fspath.IsGuestAbs(home) {
		return "", fmt.Errorf("container %s reported home %q", d.container, home)
	}
	return strings.TrimRight(home, "/"), nil
}

var _ toolchain.Distribution = (*Distribution)(nil)
