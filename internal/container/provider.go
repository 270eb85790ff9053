// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"toolbridge/internal/toolchain"
)

// Provider resolves docker://, podman:// and container:// toolchain roots.
// container:// uses DefaultEngine. The zero value uses podman as default and
// detects engines on the host.
type Provider struct {
	DefaultEngine    EngineType
	EngineOptions    []BaseCLIEngineOption
	ToolchainOptions []toolchain.GuestOption

	// NewEngine overrides engine construction (tests).
	NewEngine func(ctx context.Context, t EngineType) (Engine, error)

	mu      sync.Mutex
	engines map[EngineType]Engine
	distros map[string]*Distribution
}

// IsApplicable reports whether root uses a container scheme.
func (p *Provider) IsApplicable(root string) bool {
	scheme, _, ok := strings.Cut(root, "://")
	if !ok {
		return false
	}
	switch strings.ToLower(scheme) {
	case string(EngineTypeDocker), string(EngineTypePodman), SchemeContainer:
		return true
	}
	return false
}

// Toolchain parses <scheme>://<container>/<path> into a guest toolchain. It
// reports false when the root is malformed or no engine is available.
func (p *Provider) Toolchain(root, name string) (toolchain.Toolchain, bool) {
	scheme, id, guestPath, ok := ParseRoot(root)
	if !ok {
		return nil, false
	}

	dist, err := p.distribution(scheme, id)
	if err != nil {
		slog.Warn("container engine unavailable", "root", root, "error", err)
		return nil, false
	}
	return toolchain.NewGuestToolchain(guestPath, name, dist, p.ToolchainOptions...), true
}

func (p *Provider) distribution(scheme string, id ContainerID) (*Distribution, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := scheme + "://" + string(id)
	if d, ok := p.distros[key]; ok {
		return d, nil
	}

	engineType := EngineType(scheme)
	if scheme == SchemeContainer {
		engineType = p.DefaultEngine
		if engineType == "" {
			engineType = EngineTypePodman
		}
	}

	engine, err := p.engine(engineType)
	if err != nil {
		return nil, err
	}

	if p.distros == nil {
		p.distros = map[string]*Distribution{}
	}
	d := NewDistribution(engine, scheme, id)
	p.distros[key] = d
	return d, nil
}

// engine returns the cached engine for t; callers hold p.mu.
func (p *Provider) engine(t EngineType) (Engine, error) {
	if e, ok := p.engines[t]; ok {
		return e, nil
	}

	newEngine := p.NewEngine
	if newEngine == nil {
		newEngine = func(ctx context.Context, t EngineType) (Engine, error) {
			return NewEngine(ctx, t, p.EngineOptions...)
		}
	}
	e, err := newEngine(context.Background(), t)
	if err != nil {
		return nil, fmt.Errorf("creating %s engine: %w", t, err)
	}

	if p.engines == nil {
		p.engines = map[EngineType]Engine{}
	}
	p.engines[t] = e
	return e, nil
}

// String implements fmt.Stringer.
func (p *Provider) String() string { return "container" }

var _ toolchain.Provider = (*Provider)(nil)
