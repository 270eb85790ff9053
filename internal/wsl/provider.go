// SPDX-License-Identifier: MPL-2.0

package wsl

import (
	"strings"
	"sync"

	"toolbridge/internal/toolchain"
)

// Provider resolves toolchain roots on WSL shares. Distributions are shared
// between toolchains of the same distro so the home probe runs once. The zero
// value is ready to use.
type Provider struct {
	DistributionOptions []Option
	ToolchainOptions    []toolchain.GuestOption

	mu      sync.Mutex
	distros map[string]*Distribution
}

// IsApplicable reports whether root starts with \\wsl$\ or \\wsl.localhost\.
func (p *Provider) IsApplicable(root string) bool {
	return HasUNCPrefix(root)
}

// Toolchain parses \\wsl$\<distro>\<guest path> into a guest toolchain.
func (p *Provider) Toolchain(root, name string) (toolchain.Toolchain, bool) {
	prefix, distro, guestPath, ok := ParseUNC(root)
	if !ok {
		return nil, false
	}
	dist := p.distribution(prefix, distro)
	return toolchain.NewGuestToolchain(guestPath, name, dist, p.ToolchainOptions...), true
}

func (p *Provider) distribution(prefix, distro string) *Distribution {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := strings.ToLower(prefix + distro)
	if d, ok := p.distros[key]; ok {
		return d
	}
	if p.distros == nil {
		p.distros = map[string]*Distribution{}
	}
	opts := append([]Option{WithUNCPrefix(prefix)}, p.DistributionOptions...)
	d := NewDistribution(distro, opts...)
	p.distros[key] = d
	return d
}

// String implements fmt.Stringer.
func (p *Provider) String() string { return "wsl" }

var _ toolchain.Provider = (*Provider)(nil)
