// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"log/slog"

	"toolbridge/internal/issue"
	"toolbridge/pkg/types"
)

type (
	// Provider recognizes toolchain roots of one addressing convention.
	Provider interface {
		// IsApplicable reports whether root uses this provider's convention.
		IsApplicable(root string) bool
		// Toolchain parses root and builds the toolchain. It reports false when
		// root cannot be parsed.
		Toolchain(root, name string) (Toolchain, bool)
	}

	// LocalProvider accepts every non-empty root as a host toolchain. It is
	// applicable to everything, so it belongs last in a provider list.
	LocalProvider struct{}
)

// Lookup asks each applicable provider in order and returns the first
// toolchain built. A provider that is applicable but cannot parse root does
// not stop the search.
func Lookup(providers []Provider, root, name string) (Toolchain, error) {
	for _, p := range providers {
		if !p.IsApplicable(root) {
			continue
		}
		if tc, ok := p.Toolchain(root, name); ok {
			return tc, nil
		}
		slog.Debug("provider could not parse toolchain root", "provider", providerName(p), "root", root)
	}

	return nil, issue.NewErrorContext().
		WithOperation("resolve toolchain").
		WithResource(root).
		WithSuggestion(`Use the UNC form for WSL roots, e.g. \\wsl$\Ubuntu\home\me\.cargo`).
		WithSuggestion("Check the provider order with 'toolbridge config show'").
		Wrap(ErrNoToolchain).
		BuildError()
}

func (LocalProvider) IsApplicable(string) bool { return true }

func (LocalProvider) Toolchain(root, name string) (Toolchain, bool) {
	location := types.HostPath(root)
	if location.Validate() != nil {
		return nil, false
	}
	return NewLocalToolchain(location, name), true
}

// String implements fmt.Stringer.
func (LocalProvider) String() string { return "local" }

func providerName(p Provider) string {
	if s, ok := p.(interface{ String() string }); ok {
		return s.String()
	}
	return "unknown"
}
