// SPDX-License-Identifier: MPL-2.0

package toolchain

import "toolbridge/pkg/types"

// PathTranslator converts paths across the host/guest boundary. Strings the
// distribution cannot map come back unchanged, so it can be applied blindly
// to every token of a command line.
type PathTranslator struct {
	dist Distribution
}

// NewPathTranslator creates a translator over dist.
func NewPathTranslator(dist Distribution) *PathTranslator {
	return &PathTranslator{dist: dist}
}

// ToRemotePath converts a host path to its guest form.
func (p *PathTranslator) ToRemotePath(local string) string {
	remote, ok := p.dist.RemotePath(local)
	if !ok {
		return local
	}
	return remote
}

// ToLocalPath converts a guest path to its host form.
func (p *PathTranslator) ToLocalPath(remote string) string {
	local, ok := p.dist.LocalPath(remote)
	if !ok {
		return remote
	}
	return local
}

// ExpandUserHome resolves a leading ~ against the guest user's home.
func (p *PathTranslator) ExpandUserHome(remote string) string {
	return p.dist.ExpandUserHome(remote)
}

// HostAddress returns the host-addressable form of a guest absolute path.
func (p *PathTranslator) HostAddress(guest string) types.HostPath {
	return types.HostPath(p.dist.HostAddress(guest))
}
