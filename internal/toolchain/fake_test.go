// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode"
)

// fakeDistribution maps drive paths the way WSL does (C:\x <-> /mnt/c/x).
// Guest paths are addressed from the host either through a UNC prefix or,
// for existence tests, under a real host directory standing in for the guest
// root.
type fakeDistribution struct {
	uncPrefix string
	hostRoot  string
	home      string
	patchErr  error

	gotCommandLine *CommandLine
	gotOptions     PatchOptions
}

func (d *fakeDistribution) RemotePath(local string) (string, bool) {
	if len(local) < 3 || !unicode.IsLetter(rune(local[0])) || local[1] != ':' || local[2] != '\\' {
		return "", false
	}
	rest := strings.ReplaceAll(strings.TrimRight(local[3:], `\`), `\`, "/")
	guest := "/mnt/" + strings.ToLower(local[:1])
	if rest != "" {
		guest += "/" + rest
	}
	return guest, true
}

func (d *fakeDistribution) LocalPath(remote string) (string, bool) {
	rest, ok := strings.CutPrefix(remote, "/mnt/")
	if !ok || rest == "" {
		return "", false
	}
	drive, tail, _ := strings.Cut(rest, "/")
	if len(drive) != 1 {
		return "", false
	}
	return strings.ToUpper(drive) + `:\` + strings.ReplaceAll(tail, "/", `\`), true
}

func (d *fakeDistribution) ExpandUserHome(remote string) string {
	if remote == "~" || strings.HasPrefix(remote, "~/") {
		return d.home + strings.TrimPrefix(remote, "~")
	}
	return remote
}

func (d *fakeDistribution) HostAddress(guest string) string {
	if d.uncPrefix != "" {
		return d.uncPrefix + strings.ReplaceAll(guest, "/", `\`)
	}
	return filepath.Join(d.hostRoot, filepath.FromSlash(guest))
}

func (d *fakeDistribution) PatchCommandLine(cl *CommandLine, opts PatchOptions) (*CommandLine, error) {
	d.gotCommandLine = cl
	d.gotOptions = opts
	if d.patchErr != nil {
		return nil, d.patchErr
	}
	return cl, nil
}

var errFakePatch = errors.New("distribution refused")
