// SPDX-License-Identifier: MPL-2.0

//go:build windows

package process

import (
	"errors"
	"io"
	"os"
)

// ErrPTYUnsupported is returned when PTY mode is requested on Windows hosts.
var ErrPTYUnsupported = errors.New("pseudo-terminal mode is not supported on Windows hosts")

func (h *Handle) startPTY(io.Reader) error {
	return ErrPTYUnsupported
}

func terminate(p *os.Process) error {
	return p.Kill()
}
