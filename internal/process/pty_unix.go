// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package process

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"

	"github.com/creack/pty"
)

func (h *Handle) startPTY(stdin io.Reader) error {
	tty, err := pty.Start(h.cmd)
	if err != nil {
		return fmt.Errorf("starting pseudo-terminal: %w", err)
	}
	h.tty = tty

	if stdin != nil {
		go func() {
			if _, err := io.Copy(tty, stdin); err != nil {
				slog.Debug("pty input copy stopped", "id", h.id, "error", err)
			}
		}()
	}
	return nil
}

func terminate(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}
