// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// setupLogging routes slog through a charmbracelet logger on w. Library
// packages log through slog only; verbose lowers the level to debug.
func setupLogging(w io.Writer, verbose bool) {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:  level,
		Prefix: "toolbridge",
	})
	slog.SetDefault(slog.New(logger))
}
