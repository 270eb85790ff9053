// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"toolbridge/pkg/fspath"
	"toolbridge/pkg/types"
)

const (
	// ToolchainFileName is the rustup override file.
	ToolchainFileName = "rust-toolchain.toml"
	// LegacyToolchainFileName holds a bare channel name.
	LegacyToolchainFileName = "rust-toolchain"
)

// ErrNoToolchainFile is returned when a project has no toolchain override.
var ErrNoToolchainFile = errors.New("no toolchain file")

type (
	// ToolchainFile is the [toolchain] table of rust-toolchain.toml.
	ToolchainFile struct {
		Channel    string   `toml:"channel"`
		Components []string `toml:"components"`
		Targets    []string `toml:"targets"`
		Profile    string   `toml:"profile"`
		Path       string   `toml:"path"`
	}

	toolchainFileDoc struct {
		Toolchain ToolchainFile `toml:"toolchain"`
	}
)

// ReadToolchainFile reads the toolchain override of the project at dir. The
// TOML form is preferred; the legacy form holds just a channel name. dir may
// be a UNC path into a guest.
func ReadToolchainFile(dir types.HostPath) (*ToolchainFile, error) {
	data, err := os.ReadFile(string(fspath.JoinHost(dir, ToolchainFileName)))
	if err == nil {
		var doc toolchainFileDoc
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", ToolchainFileName, err)
		}
		return &doc.Toolchain, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", ToolchainFileName, err)
	}

	data, err = os.ReadFile(string(fspath.JoinHost(dir, LegacyToolchainFileName)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoToolchainFile
		}
		return nil, fmt.Errorf("reading %s: %w", LegacyToolchainFileName, err)
	}
	// Newer rustup also accepts TOML content under the legacy name.
	if bytes.Contains(data, []byte("[toolchain]")) {
		var doc toolchainFileDoc
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", LegacyToolchainFileName, err)
		}
		return &doc.Toolchain, nil
	}
	return &ToolchainFile{Channel: strings.TrimSpace(string(data))}, nil
}

// DefaultName returns the channel pinned by the project at dir, or "" when the
// project has no readable override.
func DefaultName(dir types.HostPath) string {
	tf, err := ReadToolchainFile(dir)
	if err != nil {
		return ""
	}
	return tf.Channel
}
