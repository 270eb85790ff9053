// SPDX-License-Identifier: MPL-2.0

// Package config loads toolbridge's own settings using Viper with CUE as the
// file format.
//
// The file lives at $XDG_CONFIG_HOME/toolbridge/config.cue on Linux,
// ~/Library/Application Support/toolbridge/config.cue on macOS and
// %APPDATA%\toolbridge\config.cue on Windows, unless a path is given
// explicitly. It selects the provider lookup order, the WSL launcher and mount
// root, the default container engine and UI preferences. Every file is
// validated against the embedded config_schema.cue before it reaches Viper;
// TOOLBRIDGE_* environment variables override file values.
package config
