// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"toolbridge/internal/issue"
	"toolbridge/pkg/cueutil"
	"toolbridge/pkg/platform"
)

const (
	// AppName is the application name.
	AppName = "toolbridge"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. TOOLBRIDGE_CONTAINER_ENGINE.
	EnvPrefix = "TOOLBRIDGE"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the toolbridge configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch {
	case platform.IsWindows():
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case runtime.GOOS == "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// FilePath returns the config file the options select: the explicit file, or
// config.cue in the (possibly overridden) config directory. The file may not
// exist.
func FilePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, nil
	}
	dir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions reads defaults, the config file and environment overrides,
// in increasing priority. A missing default file is not an error; a missing
// explicit file is.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfgPath, err := FilePath(opts)
	if err != nil {
		return nil, "", err
	}

	resolvedPath := ""
	switch {
	case fileExists(cfgPath):
		if err := loadCUEIntoViper(v, cfgPath); err != nil {
			return nil, "", loadError(cfgPath, err,
				"Check that the file contains valid CUE syntax",
				"Verify the configuration values match the expected schema",
				"Run 'toolbridge config show' to see the effective configuration")
		}
		resolvedPath = cfgPath
	case opts.ConfigFilePath != "":
		return nil, "", loadError(cfgPath, fmt.Errorf("config file not found: %s", cfgPath),
			"Verify the file path is correct",
			"Run 'toolbridge config init' to create a default configuration")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Environment overrides bypass the schema, so the typed checks run on the
	// merged result.
	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check " + EnvPrefix + "_* environment variables as well as the file").
			Wrap(errors.Join(errs...)).
			BuildError()
	}
	if err := ValidateProviderOrder(cfg.Providers); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion(`List each provider at most once and keep "local" last`).
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	providers := make([]string, len(defaults.Providers))
	for i, p := range defaults.Providers {
		providers[i] = p.String()
	}
	v.SetDefault("providers", providers)
	v.SetDefault("wsl.executable", defaults.WSL.Executable.String())
	v.SetDefault("wsl.mount_root", defaults.WSL.MountRoot.String())
	v.SetDefault("wsl.shell", defaults.WSL.Shell.String())
	v.SetDefault("container.engine", defaults.Container.Engine.String())
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme.String())
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
}

func loadError(path string, err error, suggestions ...string) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestions(suggestions...).
		Wrap(err).
		BuildError()
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into
// Viper. It decodes to a map rather than Config: fields are optional, and
// only the ones present in the file may override defaults.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	res, err := cueutil.ParseAndDecode[map[string]any](configSchema, data, "#Config",
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(*res.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default configuration to the file opts
// select unless it already exists. It reports the path and whether it wrote
// the file.
func CreateDefaultConfig(opts LoadOptions) (string, bool, error) {
	cfgPath, err := FilePath(opts)
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, true, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// toolbridge configuration\n")
	sb.WriteString("// Providers are tried in order; \"local\" accepts every root and belongs last.\n\n")

	quoted := make([]string, len(cfg.Providers))
	for i, p := range cfg.Providers {
		quoted[i] = fmt.Sprintf("%q", p)
	}
	fmt.Fprintf(&sb, "providers: [%s]\n", strings.Join(quoted, ", "))

	sb.WriteString("\nwsl: {\n")
	writeField(&sb, "executable", cfg.WSL.Executable.String())
	writeField(&sb, "mount_root", cfg.WSL.MountRoot.String())
	writeField(&sb, "shell", cfg.WSL.Shell.String())
	sb.WriteString("}\n")

	sb.WriteString("\ncontainer: {\n")
	writeField(&sb, "engine", cfg.Container.Engine.String())
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	writeField(&sb, "color_scheme", cfg.UI.ColorScheme.String())
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

// writeField writes a string field, omitting unset ones so the schema
// defaults apply.
func writeField(sb *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "\t%s: %q\n", name, value)
}
