// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"toolbridge/internal/config"
	"toolbridge/internal/container"
	"toolbridge/internal/toolchain"
	"toolbridge/internal/wsl"
	"toolbridge/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root
	// for the CLI layer: every Cobra command handler receives an App reference
	// and resolves toolchains through it.
	App struct {
		Config    ConfigProvider
		Providers ProviderFactory
		Engines   EngineDetector
		stdin     io.Reader
		stdout    io.Writer
		stderr    io.Writer

		verbose    bool
		configPath string
		cfg        *config.Config
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config    ConfigProvider
		Providers ProviderFactory
		Engines   EngineDetector
		Stdin     io.Reader
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// ProviderFactory builds the ordered provider list from configuration.
	// elevate requests root execution inside guests.
	ProviderFactory func(cfg *config.Config, elevate bool) []toolchain.Provider

	// EngineDetector finds the container engine usable on this host.
	EngineDetector func(ctx context.Context) (container.Engine, error)
)

// NewApp creates the CLI composition root, defaulting nil dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Providers == nil {
		deps.Providers = buildProviders
	}
	if deps.Engines == nil {
		deps.Engines = detectEngine
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}

	return &App{
		Config:    deps.Config,
		Providers: deps.Providers,
		Engines:   deps.Engines,
		stdin:     deps.Stdin,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}
}

// loadConfig resolves the configuration once per invocation. The --config flag
// takes precedence over the default location.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}

	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		return nil, err
	}
	if a.verbose {
		cfg.UI.Verbose = true
	}
	a.cfg = cfg
	return cfg, nil
}

func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.configPath}
}

// config returns the loaded configuration or the defaults when loading was
// skipped for the running command.
func (a *App) config() *config.Config {
	if a.cfg == nil {
		return config.DefaultConfig()
	}
	return a.cfg
}

// resolveToolchain looks root up across the configured providers. An empty
// name falls back to the channel pinned by a rust-toolchain file in the
// working directory.
func (a *App) resolveToolchain(root, name string, elevate bool) (toolchain.Toolchain, error) {
	if name == "" {
		if wd, err := os.Getwd(); err == nil {
			name = toolchain.DefaultName(types.HostPath(wd))
		}
	}
	return toolchain.Lookup(a.Providers(a.config(), elevate), root, name)
}

// detectEngine probes for the default engine without reading configuration,
// so it is usable from commands that skip config loading.
func detectEngine(ctx context.Context) (container.Engine, error) {
	return container.NewEngine(ctx, container.EngineType(config.DefaultConfig().Container.Engine))
}

// buildProviders maps the configured provider order onto provider instances.
func buildProviders(cfg *config.Config, elevate bool) []toolchain.Provider {
	guestOpts := []toolchain.GuestOption{toolchain.WithElevation(elevate)}

	providers := make([]toolchain.Provider, 0, len(cfg.Providers))
	for _, name := range cfg.Providers {
		switch name {
		case config.ProviderWSL:
			providers = append(providers, &wsl.Provider{
				DistributionOptions: wslOptions(cfg.WSL),
				ToolchainOptions:    guestOpts,
			})
		case config.ProviderContainer:
			providers = append(providers, &container.Provider{
				DefaultEngine:    container.EngineType(cfg.Container.Engine),
				ToolchainOptions: guestOpts,
			})
		case config.ProviderLocal:
			providers = append(providers, toolchain.LocalProvider{})
		}
	}
	return providers
}

func wslOptions(c config.WSLConfig) []wsl.Option {
	return []wsl.Option{
		wsl.WithExecutable(string(c.Executable)),
		wsl.WithMountRoot(string(c.MountRoot)),
		wsl.WithShell(string(c.Shell)),
	}
}
