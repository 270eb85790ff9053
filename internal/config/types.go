// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ProviderWSL resolves \\wsl$ and \\wsl.localhost roots.
	ProviderWSL ProviderName = "wsl"
	// ProviderContainer resolves docker://, podman:// and container:// roots.
	ProviderContainer ProviderName = "container"
	// ProviderLocal accepts every remaining root as a host toolchain.
	ProviderLocal ProviderName = "local"

	// ContainerEnginePodman uses Podman as the container runtime.
	ContainerEnginePodman ContainerEngine = "podman"
	// ContainerEngineDocker uses Docker as the container runtime.
	ContainerEngineDocker ContainerEngine = "docker"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidProviderName is returned when a ProviderName value is not recognized.
	ErrInvalidProviderName = errors.New("invalid provider name")
	// ErrInvalidProviderOrder is returned when the provider list cannot be used
	// as a lookup order.
	ErrInvalidProviderOrder = errors.New("invalid provider order")
	// ErrInvalidContainerEngine is returned when a ContainerEngine value is not recognized.
	ErrInvalidContainerEngine = errors.New("invalid container engine")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidBinaryFilePath is returned when a BinaryFilePath value is whitespace-only.
	ErrInvalidBinaryFilePath = errors.New("invalid binary file path")
	// ErrInvalidGuestPath is returned when a GuestPath is not absolute.
	ErrInvalidGuestPath = errors.New("invalid guest path")
	// ErrInvalidWSLConfig is the sentinel error wrapped by InvalidWSLConfigError.
	ErrInvalidWSLConfig = errors.New("invalid WSL config")
	// ErrInvalidContainerConfig is the sentinel error wrapped by InvalidContainerConfigError.
	ErrInvalidContainerConfig = errors.New("invalid container config")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ProviderName names a toolchain provider in the lookup order.
	ProviderName string

	// InvalidProviderNameError is returned when a ProviderName value is not recognized.
	InvalidProviderNameError struct {
		Value ProviderName
	}

	// InvalidProviderOrderError explains why a provider list is unusable.
	InvalidProviderOrderError struct {
		Providers []ProviderName
		Reason    string
	}

	// ContainerEngine specifies which container runtime backs container:// roots.
	ContainerEngine string

	// InvalidContainerEngineError is returned when a ContainerEngine value is not recognized.
	// It wraps ErrInvalidContainerEngine for errors.Is() compatibility.
	InvalidContainerEngineError struct {
		Value ContainerEngine
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// BinaryFilePath represents a filesystem path or PATH name of a binary.
	// The zero value ("") is valid and means "use the default".
	BinaryFilePath string

	// InvalidBinaryFilePathError is returned when a BinaryFilePath value is
	// non-empty but whitespace-only.
	InvalidBinaryFilePathError struct {
		Value BinaryFilePath
	}

	// GuestPath is an absolute path inside a guest environment.
	// The zero value ("") is valid and means "use the default".
	GuestPath string

	// InvalidGuestPathError is returned when a non-empty GuestPath does not
	// start with "/".
	InvalidGuestPathError struct {
		Value GuestPath
	}

	// InvalidWSLConfigError collects field-level validation errors of a WSLConfig.
	InvalidWSLConfigError struct {
		FieldErrors []error
	}

	// InvalidContainerConfigError collects field-level validation errors of a
	// ContainerConfig.
	InvalidContainerConfigError struct {
		FieldErrors []error
	}

	// InvalidUIConfigError collects field-level validation errors of a UIConfig.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Providers is the toolchain provider lookup order.
		Providers []ProviderName `json:"providers" mapstructure:"providers"`
		// WSL configures how distributions are entered.
		WSL WSLConfig `json:"wsl" mapstructure:"wsl"`
		// Container configures container:// roots.
		Container ContainerConfig `json:"container" mapstructure:"container"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// WSLConfig configures the WSL provider.
	WSLConfig struct {
		Executable BinaryFilePath `json:"executable" mapstructure:"executable"`
		MountRoot  GuestPath      `json:"mount_root" mapstructure:"mount_root"`
		Shell      GuestPath      `json:"shell" mapstructure:"shell"`
	}

	// ContainerConfig configures the container provider.
	ContainerConfig struct {
		// Engine backs container:// roots; docker:// and podman:// name theirs.
		Engine ContainerEngine `json:"engine" mapstructure:"engine"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme ("auto", "dark", "light")
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Providers: []ProviderName{ProviderWSL, ProviderContainer, ProviderLocal},
		WSL: WSLConfig{
			Executable: "wsl.exe",
			MountRoot:  "/mnt/",
			Shell:      "/bin/sh",
		},
		Container: ContainerConfig{Engine: ContainerEnginePodman},
		UI:        UIConfig{ColorScheme: ColorSchemeAuto},
	}
}

// String returns the string representation of the ProviderName.
func (n ProviderName) String() string { return string(n) }

// IsValid returns whether the ProviderName is one of the known providers.
func (n ProviderName) IsValid() (bool, []error) {
	switch n {
	case ProviderWSL, ProviderContainer, ProviderLocal:
		return true, nil
	default:
		return false, []error{&InvalidProviderNameError{Value: n}}
	}
}

// Error implements the error interface for InvalidProviderNameError.
func (e *InvalidProviderNameError) Error() string {
	return fmt.Sprintf("invalid provider %q (valid: wsl, container, local)", e.Value)
}

// Unwrap returns ErrInvalidProviderName for errors.Is() compatibility.
func (e *InvalidProviderNameError) Unwrap() error { return ErrInvalidProviderName }

// ValidateProviderOrder checks constraints the schema cannot express: the
// list is non-empty, names are unique and "local" (which accepts any root)
// comes last if present.
func ValidateProviderOrder(providers []ProviderName) error {
	if len(providers) == 0 {
		return &InvalidProviderOrderError{Providers: providers, Reason: "no providers configured"}
	}
	seen := make(map[ProviderName]bool, len(providers))
	for i, p := range providers {
		if seen[p] {
			return &InvalidProviderOrderError{Providers: providers, Reason: fmt.Sprintf("%q is listed twice", p)}
		}
		seen[p] = true
		if p == ProviderLocal && i != len(providers)-1 {
			return &InvalidProviderOrderError{
				Providers: providers,
				Reason:    fmt.Sprintf("%q accepts every root and would shadow the providers after it", p),
			}
		}
	}
	return nil
}

func (e *InvalidProviderOrderError) Error() string {
	names := make([]string, len(e.Providers))
	for i, p := range e.Providers {
		names[i] = string(p)
	}
	return fmt.Sprintf("invalid provider order [%s]: %s", strings.Join(names, ", "), e.Reason)
}

// Unwrap returns ErrInvalidProviderOrder for errors.Is() compatibility.
func (e *InvalidProviderOrderError) Unwrap() error { return ErrInvalidProviderOrder }

// String returns the string representation of the ContainerEngine.
func (ce ContainerEngine) String() string { return string(ce) }

// IsValid returns whether the ContainerEngine is one of the defined engine types.
func (ce ContainerEngine) IsValid() (bool, []error) {
	switch ce {
	case ContainerEnginePodman, ContainerEngineDocker:
		return true, nil
	default:
		return false, []error{&InvalidContainerEngineError{Value: ce}}
	}
}

// Error implements the error interface for InvalidContainerEngineError.
func (e *InvalidContainerEngineError) Error() string {
	return fmt.Sprintf("invalid container engine %q (valid: podman, docker)", e.Value)
}

// Unwrap returns ErrInvalidContainerEngine for errors.Is() compatibility.
func (e *InvalidContainerEngineError) Unwrap() error { return ErrInvalidContainerEngine }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the BinaryFilePath.
func (p BinaryFilePath) String() string { return string(p) }

// IsValid returns whether the BinaryFilePath is valid.
func (p BinaryFilePath) IsValid() (bool, []error) {
	if p != "" && strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidBinaryFilePathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidBinaryFilePathError.
func (e *InvalidBinaryFilePathError) Error() string {
	return fmt.Sprintf("invalid binary file path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidBinaryFilePath for errors.Is() compatibility.
func (e *InvalidBinaryFilePathError) Unwrap() error { return ErrInvalidBinaryFilePath }

// String returns the string representation of the GuestPath.
func (p GuestPath) String() string { return string(p) }

// IsValid returns whether the GuestPath is empty or absolute.
func (p GuestPath) IsValid() (bool, []error) {
	if p != "" && !strings.HasPrefix(string(p), "/") {
		return false, []error{&InvalidGuestPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidGuestPathError.
func (e *InvalidGuestPathError) Error() string {
	return fmt.Sprintf("invalid guest path %q: must start with /", e.Value)
}

// Unwrap returns ErrInvalidGuestPath for errors.Is() compatibility.
func (e *InvalidGuestPathError) Unwrap() error { return ErrInvalidGuestPath }

// IsValid returns whether the WSLConfig has valid fields.
func (c WSLConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Executable.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.MountRoot.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Shell.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidWSLConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidWSLConfigError) Error() string {
	return fmt.Sprintf("invalid WSL config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidWSLConfig for errors.Is() compatibility.
func (e *InvalidWSLConfigError) Unwrap() error { return ErrInvalidWSLConfig }

// IsValid returns whether the ContainerConfig has valid fields.
func (c ContainerConfig) IsValid() (bool, []error) {
	if valid, fieldErrs := c.Engine.IsValid(); !valid {
		return false, []error{&InvalidContainerConfigError{FieldErrors: fieldErrs}}
	}
	return true, nil
}

func (e *InvalidContainerConfigError) Error() string {
	return fmt.Sprintf("invalid container config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidContainerConfig for errors.Is() compatibility.
func (e *InvalidContainerConfigError) Unwrap() error { return ErrInvalidContainerConfig }

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		return false, []error{&InvalidUIConfigError{FieldErrors: fieldErrs}}
	}
	return true, nil
}

func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the Config has valid fields. The provider order
// constraints are checked separately by ValidateProviderOrder.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for _, p := range c.Providers {
		if valid, fieldErrs := p.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := c.WSL.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Container.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
