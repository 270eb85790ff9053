// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"toolbridge/internal/config"
	"toolbridge/internal/container"
	"toolbridge/internal/issue"
	"toolbridge/internal/process"
	"toolbridge/internal/toolchain"
	"toolbridge/internal/wsl"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. When the CLI layer receives a ServiceError, it renders the
// styled error message (if present) before formatting the underlying error.
// Always create via newServiceError to enforce the Err-must-be-non-nil invariant.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyError attaches the catalog entry that explains err. Errors that
// match no entry are returned unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return err
	}

	var launchErr *process.LaunchError
	var notAvail *container.ErrEngineNotAvailable
	var orderErr *config.InvalidProviderOrderError
	var id issue.Id
	switch {
	case errors.As(err, &orderErr):
		id = issue.InvalidProviderOrderId
	case errors.Is(err, toolchain.ErrNoToolchain):
		id = issue.ToolchainNotFoundId
	case errors.As(err, &notAvail), errors.Is(err, container.ErrNoBinary):
		id = issue.ContainerEngineNotFoundId
	case errors.Is(err, wsl.ErrHomeUnknown):
		id = issue.DistributionUnreachableId
	case errors.Is(err, os.ErrPermission):
		id = issue.PermissionDeniedId
	case errors.As(err, &launchErr):
		id = issue.LaunchFailedId
	default:
		return err
	}
	return newServiceError(err, id, "")
}

// configLoadError classifies a failure to load configuration. Provider order
// mistakes get their dedicated entry.
func configLoadError(err error) error {
	var orderErr *config.InvalidProviderOrderError
	if errors.As(err, &orderErr) {
		return newServiceError(err, issue.InvalidProviderOrderId, "")
	}
	return newServiceError(err, issue.ConfigLoadFailedId, "")
}

// renderServiceError renders a ServiceError in the CLI layer.
// It prints any styled message first, then the optional issue help section.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, stylePath string) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render(stylePath)
		if renderErr != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
