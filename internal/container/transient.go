// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// IsTransientError reports whether an engine command failed in a way that may
// succeed on retry: generic engine errors (exit code 125), daemon connection
// hiccups and containers caught mid-restart.
//
// Context cancellation and deadline errors are never transient.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 125 {
		return true
	}

	errStr := err.Error()
	for _, marker := range []string{
		"connection refused",
		"connection reset by peer",
		"Cannot connect to the Docker daemon",
		"is restarting, wait until the container is running",
		"OCI runtime error",
	} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}

// RetryWithBackoff retries op up to maxAttempts times with exponential backoff,
// checking ctx between attempts.
//
// op returns (shouldRetry bool, err error). If shouldRetry is false, err is
// returned immediately (nil on success, non-nil on permanent failure).
// On retry exhaustion, the last error is returned.
func RetryWithBackoff(
	ctx context.Context,
	maxAttempts int,
	baseBackoff time.Duration,
	op func(attempt int) (retry bool, err error),
) error {
	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry aborted: %w", ctx.Err())
			case <-time.After(baseBackoff * time.Duration(1<<(attempt-1))):
			}
		}

		retry, err := op(attempt)
		if err == nil || !retry {
			return err
		}
		lastErr = err
	}
	return lastErr
}
