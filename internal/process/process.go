// SPDX-License-Identifier: MPL-2.0

package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"slices"
	"sync"

	"github.com/google/uuid"

	"toolbridge/pkg/types"
)

type (
	// ExecCommandFunc creates the *exec.Cmd for a launch. Tests replace it with
	// a TestHelperProcess shim.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Spec is a flattened, ready-to-spawn command line.
	Spec struct {
		Exe  string
		Args []string
		// Env entries are applied on top of the host environment.
		Env     map[string]string
		WorkDir string
		Stdin   io.Reader
		// PTY attaches the child to a pseudo-terminal. Stdout and stderr are
		// merged into the terminal stream.
		PTY bool
		// CloseStdin hands Stdin to the handle, which closes it once the
		// process has exited.
		CloseStdin bool
	}

	// Launcher starts processes.
	Launcher struct {
		execCommand ExecCommandFunc
	}

	// LauncherOption configures a Launcher.
	LauncherOption func(*Launcher)

	// Handle is a started process.
	Handle struct {
		id     uuid.UUID
		exe    string
		cmd    *exec.Cmd
		stdout io.ReadCloser
		stderr io.ReadCloser
		tty    *os.File
		// stdinCloser is released after exit; the PTY input copy may still be
		// reading from it while the child runs.
		stdinCloser io.Closer

		done     chan struct{}
		exitCode types.ExitCode
		waitErr  error
		once     sync.Once
	}

	// LaunchError reports that a process could not be spawned.
	LaunchError struct {
		Exe   string
		Cause error
	}
)

// ErrProcessFinished is returned by Terminate and Kill after the process exited.
var ErrProcessFinished = errors.New("process already finished")

// WithExecCommand overrides how the launcher builds commands.
func WithExecCommand(fn ExecCommandFunc) LauncherOption {
	return func(l *Launcher) {
		l.execCommand = fn
	}
}

// NewLauncher creates a launcher backed by exec.CommandContext.
func NewLauncher(opts ...LauncherOption) *Launcher {
	l := &Launcher{execCommand: exec.CommandContext}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start spawns the process described by spec. It returns once the process is
// running; the exit status is delivered through the Handle. Cancelling ctx
// kills the child.
func (l *Launcher) Start(ctx context.Context, spec Spec) (*Handle, error) {
	if spec.Exe == "" {
		closeOwnedStdin(spec)
		return nil, &LaunchError{Exe: spec.Exe, Cause: errors.New("empty executable")}
	}

	cmd := l.execCommand(ctx, spec.Exe, spec.Args...)
	cmd.Dir = spec.WorkDir
	cmd.Env = mergeEnv(cmd.Env, spec.Env)

	h := &Handle{
		id:   uuid.New(),
		exe:  spec.Exe,
		cmd:  cmd,
		done: make(chan struct{}),
	}
	if c, ok := spec.Stdin.(io.Closer); ok && spec.CloseStdin {
		h.stdinCloser = c
	}

	var err error
	if spec.PTY {
		err = h.startPTY(spec.Stdin)
	} else {
		err = h.startPiped(spec.Stdin)
	}
	if err != nil {
		closeOwnedStdin(spec)
		return nil, &LaunchError{Exe: spec.Exe, Cause: err}
	}

	slog.Debug("process started", "id", h.id, "exe", spec.Exe, "pid", cmd.Process.Pid, "pty", spec.PTY)

	go h.wait()
	return h, nil
}

// Start spawns spec with the default launcher.
func Start(ctx context.Context, spec Spec) (*Handle, error) {
	return NewLauncher().Start(ctx, spec)
}

func (h *Handle) startPiped(stdin io.Reader) error {
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return fmt.Errorf("creating stderr pipe: %w", err)
	}

	h.cmd.Stdin = stdin
	h.cmd.Stdout = stdoutW
	h.cmd.Stderr = stderrW

	startErr := h.cmd.Start()
	// The child holds its own copies of the write ends.
	stdoutW.Close()
	stderrW.Close()
	if startErr != nil {
		stdoutR.Close()
		stderrR.Close()
		return startErr
	}

	h.stdout = stdoutR
	h.stderr = stderrR
	return nil
}

func (h *Handle) wait() {
	err := h.cmd.Wait()
	h.exitCode, h.waitErr = exitStatus(err)
	if h.stdinCloser != nil {
		if err := h.stdinCloser.Close(); err != nil {
			slog.Debug("closing process input", "id", h.id, "error", err)
		}
	}
	slog.Debug("process exited", "id", h.id, "exe", h.exe, "exit_code", h.exitCode)
	close(h.done)
}

// exitStatus converts the result of cmd.Wait into an exit code. A non-zero exit
// is not an error; only failures to observe the process are.
func exitStatus(err error) (types.ExitCode, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := types.ExitCode(exitErr.ExitCode())
		if code.Validate() != nil {
			// Killed by a signal (-1) or out of the portable range.
			return 1, nil
		}
		return code, nil
	}
	return 1, err
}

// ID returns the handle's unique identifier, used to correlate log lines.
func (h *Handle) ID() uuid.UUID { return h.id }

// PID returns the host process ID.
func (h *Handle) PID() int { return h.cmd.Process.Pid }

// Stdout returns the process output stream. In PTY mode this is the terminal
// and also carries stderr.
func (h *Handle) Stdout() io.Reader {
	if h.tty != nil {
		return h.tty
	}
	return h.stdout
}

// Stderr returns the error stream. In PTY mode it is always empty.
func (h *Handle) Stderr() io.Reader {
	if h.tty != nil {
		return eofReader{}
	}
	return h.stderr
}

// Done is closed once the process has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the process exits and returns its exit code.
func (h *Handle) Wait() (types.ExitCode, error) {
	<-h.done
	return h.exitCode, h.waitErr
}

// Kill forcibly stops the process.
func (h *Handle) Kill() error {
	if h.exited() {
		return ErrProcessFinished
	}
	if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("killing %s: %w", h.exe, err)
	}
	return nil
}

// Terminate asks the process to stop. On hosts without a termination signal
// it kills the process.
func (h *Handle) Terminate() error {
	if h.exited() {
		return ErrProcessFinished
	}
	if err := terminate(h.cmd.Process); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("terminating %s: %w", h.exe, err)
	}
	return nil
}

// Close releases the output streams (or the terminal in PTY mode). It does
// not stop the process.
func (h *Handle) Close() error {
	var errs []error
	h.once.Do(func() {
		if h.tty != nil {
			errs = append(errs, h.tty.Close())
			return
		}
		errs = append(errs, h.stdout.Close(), h.stderr.Close())
	})
	return errors.Join(errs...)
}

func (h *Handle) exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Error implements the error interface.
func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", e.Exe, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *LaunchError) Unwrap() error { return e.Cause }

// mergeEnv layers overrides on top of base (or the host environment when base
// is nil) in a deterministic order.
func mergeEnv(base []string, overrides map[string]string) []string {
	if base == nil {
		base = os.Environ()
	}
	if len(overrides) == 0 {
		return base
	}
	env := slices.Clone(base)
	for _, k := range slices.Sorted(maps.Keys(overrides)) {
		env = append(env, k+"="+overrides[k])
	}
	return env
}

func closeOwnedStdin(spec Spec) {
	if c, ok := spec.Stdin.(io.Closer); ok && spec.CloseStdin {
		c.Close()
	}
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
