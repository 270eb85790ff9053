// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"toolbridge/internal/process"
)

type (
	// ParamsGroup is a named, ordered run of arguments kept together as a unit.
	ParamsGroup struct {
		ID     string
		Params []string
	}

	// CommandLine is a command to execute. Patching rewrites values only: the
	// number of groups, their IDs, order and lengths never change.
	CommandLine struct {
		Exe     string
		Groups  []ParamsGroup
		Env     map[string]string
		WorkDir string

		// InputFile, when set, is opened as the process standard input. Guest
		// distributions turn it into a shell redirection instead.
		InputFile string
		Stdin     io.Reader
		PTY       bool
	}
)

// DefaultGroup is the ID of the group NewCommandLine puts its arguments in.
const DefaultGroup = "args"

// NewCommandLine creates a command line with args in the default group.
func NewCommandLine(exe string, args ...string) *CommandLine {
	cl := &CommandLine{Exe: exe, Env: map[string]string{}}
	if len(args) > 0 {
		cl.AddGroup(DefaultGroup, args...)
	}
	return cl
}

// AddGroup appends a parameter group.
func (c *CommandLine) AddGroup(id string, params ...string) *CommandLine {
	c.Groups = append(c.Groups, ParamsGroup{ID: id, Params: slices.Clone(params)})
	return c
}

// Group returns the first group with the given ID.
func (c *CommandLine) Group(id string) (ParamsGroup, bool) {
	for _, g := range c.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return ParamsGroup{}, false
}

// SetEnv sets an environment variable.
func (c *CommandLine) SetEnv(key, value string) *CommandLine {
	if c.Env == nil {
		c.Env = map[string]string{}
	}
	c.Env[key] = value
	return c
}

// Args flattens all groups in order.
func (c *CommandLine) Args() []string {
	var args []string
	for _, g := range c.Groups {
		args = append(args, g.Params...)
	}
	return args
}

// Clone returns a deep copy. Stdin is shared.
func (c *CommandLine) Clone() *CommandLine {
	clone := *c
	clone.Groups = make([]ParamsGroup, len(c.Groups))
	for i, g := range c.Groups {
		clone.Groups[i] = ParamsGroup{ID: g.ID, Params: slices.Clone(g.Params)}
	}
	clone.Env = maps.Clone(c.Env)
	if clone.Env == nil {
		clone.Env = map[string]string{}
	}
	return &clone
}

// Spec flattens the command line into a launch description.
func (c *CommandLine) Spec() process.Spec {
	return process.Spec{
		Exe:     c.Exe,
		Args:    c.Args(),
		Env:     maps.Clone(c.Env),
		WorkDir: c.WorkDir,
		Stdin:   c.Stdin,
		PTY:     c.PTY,
	}
}

// String renders the command line as a POSIX shell command, for display.
func (c *CommandLine) String() string {
	var sb strings.Builder
	if c.WorkDir != "" {
		fmt.Fprintf(&sb, "(cd %s) ", quoteWord(c.WorkDir))
	}
	for _, k := range slices.Sorted(maps.Keys(c.Env)) {
		fmt.Fprintf(&sb, "%s=%s ", k, quoteWord(c.Env[k]))
	}
	sb.WriteString(quoteWord(c.Exe))
	for _, a := range c.Args() {
		sb.WriteByte(' ')
		sb.WriteString(quoteWord(a))
	}
	if c.InputFile != "" {
		sb.WriteString(" < ")
		sb.WriteString(quoteWord(c.InputFile))
	}
	return sb.String()
}

func quoteWord(s string) string {
	q, err := syntax.Quote(s, syntax.LangPOSIX)
	if err != nil {
		// NUL bytes and non-printable runes have no POSIX quoting.
		return fmt.Sprintf("%q", s)
	}
	return q
}

// start launches cl, opening InputFile as standard input when set.
func start(ctx context.Context, launcher *process.Launcher, cl *CommandLine) (*process.Handle, error) {
	spec := cl.Spec()
	if cl.InputFile != "" && spec.Stdin == nil {
		f, err := os.Open(cl.InputFile)
		if err != nil {
			return nil, &process.LaunchError{Exe: cl.Exe, Cause: fmt.Errorf("opening input file: %w", err)}
		}
		// In PTY mode the file is copied into the terminal after Start
		// returns, so the handle owns it until the process exits.
		spec.Stdin = f
		spec.CloseStdin = true
	}
	return launcher.Start(ctx, spec)
}
