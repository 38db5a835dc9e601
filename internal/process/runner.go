// Package process spawns child processes for swiftc-shim.
//
// A child runs with the environment snapshot the runner was built with and
// inherits the shim's standard streams. The runner blocks until the child
// exits; a nonzero exit or a failed spawn is returned as an error and never
// terminates the shim itself.
package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
)

// ErrEmptyCommand is returned when Run is called without an executable.
var ErrEmptyCommand = errors.New("empty command")

// Runner runs a command to completion.
// argv[0] is the executable path; the rest are passed verbatim.
type Runner interface {
	Run(ctx context.Context, argv []string) error
}

// Env is an immutable snapshot of a process environment.
type Env struct {
	vars []string
}

// NewEnv snapshots vars ("KEY=value" entries).
func NewEnv(vars []string) Env {
	return Env{vars: slices.Clone(vars)}
}

// CurrentEnv snapshots the environment of the running process.
func CurrentEnv() Env {
	return NewEnv(os.Environ())
}

// Vars returns a copy of the snapshot.
func (e Env) Vars() []string {
	return slices.Clone(e.vars)
}

// SpawnError reports a child that could not be started.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("error spawning process '%s': %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExitError reports a child that exited unsuccessfully.
// Signal is set when the child was killed by a signal; Code is then -1.
type ExitError struct {
	Command string
	Code    int
	Signal  string
}

func (e *ExitError) Error() string {
	if e.Signal != "" {
		return fmt.Sprintf("error in child process '%s': terminated by signal %s", e.Command, e.Signal)
	}
	return fmt.Sprintf("error in child process '%s': exit code %d", e.Command, e.Code)
}
