package process

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/swiftcshim/internal/log"
	"github.com/zjrosen/swiftcshim/internal/tracing"
)

// Compile-time check that ExecRunner implements Runner.
var _ Runner = (*ExecRunner)(nil)

// ExecRunner implements Runner with os/exec.
type ExecRunner struct {
	env    Env
	tracer trace.Tracer
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Option configures an ExecRunner.
type Option func(*ExecRunner)

// WithTracer records a span per child.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *ExecRunner) {
		r.tracer = tracer
	}
}

// WithStdio overrides the standard streams handed to children.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(r *ExecRunner) {
		r.stdin = stdin
		r.stdout = stdout
		r.stderr = stderr
	}
}

// NewExecRunner creates a runner that starts children with env.
func NewExecRunner(env Env, opts ...Option) *ExecRunner {
	r := &ExecRunner{
		env:    env,
		tracer: noop.NewTracerProvider().Tracer("noop"),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts argv[0] and waits for it. The child's argv[0] is the base name
// of the executable. A bare name is searched for on PATH.
func (r *ExecRunner) Run(ctx context.Context, argv []string) (err error) {
	if len(argv) == 0 || argv[0] == "" {
		return ErrEmptyCommand
	}

	command := argv[0]
	ctx, span := r.tracer.Start(ctx, tracing.SpanProcessRun,
		trace.WithAttributes(
			attribute.String(tracing.AttrCommand, command),
			attribute.Int(tracing.AttrArgCount, len(argv)-1),
		),
	)
	defer func() { tracing.Finish(span, err) }()

	path, err := resolveExecutable(command)
	if err != nil {
		log.ErrorErr(log.CatExec, "Executable lookup failed", err, "command", command)
		return &SpawnError{Command: command, Err: err}
	}

	childArgv := make([]string, 0, len(argv))
	childArgv = append(childArgv, filepath.Base(command))
	childArgv = append(childArgv, argv[1:]...)

	//nolint:gosec // G204: argv is the compiler invocation being forwarded
	cmd := exec.CommandContext(ctx, path)
	cmd.Args = childArgv
	// A nil Env would make os/exec inherit the live environment.
	cmd.Env = r.env.Vars()
	if cmd.Env == nil {
		cmd.Env = []string{}
	}
	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	log.Debug(log.CatExec, "Spawning child", "path", path, "argv", strings.Join(childArgv, " "))

	if err := cmd.Start(); err != nil {
		log.ErrorErr(log.CatExec, "Spawn failed", err, "command", command)
		return &SpawnError{Command: command, Err: err}
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			log.ErrorErr(log.CatExec, "Wait failed", err, "command", command)
			return &SpawnError{Command: command, Err: err}
		}
		failure := exitFailure(command, exitErr)
		span.SetAttributes(attribute.Int(tracing.AttrExitCode, failure.Code))
		log.Error(log.CatExec, "Child failed", "command", command, "code", failure.Code, "signal", failure.Signal)
		return failure
	}

	span.SetAttributes(attribute.Int(tracing.AttrExitCode, 0))
	log.Debug(log.CatExec, "Child exited", "command", command, "code", 0)
	return nil
}

// resolveExecutable returns command unchanged when it contains a path
// separator and otherwise looks it up on PATH.
func resolveExecutable(command string) (string, error) {
	if strings.ContainsRune(command, filepath.Separator) {
		return command, nil
	}
	return exec.LookPath(command)
}

func exitFailure(command string, exitErr *exec.ExitError) *ExitError {
	failure := &ExitError{Command: command, Code: exitErr.ExitCode()}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		failure.Signal = status.Signal().String()
	}
	return failure
}
