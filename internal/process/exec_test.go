package process

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
}

func newTestRunner(env []string) (*ExecRunner, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	r := NewExecRunner(NewEnv(env), WithStdio(nil, &stdout, &stderr))
	return r, &stdout, &stderr
}

func TestExecRunner_Success(t *testing.T) {
	requireShell(t)
	r, stdout, _ := newTestRunner(nil)

	err := r.Run(context.Background(), []string{"/bin/sh", "-c", "printf ok"})

	require.NoError(t, err)
	require.Equal(t, "ok", stdout.String())
}

func TestExecRunner_ArgvZeroIsBaseName(t *testing.T) {
	requireShell(t)
	r, stdout, _ := newTestRunner(nil)

	// Without operands after the script, $0 is the shell's own argv[0].
	err := r.Run(context.Background(), []string{"/bin/sh", "-c", `printf %s "$0"`})

	require.NoError(t, err)
	require.Equal(t, "sh", stdout.String())
}

func TestExecRunner_PassesArgumentsVerbatim(t *testing.T) {
	requireShell(t)
	r, stdout, _ := newTestRunner(nil)

	err := r.Run(context.Background(), []string{"/bin/sh", "-c", `printf "%s|%s" "$0" "$1"`, "first", "second arg"})

	require.NoError(t, err)
	require.Equal(t, "first|second arg", stdout.String())
}

func TestExecRunner_NonzeroExit(t *testing.T) {
	requireShell(t)
	r, _, _ := newTestRunner(nil)

	err := r.Run(context.Background(), []string{"/bin/sh", "-c", "exit 7"})

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 7, exitErr.Code)
	require.Equal(t, "/bin/sh", exitErr.Command)
	require.Contains(t, err.Error(), "7")
	require.Contains(t, err.Error(), "/bin/sh")
}

func TestExecRunner_KilledBySignal(t *testing.T) {
	requireShell(t)
	r, _, _ := newTestRunner(nil)

	err := r.Run(context.Background(), []string{"/bin/sh", "-c", "kill -9 $$"})

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, -1, exitErr.Code)
	require.NotEmpty(t, exitErr.Signal)
	require.Contains(t, err.Error(), "signal")
}

func TestExecRunner_SpawnFailure(t *testing.T) {
	r, _, _ := newTestRunner(nil)
	missing := filepath.Join(t.TempDir(), "no-such-compiler")

	err := r.Run(context.Background(), []string{missing, "-v"})

	var spawnErr *SpawnError
	require.ErrorAs(t, err, &spawnErr)
	require.Equal(t, missing, spawnErr.Command)
	require.True(t, errors.Is(err, os.ErrNotExist), "cause is preserved: %v", err)
}

func TestExecRunner_BareNameNotOnPath(t *testing.T) {
	r, _, _ := newTestRunner(nil)
	t.Setenv("PATH", t.TempDir())

	err := r.Run(context.Background(), []string{"definitely-not-a-compiler-xyz"})

	var spawnErr *SpawnError
	require.ErrorAs(t, err, &spawnErr)
	require.ErrorIs(t, err, exec.ErrNotFound)
}

func TestExecRunner_EmptyCommand(t *testing.T) {
	r, _, _ := newTestRunner(nil)

	require.ErrorIs(t, r.Run(context.Background(), nil), ErrEmptyCommand)
	require.ErrorIs(t, r.Run(context.Background(), []string{""}), ErrEmptyCommand)
}

func TestExecRunner_ForwardsEnvironmentSnapshot(t *testing.T) {
	requireShell(t)
	r, stdout, _ := newTestRunner([]string{"SHIM_TEST_VALUE=from-snapshot"})
	t.Setenv("SHIM_TEST_VALUE", "from-process")

	err := r.Run(context.Background(), []string{"/bin/sh", "-c", `printf %s "$SHIM_TEST_VALUE"`})

	require.NoError(t, err)
	require.Equal(t, "from-snapshot", stdout.String())
}

func TestEnv_SnapshotIsImmutable(t *testing.T) {
	vars := []string{"A=1"}
	env := NewEnv(vars)

	vars[0] = "A=2"
	out := env.Vars()
	out[0] = "A=3"

	require.Equal(t, []string{"A=1"}, env.Vars())
}

func TestCurrentEnv(t *testing.T) {
	t.Setenv("SHIM_CURRENT_ENV", "yes")
	require.Contains(t, CurrentEnv().Vars(), "SHIM_CURRENT_ENV=yes")
}
