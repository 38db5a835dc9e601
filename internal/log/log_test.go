package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLog_DisabledWithoutInit(t *testing.T) {
	Reset()
	// Must not panic without a destination.
	Debug(CatShim, "nothing")
	ErrorErr(CatExec, "nothing", errors.New("boom"))
}

func TestLog_FormatsFields(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	Info(CatTouch, "touched file", "path", "/tmp/X.swiftdoc", "via", "utility")

	line := buf.String()
	require.Contains(t, line, "[INFO] [touch] touched file")
	require.Contains(t, line, "path=/tmp/X.swiftdoc")
	require.Contains(t, line, "via=utility")
	require.True(t, strings.HasSuffix(line, "\n"))
}

func TestLog_OrphanKey(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	Warn(CatArgs, "odd fields", "key")

	require.Contains(t, buf.String(), "key=<missing>")
}

func TestLog_ErrorErr(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	ErrorErr(CatExec, "spawn failed", errors.New("no such file"), "command", "swiftc")
	ErrorErr(CatExec, "nil error", nil)

	out := buf.String()
	require.Contains(t, out, "[ERROR] [exec] spawn failed command=swiftc error=no such file")
	require.Contains(t, out, "error=<nil>")
}

func TestLog_MinLevelAndEnabled(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	SetMinLevel(LevelWarn)
	Debug(CatShim, "hidden")
	Info(CatShim, "hidden")
	Error(CatShim, "shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")

	buf.Reset()
	SetEnabled(false)
	Error(CatShim, "muted")
	require.Empty(t, buf.String())
}

func TestLog_InitAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shim.log")
	require.NoError(t, os.WriteFile(path, []byte("existing\n"), 0644))

	cleanup, err := Init(path)
	require.NoError(t, err)
	t.Cleanup(Reset)

	Info(CatConfig, "loaded")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "existing\n"))
	require.Contains(t, string(data), "[INFO] [config] loaded")
}

func TestLog_InitFailsForMissingDirectory(t *testing.T) {
	_, err := Init(filepath.Join(t.TempDir(), "missing", "shim.log"))
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"":        LevelDebug,
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		" error ": LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, "input %q", in)
		require.Equal(t, want, got, "input %q", in)
	}

	_, err := ParseLevel("verbose")
	require.Error(t, err)
}

func TestLevel_String(t *testing.T) {
	require.Equal(t, "DEBUG", LevelDebug.String())
	require.Equal(t, "ERROR", LevelError.String())
	require.Equal(t, "UNKNOWN", Level(42).String())
}
