package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.Equal(t, "swiftc", cfg.DefaultCompiler)
	require.Equal(t, ".preview-thunk.swift", cfg.PreviewThunkSuffix)
	require.Equal(t, "skip", cfg.ModulePathPolicy)
	require.Equal(t, "Toolchains/XcodeDefault.xctoolchain/usr/bin/swiftc", cfg.Toolchain.RelativePath)
	require.Equal(t, "utility", cfg.Touch.Mode)
	require.Equal(t, "/usr/bin/touch", cfg.Touch.Utility)
	require.Empty(t, cfg.Log.File, "logging is off by default")
	require.False(t, cfg.Tracing.Enabled, "tracing is off by default")

	require.NoError(t, Validate(cfg))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty compiler", func(c *Config) { c.DefaultCompiler = "" }, "default_compiler"},
		{"empty suffix", func(c *Config) { c.PreviewThunkSuffix = "" }, "preview_thunk_suffix"},
		{"empty relative path", func(c *Config) { c.Toolchain.RelativePath = "" }, "toolchain.relative_path"},
		{"bad policy", func(c *Config) { c.ModulePathPolicy = "guess" }, "module_path_policy"},
		{"bad touch mode", func(c *Config) { c.Touch.Mode = "symlink" }, "touch.mode"},
		{"utility without binary", func(c *Config) { c.Touch.Utility = "" }, "touch.utility"},
		{"bad log level", func(c *Config) { c.Log.Level = "chatty" }, "log.level"},
		{"trace file without path", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "file"
			c.Tracing.FilePath = ""
		}, "tracing.file_path"},
		{"trace unknown exporter", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "otlp"
		}, "tracing.exporter"},
		{"trace sample rate zero", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "none"
			c.Tracing.SampleRate = 0
		}, "tracing.sample_rate"},
		{"trace sample rate", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "none"
			c.Tracing.SampleRate = 2
		}, "tracing.sample_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)

			err := Validate(cfg)

			require.ErrorIs(t, err, ErrInvalidConfig)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_AcceptedVariants(t *testing.T) {
	cfg := Defaults()
	cfg.ModulePathPolicy = "require"
	cfg.Touch.Mode = "native"
	cfg.Touch.Utility = ""
	cfg.Log.Level = "warn"
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = "stderr"

	require.NoError(t, Validate(cfg))

	// Tracing settings are not checked while tracing is disabled.
	cfg.Tracing.Enabled = false
	cfg.Tracing.Exporter = "otlp"
	require.NoError(t, Validate(cfg))
}
