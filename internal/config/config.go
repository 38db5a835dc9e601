// Package config provides configuration types and defaults for swiftc-shim.
package config

import (
	"errors"
	"fmt"

	"github.com/zjrosen/swiftcshim/internal/artifacts"
	"github.com/zjrosen/swiftcshim/internal/log"
	"github.com/zjrosen/swiftcshim/internal/toolchain"
	"github.com/zjrosen/swiftcshim/internal/touch"
	"github.com/zjrosen/swiftcshim/internal/tracing"
)

// EnvPrefix prefixes every environment override, e.g. SWIFTC_SHIM_LOG_FILE.
const EnvPrefix = "SWIFTC_SHIM"

// ConfigEnvVar names an explicit config file.
const ConfigEnvVar = EnvPrefix + "_CONFIG"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration options for swiftc-shim.
type Config struct {
	DefaultCompiler    string          `mapstructure:"default_compiler"`
	PreviewThunkSuffix string          `mapstructure:"preview_thunk_suffix"`
	ModulePathPolicy   string          `mapstructure:"module_path_policy"` // "skip" (default) or "require"
	Toolchain          ToolchainConfig `mapstructure:"toolchain"`
	Touch              TouchConfig     `mapstructure:"touch"`
	Log                LogConfig       `mapstructure:"log"`
	Tracing            tracing.Config  `mapstructure:"tracing"`
}

// ToolchainConfig locates the alternate compiler.
type ToolchainConfig struct {
	// RelativePath is joined to the developer root of the -sdk value.
	RelativePath string `mapstructure:"relative_path"`
}

// TouchConfig selects how placeholder files are created.
type TouchConfig struct {
	Mode    string `mapstructure:"mode"`    // "utility" (default) or "native"
	Utility string `mapstructure:"utility"` // touch binary for utility mode
}

// LogConfig controls the debug log. An empty File disables logging.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		DefaultCompiler:    toolchain.DefaultCompiler,
		PreviewThunkSuffix: toolchain.DefaultPreviewThunkSuffix,
		ModulePathPolicy:   artifacts.MissingModuleSkip,
		Toolchain: ToolchainConfig{
			RelativePath: toolchain.DefaultRelativeCompiler,
		},
		Touch: TouchConfig{
			Mode:    touch.ModeUtility,
			Utility: touch.DefaultUtility,
		},
		Log: LogConfig{
			File:  "",
			Level: "debug",
		},
		Tracing: tracing.DefaultConfig(),
	}
}

// Validate checks enumerated values and required fields.
func Validate(cfg Config) error {
	if cfg.DefaultCompiler == "" {
		return fmt.Errorf("%w: default_compiler must not be empty", ErrInvalidConfig)
	}
	if cfg.PreviewThunkSuffix == "" {
		return fmt.Errorf("%w: preview_thunk_suffix must not be empty", ErrInvalidConfig)
	}
	if cfg.Toolchain.RelativePath == "" {
		return fmt.Errorf("%w: toolchain.relative_path must not be empty", ErrInvalidConfig)
	}

	switch cfg.ModulePathPolicy {
	case artifacts.MissingModuleSkip, artifacts.MissingModuleRequire:
	default:
		return fmt.Errorf("%w: module_path_policy %q (want %q or %q)",
			ErrInvalidConfig, cfg.ModulePathPolicy, artifacts.MissingModuleSkip, artifacts.MissingModuleRequire)
	}

	switch cfg.Touch.Mode {
	case touch.ModeUtility:
		if cfg.Touch.Utility == "" {
			return fmt.Errorf("%w: touch.utility must not be empty in utility mode", ErrInvalidConfig)
		}
	case touch.ModeNative:
	default:
		return fmt.Errorf("%w: touch.mode %q (want %q or %q)",
			ErrInvalidConfig, cfg.Touch.Mode, touch.ModeUtility, touch.ModeNative)
	}

	if _, err := log.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}

	if cfg.Tracing.Enabled {
		switch cfg.Tracing.Exporter {
		case tracing.ExporterFile:
			if cfg.Tracing.FilePath == "" {
				return fmt.Errorf("%w: tracing.file_path is required for the file exporter", ErrInvalidConfig)
			}
		case tracing.ExporterStderr, tracing.ExporterNone:
		default:
			return fmt.Errorf("%w: tracing.exporter %q", ErrInvalidConfig, cfg.Tracing.Exporter)
		}
		if cfg.Tracing.SampleRate <= 0 || cfg.Tracing.SampleRate > 1 {
			return fmt.Errorf("%w: tracing.sample_rate %v must be within (0, 1]; disable tracing instead of sampling nothing",
				ErrInvalidConfig, cfg.Tracing.SampleRate)
		}
	}

	return nil
}
