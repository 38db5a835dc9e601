package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/swiftcshim/internal/args"
	"github.com/zjrosen/swiftcshim/internal/artifacts"
	"github.com/zjrosen/swiftcshim/internal/config"
	"github.com/zjrosen/swiftcshim/internal/log"
	"github.com/zjrosen/swiftcshim/internal/process"
	"github.com/zjrosen/swiftcshim/internal/shim"
	"github.com/zjrosen/swiftcshim/internal/toolchain"
	"github.com/zjrosen/swiftcshim/internal/touch"
	"github.com/zjrosen/swiftcshim/internal/tracing"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "swiftc-shim [swiftc arguments...]",
	Short: "A swiftc stand-in that creates the outputs a build graph declares",
	Long: `swiftc-shim is installed where a build orchestrator expects swiftc.

It answers "-v" with the real compiler, re-runs SwiftUI preview-thunk
compiles on the compiler inside the SDK's developer root, and otherwise
creates empty placeholder files for every declared output: dependency
files from -output-file-map, the -emit-module-path module with its
.swiftdoc, .swiftsourceinfo and .swiftinterface companions, and the
-emit-objc-header-path header, plus any -emit-module-doc-path,
-emit-module-source-info-path, -emit-dependencies-path and
-emit-abi-descriptor-path outputs. "@file" arguments are read as one
argument per line.

Every argument is a compiler argument; the shim has no flags of its own.
Configuration comes from SWIFTC_SHIM_* environment variables and an
optional config file ($SWIFTC_SHIM_CONFIG, .swiftc-shim/config.yaml or
~/.config/swiftc-shim/config.yaml).`,
	DisableFlagParsing: true,
	SilenceUsage:       true,
	SilenceErrors:      true,
	RunE:               runShim,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func runShim(cmd *cobra.Command, cliArgs []string) error {
	argv := append([]string{executableName()}, cliArgs...)
	return run(cmd.Context(), argv, process.CurrentEnv(), cmd.ErrOrStderr())
}

// run loads configuration, wires the shim and executes argv.
func run(ctx context.Context, argv []string, env process.Env, stderr io.Writer) error {
	cfg, cfgFile, err := loadConfig(newViper())
	if err != nil {
		return err
	}

	if cfg.Log.File != "" {
		cleanup, err := log.Init(cfg.Log.File)
		if err != nil {
			return fmt.Errorf("%w: log.file: %v", config.ErrInvalidConfig, err)
		}
		defer cleanup()
		defer log.Reset()
		level, _ := log.ParseLevel(cfg.Log.Level)
		log.SetMinLevel(level)
	}
	log.Debug(log.CatConfig, "Configuration loaded", "file", cfgFile, "version", version,
		"touch_mode", cfg.Touch.Mode, "module_path_policy", cfg.ModulePathPolicy)

	provider, err := tracing.NewProvider(cfg.Tracing, stderr)
	if err != nil {
		return fmt.Errorf("%w: tracing: %v", config.ErrInvalidConfig, err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := provider.Shutdown(shutdownCtx); shutdownErr != nil {
			log.ErrorErr(log.CatConfig, "Trace shutdown failed", shutdownErr)
		}
	}()
	tracer := provider.Tracer()

	runner := process.NewExecRunner(env, process.WithTracer(tracer))

	toucher, err := touch.New(cfg.Touch.Mode, runner, cfg.Touch.Utility, tracer)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	synth, err := artifacts.NewSynthesizer(toucher, cfg.ModulePathPolicy)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	resolver := toolchain.Resolver{
		DefaultCompiler:    cfg.DefaultCompiler,
		RelativeCompiler:   cfg.Toolchain.RelativePath,
		PreviewThunkSuffix: cfg.PreviewThunkSuffix,
	}

	inv, err := args.ReadInvocation(argv)
	if err != nil {
		return err
	}

	s := shim.New(runner, resolver, synth, shim.WithTracer(tracer))
	_, err = s.Run(ctx, inv)
	return err
}

// newViper returns a viper instance with defaults and environment bindings.
func newViper() *viper.Viper {
	v := viper.New()
	defaults := config.Defaults()

	v.SetDefault("default_compiler", defaults.DefaultCompiler)
	v.SetDefault("preview_thunk_suffix", defaults.PreviewThunkSuffix)
	v.SetDefault("module_path_policy", defaults.ModulePathPolicy)
	v.SetDefault("toolchain.relative_path", defaults.Toolchain.RelativePath)
	v.SetDefault("touch.mode", defaults.Touch.Mode)
	v.SetDefault("touch.utility", defaults.Touch.Utility)
	v.SetDefault("log.file", defaults.Log.File)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	v.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	v.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)

	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig reads the config file, if any, and returns the validated
// configuration together with the file used.
//
// Config lookup order:
//  1. $SWIFTC_SHIM_CONFIG (must exist)
//  2. .swiftc-shim/config.yaml (current directory)
//  3. ~/.config/swiftc-shim/config.yaml (user config)
func loadConfig(v *viper.Viper) (config.Config, string, error) {
	var cfg config.Config

	explicit := os.Getenv(config.ConfigEnvVar)
	switch {
	case explicit != "":
		if !fileExists(explicit) {
			return cfg, "", fmt.Errorf("%w: config file %s not found", config.ErrInvalidConfig, explicit)
		}
		v.SetConfigFile(explicit)
	case fileExists(filepath.Join(".swiftc-shim", "config.yaml")):
		v.SetConfigFile(filepath.Join(".swiftc-shim", "config.yaml"))
	default:
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "swiftc-shim"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, "", fmt.Errorf("%w: reading config: %v", config.ErrInvalidConfig, err)
		}
		// No config file anywhere: defaults and environment only.
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, "", fmt.Errorf("%w: decoding config: %v", config.ErrInvalidConfig, err)
	}
	if err := config.Validate(cfg); err != nil {
		return cfg, "", err
	}
	return cfg, v.ConfigFileUsed(), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func executableName() string {
	if len(os.Args) > 0 {
		return os.Args[0]
	}
	return "swiftc-shim"
}
