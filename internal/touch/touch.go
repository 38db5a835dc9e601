// Package touch creates placeholder files.
//
// A touched file exists afterwards. Existing content is never truncated;
// only the modification time changes.
package touch

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/swiftcshim/internal/log"
	"github.com/zjrosen/swiftcshim/internal/process"
	"github.com/zjrosen/swiftcshim/internal/tracing"
)

// Touch modes accepted by New.
const (
	ModeUtility = "utility"
	ModeNative  = "native"
)

// DefaultUtility is the touch binary used in utility mode.
const DefaultUtility = "/usr/bin/touch"

// Toucher creates path if it is missing and refreshes its modification time.
type Toucher interface {
	Touch(ctx context.Context, path string) error
}

// New returns the Toucher for mode. runner and utility are only used in
// utility mode; an empty utility means DefaultUtility.
func New(mode string, runner process.Runner, utility string, tracer trace.Tracer) (Toucher, error) {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	switch mode {
	case ModeUtility, "":
		if runner == nil {
			return nil, fmt.Errorf("utility touch requires a process runner")
		}
		if utility == "" {
			utility = DefaultUtility
		}
		return &UtilityToucher{runner: runner, utility: utility, tracer: tracer}, nil
	case ModeNative:
		return &NativeToucher{tracer: tracer, now: time.Now}, nil
	default:
		return nil, fmt.Errorf("unknown touch mode %q", mode)
	}
}

// UtilityToucher delegates to the external touch utility.
type UtilityToucher struct {
	runner  process.Runner
	utility string
	tracer  trace.Tracer
}

// Touch runs "<utility> <path>".
func (u *UtilityToucher) Touch(ctx context.Context, path string) (err error) {
	ctx, span := startSpan(ctx, u.tracer, path, ModeUtility)
	defer func() { tracing.Finish(span, err) }()

	if err := u.runner.Run(ctx, []string{u.utility, path}); err != nil {
		return fmt.Errorf("touching %s: %w", path, err)
	}
	log.Debug(log.CatTouch, "Touched file", "path", path, "mode", ModeUtility)
	return nil
}

// NativeToucher touches files in-process.
type NativeToucher struct {
	tracer trace.Tracer
	now    func() time.Time
}

// NewNativeToucher returns a NativeToucher without tracing.
func NewNativeToucher() *NativeToucher {
	return &NativeToucher{tracer: noop.NewTracerProvider().Tracer("noop"), now: time.Now}
}

// Touch opens path without truncation, creating it if needed, then sets
// its access and modification times to now.
func (n *NativeToucher) Touch(ctx context.Context, path string) (err error) {
	_, span := startSpan(ctx, n.tracer, path, ModeNative)
	defer func() { tracing.Finish(span, err) }()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G304: path is a declared build output
	if err != nil {
		return fmt.Errorf("touching %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("touching %s: %w", path, err)
	}

	now := n.now()
	if err := os.Chtimes(path, now, now); err != nil {
		return fmt.Errorf("touching %s: %w", path, err)
	}
	log.Debug(log.CatTouch, "Touched file", "path", path, "mode", ModeNative)
	return nil
}

func startSpan(ctx context.Context, tracer trace.Tracer, path, mode string) (context.Context, trace.Span) {
	return tracer.Start(ctx, tracing.SpanTouchFile,
		trace.WithAttributes(
			attribute.String(tracing.AttrTouchPath, path),
			attribute.String(tracing.AttrTouchMode, mode),
		),
	)
}
