// Package shim sequences one swiftc-shim run.
//
// A run takes exactly one of three branches, checked in order:
//
//  1. version query: any argument is "-v" or "--version"; the default
//     compiler answers it.
//  2. preview thunk: an output file map is given and a preview-thunk source
//     is compiled; the invocation is re-run on the compiler inside the
//     SDK's developer root.
//  3. synthesize: dependency files from the output file map, then module
//     artifacts and the generated header, are touched.
//
// Every failure is returned to the caller; nothing here exits the process.
package shim

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/swiftcshim/internal/args"
	"github.com/zjrosen/swiftcshim/internal/artifacts"
	"github.com/zjrosen/swiftcshim/internal/log"
	"github.com/zjrosen/swiftcshim/internal/process"
	"github.com/zjrosen/swiftcshim/internal/toolchain"
	"github.com/zjrosen/swiftcshim/internal/tracing"
)

// Outcome names the branch a run took.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeVersionQuery
	OutcomePreviewRedispatch
	OutcomeSynthesized
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVersionQuery:
		return "version_query"
	case OutcomePreviewRedispatch:
		return "preview_redispatch"
	case OutcomeSynthesized:
		return "synthesized"
	default:
		return "none"
	}
}

// Shim runs invocations.
type Shim struct {
	runner   process.Runner
	resolver toolchain.Resolver
	synth    *artifacts.Synthesizer
	tracer   trace.Tracer
	newID    func() string
}

// Option configures a Shim.
type Option func(*Shim)

// WithTracer records a span per run.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Shim) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// New creates a Shim.
func New(runner process.Runner, resolver toolchain.Resolver, synth *artifacts.Synthesizer, opts ...Option) *Shim {
	s := &Shim{
		runner:   runner,
		resolver: resolver,
		synth:    synth,
		tracer:   noop.NewTracerProvider().Tracer("noop"),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes inv and reports which branch was taken.
// The outcome is set even when the branch fails.
func (s *Shim) Run(ctx context.Context, inv args.Invocation) (outcome Outcome, err error) {
	id := s.newID()
	ctx, span := s.tracer.Start(ctx, tracing.SpanShimRun,
		trace.WithAttributes(
			attribute.String(tracing.AttrInvocationID, id),
			attribute.Int(tracing.AttrArgCount, len(inv.Args())),
		),
	)
	defer func() {
		span.SetAttributes(attribute.String(tracing.AttrBranch, outcome.String()))
		tracing.Finish(span, err)
		if err != nil {
			log.ErrorErr(log.CatShim, "Run failed", err, "invocation", id, "branch", outcome)
		} else {
			log.Info(log.CatShim, "Run finished", "invocation", id, "branch", outcome)
		}
	}()

	log.Debug(log.CatArgs, "Invocation", "invocation", id, "args", len(inv.Args()),
		"output_file_map", inv.FlagValue(args.FlagOutputFileMap),
		"emit_module_path", inv.FlagValue(args.FlagEmitModulePath),
		"sdk", inv.FlagValue(args.FlagSDK))

	switch {
	case s.resolver.IsVersionQuery(inv):
		return OutcomeVersionQuery, s.runVersionQuery(ctx, inv)
	case s.resolver.IsPreviewThunkCompile(inv):
		return OutcomePreviewRedispatch, s.runPreview(ctx, inv)
	default:
		return OutcomeSynthesized, s.synthesize(ctx, inv)
	}
}

func (s *Shim) runVersionQuery(ctx context.Context, inv args.Invocation) error {
	argv := s.resolver.VersionQuery(inv)
	log.Debug(log.CatShim, "Forwarding version query", "compiler", argv[0])
	if err := s.runner.Run(ctx, argv); err != nil {
		return fmt.Errorf("version query: %w", err)
	}
	return nil
}

func (s *Shim) runPreview(ctx context.Context, inv args.Invocation) error {
	redirected, err := s.resolver.PreviewRedispatch(inv)
	if err != nil {
		return err
	}
	log.Info(log.CatToolchain, "Redirecting preview thunk compile", "compiler", redirected.Executable())
	if err := s.runner.Run(ctx, redirected.Argv()); err != nil {
		return fmt.Errorf("preview thunk compile: %w", err)
	}
	return nil
}

func (s *Shim) synthesize(ctx context.Context, inv args.Invocation) error {
	if err := s.synth.TouchDepsFiles(ctx, inv); err != nil {
		return fmt.Errorf("dependency files: %w", err)
	}
	if err := s.synth.TouchSwiftmoduleArtifacts(ctx, inv); err != nil {
		return fmt.Errorf("module artifacts: %w", err)
	}
	return nil
}
