package tracing

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrInvocationID = "shim.invocation_id"
	AttrBranch       = "shim.branch"
	AttrArgCount     = "shim.arg_count"
	AttrCommand      = "process.command"
	AttrExitCode     = "process.exit_code"
	AttrTouchPath    = "touch.path"
	AttrTouchMode    = "touch.mode"
)

// Span names.
const (
	SpanShimRun    = "shim.run"
	SpanProcessRun = "process.run"
	SpanTouchFile  = "touch.file"
)

// Finish records err on span, sets the status and ends it.
func Finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
