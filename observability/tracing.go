package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/apokryfos/Enumerable/observer"
)

// SpanPrefix prefixes the span name of every traced terminal.
const SpanPrefix = "pipeline."

// TracingObserver wraps each terminal in a span named after it, from the
// opening to the closing event.
type TracingObserver struct {
	tracer trace.Tracer
	open   *inflight
}

// NewTracingObserver returns an Observer starting spans on tracer.
func NewTracingObserver(tracer trace.Tracer) *TracingObserver {
	return &TracingObserver{tracer: tracer, open: newInflight()}
}

// Notify implements observer.Observer.
func (o *TracingObserver) Notify(ctx context.Context, e observer.Event) {
	if !e.Finished() {
		_, span := o.tracer.Start(ctx, SpanPrefix+e.Operation,
			trace.WithTimestamp(e.Time),
			trace.WithAttributes(
				attribute.String(AttrPipelineID, e.PipelineID),
				attribute.String(AttrOperation, e.Operation),
			))
		o.open.begin(e, span)
		return
	}

	op := o.open.end(e)
	if op == nil {
		return
	}
	span := op.span
	span.SetAttributes(
		attribute.Int(AttrCount, e.Count),
		attribute.Int64(AttrDurationMs, e.Duration.Milliseconds()),
	)
	if status, code := outcome(e); status == StatusError {
		span.RecordError(e.Err)
		span.SetAttributes(attribute.String(AttrErrorCode, code))
		span.SetStatus(codes.Error, e.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(e.Time))
}

// Open returns the number of spans started and not yet ended.
func (o *TracingObserver) Open() int { return o.open.Len() }
