package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/xraph/herald"

// Tracer provides OpenTelemetry tracing for herald. A nil *Tracer starts
// no spans.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer from the global provider.
func NewTracer() *Tracer {
	return &Tracer{
		tracer: otel.Tracer(tracerName),
	}
}

// StartDispatchSpan starts a span covering one dispatch.
func (t *Tracer) StartDispatchSpan(ctx context.Context, eventID, source, kind, entityID string) (context.Context, trace.Span) {
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, "herald.dispatch",
		trace.WithAttributes(
			attribute.String("herald.event_id", eventID),
			attribute.String("herald.source", source),
			attribute.String("herald.kind", kind),
			attribute.String("herald.entity_id", entityID),
		),
	)
}

// StartContinuationSpan starts a span covering a post-acknowledgement continuation.
func (t *Tracer) StartContinuationSpan(ctx context.Context, eventID, taskID string) (context.Context, trace.Span) {
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, "herald.continuation",
		trace.WithAttributes(
			attribute.String("herald.event_id", eventID),
			attribute.String("herald.task_id", taskID),
		),
	)
}

// EndSpan ends span, recording state and err.
func (t *Tracer) EndSpan(span trace.Span, state string, err error) {
	if t == nil {
		return
	}
	span.SetAttributes(attribute.String("herald.state", state))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
