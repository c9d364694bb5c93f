package collab

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
)

// OtelTelemetrySink implements ictx.TelemetrySink by recording a span
// event on the context's active span — the tracer provider itself is set
// up once by internal/telemetry.Init (adapted from the teacher's own
// OTLP bootstrap) at host startup; this sink only ever looks up
// whatever tracer name it was given and annotates the caller's span, it
// never owns exporter lifecycle.
type OtelTelemetrySink struct {
	tracer trace.Tracer
}

// NewOtelTelemetrySink returns a sink that emits rejection events under
// the given instrumentation name (conventionally the service name).
func NewOtelTelemetrySink(instrumentationName string) *OtelTelemetrySink {
	return &OtelTelemetrySink{tracer: otel.Tracer(instrumentationName)}
}

// RecordRejection implements ictx.TelemetrySink. If ctx carries no active
// span, the event is emitted on a short-lived span of its own so a
// rejection is never silently dropped just because the host didn't wrap
// the call in tracing.
func (s *OtelTelemetrySink) RecordRejection(ctx context.Context, event ictx.TelemetryEvent) {
	span := trace.SpanFromContext(ctx)
	attrs := []attribute.KeyValue{
		attribute.String("inspectmo.event_id", uuid.NewString()),
		attribute.String("inspectmo.method", event.MethodName),
		attribute.String("inspectmo.caller", event.Caller.ID),
		attribute.Bool("inspectmo.anonymous", event.Caller.Anonymous),
		attribute.Bool("inspectmo.is_inspect", event.IsInspect),
	}
	if event.Err != nil {
		attrs = append(attrs, attribute.String("inspectmo.reason", event.Err.Error()))
	}

	if !span.SpanContext().IsValid() {
		_, standalone := s.tracer.Start(ctx, "inspectmo.rejection")
		defer standalone.End()
		standalone.AddEvent("inspectmo.rejection", trace.WithAttributes(attrs...))
		return
	}
	span.AddEvent("inspectmo.rejection", trace.WithAttributes(attrs...))
}
