package telemetry

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/icdevs/inspect-mo-sub000/internal/config"
)

// Init bootstraps OpenTelemetry tracing for cmd/exampleserver. Unlike a
// service with many independent endpoints, everything this process traces
// funnels through one Inspector, so the resource carries the inspector's
// own admission defaults (allow_anonymous, default_max_arg_size) as static
// attributes — a span showing a rejection can be correlated with the
// baseline config that produced it without a second lookup. Returns a
// shutdown function to call on graceful exit.
func Init(tel config.TelemetryConfig, insp config.InspectorConfig) (func(context.Context) error, error) {
	if !tel.Enabled || tel.OTLPEndpoint == "" {
		log.Info().Msg("opentelemetry tracing disabled")
		return func(ctx context.Context) error { return nil }, nil
	}

	ctx := context.Background()

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(tel.OTLPEndpoint),
		otlptracegrpc.WithInsecure(), // local/dev; production should terminate TLS at the collector
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", tel.ServiceName),
			attribute.Bool("inspectmo.allow_anonymous", insp.AllowAnonymous),
			attribute.Int("inspectmo.default_max_arg_size", insp.DefaultMaxArgSize),
			attribute.Bool("inspectmo.audit_log", insp.AuditLog),
		),
		resource.WithHost(),
		resource.WithProcess(),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	ratio := tel.SampleRatio
	if ratio <= 0 {
		ratio = 1.0
	}
	sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info().
		Str("endpoint", tel.OTLPEndpoint).
		Str("service", tel.ServiceName).
		Float64("sample_ratio", ratio).
		Msg("opentelemetry tracing initialized")

	return tp.Shutdown, nil
}
