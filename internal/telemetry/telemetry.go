// Package telemetry sets up OpenTelemetry tracing and metrics providers and
// the instruments for the session core's suspension points: a span helper
// (StartSpan), a latency histogram (RecordSuspension), and a skipped-notes
// counter. The reader, QA, and adapter code do not call these helpers, so
// no spans, latencies, or skipped notes are recorded by them. Instrumentation
// here is pure observation — it never changes control flow.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry bundles the process-wide tracer and instruments this repo's
// adapters and tasks use.
type Telemetry struct {
	Tracer trace.Tracer

	SuspensionDuration metric.Float64Histogram
	NotesSkipped       metric.Int64Counter
}

// Setup installs a tracer provider (with a Prometheus-scraped meter
// provider alongside it) and returns the bundle, plus a shutdown func.
func Setup(serviceName string) (*Telemetry, func(context.Context) error, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)

	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: build prometheus exporter: %w", err)
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	tracer := tracerProvider.Tracer(serviceName)
	meter := meterProvider.Meter(serviceName)

	suspensionDuration, err := meter.Float64Histogram(
		"reading_assistant.suspension_duration_seconds",
		metric.WithDescription("latency of adapter calls that suspend the session core (tts, stt, llm, storage)"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: build suspension histogram: %w", err)
	}

	notesSkipped, err := meter.Int64Counter(
		"reading_assistant.notes_skipped_total",
		metric.WithDescription("count of QA exchanges the note-generation port declined to record"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: build notes-skipped counter: %w", err)
	}

	shutdown := func(ctx context.Context) error {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			return err
		}
		return meterProvider.Shutdown(ctx)
	}

	return &Telemetry{
		Tracer:             tracer,
		SuspensionDuration: suspensionDuration,
		NotesSkipped:       notesSkipped,
	}, shutdown, nil
}

// StartSpan starts a span named for the given session suspension point
// (e.g. "reader.synthesize_sentence", "qa.transcribe", "qa.answer",
// "storage.update_progress"), tagged with the session ID.
func (t *Telemetry) StartSpan(ctx context.Context, name string, sessionID string) (context.Context, trace.Span) {
	return t.Tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("session_id", sessionID),
	))
}

// RecordSuspension reports how long a suspension point (point is e.g.
// "reader.synthesize_sentence", "qa.transcribe") took.
func (t *Telemetry) RecordSuspension(ctx context.Context, point string, seconds float64) {
	t.SuspensionDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String("point", point)))
}
