package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

// Observability owns the OTel meter provider (exported through the
// Prometheus registry) and the tracer used around pipeline stages. A nil
// *Observability is valid and records nothing.
type Observability struct {
	meterProvider *metric.MeterProvider
	tracer        trace.Tracer
	events        otelmetric.Int64Counter
	stageDuration otelmetric.Float64Histogram
}

func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	events, err := meter.Int64Counter(
		"triage.suggestions",
		otelmetric.WithDescription("Suggestion lifecycle events"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"triage.stage.duration",
		otelmetric.WithDescription("Pipeline stage duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Observability{
		meterProvider: provider,
		tracer:        otel.Tracer(serviceName),
		events:        events,
		stageDuration: stageDuration,
	}, nil
}

// RecordEvent counts a suggestion lifecycle event such as "created" or "approved".
func (o *Observability) RecordEvent(ctx context.Context, event, priority string) {
	if o == nil || o.events == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("event", event)}
	if priority != "" {
		attrs = append(attrs, attribute.String("priority", priority))
	}
	o.events.Add(ctx, 1, otelmetric.WithAttributes(attrs...))
}

func (o *Observability) RecordStage(ctx context.Context, stage string, duration time.Duration) {
	if o == nil || o.stageDuration == nil {
		return
	}
	o.stageDuration.Record(ctx, float64(duration.Microseconds())/1000, otelmetric.WithAttributes(
		attribute.String("stage", stage),
	))
}

// StartSpan falls back to the global tracer provider, which is a no-op until
// one is installed.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer("lead-triage")
	if o != nil && o.tracer != nil {
		tracer = o.tracer
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
