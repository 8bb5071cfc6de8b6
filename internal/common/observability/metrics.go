package observability

import (
	"context"
	"fmt"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	toolCounter    otelmetric.Int64Counter
	toolDuration   otelmetric.Float64Histogram
}

// New wires an otel MeterProvider to a Prometheus exporter registered on reg
// and installs a TracerProvider. Additional span processors (exporters) can be
// passed in; without any, spans are still created and propagated.
func New(serviceName string, reg promclient.Registerer, processors ...sdktrace.SpanProcessor) (*Observability, error) {
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	opts := []sdktrace.TracerProviderOption{sdktrace.WithSampler(sdktrace.AlwaysSample())}
	for _, p := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}
	tracerProvider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tracerProvider)

	meter := provider.Meter(serviceName)

	toolCounter, err := meter.Int64Counter(
		"tool.calls",
		otelmetric.WithDescription("Number of MCP tool calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool.calls counter: %w", err)
	}

	toolDuration, err := meter.Float64Histogram(
		"tool.duration",
		otelmetric.WithDescription("MCP tool call duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool.duration histogram: %w", err)
	}

	return &Observability{
		meterProvider:  provider,
		tracerProvider: tracerProvider,
		meter:          meter,
		tracer:         tracerProvider.Tracer(serviceName),
		toolCounter:    toolCounter,
		toolDuration:   toolDuration,
	}, nil
}

// NewNoop returns an Observability that records nothing. Used by tests and
// when the exporter cannot be created.
func NewNoop() *Observability {
	meter := noop.NewMeterProvider().Meter("noop")
	counter, _ := meter.Int64Counter("tool.calls")
	hist, _ := meter.Float64Histogram("tool.duration")
	return &Observability{
		meter:        meter,
		tracer:       tracenoop.NewTracerProvider().Tracer("noop"),
		toolCounter:  counter,
		toolDuration: hist,
	}
}

// Tracer returns the tracer for pipeline spans.
func (o *Observability) Tracer() trace.Tracer {
	return o.tracer
}

// StartSpan starts a span as a child of any span already in ctx.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordToolCall records one finished tool invocation.
func (o *Observability) RecordToolCall(ctx context.Context, tool, status string, duration time.Duration) {
	attrs := otelmetric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("status", status),
	)
	o.toolCounter.Add(ctx, 1, attrs)
	o.toolDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

func (o *Observability) Shutdown(ctx context.Context) error {
	var firstErr error
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
