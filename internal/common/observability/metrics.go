package observability

import (
	"context"
	"log"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	jobCounter     otelmetric.Int64Counter
	jobDuration    otelmetric.Float64Histogram
	queryCounter   otelmetric.Int64Counter
}

type options struct {
	registerer  promclient.Registerer
	tracing     bool
	sampleRatio float64
	processors  []sdktrace.SpanProcessor
}

type Option func(*options)

// WithRegisterer sends the otel metrics to reg instead of the default
// Prometheus registry.
func WithRegisterer(reg promclient.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithTracing enables the SDK tracer provider.
func WithTracing(sampleRatio float64) Option {
	return func(o *options) {
		o.tracing = true
		o.sampleRatio = sampleRatio
	}
}

// WithSpanProcessor attaches an extra span processor. Implies tracing.
func WithSpanProcessor(p sdktrace.SpanProcessor) Option {
	return func(o *options) {
		o.tracing = true
		o.processors = append(o.processors, p)
	}
}

func New(serviceName string, opts ...Option) *Observability {
	cfg := options{sampleRatio: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	o := &Observability{tracer: noop.NewTracerProvider().Tracer(serviceName)}

	var exporterOpts []prometheus.Option
	if cfg.registerer != nil {
		exporterOpts = append(exporterOpts, prometheus.WithRegisterer(cfg.registerer))
	}
	exporter, err := prometheus.New(exporterOpts...)
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
	} else {
		o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter))
		otel.SetMeterProvider(o.meterProvider)
		o.meter = o.meterProvider.Meter(serviceName)

		o.jobCounter, _ = o.meter.Int64Counter(
			"jobs.processed",
			otelmetric.WithDescription("Number of jobs processed"),
		)
		o.jobDuration, _ = o.meter.Float64Histogram(
			"jobs.duration",
			otelmetric.WithDescription("Job processing duration"),
			otelmetric.WithUnit("ms"),
		)
		o.queryCounter, _ = o.meter.Int64Counter(
			"queries.classified",
			otelmetric.WithDescription("Number of queries interpreted"),
		)
	}

	if cfg.tracing {
		tpOpts := []sdktrace.TracerProviderOption{
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.sampleRatio))),
			sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		}
		for _, p := range cfg.processors {
			tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(p))
		}
		o.tracerProvider = sdktrace.NewTracerProvider(tpOpts...)
		otel.SetTracerProvider(o.tracerProvider)
		o.tracer = o.tracerProvider.Tracer(serviceName)
	}

	return o
}

// StartSpan starts a span under ctx. Without tracing it returns a no-op span.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordJobProcessed(ctx context.Context, status string) {
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, duration time.Duration, status string) {
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordQueryClassified(ctx context.Context, queryType, actionType string) {
	if o.queryCounter != nil {
		o.queryCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("query_type", queryType),
			attribute.String("action_type", actionType),
		))
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
