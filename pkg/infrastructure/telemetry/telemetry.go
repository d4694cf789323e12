// Package telemetry installs the OpenTelemetry providers that back the
// planning service's spans and duration histogram.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/vsinha/restock/pkg/infrastructure/config"
)

// ErrUnknownExporter is returned for an exporter name Setup does not know
var ErrUnknownExporter = errors.New("unknown exporter")

// Providers are the tracer and meter providers handed to the planning service
type Providers struct {
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider

	shutdownFuncs []func(context.Context) error
}

// Shutdown flushes and stops every installed provider
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdownFuncs {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Option configures Setup
type Option func(*options)

type options struct {
	registerer  prometheus.Registerer
	traceWriter io.Writer
	global      bool
}

// WithRegisterer registers the Prometheus metric exporter on reg. Without
// it the prometheus metrics exporter is skipped.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithTraceWriter sets where the stdout trace exporter writes (default os.Stderr)
func WithTraceWriter(w io.Writer) Option {
	return func(o *options) {
		o.traceWriter = w
	}
}

// WithGlobal also installs the providers as the otel globals
func WithGlobal() Option {
	return func(o *options) {
		o.global = true
	}
}

// Setup builds providers for cfg. Disabled signals get no-op providers.
func Setup(ctx context.Context, cfg config.TelemetryConfig, opts ...Option) (*Providers, error) {
	o := options{traceWriter: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
	)

	p := &Providers{
		TracerProvider: tracenoop.NewTracerProvider(),
		MeterProvider:  metricnoop.NewMeterProvider(),
	}

	switch cfg.Traces {
	case "", "none":
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(o.traceWriter))
		if err != nil {
			return nil, fmt.Errorf("create stdout trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		p.TracerProvider = tp
		p.shutdownFuncs = append(p.shutdownFuncs, tp.Shutdown)
	default:
		return nil, fmt.Errorf("%w: traces=%s", ErrUnknownExporter, cfg.Traces)
	}

	switch cfg.Metrics {
	case "", "none":
	case "prometheus":
		if o.registerer == nil {
			break
		}
		exporter, err := promexporter.New(promexporter.WithRegisterer(o.registerer))
		if err != nil {
			_ = p.Shutdown(ctx)
			return nil, fmt.Errorf("create prometheus exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(exporter),
			sdkmetric.WithResource(res),
		)
		p.MeterProvider = mp
		p.shutdownFuncs = append(p.shutdownFuncs, mp.Shutdown)
	default:
		_ = p.Shutdown(ctx)
		return nil, fmt.Errorf("%w: metrics=%s", ErrUnknownExporter, cfg.Metrics)
	}

	if o.global {
		otel.SetTracerProvider(p.TracerProvider)
		otel.SetMeterProvider(p.MeterProvider)
	}
	return p, nil
}
