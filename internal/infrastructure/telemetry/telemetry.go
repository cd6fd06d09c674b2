// Package telemetry wires OpenTelemetry traces, metrics and logs plus
// Pyroscope profiling. Every part is optional; a disabled part leaves the
// global no-op provider in place.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/ledgerly/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// Telemetry owns the providers started for the process
type Telemetry struct {
	Tracer   *TracerProvider
	Meter    *MeterProvider
	Logs     *LoggerProvider
	Profiler *Profiler
}

// Setup starts every provider enabled in cfg. On error the providers already
// started are shut down again.
func Setup(ctx context.Context, cfg config.TelemetryConfig, version string, logger *zap.Logger) (*Telemetry, error) {
	t := &Telemetry{}
	res, err := newResource(cfg.ServiceName, version)
	if err != nil {
		return nil, err
	}

	if t.Tracer, err = NewTracerProvider(ctx, cfg, res, logger); err != nil {
		return nil, err
	}
	if t.Meter, err = NewMeterProvider(ctx, cfg, res, logger); err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	if t.Logs, err = NewLoggerProvider(ctx, cfg, res, logger); err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	if t.Profiler, err = StartProfiler(cfg, version, logger); err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	if t.Profiler.Enabled() {
		t.Tracer.EnableSpanProfiles()
	}
	return t, nil
}

// Shutdown flushes and stops all providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.Profiler != nil {
		errs = append(errs, t.Profiler.Stop())
	}
	if t.Logs != nil {
		errs = append(errs, t.Logs.Shutdown(ctx))
	}
	if t.Meter != nil {
		errs = append(errs, t.Meter.Shutdown(ctx))
	}
	if t.Tracer != nil {
		errs = append(errs, t.Tracer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func newResource(serviceName, version string) (*resource.Resource, error) {
	if version == "" {
		version = "dev"
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
