package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/ledgerly/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/zap"
)

// MeterName is the instrumentation scope of ledgerly's own instruments
const MeterName = "github.com/ledgerly/backend"

// MeterProvider pushes metrics to the collector periodically
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
}

// NewMeterProvider installs the global meter provider when both telemetry and
// metrics are enabled
func NewMeterProvider(ctx context.Context, cfg config.TelemetryConfig, res *resource.Resource, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{}
	if !cfg.Enabled || !cfg.MetricsEnabled {
		logger.Info("Metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	interval := cfg.MetricsInterval
	if interval <= 0 {
		interval = time.Minute
	}
	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("Metrics enabled", zap.Duration("export_interval", interval))
	return mp, nil
}

// Meter returns ledgerly's meter from the global provider
func (mp *MeterProvider) Meter() metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(MeterName)
	}
	return mp.provider.Meter(MeterName)
}

// Enabled reports whether metrics are exported
func (mp *MeterProvider) Enabled() bool {
	return mp.provider != nil
}

// Shutdown exports the last batch and stops the reader
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := mp.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// Counter is a monotonic int64 counter
type Counter struct {
	counter metric.Int64Counter
}

// NewCounter creates an int64 counter
func NewCounter(meter metric.Meter, name, description, unit string) (*Counter, error) {
	c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("create counter %s: %w", name, err)
	}
	return &Counter{counter: c}, nil
}

// Inc adds one
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Add adds value
func (c *Counter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

// AmountCounter sums monetary amounts
type AmountCounter struct {
	counter metric.Float64Counter
}

// NewAmountCounter creates a float64 counter
func NewAmountCounter(meter metric.Meter, name, description, unit string) (*AmountCounter, error) {
	c, err := meter.Float64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("create counter %s: %w", name, err)
	}
	return &AmountCounter{counter: c}, nil
}

// Add adds a non-negative amount; negative values are ignored
func (c *AmountCounter) Add(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	if value < 0 {
		return
	}
	c.counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

// Histogram records durations in milliseconds
type Histogram struct {
	histogram metric.Float64Histogram
}

// NewHistogram creates a histogram with explicit bucket boundaries
func NewHistogram(meter metric.Meter, name, description string, buckets ...float64) (*Histogram, error) {
	opts := []metric.Float64HistogramOption{metric.WithDescription(description), metric.WithUnit("ms")}
	if len(buckets) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(buckets...))
	}
	h, err := meter.Float64Histogram(name, opts...)
	if err != nil {
		return nil, fmt.Errorf("create histogram %s: %w", name, err)
	}
	return &Histogram{histogram: h}, nil
}

// RecordDuration records d in milliseconds
func (h *Histogram) RecordDuration(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, float64(d.Microseconds())/1000, metric.WithAttributes(attrs...))
}
