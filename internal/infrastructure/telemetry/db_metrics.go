package telemetry

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var queryBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

// DBMetrics records statement durations and connection pool usage
type DBMetrics struct {
	queryDuration *Histogram
	queryErrors   *Counter
}

// RegisterDBMetrics instruments db with a query duration histogram, an error
// counter and observable connection pool gauges
func RegisterDBMetrics(db *gorm.DB, meter metric.Meter, logger *zap.Logger) (*DBMetrics, error) {
	duration, err := NewHistogram(meter, "ledgerly_db_query_duration", "Database statement duration", queryBuckets...)
	if err != nil {
		return nil, err
	}
	errs, err := NewCounter(meter, "ledgerly_db_query_errors_total", "Failed database statements", "{query}")
	if err != nil {
		return nil, err
	}
	m := &DBMetrics{queryDuration: duration, queryErrors: errs}

	if err := registerAround(db, "ledgerly_metrics", startTimer, m.record); err != nil {
		return nil, err
	}
	if err := registerPoolGauges(db, meter); err != nil {
		return nil, err
	}
	logger.Info("Database metrics enabled")
	return m, nil
}

func (m *DBMetrics) record(db *gorm.DB) {
	elapsed, ok := queryElapsed(db)
	if !ok {
		return
	}
	ctx := db.Statement.Context
	attrs := []attribute.KeyValue{
		attribute.String("db.operation", detectOperation(db.Statement.SQL.String())),
		attribute.String("db.sql.table", db.Statement.Table),
	}
	m.queryDuration.RecordDuration(ctx, elapsed, attrs...)
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		m.queryErrors.Inc(ctx, attrs...)
	}
}

func registerPoolGauges(db *gorm.DB, meter metric.Meter) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	conns, err := meter.Int64ObservableGauge("ledgerly_db_pool_connections",
		metric.WithDescription("Connections in the pool by state"), metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	maxOpen, err := meter.Int64ObservableGauge("ledgerly_db_pool_connections_max",
		metric.WithDescription("Maximum open connections"), metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("ledgerly_db_pool_wait_total",
		metric.WithDescription("Connections waited for"), metric.WithUnit("{wait}"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := sqlDB.Stats()
		o.ObserveInt64(conns, int64(s.InUse), metric.WithAttributes(attribute.String("state", "in_use")))
		o.ObserveInt64(conns, int64(s.Idle), metric.WithAttributes(attribute.String("state", "idle")))
		o.ObserveInt64(maxOpen, int64(s.MaxOpenConnections))
		o.ObserveInt64(waits, s.WaitCount)
		return nil
	}, conns, maxOpen, waits)
	return err
}

func detectOperation(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))
	for _, op := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sql, op) {
			return op
		}
	}
	return "OTHER"
}
