package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/ledgerly/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type queryStartKey struct{}

// RegisterDBTracing adds otelgorm spans to every statement and marks slow
// statements on their span and in the log. Full SQL variables are only
// included when cfg.DBLogFullSQL is set.
func RegisterDBTracing(db *gorm.DB, cfg config.TelemetryConfig, logger *zap.Logger) error {
	if !cfg.Enabled || !cfg.DBTraceEnabled {
		return nil
	}
	opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
	if !cfg.DBLogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	threshold := cfg.DBSlowQueryThresh
	if threshold <= 0 {
		threshold = 200 * time.Millisecond
	}
	slow := func(db *gorm.DB) { markSlowQuery(db, threshold, logger) }
	if err := registerAround(db, "ledgerly_slow", startTimer, slow); err != nil {
		return err
	}
	logger.Info("Database tracing enabled", zap.Duration("slow_query_threshold", threshold))
	return nil
}

// registerAround places before and after around gorm's create, query,
// update, delete, row and raw callbacks
func registerAround(db *gorm.DB, prefix string, before, after func(*gorm.DB)) error {
	cb := db.Callback()
	steps := []error{
		cb.Create().Before("gorm:create").Register(prefix+":before_create", before),
		cb.Create().After("gorm:create").Register(prefix+":after_create", after),
		cb.Query().Before("gorm:query").Register(prefix+":before_query", before),
		cb.Query().After("gorm:query").Register(prefix+":after_query", after),
		cb.Update().Before("gorm:update").Register(prefix+":before_update", before),
		cb.Update().After("gorm:update").Register(prefix+":after_update", after),
		cb.Delete().Before("gorm:delete").Register(prefix+":before_delete", before),
		cb.Delete().After("gorm:delete").Register(prefix+":after_delete", after),
		cb.Row().Before("gorm:row").Register(prefix+":before_row", before),
		cb.Row().After("gorm:row").Register(prefix+":after_row", after),
		cb.Raw().Before("gorm:raw").Register(prefix+":before_raw", before),
		cb.Raw().After("gorm:raw").Register(prefix+":after_raw", after),
	}
	return errors.Join(steps...)
}

func startTimer(db *gorm.DB) {
	if db.Statement.Context == nil {
		return
	}
	db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
}

func queryElapsed(db *gorm.DB) (time.Duration, bool) {
	if db.Statement.Context == nil {
		return 0, false
	}
	start, ok := db.Statement.Context.Value(queryStartKey{}).(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}

func markSlowQuery(db *gorm.DB, threshold time.Duration, logger *zap.Logger) {
	elapsed, ok := queryElapsed(db)
	if !ok || elapsed < threshold {
		return
	}
	span := trace.SpanFromContext(db.Statement.Context)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
	logger.Warn("Slow query",
		zap.String("table", db.Statement.Table),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", db.Statement.RowsAffected),
		zap.String("trace_id", TraceID(db.Statement.Context)),
	)
}
