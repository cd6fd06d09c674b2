package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/finance"
	"github.com/ledgerly/backend/internal/domain/invoicing"
	"github.com/ledgerly/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func intTotal(t *testing.T, agg metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := agg.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", agg)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func floatTotal(t *testing.T, agg metricdata.Aggregation) float64 {
	t.Helper()
	sum, ok := agg.(metricdata.Sum[float64])
	require.True(t, ok, "expected float64 sum, got %T", agg)
	var total float64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func newInvoice(t *testing.T) *invoicing.Invoice {
	t.Helper()
	issued := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	inv, err := invoicing.NewInvoice(uuid.New(), "INV-2025-00001", invoicing.InvoiceHeader{
		CustomerID:   uuid.New(),
		CustomerName: "Globex",
		IssueDate:    issued,
		DueDate:      issued,
	}, []invoicing.ItemInput{{
		ProductName: "Support",
		Quantity:    decimal.NewFromInt(2),
		UnitPrice:   decimal.NewFromInt(50),
	}})
	require.NoError(t, err)
	return inv
}

func TestBusinessMetrics_Handle(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	bm, err := NewBusinessMetrics(meter)
	require.NoError(t, err)

	ctx := context.Background()
	inv := newInvoice(t)
	require.NoError(t, bm.Handle(ctx, invoicing.NewInvoiceCreatedEvent(inv)))
	require.NoError(t, bm.Handle(ctx, invoicing.NewInvoiceConfirmedEvent(inv)))
	require.NoError(t, bm.Handle(ctx, invoicing.NewInvoicePaymentRecordedEvent(inv, uuid.New(), decimal.NewFromInt(40))))
	require.NoError(t, bm.Handle(ctx, invoicing.NewInvoicePaymentRecordedEvent(inv, uuid.New(), decimal.NewFromInt(60))))

	expense, err := finance.NewExpense(inv.TenantID, "EXP-2025-00001", finance.ExpenseDetails{
		Category:    finance.ExpenseCategoryRent,
		Amount:      decimal.NewFromInt(500),
		Description: "January rent",
		Date:        time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, bm.Handle(ctx, finance.NewExpenseRecordedEvent(expense)))

	got := collect(t, reader)
	assert.Equal(t, int64(4), intTotal(t, got["ledgerly_invoice_events_total"]))
	assert.InDelta(t, 100, floatTotal(t, got["ledgerly_invoiced_amount_total"]), 0.001)
	assert.Equal(t, int64(2), intTotal(t, got["ledgerly_payments_total"]))
	assert.InDelta(t, 100, floatTotal(t, got["ledgerly_payment_amount_total"]), 0.001)
	assert.InDelta(t, 500, floatTotal(t, got["ledgerly_expense_amount_total"]), 0.001)
	assert.Equal(t, int64(1), intTotal(t, got["ledgerly_finance_entries_total"]))
	assert.Len(t, bm.EventTypes(), 10)
}

func TestAmountCounter_IgnoresNegative(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	c, err := NewAmountCounter(meter, "amount", "", "")
	require.NoError(t, err)

	c.Add(context.Background(), 5)
	c.Add(context.Background(), -3)
	assert.InDelta(t, 5, floatTotal(t, collect(t, reader)["amount"]), 0.001)
}

func TestSetup_Disabled(t *testing.T) {
	tel, err := Setup(context.Background(), config.TelemetryConfig{ServiceName: "ledgerly"}, "1.2.3", zap.NewNop())
	require.NoError(t, err)

	assert.False(t, tel.Tracer.Enabled())
	assert.False(t, tel.Meter.Enabled())
	assert.False(t, tel.Logs.Enabled())
	assert.False(t, tel.Profiler.Enabled())
	assert.NotNil(t, tel.Meter.Meter())

	base := zap.NewNop()
	assert.Same(t, base, tel.Logs.Bridge(base))
	assert.NoError(t, tel.Shutdown(context.Background()))
	assert.NoError(t, tel.Profiler.Stop())
}

func TestStartProfiler_RequiresServer(t *testing.T) {
	_, err := StartProfiler(config.TelemetryConfig{ProfilingEnabled: true}, "dev", zap.NewNop())
	assert.Error(t, err)
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestEndSpanAndTraceID(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)).Tracer("test")

	assert.Empty(t, TraceID(context.Background()))

	ctx, span := tracer.Start(context.Background(), "InvoiceService.Confirm")
	assert.Len(t, TraceID(ctx), 32)
	EndSpan(span, errors.New("insufficient stock"))

	_, ok := tracer.Start(context.Background(), "ok")
	EndSpan(ok, nil)

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "insufficient stock", ended[0].Status().Description)
	assert.Equal(t, codes.Unset, ended[1].Status().Code)
}

func TestLevelFilterCore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	filtered := &levelFilterCore{Core: core, minLevel: zapcore.WarnLevel}
	logger := zap.New(filtered)

	logger.Info("dropped")
	logger.With(zap.String("k", "v")).Warn("kept")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

type widget struct {
	ID   uint
	Name string
}

func TestRegisterDBMetrics(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.AutoMigrate(&widget{}))

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	_, err := RegisterDBMetrics(db, meter, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&widget{Name: "a"}).Error)
	var w widget
	require.NoError(t, db.WithContext(ctx).First(&w).Error)
	assert.Error(t, db.WithContext(ctx).Exec("SELECT * FROM missing_table").Error)

	got := collect(t, reader)
	hist, ok := got["ledgerly_db_query_duration"].(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
	assert.Equal(t, int64(1), intTotal(t, got["ledgerly_db_query_errors_total"]))
	assert.Contains(t, got, "ledgerly_db_pool_connections")
}

func TestRegisterDBTracing_SlowQueries(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.AutoMigrate(&widget{}))

	core, logs := observer.New(zapcore.WarnLevel)
	cfg := config.TelemetryConfig{Enabled: true, DBTraceEnabled: true, DBSlowQueryThresh: time.Nanosecond}
	require.NoError(t, RegisterDBTracing(db, cfg, zap.New(core)))

	require.NoError(t, db.WithContext(context.Background()).Create(&widget{Name: "slow"}).Error)
	require.GreaterOrEqual(t, logs.FilterMessage("Slow query").Len(), 1)
	assert.Equal(t, "widgets", logs.FilterMessage("Slow query").All()[0].ContextMap()["table"])
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, RegisterDBTracing(db, config.TelemetryConfig{Enabled: true}, zap.NewNop()))
	assert.Nil(t, db.Callback().Create().Get("ledgerly_slow:after_create"))
}

func TestDetectOperation(t *testing.T) {
	assert.Equal(t, "SELECT", detectOperation("  select 1"))
	assert.Equal(t, "INSERT", detectOperation("INSERT INTO x"))
	assert.Equal(t, "OTHER", detectOperation("BEGIN"))
}
