package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, RegisterDBTracing(db, disabledConfig(), zaptest.NewLogger(t)))
	assert.Nil(t, db.Callback().Query().Get("otel_timing:after_query"))
}

func TestAnnotateSpan(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, registerStatementCallbacks(db, markStart, annotateSpan(0)))

	rec := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)).Tracer("test")

	ctx, span := tracer.Start(context.Background(), "insert")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "a"}).Error)
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	attrs := spans[0].Attributes()
	assert.Contains(t, attrs, attribute.Int64("db.rows_affected", 1))
	assert.Contains(t, attrs, attribute.String("db.sql.table", "traced_rows"))
	assert.Contains(t, attrs, attribute.Bool("db.slow_query", true), "a zero threshold marks every statement slow")
}

func TestAnnotateSpan_FastQueryNotFlagged(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, registerStatementCallbacks(db, markStart, annotateSpan(time.Hour)))

	rec := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)).Tracer("test")
	ctx, span := tracer.Start(context.Background(), "select")
	var rows []tracedRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	span.End()

	for _, kv := range rec.Ended()[0].Attributes() {
		assert.NotEqual(t, attribute.Key("db.slow_query"), kv.Key)
	}
}

func TestRegisterDBPoolMetrics(t *testing.T) {
	db := openTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(4)

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	reg, err := RegisterDBPoolMetrics(meter, sqlDB)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Unregister() })

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = true
			if m.Name == "db.client.connections.max" {
				gauge := m.Data.(metricdata.Gauge[int64])
				require.Len(t, gauge.DataPoints, 1)
				assert.Equal(t, int64(4), gauge.DataPoints[0].Value)
			}
		}
	}
	assert.True(t, found["db.client.connections.usage"])
	assert.True(t, found["db.client.connections.wait_count"])
}
