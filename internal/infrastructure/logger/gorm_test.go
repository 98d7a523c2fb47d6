package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func sqlFn(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("logs errors", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Warn)
		l.Trace(context.Background(), time.Now(), sqlFn("SELECT 1", 0), errors.New("syntax error"))

		entries := recorded.FilterMessage("SQL error").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	})

	t.Run("ignores record not found", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Warn)
		l.Trace(context.Background(), time.Now(), sqlFn("SELECT 1", 0), gormlogger.ErrRecordNotFound)
		assert.Zero(t, recorded.Len())
	})

	t.Run("warns on slow queries", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(10*time.Millisecond))
		l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn("SELECT * FROM jobs", 3), nil)

		entries := recorded.FilterMessage("Slow SQL").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "SELECT * FROM jobs", entries[0].ContextMap()["sql"])
	})

	t.Run("fast queries are only logged at info mode", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Warn)
		l.Trace(context.Background(), time.Now(), sqlFn("SELECT 1", 1), nil)
		assert.Zero(t, recorded.Len())

		info, recorded := newObservedGormLogger(gormlogger.Info)
		info.Trace(context.Background(), time.Now(), sqlFn("SELECT 1", 1), nil)
		assert.Equal(t, 1, recorded.FilterMessage("SQL query").Len())
	})

	t.Run("silent mode logs nothing", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Silent)
		l.Trace(context.Background(), time.Now(), sqlFn("SELECT 1", 0), errors.New("boom"))
		assert.Zero(t, recorded.Len())
	})

	t.Run("carries request and organization ids", func(t *testing.T) {
		l, recorded := newObservedGormLogger(gormlogger.Info)
		ctx, base := WithRequestID(context.Background(), zap.NewNop(), "req-5")
		ctx, _ = WithOrganizationID(ctx, base, "org-5")

		l.Trace(ctx, time.Now(), sqlFn("SELECT 1", 1), nil)
		fields := recorded.All()[0].ContextMap()
		assert.Equal(t, "req-5", fields["request_id"])
		assert.Equal(t, "org-5", fields["organization_id"])
	})
}

func TestGormLogger_LogMode(t *testing.T) {
	l, _ := newObservedGormLogger(gormlogger.Warn)
	changed := l.LogMode(gormlogger.Info).(*GormLogger)
	assert.Equal(t, gormlogger.Info, changed.logLevel)
	assert.Equal(t, gormlogger.Warn, l.logLevel)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}

var _ gormlogger.Interface = (*GormLogger)(nil)
