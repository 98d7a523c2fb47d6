package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hireflow/backend/internal/infrastructure/config"
)

const defaultSlowQueryThreshold = 200 * time.Millisecond

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm on db and adds callbacks that annotate
// each statement span with rows affected, table, errors and a slow-query flag.
// Query variables stay out of spans unless DBLogFullSQL is set.
func RegisterDBTracing(db *gorm.DB, cfg config.TelemetryConfig, logger *zap.Logger) error {
	if !cfg.DBTraceEnabled {
		logger.Debug("Database tracing disabled")
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
		threshold = defaultSlowQueryThreshold
	}
	if err := registerStatementCallbacks(db, markStart, annotateSpan(threshold)); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.DBLogFullSQL),
		zap.Duration("slow_query_threshold", threshold),
	)
	return nil
}

func registerStatementCallbacks(db *gorm.DB, before, after func(*gorm.DB)) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("otel_timing:before_create", before),
		cb.Query().Before("gorm:query").Register("otel_timing:before_query", before),
		cb.Update().Before("gorm:update").Register("otel_timing:before_update", before),
		cb.Delete().Before("gorm:delete").Register("otel_timing:before_delete", before),
		cb.Row().Before("gorm:row").Register("otel_timing:before_row", before),
		cb.Raw().Before("gorm:raw").Register("otel_timing:before_raw", before),
		cb.Create().After("gorm:create").Register("otel_timing:after_create", after),
		cb.Query().After("gorm:query").Register("otel_timing:after_query", after),
		cb.Update().After("gorm:update").Register("otel_timing:after_update", after),
		cb.Delete().After("gorm:delete").Register("otel_timing:after_delete", after),
		cb.Row().After("gorm:row").Register("otel_timing:after_row", after),
		cb.Raw().After("gorm:raw").Register("otel_timing:after_raw", after),
	)
}

func markStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func annotateSpan(threshold time.Duration) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}
		if db.Statement.RowsAffected >= 0 {
			span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		}
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.RecordError(db.Error)
			span.SetStatus(codes.Error, db.Error.Error())
		}
		if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
			if elapsed := time.Since(start); elapsed > threshold {
				span.SetAttributes(
					attribute.Bool("db.slow_query", true),
					attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
				)
				span.AddEvent("slow_query_warning", trace.WithAttributes(
					attribute.Int64("duration_ms", elapsed.Milliseconds()),
					attribute.Int64("threshold_ms", threshold.Milliseconds()),
				))
			}
		}
	}
}
