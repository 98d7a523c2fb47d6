package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"

	recruitingapp "github.com/hireflow/backend/internal/application/recruiting"
	"github.com/hireflow/backend/internal/infrastructure/config"
)

// ErrMeterNil is returned when a metrics recorder is built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

const defaultMetricsInterval = 60 * time.Second

// MeterProvider wraps the SDK meter provider with lifecycle management
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
}

// NewMeterProvider configures periodic OTLP metric export. When metrics are
// disabled Meter falls back to the global no-op provider.
func NewMeterProvider(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{logger: logger}
	if !cfg.MetricsEnabled {
		logger.Info("Metrics disabled, using no-op meter provider")
		return mp, nil
	}

	interval := cfg.MetricsInterval
	if interval <= 0 {
		interval = defaultMetricsInterval
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", interval),
	)
	return mp, nil
}

// Meter returns a named meter
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// IsEnabled reports whether metrics are exported
func (mp *MeterProvider) IsEnabled() bool {
	return mp.provider != nil
}

// Shutdown flushes pending metrics
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := mp.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	mp.logger.Info("OpenTelemetry MeterProvider shutdown complete")
	return nil
}

// Metric attribute keys
var (
	AttrOrganizationID = attribute.Key("organization_id")
	AttrSource         = attribute.Key("source")
	AttrFromStatus     = attribute.Key("from_status")
	AttrToStatus       = attribute.Key("to_status")
	AttrDBPoolState    = attribute.Key("db.pool.state")
)

// RecruitingMetrics counts pipeline activity
type RecruitingMetrics struct {
	applicationsCreated metric.Int64Counter
	statusChanges       metric.Int64Counter
	jobsPublished       metric.Int64Counter
}

// NewRecruitingMetrics creates the recruiting counters on meter
func NewRecruitingMetrics(meter metric.Meter) (*RecruitingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	created, err := meter.Int64Counter("recruiting.applications.created",
		metric.WithDescription("Applications submitted"),
		metric.WithUnit("{application}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	changes, err := meter.Int64Counter("recruiting.applications.status_changes",
		metric.WithDescription("Application status transitions"),
		metric.WithUnit("{transition}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	published, err := meter.Int64Counter("recruiting.jobs.published",
		metric.WithDescription("Jobs moved to open"),
		metric.WithUnit("{job}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	return &RecruitingMetrics{
		applicationsCreated: created,
		statusChanges:       changes,
		jobsPublished:       published,
	}, nil
}

// ApplicationCreated counts a new application
func (m *RecruitingMetrics) ApplicationCreated(ctx context.Context, organizationID uuid.UUID, source string) {
	m.applicationsCreated.Add(ctx, 1, metric.WithAttributes(
		AttrOrganizationID.String(organizationID.String()),
		AttrSource.String(source),
	))
}

// ApplicationStatusChanged counts a status transition
func (m *RecruitingMetrics) ApplicationStatusChanged(ctx context.Context, organizationID uuid.UUID, from, to string) {
	m.statusChanges.Add(ctx, 1, metric.WithAttributes(
		AttrOrganizationID.String(organizationID.String()),
		AttrFromStatus.String(from),
		AttrToStatus.String(to),
	))
}

// JobPublished counts a job going live
func (m *RecruitingMetrics) JobPublished(ctx context.Context, organizationID uuid.UUID) {
	m.jobsPublished.Add(ctx, 1, metric.WithAttributes(AttrOrganizationID.String(organizationID.String())))
}

var _ recruitingapp.RecruitingMetrics = (*RecruitingMetrics)(nil)

// RegisterDBPoolMetrics reports database/sql pool statistics as observable
// gauges, read on every collection cycle.
func RegisterDBPoolMetrics(meter metric.Meter, db *sql.DB) (metric.Registration, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	conns, err := meter.Int64ObservableGauge("db.client.connections.usage",
		metric.WithDescription("Open connections by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge: %w", err)
	}
	maxOpen, err := meter.Int64ObservableGauge("db.client.connections.max",
		metric.WithDescription("Maximum open connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge: %w", err)
	}
	waits, err := meter.Int64ObservableCounter("db.client.connections.wait_count",
		metric.WithDescription("Connections waited for"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := db.Stats()
		o.ObserveInt64(conns, int64(stats.InUse), metric.WithAttributes(AttrDBPoolState.String("used")))
		o.ObserveInt64(conns, int64(stats.Idle), metric.WithAttributes(AttrDBPoolState.String("idle")))
		o.ObserveInt64(maxOpen, int64(stats.MaxOpenConnections))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, conns, maxOpen, waits)
}
