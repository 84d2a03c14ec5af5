package infrastructure

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const (
	// ServiceName identifies this service in metric resources.
	ServiceName = "klv-campaign-analytics"
	// MeterName scopes every instrument created by Metrics.
	MeterName = "klvcli"
)

// Metrics bundles the pipeline's OpenTelemetry instruments, exported in
// Prometheus format.
type Metrics struct {
	provider *sdkmetric.MeterProvider
	handler  http.Handler

	RunsTotal      metric.Int64Counter
	RowsIngested   metric.Int64Counter
	RowsSkipped    metric.Int64Counter
	ExportsTotal   metric.Int64Counter
	RunDurationMs  metric.Float64Histogram
}

// InitializeMetrics wires an OTel meter provider to the Prometheus exporter
// and creates the pipeline instruments. The returned handler serves
// /metrics.
func InitializeMetrics() (*Metrics, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(resource.NewSchemaless()),
	)
	otel.SetMeterProvider(provider)

	meter := provider.Meter(MeterName)
	m := &Metrics{
		provider: provider,
		handler:  promhttp.Handler(),
	}

	if m.RunsTotal, err = meter.Int64Counter("report_runs_total",
		metric.WithDescription("Aggregation runs executed")); err != nil {
		return nil, err
	}
	if m.RowsIngested, err = meter.Int64Counter("rows_ingested_total",
		metric.WithDescription("Raw rows accepted from uploads")); err != nil {
		return nil, err
	}
	if m.RowsSkipped, err = meter.Int64Counter("rows_skipped_total",
		metric.WithDescription("Rows excluded from time-bucketed reports for an invalid send time")); err != nil {
		return nil, err
	}
	if m.ExportsTotal, err = meter.Int64Counter("report_exports_total",
		metric.WithDescription("Report tables exported to CSV")); err != nil {
		return nil, err
	}
	if m.RunDurationMs, err = meter.Float64Histogram("report_run_duration_ms",
		metric.WithDescription("Wall time of one aggregation run in milliseconds")); err != nil {
		return nil, err
	}

	return m, nil
}

// Handler returns the Prometheus scrape handler.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// Shutdown flushes and stops the meter provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}
