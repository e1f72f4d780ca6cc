package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the application's instruments.
type Metrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	ViewExecutionsTotal metric.Int64Counter
	ViewErrorsTotal     metric.Int64Counter
	ViewDuration        metric.Float64Histogram

	SourceRows metric.Int64Gauge
}

// CreateMetrics registers the instruments on meter.
func CreateMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.ViewExecutionsTotal, err = meter.Int64Counter(
		"view_executions_total",
		metric.WithDescription("Total number of dashboard view computations"),
	); err != nil {
		return nil, err
	}
	if m.ViewErrorsTotal, err = meter.Int64Counter(
		"view_errors_total",
		metric.WithDescription("Dashboard view computations that failed"),
	); err != nil {
		return nil, err
	}
	if m.ViewDuration, err = meter.Float64Histogram(
		"view_duration_seconds",
		metric.WithDescription("Dashboard view computation time in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.SourceRows, err = meter.Int64Gauge(
		"source_rows",
		metric.WithDescription("Rows loaded per data source"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordView records one view computation. errorKind is empty on success.
func (m *Metrics) RecordView(ctx context.Context, viewID string, duration time.Duration, errorKind string) {
	if m == nil {
		return
	}

	status := "success"
	if errorKind != "" {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("view", viewID),
		attribute.String("status", status),
	)

	m.ViewExecutionsTotal.Add(ctx, 1, attrs)
	m.ViewDuration.Record(ctx, duration.Seconds(), attrs)
	if errorKind != "" {
		m.ViewErrorsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("view", viewID),
			attribute.String("error_kind", errorKind),
		))
	}
}

// RecordSourceRows records the row count of a loaded source.
func (m *Metrics) RecordSourceRows(ctx context.Context, source string, rows int) {
	if m == nil {
		return
	}
	m.SourceRows.Record(ctx, int64(rows), metric.WithAttributes(attribute.String("source", source)))
}
