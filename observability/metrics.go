package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/apokryfos/Enumerable/observer"
)

// Metrics holds OpenTelemetry instruments for pipeline terminals.
type Metrics struct {
	terminalTotal    metric.Int64Counter
	terminalDuration metric.Float64Histogram
	terminalActive   metric.Int64UpDownCounter
	elementTotal     metric.Int64Counter
	errorTotal       metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	terminalTotal, err := meter.Int64Counter("pipeline.terminal.total",
		metric.WithDescription("Total number of terminal operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.terminal.total counter: %w", err)
	}

	terminalDuration, err := meter.Float64Histogram("pipeline.terminal.duration",
		metric.WithDescription("Duration of terminal operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.terminal.duration histogram: %w", err)
	}

	terminalActive, err := meter.Int64UpDownCounter("pipeline.terminal.active",
		metric.WithDescription("Number of terminal operations in progress"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.terminal.active gauge: %w", err)
	}

	elementTotal, err := meter.Int64Counter("pipeline.element.total",
		metric.WithDescription("Total number of elements pulled by terminals"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.element.total counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("pipeline.error.total",
		metric.WithDescription("Total terminal errors by code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.error.total counter: %w", err)
	}

	return &Metrics{
		terminalTotal:    terminalTotal,
		terminalDuration: terminalDuration,
		terminalActive:   terminalActive,
		elementTotal:     elementTotal,
		errorTotal:       errorTotal,
	}, nil
}

// RecordStart increments the active terminal count.
func (m *Metrics) RecordStart(ctx context.Context, operation string) {
	m.terminalActive.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrOperation, operation)))
}

// RecordEnd decrements active terminals and records the finished one.
func (m *Metrics) RecordEnd(ctx context.Context, operation, status string, count int, duration time.Duration) {
	op := attribute.String(AttrOperation, operation)
	m.terminalActive.Add(ctx, -1, metric.WithAttributes(op))
	m.terminalTotal.Add(ctx, 1, metric.WithAttributes(op, attribute.String(AttrStatus, status)))
	m.terminalDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(op))
	if count > 0 {
		m.elementTotal.Add(ctx, int64(count), metric.WithAttributes(op))
	}
}

// RecordError records a terminal error by code.
func (m *Metrics) RecordError(ctx context.Context, operation, code string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrOperation, operation),
		attribute.String(AttrErrorCode, code),
	))
}

// MetricsObserver records lifecycle events on Metrics.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver returns an Observer recording on m.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

// Notify implements observer.Observer.
func (o *MetricsObserver) Notify(ctx context.Context, e observer.Event) {
	if !e.Finished() {
		o.metrics.RecordStart(ctx, e.Operation)
		return
	}
	status, code := outcome(e)
	if code != "" {
		o.metrics.RecordError(ctx, e.Operation, code)
	}
	o.metrics.RecordEnd(ctx, e.Operation, status, e.Count, e.Duration)
}
