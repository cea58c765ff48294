package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/apokryfos/Enumerable/config"
	"github.com/apokryfos/Enumerable/logger"
	"github.com/apokryfos/Enumerable/observability"
	"github.com/apokryfos/Enumerable/observer"
	"github.com/apokryfos/Enumerable/version"
)

// telemetry bundles the observers attached to the command's pipeline.
type telemetry struct {
	observers []observer.Observer
	registry  *prometheus.Registry
	shutdown  []func(context.Context) error
}

func setupTelemetry(ctx context.Context, cfg *config.Config, log *logger.Logger) (*telemetry, error) {
	t := &telemetry{
		observers: []observer.Observer{observability.NewLoggingObserver(log.WithComponent("lifecycle"))},
	}

	if cfg.Metrics.Prometheus {
		t.registry = prometheus.NewRegistry()
		t.observers = append(t.observers, observability.NewPrometheusObserver(observability.PrometheusConfig{
			Registry: t.registry,
		}))
	}

	if !cfg.Metrics.OTLP() {
		return t, nil
	}

	meterCfg := observability.DefaultMeterConfig(cfg.Name)
	meterCfg.ServiceVersion = version.Get().Short()
	meterCfg.Environment = cfg.Environment
	meterCfg.Endpoint = cfg.Metrics.OTLPEndpoint
	meterCfg.Insecure = cfg.Metrics.Insecure
	mp, err := observability.InitMeter(ctx, meterCfg)
	if err != nil {
		return nil, fmt.Errorf("init meter: %w", err)
	}
	t.shutdown = append(t.shutdown, mp.Shutdown)

	metrics, err := observability.NewMetrics(mp.Meter(cfg.Name))
	if err != nil {
		_ = t.Shutdown(ctx)
		return nil, err
	}
	t.observers = append(t.observers, observability.NewMetricsObserver(metrics))

	tracerCfg := observability.DefaultTracerConfig(cfg.Name)
	tracerCfg.ServiceVersion = meterCfg.ServiceVersion
	tracerCfg.Environment = cfg.Environment
	tracerCfg.Endpoint = cfg.Metrics.OTLPEndpoint
	tracerCfg.Insecure = cfg.Metrics.Insecure
	tp, err := observability.InitTracer(ctx, tracerCfg)
	if err != nil {
		_ = t.Shutdown(ctx)
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	t.shutdown = append(t.shutdown, tp.Shutdown)
	t.observers = append(t.observers, observability.NewTracingObserver(tp.Tracer(cfg.Name)))

	return t, nil
}

// Observer joins the configured observers.
func (t *telemetry) Observer() observer.Observer {
	return observer.Join(t.observers...)
}

// Shutdown flushes and stops the OTLP providers.
func (t *telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range slices.Backward(t.shutdown) {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	t.shutdown = nil
	return errors.Join(errs...)
}

// writeMetrics prints counters and histogram totals of reg, one sample
// per line.
func writeMetrics(w io.Writer, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := formatLabels(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				_, err = fmt.Fprintf(w, "%s%s %g\n", mf.GetName(), labels, m.GetCounter().GetValue())
			case dto.MetricType_GAUGE:
				_, err = fmt.Fprintf(w, "%s%s %g\n", mf.GetName(), labels, m.GetGauge().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				_, err = fmt.Fprintf(w, "%s_count%s %d\n%s_sum%s %g\n",
					mf.GetName(), labels, h.GetSampleCount(), mf.GetName(), labels, h.GetSampleSum())
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, len(pairs))
	for i, lp := range pairs {
		parts[i] = fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}
