package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/apokryfos/Enumerable/observer"
)

// PrometheusConfig configures the Prometheus collectors.
type PrometheusConfig struct {
	// Registry receives the collectors. If nil, prometheus.DefaultRegisterer is used.
	Registry prometheus.Registerer
	// Namespace overrides the default "enumerable" namespace.
	Namespace string
	// Labels are constant labels added to every collector.
	Labels prometheus.Labels
}

// PrometheusObserver counts terminals and pulled elements in Prometheus
// collectors.
type PrometheusObserver struct {
	Terminals *prometheus.CounterVec
	Elements  *prometheus.CounterVec
	Errors    *prometheus.CounterVec
	Duration  *prometheus.HistogramVec
}

// NewPrometheusObserver registers the collectors on cfg.Registry.
func NewPrometheusObserver(cfg PrometheusConfig) *PrometheusObserver {
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = "enumerable"
	}
	factory := promauto.With(reg)

	return &PrometheusObserver{
		Terminals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "pipeline",
				Name:        "terminals_total",
				Help:        "Total number of terminal operations",
				ConstLabels: cfg.Labels,
			},
			[]string{"operation", "status"},
		),
		Elements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "pipeline",
				Name:        "elements_total",
				Help:        "Total number of elements pulled by terminals",
				ConstLabels: cfg.Labels,
			},
			[]string{"operation"},
		),
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "pipeline",
				Name:        "errors_total",
				Help:        "Total number of terminal errors by code",
				ConstLabels: cfg.Labels,
			},
			[]string{"operation", "code"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   "pipeline",
				Name:        "terminal_duration_seconds",
				Help:        "Time spent in terminal operations",
				Buckets:     prometheus.ExponentialBuckets(0.0001, 4, 10),
				ConstLabels: cfg.Labels,
			},
			[]string{"operation"},
		),
	}
}

// Notify implements observer.Observer.
func (o *PrometheusObserver) Notify(_ context.Context, e observer.Event) {
	if !e.Finished() {
		return
	}
	status, code := outcome(e)
	o.Terminals.WithLabelValues(e.Operation, status).Inc()
	o.Duration.WithLabelValues(e.Operation).Observe(e.Duration.Seconds())
	if e.Count > 0 {
		o.Elements.WithLabelValues(e.Operation).Add(float64(e.Count))
	}
	if code != "" {
		o.Errors.WithLabelValues(e.Operation, code).Inc()
	}
}
