// Package observability turns pipeline lifecycle events into logs, metrics
// and traces.
//
// Every observer here implements observer.Observer and is attached with
// pipeline.WithObserver. Combine several with observer.Join.
//
// Logging:
//
//	obs := observability.NewLoggingObserver(logger.WithComponent("pipeline"))
//
// OpenTelemetry metrics and tracing:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("enumerate"))
//	defer mp.Shutdown(ctx)
//	metrics, err := observability.NewMetrics(observability.Meter("enumerate"))
//	obs := observability.NewMetricsObserver(metrics)
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("enumerate"))
//	defer tp.Shutdown(ctx)
//	obs := observability.NewTracingObserver(observability.Tracer("enumerate"))
//
// Prometheus:
//
//	reg := prometheus.NewRegistry()
//	obs := observability.NewPrometheusObserver(observability.PrometheusConfig{Registry: reg})
package observability
