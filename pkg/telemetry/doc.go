// Package telemetry provides logging, tracing and metrics for shorpost.
//
// Logging uses zerolog, tracing uses OpenTelemetry (stdout or OTLP/gRPC
// exporters) and metrics use a private Prometheus registry. Every component
// degrades to a no-op when disabled, so callers never need nil checks:
//
//	tel, err := telemetry.NewTelemetry(telemetry.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	ctx, span := tel.Tracer.StartRunSpan(ctx, runID, "15", "7", 8)
//	defer span.End()
//	tel.Metrics.RecordRunStarted()
//
// # Metrics
//
//   - runs_total{status}: runs by final status (factored, trivial, not_found)
//   - run_duration_seconds{status}: run latency
//   - outcomes_tried: outcomes examined per run
//   - attempts_total{result}: per-outcome attempts by failure reason
//   - configuration_errors_total: runs rejected before processing
//   - store_errors_total{operation}: run history persistence failures
package telemetry
