package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for order-recovery runs.
type Metrics struct {
	config MetricsConfig

	// Run metrics
	runsTotal     *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	outcomesTried prometheus.Histogram
	activeRuns    prometheus.Gauge

	// Attempt metrics
	attemptsTotal *prometheus.CounterVec

	// Error metrics
	configurationErrors prometheus.Counter

	// Persistence metrics
	storeErrors *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// No-op instance: every recorder checks for nil collectors.
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of order-recovery runs by final status",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of order-recovery runs in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),
		outcomesTried: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "outcomes_tried",
				Help:      "Number of measurement outcomes examined per run",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		activeRuns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_runs",
				Help:      "Current number of runs in progress",
			},
		),
		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attempts_total",
				Help:      "Total number of per-outcome attempts by result",
			},
			[]string{"result"},
		),
		configurationErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "configuration_errors_total",
				Help:      "Total number of runs rejected for invalid parameters",
			},
		),
		storeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_errors_total",
				Help:      "Total number of run history persistence failures",
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(
		m.runsTotal,
		m.runDuration,
		m.outcomesTried,
		m.activeRuns,
		m.attemptsTotal,
		m.configurationErrors,
		m.storeErrors,
	)

	return m, nil
}

// RecordRunStarted marks a run as in progress.
func (m *Metrics) RecordRunStarted() {
	if m.activeRuns == nil {
		return
	}
	m.activeRuns.Inc()
}

// RecordRunCompleted records a finished run with its status, duration and
// the number of outcomes it examined.
func (m *Metrics) RecordRunCompleted(status string, tried int, duration time.Duration) {
	if m.runsTotal == nil {
		return
	}
	m.runsTotal.WithLabelValues(status).Inc()
	m.runDuration.WithLabelValues(status).Observe(duration.Seconds())
	m.outcomesTried.Observe(float64(tried))
	m.activeRuns.Dec()
}

// RecordConfigurationError records a run rejected before any outcome was
// processed.
func (m *Metrics) RecordConfigurationError() {
	if m.configurationErrors == nil {
		return
	}
	m.configurationErrors.Inc()
	m.activeRuns.Dec()
}

// RecordAttempt records one per-outcome attempt. An empty result means the
// attempt produced factors.
func (m *Metrics) RecordAttempt(result string) {
	if m.attemptsTotal == nil {
		return
	}
	if result == "" {
		result = "factored"
	}
	m.attemptsTotal.WithLabelValues(result).Inc()
}

// RecordStoreError records a failed history write or read.
func (m *Metrics) RecordStoreError(operation string) {
	if m.storeErrors == nil {
		return
	}
	m.storeErrors.WithLabelValues(operation).Inc()
}

// Registry exposes the underlying registry. Nil when metrics are disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer serves metrics until ctx is cancelled. It returns
// immediately; listen errors are passed to onError.
func (m *Metrics) StartMetricsServer(ctx context.Context, onError func(error)) error {
	if !m.config.Enabled {
		return nil
	}

	path := m.config.Path
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if onError != nil {
				onError(err)
			}
		}
	}()

	return nil
}
