// Package metrics exposes Prometheus collectors for process supervision
// and an HTTP server that serves them.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
)

// Registry names used as label values.
const (
	RegistryAnonymous = "anonymous"
	RegistryNamed     = "named"
)

// Launch kinds used as label values.
const (
	KindForeground = "foreground"
	KindBackground = "background"
	KindRole       = "role"
)

var (
	launchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pyhost_launches_total",
			Help: "Total number of processes launched",
		},
		[]string{"kind", "role"},
	)

	launchFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pyhost_launch_failures_total",
			Help: "Total number of failed launches by failure stage",
		},
		[]string{"kind", "stage"},
	)

	terminationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pyhost_terminations_total",
			Help: "Total number of terminate requests by outcome",
		},
		[]string{"registry", "result"},
	)

	staleEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pyhost_stale_entries_total",
			Help: "Named entries removed after their process was observed to have exited",
		},
		[]string{"role"},
	)

	probeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pyhost_probe_errors_total",
			Help: "Status probes that failed and were treated as still running",
		},
		[]string{"role"},
	)

	trackedProcesses = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pyhost_tracked_processes",
			Help: "Number of processes currently tracked per registry",
		},
		[]string{"registry"},
	)

	foregroundDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pyhost_foreground_duration_seconds",
			Help:    "Duration of foreground runs in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300},
		},
	)

	circuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pyhost_circuit_breaker_state",
			Help: "Role start circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"role"},
	)
)

// RecordLaunch counts a successful launch. role is empty for anonymous launches.
func RecordLaunch(kind, role string) {
	launchesTotal.WithLabelValues(kind, role).Inc()
}

// RecordLaunchFailure counts a failed launch at the given stage.
func RecordLaunchFailure(kind, stage string) {
	launchFailuresTotal.WithLabelValues(kind, stage).Inc()
}

// RecordTermination counts a terminate request against a registry.
func RecordTermination(registry string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	terminationsTotal.WithLabelValues(registry, result).Inc()
}

// RecordStale counts a named entry removed by a liveness check.
func RecordStale(role string) {
	staleEntriesTotal.WithLabelValues(role).Inc()
}

// RecordProbeError counts a failed status probe.
func RecordProbeError(role string) {
	probeErrorsTotal.WithLabelValues(role).Inc()
}

// SetTracked sets the number of processes held by a registry.
func SetTracked(registry string, n int) {
	trackedProcesses.WithLabelValues(registry).Set(float64(n))
}

// ObserveForeground records how long a foreground run took.
func ObserveForeground(d time.Duration) {
	foregroundDuration.Observe(d.Seconds())
}

// RecordCircuitBreakerState records the role start breaker state.
func RecordCircuitBreakerState(role string, state gobreaker.State) {
	var value float64
	switch state {
	case gobreaker.StateClosed:
		value = 0
	case gobreaker.StateHalfOpen:
		value = 1
	case gobreaker.StateOpen:
		value = 2
	}
	circuitBreakerState.WithLabelValues(role).Set(value)
}

// CreateMetricsServer creates a configured HTTP server for Prometheus metrics.
func CreateMetricsServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// ServeMetrics serves metrics until the server is shut down.
// http.ErrServerClosed is not reported as an error.
func ServeMetrics(server *http.Server) error {
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
