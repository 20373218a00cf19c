// Package metrics holds the Prometheus collectors for the HTTP layer and
// the membership and moderation operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dalemusser/socraticos/internal/app/system/apperr"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socraticos_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socraticos_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socraticos_operations_total",
		Help: "Service operations by name and outcome (ok or error kind)",
	}, []string{"operation", "outcome"})

	atomicRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socraticos_atomic_unit_retries_total",
		Help: "Atomic units re-run after a version conflict",
	})

	lockWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "socraticos_lock_wait_seconds",
		Help:    "Time spent acquiring aggregate locks",
		Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
	})
)

// ObserveHTTPRequest records an HTTP request metric.
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveOperation counts one service call; err decides the outcome label.
func ObserveOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	operationsTotal.WithLabelValues(operation, outcome).Inc()
}

func ObserveAtomicRetry() {
	atomicRetries.Inc()
}

func ObserveLockWait(d time.Duration) {
	lockWait.Observe(d.Seconds())
}
