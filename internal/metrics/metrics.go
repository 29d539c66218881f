// Package metrics exposes Prometheus collectors for the URL canonicalization service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	normalizationsTotal        *prometheus.CounterVec
	matchesTotal               *prometheus.CounterVec
	recordsTotal               *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		normalizationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "urlcanon_normalizations_total",
				Help: "Total number of URLs normalized, labeled by platform.",
			},
			[]string{"platform"},
		)

		matchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "urlcanon_matches_total",
				Help: "Total number of URL pair comparisons, labeled by result.",
			},
			[]string{"result"},
		)

		recordsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "urlcanon_records_total",
				Help: "Total number of dedup record registrations, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "urlcanon_http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "urlcanon_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveNormalization increments the normalization counter for a platform.
func ObserveNormalization(platform string) {
	normalizationsTotal.WithLabelValues(platform).Inc()
}

// ObserveMatch increments the comparison counter.
func ObserveMatch(matched bool) {
	result := "mismatch"
	if matched {
		result = "match"
	}
	matchesTotal.WithLabelValues(result).Inc()
}

// ObserveRecord increments the registration counter for the given outcome.
func ObserveRecord(duplicate bool) {
	outcome := "new"
	if duplicate {
		outcome = "duplicate"
	}
	recordsTotal.WithLabelValues(outcome).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Middleware is a chi middleware that records HTTP request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}

		ObserveHTTPRequest(r.Method, routePattern, ww.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}
