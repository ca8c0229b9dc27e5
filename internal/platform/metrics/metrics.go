// Package metrics holds the Prometheus collectors of the optimizer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const DefaultNamespace = "route_optimizer"

// Metrics groups every collector. All methods are safe on a nil receiver so
// callers that do not care about metrics can pass nil.
type Metrics struct {
	registry *prometheus.Registry

	// Solver metrics
	OrdersSolved  *prometheus.CounterVec
	SolveDuration prometheus.Histogram
	Runs          *prometheus.CounterVec
	RunDuration   prometheus.Histogram

	// Network metrics
	EdgeCacheLookups *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New registers all collectors on a fresh dedicated registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		OrdersSolved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "orders_total",
			Help:      "Orders processed by the path solver, by outcome.",
		}, []string{"outcome"}),
		SolveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "order_duration_seconds",
			Help:      "Time spent solving a single order.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "runs_total",
			Help:      "Optimization runs, by final status.",
		}, []string{"status"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a whole optimization run.",
			Buckets:   prometheus.DefBuckets,
		}),

		EdgeCacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "network",
			Name:      "edge_cache_lookups_total",
			Help:      "Outgoing-edge cache lookups, by result.",
		}, []string{"result"}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// Order outcomes.
const (
	OutcomeRouted     = "routed"
	OutcomeInfeasible = "infeasible"
	OutcomeFailed     = "failed"
)

// Run statuses.
const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
	StatusCanceled = "canceled"
	StatusFailed   = "failed"
)

func (m *Metrics) ObserveOrder(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.OrdersSolved.WithLabelValues(outcome).Inc()
	m.SolveDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveRun(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(status).Inc()
	m.RunDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.EdgeCacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	s := http.StatusText(status)
	if s == "" {
		s = "unknown"
	}
	m.HTTPRequests.WithLabelValues(method, path, s).Inc()
	m.HTTPDuration.WithLabelValues(method, path, s).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the dedicated registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
