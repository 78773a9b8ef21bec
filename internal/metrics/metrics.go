// Package metrics holds the Prometheus collectors for resource operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gocrud"

const (
	StatusOK    = "ok"
	StatusError = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	// OperationsTotal counts resource operations by resource, operation
	// (list, create, retrieve, update, delete) and status.
	OperationsTotal *prometheus.CounterVec

	// OperationDuration is the latency of resource operations in seconds.
	OperationDuration *prometheus.HistogramVec

	// ListResults counts list requests by result shape (page, first, list).
	ListResults *prometheus.CounterVec

	// AuthEvents counts auth outcomes, e.g. login/failed.
	AuthEvents *prometheus.CounterVec
}

// New registers the collectors on a fresh registry along with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		OperationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_operations_total",
			Help:      "Total number of resource operations",
		}, []string{"resource", "operation", "status"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resource_operation_duration_seconds",
			Help:      "Resource operation latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource", "operation"}),
		ListResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "list_results_total",
			Help:      "List requests by result shape",
		}, []string{"resource", "shape"}),
		AuthEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Authentication events by outcome",
		}, []string{"event", "status"}),
	}
}

// Observe records one resource operation started at start.
func (m *Metrics) Observe(resource, operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.OperationsTotal.WithLabelValues(resource, operation, status).Inc()
	m.OperationDuration.WithLabelValues(resource, operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ListShape(resource, shape string) {
	if m == nil {
		return
	}
	m.ListResults.WithLabelValues(resource, shape).Inc()
}

func (m *Metrics) Auth(event string, err error) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.AuthEvents.WithLabelValues(event, status).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
