// Package metrics provides Prometheus metrics for the orrg engine.
package metrics

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	// Engine operation metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	GeometryVertices  *prometheus.HistogramVec

	// Recoveries counts degraded-accuracy fallbacks (failed hole cuts,
	// antimeridian passthroughs, empty intersections)
	RecoveriesTotal *prometheus.CounterVec

	// logger for error reporting
	logger *slog.Logger
}

// New creates and registers all application metrics with a new registry.
func New() *Metrics {
	return NewWithLogger(nil)
}

// NewWithLogger creates metrics with a logger for error reporting.
func NewWithLogger(logger *slog.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	operationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orrg_operations_total",
			Help: "Total number of engine operations",
		},
		[]string{"operation"},
	)

	operationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orrg_operation_duration_seconds",
			Help:    "Engine operation latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	geometryVertices := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orrg_geometry_vertices",
			Help:    "Vertex count of produced geometries",
			Buckets: prometheus.ExponentialBuckets(64, 2, 10),
		},
		[]string{"operation"},
	)

	recoveriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orrg_recoveries_total",
			Help: "Total number of degraded-accuracy fallbacks",
		},
		[]string{"kind"},
	)

	// Register all metrics with the custom registry
	registry.MustRegister(
		operationsTotal,
		operationDuration,
		geometryVertices,
		recoveriesTotal,
	)

	return &Metrics{
		Registry:          registry,
		OperationsTotal:   operationsTotal,
		OperationDuration: operationDuration,
		GeometryVertices:  geometryVertices,
		RecoveriesTotal:   recoveriesTotal,
		logger:            logger,
	}
}

// ObserveOperation records one completed engine operation.
func (m *Metrics) ObserveOperation(operation string, seconds float64, vertices int) {
	m.OperationsTotal.WithLabelValues(operation).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(seconds)
	m.GeometryVertices.WithLabelValues(operation).Observe(float64(vertices))
}

// RecordRecovery counts a degraded-accuracy fallback by kind.
func (m *Metrics) RecordRecovery(kind string) {
	m.RecoveriesTotal.WithLabelValues(kind).Inc()
}
