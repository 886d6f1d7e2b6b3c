// Package metrics counts board operations and entity totals.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation outcomes.
const (
	StatusOK      = "ok"
	StatusNoop    = "noop"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

// Collector receives board operation events.
type Collector interface {
	RecordOperation(operation, status string)
	SetEntityCount(kind string, count int)
}

// Noop discards everything.
type Noop struct{}

func (Noop) RecordOperation(string, string) {}
func (Noop) SetEntityCount(string, int)     {}

// PrometheusCollector exports counters on a private registry.
type PrometheusCollector struct {
	operationsTotal *prometheus.CounterVec
	entityCount     *prometheus.GaugeVec
	registry        *prometheus.Registry
}

// NewPrometheusCollector creates a collector with its own registry.
func NewPrometheusCollector() *PrometheusCollector {
	registry := prometheus.NewRegistry()

	operationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thoughtboard_operations_total",
			Help: "Total number of board operations by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	entityCount := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "thoughtboard_entities",
			Help: "Current number of entities on the board by kind",
		},
		[]string{"kind"},
	)

	registry.MustRegister(operationsTotal)
	registry.MustRegister(entityCount)

	return &PrometheusCollector{
		operationsTotal: operationsTotal,
		entityCount:     entityCount,
		registry:        registry,
	}
}

// RecordOperation counts one finished operation.
func (p *PrometheusCollector) RecordOperation(operation, status string) {
	p.operationsTotal.WithLabelValues(operation, status).Inc()
}

// SetEntityCount sets the gauge for kind.
func (p *PrometheusCollector) SetEntityCount(kind string, count int) {
	p.entityCount.WithLabelValues(kind).Set(float64(count))
}

// Registry exposes the underlying registry.
func (p *PrometheusCollector) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus text format.
func (p *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
