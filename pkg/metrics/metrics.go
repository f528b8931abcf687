// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "backoffice"

// Reconciliation results
const (
	ResultOK       = "ok"
	ResultOversold = "oversold"
	ResultFailed   = "failed"
)

// Metrics groups every collector of the service
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	GRPCRequestsTotal *prometheus.CounterVec

	ReconciliationsTotal *prometheus.CounterVec
	AvailableQuantity    *prometheus.GaugeVec

	EventsPublishedTotal *prometheus.CounterVec
}

// New creates and registers the collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		GRPCRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grpc",
			Name:      "requests_total",
			Help:      "Total unary gRPC requests by method and status code",
		}, []string{"method", "code"}),
		ReconciliationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "reconciliations_total",
			Help:      "Available quantity recomputations by result",
		}, []string{"result"}),
		AvailableQuantity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "available_quantity",
			Help:      "Last reconciled available quantity per product",
		}, []string{"product_id"}),
		EventsPublishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Domain events handed to the broker",
		}, []string{"routing_key", "result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GRPCRequestsTotal,
		m.ReconciliationsTotal,
		m.AvailableQuantity,
		m.EventsPublishedTotal,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveReconciliation records one reconciler outcome
func (m *Metrics) ObserveReconciliation(productID string, available int, err error) {
	if m == nil {
		return
	}
	switch {
	case err != nil:
		m.ReconciliationsTotal.WithLabelValues(ResultFailed).Inc()
	case available < 0:
		m.ReconciliationsTotal.WithLabelValues(ResultOversold).Inc()
		m.AvailableQuantity.WithLabelValues(productID).Set(float64(available))
	default:
		m.ReconciliationsTotal.WithLabelValues(ResultOK).Inc()
		m.AvailableQuantity.WithLabelValues(productID).Set(float64(available))
	}
}

// ObserveGRPC records one unary gRPC call
func (m *Metrics) ObserveGRPC(method, code string) {
	if m == nil {
		return
	}
	m.GRPCRequestsTotal.WithLabelValues(method, code).Inc()
}

// ForgetProduct drops the gauge of a deleted product
func (m *Metrics) ForgetProduct(productID string) {
	if m == nil {
		return
	}
	m.AvailableQuantity.DeleteLabelValues(productID)
}

// ObservePublish records one publish attempt
func (m *Metrics) ObservePublish(routingKey string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.EventsPublishedTotal.WithLabelValues(routingKey, result).Inc()
}
