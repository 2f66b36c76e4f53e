// Package metrics exposes Prometheus collectors of the session server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apiErrors "github.com/dtroode/authsession/internal/api/errors"
)

const namespace = "authsession"

// Metrics owns a private registry so tests can build independent instances.
type Metrics struct {
	registry     *prometheus.Registry
	authOps      *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		authOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_operations_total",
			Help:      "Auth operations by outcome.",
		}, []string{"operation", "result"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.authOps,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveAuth counts an auth operation. The result label is "success" or
// the error kind.
func (m *Metrics) ObserveAuth(operation string, err error) {
	result := "success"
	if err != nil {
		result = apiErrors.KindInternal.String()
		if apiErr, ok := apiErrors.As(err); ok {
			result = apiErr.Kind.String()
		}
	}
	m.authOps.WithLabelValues(operation, result).Inc()
}

// ObserveHTTP records the latency of a served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
