package middleware

import (
	"net/http"
	"time"
)

// HTTPObserver records request latency.
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// Metrics observes request latency by matched route pattern.
type Metrics struct {
	observer HTTPObserver
}

func NewMetrics(observer HTTPObserver) *Metrics {
	return &Metrics{observer: observer}
}

func (m *Metrics) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		// ServeMux sets Pattern on the request it routes.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.observer.ObserveHTTP(r.Method, route, rec.status, time.Since(start))
	})
}
