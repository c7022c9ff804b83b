package middleware

import (
	"net/http"
	"strconv"
	"time"

	"clinic-management/internal/observability/metrics"

	"github.com/gorilla/mux"
)

type MetricsMiddleware struct {
	metrics *metrics.HTTPMetrics
}

func NewMetricsMiddleware(m *metrics.HTTPMetrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: m}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Handle records request latency labelled by the matched route template
func (m *MetricsMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.metrics.ObserveRequest(route, r.Method, strconv.Itoa(rec.status), time.Since(start).Seconds())
	})
}
