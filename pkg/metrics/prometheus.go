package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusProvider implements the Provider interface using Prometheus
type PrometheusProvider struct {
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	searchDuration     *prometheus.HistogramVec
	searchTotal        *prometheus.CounterVec
	bulkUpdateDuration *prometheus.HistogramVec
	bulkUpdateRows     *prometheus.CounterVec
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	panicsTotal        *prometheus.CounterVec
}

// NewPrometheusProvider creates a new Prometheus metrics provider
func NewPrometheusProvider() *PrometheusProvider {
	return &PrometheusProvider{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		searchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_duration_seconds",
				Help:    "Search query duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"entity"},
		),
		searchTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "searches_total",
				Help: "Total number of search calls",
			},
			[]string{"entity", "status"},
		),
		bulkUpdateDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bulk_update_duration_seconds",
				Help:    "Bulk update call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"entity"},
		),
		bulkUpdateRows: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulk_update_rows_total",
				Help: "Per-row outcomes of bulk update calls",
			},
			[]string{"entity", "outcome"},
		),
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"provider"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"provider"},
		),
		panicsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "panics_recovered_total",
				Help: "Total number of recovered panics",
			},
			[]string{"method"},
		),
	}
}

// ResponseWriter wraps http.ResponseWriter to capture status code
type ResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *ResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RecordHTTPRequest implements Provider interface
func (p *PrometheusProvider) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	p.requestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	p.requestTotal.WithLabelValues(method, path, status).Inc()
}

// RecordSearch implements Provider interface
func (p *PrometheusProvider) RecordSearch(entity string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.searchDuration.WithLabelValues(entity).Observe(duration.Seconds())
	p.searchTotal.WithLabelValues(entity, status).Inc()
}

// RecordBulkUpdate implements Provider interface
func (p *PrometheusProvider) RecordBulkUpdate(entity string, updated, errored int, duration time.Duration) {
	p.bulkUpdateDuration.WithLabelValues(entity).Observe(duration.Seconds())
	p.bulkUpdateRows.WithLabelValues(entity, "updated").Add(float64(updated))
	p.bulkUpdateRows.WithLabelValues(entity, "error").Add(float64(errored))
}

// RecordCacheHit implements Provider interface
func (p *PrometheusProvider) RecordCacheHit(provider string) {
	p.cacheHits.WithLabelValues(provider).Inc()
}

// RecordCacheMiss implements Provider interface
func (p *PrometheusProvider) RecordCacheMiss(provider string) {
	p.cacheMisses.WithLabelValues(provider).Inc()
}

// RecordPanic implements Provider interface
func (p *PrometheusProvider) RecordPanic(method string) {
	p.panicsTotal.WithLabelValues(method).Inc()
}

// Handler implements Provider interface
func (p *PrometheusProvider) Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that collects request metrics
func (p *PrometheusProvider) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := NewResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		status := strconv.Itoa(rw.statusCode)

		p.RecordHTTPRequest(r.Method, r.URL.Path, status, duration)
	})
}
