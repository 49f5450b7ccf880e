package metrics

import (
	"net/http"
	"time"

	"github.com/bitechdev/DataSpec/pkg/logger"
)

// Provider defines the interface for metric collection
type Provider interface {
	// RecordHTTPRequest records metrics for an HTTP request
	RecordHTTPRequest(method, path, status string, duration time.Duration)

	// RecordSearch records a search engine call against an entity
	RecordSearch(entity string, duration time.Duration, err error)

	// RecordBulkUpdate records row outcomes of a bulk update call
	RecordBulkUpdate(entity string, updated, errored int, duration time.Duration)

	// RecordCacheHit records a cache hit
	RecordCacheHit(provider string)

	// RecordCacheMiss records a cache miss
	RecordCacheMiss(provider string)

	// RecordPanic records a recovered panic
	RecordPanic(method string)

	// Handler returns an HTTP handler for exposing metrics (e.g., /metrics endpoint)
	Handler() http.Handler
}

// globalProvider is the global metrics provider
var globalProvider Provider

// SetProvider sets the global metrics provider
func SetProvider(p Provider) {
	globalProvider = p
}

// GetProvider returns the current metrics provider
func GetProvider() Provider {
	if globalProvider == nil {
		// No-op until a real provider is configured
		return &NoOpProvider{}
	}
	return globalProvider
}

// NoOpProvider is a no-op implementation of Provider
type NoOpProvider struct{}

func (n *NoOpProvider) RecordHTTPRequest(method, path, status string, duration time.Duration) {}
func (n *NoOpProvider) RecordSearch(entity string, duration time.Duration, err error)         {}
func (n *NoOpProvider) RecordBulkUpdate(entity string, updated, errored int, duration time.Duration) {
}
func (n *NoOpProvider) RecordCacheHit(provider string)  {}
func (n *NoOpProvider) RecordCacheMiss(provider string) {}
func (n *NoOpProvider) RecordPanic(method string)       {}
func (n *NoOpProvider) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Metrics provider not configured"))
		if err != nil {
			logger.Warn("Failed to write. %v", err)
		}
	})
}
