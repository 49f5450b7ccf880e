package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitechdev/DataSpec/pkg/logger"
	"github.com/bitechdev/DataSpec/pkg/metrics"
)

// panicSpyProvider records the RecordPanic call so tests can assert on it
// without a full metrics backend.
type panicSpyProvider struct {
	metrics.NoOpProvider
	recorded bool
	method   string
}

func (p *panicSpyProvider) RecordPanic(methodName string) {
	p.recorded = true
	p.method = methodName
}

func TestPanicRecovery(t *testing.T) {
	logger.Init(true)

	spy := &panicSpyProvider{}
	original := metrics.GetProvider()
	metrics.SetProvider(spy)
	defer metrics.SetProvider(original)

	t.Run("PanickingHandler", func(t *testing.T) {
		spy.recorded = false
		spy.method = ""

		handler := PanicRecovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("something went terribly wrong")
		}))

		req := httptest.NewRequest("POST", "/products/search", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "panic in PanicMiddleware: something went terribly wrong")
		assert.True(t, spy.recorded, "RecordPanic should fire on recovery")
		assert.Equal(t, panicMiddlewareMethodName, spy.method)
	})

	t.Run("HealthyHandler", func(t *testing.T) {
		spy.recorded = false

		handler := PanicRecovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		}))

		req := httptest.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", w.Body.String())
		assert.False(t, spy.recorded)
	})
}
