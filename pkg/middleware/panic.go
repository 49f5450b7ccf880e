package middleware

import (
	"net/http"

	"github.com/bitechdev/DataSpec/pkg/logger"
	"github.com/bitechdev/DataSpec/pkg/metrics"
)

const panicMiddlewareMethodName = "PanicMiddleware"

// PanicRecovery is a middleware that recovers from panics, logs the error,
// sends it to an error tracker, records a metric, and returns a 500 Internal Server Error.
func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rcv := recover(); rcv != nil {
				metrics.GetProvider().RecordPanic(panicMiddlewareMethodName)

				err := logger.HandlePanic(panicMiddlewareMethodName, rcv)

				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
