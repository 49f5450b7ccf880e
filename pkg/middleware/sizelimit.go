package middleware

import (
	"fmt"
	"net/http"
)

const (
	// DefaultMaxRequestSize is the default maximum request body size (10MB)
	DefaultMaxRequestSize = 10 * 1024 * 1024

	// MaxRequestSizeHeader is the header name for max request size
	MaxRequestSizeHeader = "X-Max-Request-Size"
)

// RequestSizeLimiter limits the size of request bodies. Bulk update
// payloads can be large, so the cap is configurable per server.
type RequestSizeLimiter struct {
	maxSize int64
}

// NewRequestSizeLimiter creates a new request size limiter.
// maxSize is in bytes. If 0, uses DefaultMaxRequestSize (10MB).
func NewRequestSizeLimiter(maxSize int64) *RequestSizeLimiter {
	if maxSize <= 0 {
		maxSize = DefaultMaxRequestSize
	}
	return &RequestSizeLimiter{
		maxSize: maxSize,
	}
}

// Middleware returns an HTTP middleware that enforces the request size limit.
func (rsl *RequestSizeLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, rsl.maxSize)

		w.Header().Set(MaxRequestSizeHeader, fmt.Sprintf("%d", rsl.maxSize))

		next.ServeHTTP(w, r)
	})
}
