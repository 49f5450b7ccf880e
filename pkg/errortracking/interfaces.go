package errortracking

import (
	"context"
	"time"
)

// Severity grades a captured event. Values map onto the backend's own
// levels in each provider.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityDebug   Severity = "debug"
)

// Provider ships errors, messages and recovered panics to an external
// tracker. The logger package forwards its Warn/Error output and panic
// recoveries through the configured provider.
type Provider interface {
	// CaptureError reports an error with optional extra context fields.
	CaptureError(ctx context.Context, err error, severity Severity, extra map[string]interface{})

	// CaptureMessage reports a plain message.
	CaptureMessage(ctx context.Context, message string, severity Severity, extra map[string]interface{})

	// CapturePanic reports a recovered panic together with its stack.
	CapturePanic(ctx context.Context, recovered interface{}, stackTrace []byte, extra map[string]interface{})

	// Flush blocks until queued events are sent or the timeout passes.
	// Returns false when events may have been dropped.
	Flush(timeout time.Duration) bool

	// Close flushes and releases the provider.
	Close() error
}
