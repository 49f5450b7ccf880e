package errortracking

import (
	"context"
	"time"
)

// NoOpProvider discards every event. It is the provider when tracking is
// disabled, so callers never need a nil check.
type NoOpProvider struct{}

func NewNoOpProvider() *NoOpProvider { return &NoOpProvider{} }

func (*NoOpProvider) CaptureError(context.Context, error, Severity, map[string]interface{}) {}

func (*NoOpProvider) CaptureMessage(context.Context, string, Severity, map[string]interface{}) {}

func (*NoOpProvider) CapturePanic(context.Context, interface{}, []byte, map[string]interface{}) {}

func (*NoOpProvider) Flush(time.Duration) bool { return true }

func (*NoOpProvider) Close() error { return nil }
