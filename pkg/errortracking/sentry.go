package errortracking

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryConfig holds the sentry connection settings.
type SentryConfig struct {
	DSN              string
	Environment      string
	Release          string
	Debug            bool
	SampleRate       float64
	TracesSampleRate float64
}

// SentryProvider forwards captured events to sentry.
type SentryProvider struct {
	hub *sentry.Hub
}

// NewSentryProvider initializes the sentry SDK and returns a provider
// bound to the current hub.
func NewSentryProvider(config SentryConfig) (*SentryProvider, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              config.DSN,
		Environment:      config.Environment,
		Release:          config.Release,
		Debug:            config.Debug,
		AttachStacktrace: true,
		SampleRate:       config.SampleRate,
		TracesSampleRate: config.TracesSampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}

	return &SentryProvider{hub: sentry.CurrentHub()}, nil
}

// hubFor prefers a hub carried on the request context so events keep
// their request scope.
func (s *SentryProvider) hubFor(ctx context.Context) *sentry.Hub {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return s.hub
}

func (s *SentryProvider) CaptureError(ctx context.Context, err error, severity Severity, extra map[string]interface{}) {
	if err == nil {
		return
	}

	event := sentry.NewEvent()
	event.Level = sentryLevel(severity)
	event.Message = err.Error()
	event.Extra = extra
	event.Exception = []sentry.Exception{{
		Value:      err.Error(),
		Type:       fmt.Sprintf("%T", err),
		Stacktrace: sentry.ExtractStacktrace(err),
	}}

	s.hubFor(ctx).CaptureEvent(event)
}

func (s *SentryProvider) CaptureMessage(ctx context.Context, message string, severity Severity, extra map[string]interface{}) {
	if message == "" {
		return
	}

	event := sentry.NewEvent()
	event.Level = sentryLevel(severity)
	event.Message = message
	event.Extra = extra

	s.hubFor(ctx).CaptureEvent(event)
}

func (s *SentryProvider) CapturePanic(ctx context.Context, recovered interface{}, stackTrace []byte, extra map[string]interface{}) {
	if recovered == nil {
		return
	}

	event := sentry.NewEvent()
	event.Level = sentry.LevelError
	event.Message = fmt.Sprintf("Panic: %v", recovered)
	event.Exception = []sentry.Exception{{
		Value: fmt.Sprintf("%v", recovered),
		Type:  "panic",
	}}

	if event.Extra == nil {
		event.Extra = make(map[string]interface{}, len(extra)+1)
	}
	for k, v := range extra {
		event.Extra[k] = v
	}
	if stackTrace != nil {
		event.Extra["stack_trace"] = string(stackTrace)
	}

	s.hubFor(ctx).CaptureEvent(event)
}

func (s *SentryProvider) Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

func (s *SentryProvider) Close() error {
	sentry.Flush(2 * time.Second)
	return nil
}

func sentryLevel(severity Severity) sentry.Level {
	switch severity {
	case SeverityWarning:
		return sentry.LevelWarning
	case SeverityInfo:
		return sentry.LevelInfo
	case SeverityDebug:
		return sentry.LevelDebug
	default:
		return sentry.LevelError
	}
}
