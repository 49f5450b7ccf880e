package errortracking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitechdev/DataSpec/pkg/config"
)

func TestNoOpProvider(t *testing.T) {
	var p Provider = NewNoOpProvider()
	ctx := context.Background()

	// Every method must be callable without side effects or panics.
	p.CaptureError(ctx, errors.New("boom"), SeverityError, nil)
	p.CaptureMessage(ctx, "message", SeverityWarning, map[string]interface{}{"k": "v"})
	p.CapturePanic(ctx, "panic", []byte("stack"), nil)

	assert.True(t, p.Flush(time.Second))
	assert.NoError(t, p.Close())
}

func TestNewProviderFromConfig(t *testing.T) {
	t.Run("disabled yields noop", func(t *testing.T) {
		p, err := NewProviderFromConfig(config.ErrorTrackingConfig{Enabled: false})
		require.NoError(t, err)
		assert.IsType(t, &NoOpProvider{}, p)
	})

	t.Run("noop by name", func(t *testing.T) {
		p, err := NewProviderFromConfig(config.ErrorTrackingConfig{Enabled: true, Provider: "noop"})
		require.NoError(t, err)
		assert.IsType(t, &NoOpProvider{}, p)
	})

	t.Run("sentry needs a DSN", func(t *testing.T) {
		_, err := NewProviderFromConfig(config.ErrorTrackingConfig{Enabled: true, Provider: "sentry"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DSN")
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewProviderFromConfig(config.ErrorTrackingConfig{Enabled: true, Provider: "statsd"})
		assert.Error(t, err)
	})
}
