package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       LogConfig
		expectErr bool
	}{
		{
			name: "default json config",
			cfg:  DefaultLogConfig(),
		},
		{
			name: "console format",
			cfg:  LogConfig{Level: "debug", Format: "console", Output: "stderr"},
		},
		{
			name:      "invalid level",
			cfg:       LogConfig{Level: "chatty", Format: "json", Output: "stdout"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, err := NewLogger(tt.cfg)
			if tt.expectErr {
				require.Error(t, err)
				assert.Nil(t, logger)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)

			// Exercise the logger; output goes to stdout/stderr.
			logger.Debug("debug message", String("key", "value"))
			logger.Info("info message", Int("count", 1))
			child := logger.With(String("component", "test"))
			child.Warn("warn message")
		})
	}
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	logger := NopLogger()
	require.NotNil(t, logger)

	logger.Info("discarded")
	logger.Error("also discarded", Error(assert.AnError))
	assert.NoError(t, logger.Sync())
}

func TestGlobalLogger(t *testing.T) {
	custom := NopLogger()
	SetGlobalLogger(custom)
	defer SetGlobalLogger(nil)

	assert.Equal(t, custom, GetGlobalLogger())
	assert.Equal(t, custom, L())

	SetGlobalLogger(nil)
	assert.NotNil(t, GetGlobalLogger())
}

func TestTracer(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, Tracer())
}
