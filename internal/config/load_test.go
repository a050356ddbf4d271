package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 4, cfg.Pool.MaxConcurrency)
	assert.Equal(t, 256, cfg.Pool.QueueSize)
	assert.Equal(t, 100*time.Millisecond, cfg.Pool.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.Client.Timeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("REQPOOL_SERVER_PORT", "9090")
	t.Setenv("REQPOOL_SERVER_LOG_LEVEL", "debug")
	t.Setenv("REQPOOL_POOL_MAX_CONCURRENCY", "16")
	t.Setenv("REQPOOL_CLIENT_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 16, cfg.Pool.MaxConcurrency)
	assert.Equal(t, 5*time.Second, cfg.Client.Timeout)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "port out of range", key: "REQPOOL_SERVER_PORT", value: "70000"},
		{name: "unknown log level", key: "REQPOOL_SERVER_LOG_LEVEL", value: "verbose"},
		{name: "non-positive concurrency", key: "REQPOOL_POOL_MAX_CONCURRENCY", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Nil(t, cfg)
			assert.Error(t, err)
		})
	}
}
