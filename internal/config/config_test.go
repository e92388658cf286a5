package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skiff/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogJSON)
	assert.Equal(t, 15*time.Second, cfg.StartTimeout)
	assert.Equal(t, 10*time.Second, cfg.StopTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SKIFF_LOG_LEVEL", "debug")
	t.Setenv("SKIFF_LOG_JSON", "true")
	t.Setenv("SKIFF_START_TIMEOUT", "3s")
	t.Setenv("SKIFF_STOP_TIMEOUT", "1s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, 3*time.Second, cfg.StartTimeout)
	assert.Equal(t, time.Second, cfg.StopTimeout)
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	t.Setenv("SKIFF_START_TIMEOUT", "soon")

	_, err := config.Load()
	require.Error(t, err)
}
