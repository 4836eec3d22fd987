package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "0 6 * * *", cfg.DigestSchedule)
	assert.Equal(t, 10*time.Minute, cfg.ForecastCacheTTL)
}

func TestNewConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FORECAST_CACHE_TTL_MINUTES", "30")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.ForecastCacheTTL)
}

func TestNewConfigInvalidCacheTTL(t *testing.T) {
	t.Setenv("FORECAST_CACHE_TTL_MINUTES", "soon")

	_, err := NewConfig()
	assert.Error(t, err)
}
