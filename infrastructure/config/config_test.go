package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_RateLimitDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.IPRateLimit)
	assert.Equal(t, 200, cfg.UserRateLimit)
}

func TestLoadConfig_RateLimitOverrides(t *testing.T) {
	t.Setenv("IP_RATE_LIMIT", "25")
	t.Setenv("USER_RATE_LIMIT", "50")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.IPRateLimit)
	assert.Equal(t, 50, cfg.UserRateLimit)
}

func TestLoadConfig_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("IP_RATE_LIMIT", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.IPRateLimit)
}
