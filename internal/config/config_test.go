package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetters(t *testing.T) {
	t.Setenv("CFG_STR", "  value ")
	t.Setenv("CFG_INT", "42")
	t.Setenv("CFG_BAD_INT", "forty-two")
	t.Setenv("CFG_FLOAT", "1.5")
	t.Setenv("CFG_BOOL", "true")
	t.Setenv("CFG_DUR", "250ms")

	assert.Equal(t, "value", Get("CFG_STR", "x"))
	assert.Equal(t, "x", Get("CFG_UNSET", "x"))
	assert.Equal(t, 42, GetInt("CFG_INT", 1))
	assert.Equal(t, 1, GetInt("CFG_BAD_INT", 1))
	assert.Equal(t, 1.5, GetFloat("CFG_FLOAT", 0))
	assert.True(t, GetBool("CFG_BOOL", false))
	assert.Equal(t, 250*time.Millisecond, GetDuration("CFG_DUR", time.Second))
	assert.Equal(t, time.Second, GetDuration("CFG_UNSET", time.Second))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ROUTE_CACHE_SIZE", "")
	t.Setenv("ROUTING_TIMEOUT", "")
	t.Setenv("ROUTING_BASE_URL", "http://localhost:5000")
	t.Setenv("METRICS_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.RouteCacheSize)
	assert.Equal(t, 8*time.Second, cfg.RoutingTimeout)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, "http://localhost:5000", cfg.RoutingBaseURL)
}

func TestLoadRejectsBadCacheSize(t *testing.T) {
	t.Setenv("ROUTE_CACHE_SIZE", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ROUTE_CACHE_SIZE")
}

func TestLoadMetricsToggle(t *testing.T) {
	t.Setenv("ROUTING_BASE_URL", "http://localhost:5000")

	t.Setenv("METRICS_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MetricsEnabled)

	t.Setenv("METRICS_ENABLED", "sometimes")
	cfg, err = Load()
	require.NoError(t, err)
	assert.True(t, cfg.MetricsEnabled, "unparseable value keeps the default")
}
