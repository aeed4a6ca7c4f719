package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t, "PORT", "MAX_PEERS", "MAX_ROOMS", "USER_TIMEOUT_SEC",
		"CONNECTION_TIMEOUT_SEC", "CLEANUP_INTERVAL_SEC", "MONITORING_INTERVAL_SEC",
		"MAX_ATTEMPTS", "MONITORING_ENABLED")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 200, cfg.MaxPeers)
	assert.Equal(t, 100, cfg.MaxRooms)
	assert.Equal(t, 300, cfg.UserTimeoutSec)
	assert.Equal(t, 30, cfg.ConnectionTimeoutSec)
	assert.Equal(t, 60, cfg.CleanupIntervalSec)
	assert.Equal(t, 30, cfg.MonitoringIntervalSec)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.True(t, cfg.MonitoringEnabled)
}

func TestLoad_OverridesAndValidation(t *testing.T) {
	t.Setenv("MAX_PEERS", "5")
	t.Setenv("PORT", "9999")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxPeers)
	assert.Equal(t, "9999", cfg.Port)
}

func TestLoad_InvalidValuesAreAggregated(t *testing.T) {
	t.Setenv("MAX_PEERS", "not-a-number")
	t.Setenv("PORT", "999999")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_PEERS")
	assert.Contains(t, err.Error(), "PORT")
}

func TestLoad_OutOfRangeIsRejected(t *testing.T) {
	t.Setenv("MAX_ROOMS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_ROOMS")
}
