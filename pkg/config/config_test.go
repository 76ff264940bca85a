package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tachyon-hq/intent-engine/pkg/logger"
)

// TestLoad tests configuration loading and defaults
func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, DefaultVerifierEndpoint, cfg.VerifierEndpoint)
		assert.Equal(t, DefaultVerifierContract, cfg.VerifierContract)
		assert.Equal(t, DefaultIndexerEndpoint, cfg.IndexerEndpoint)
		assert.Equal(t, DefaultPollingIntervalSeconds*time.Second, cfg.PollingInterval)
		assert.Equal(t, DefaultRequestTimeoutSeconds*time.Second, cfg.RequestTimeout)
		assert.Equal(t, DefaultSettlementTimeoutSeconds*time.Second, cfg.SettlementTimeout)
		assert.Equal(t, DefaultMetricsPort, cfg.MetricsPort)
		assert.Equal(t, logger.InfoLevel, cfg.LoggerConfig.Level)
		assert.True(t, cfg.Breaker.Enabled)
		assert.Equal(t, DefaultBreakerThreshold, cfg.Breaker.Threshold)
	})

	t.Run("Environment overrides", func(t *testing.T) {
		t.Setenv("INTENT_ENGINE_VERIFIER_ENDPOINT", "http://localhost:9000")
		t.Setenv("INTENT_ENGINE_POLLING_INTERVAL", "2")
		t.Setenv("INTENT_ENGINE_ACCOUNT_ID", "alice.near")
		t.Setenv("INTENT_ENGINE_LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "http://localhost:9000", cfg.VerifierEndpoint)
		assert.Equal(t, 2*time.Second, cfg.PollingInterval)
		assert.Equal(t, "alice.near", cfg.AccountID)
		assert.Equal(t, logger.DebugLevel, cfg.LoggerConfig.Level)
	})

	t.Run("Invalid log level rejected", func(t *testing.T) {
		t.Setenv("INTENT_ENGINE_LOG_LEVEL", "chatty")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("Non-positive polling interval rejected", func(t *testing.T) {
		t.Setenv("INTENT_ENGINE_POLLING_INTERVAL", "0")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected logger.Level
	}{
		{"debug", logger.DebugLevel},
		{"info", logger.InfoLevel},
		{"INFO", logger.InfoLevel},
		{"notice", logger.NoticeLevel},
		{"error", logger.ErrorLevel},
		{"", logger.InfoLevel},
	}

	for _, tt := range tests {
		level, err := parseLogLevel(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, level)
	}

	_, err := parseLogLevel("verbose")
	assert.Error(t, err)
}
