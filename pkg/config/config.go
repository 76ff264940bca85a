// Package config loads engine configuration from the environment and
// an optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tachyon-hq/intent-engine/pkg/logger"
)

const (
	// DefaultVerifierEndpoint is the settlement/verifier service
	DefaultVerifierEndpoint = "https://verifier.tachyon.exchange"

	// DefaultIndexerEndpoint is the secondary status source
	DefaultIndexerEndpoint = "https://indexer.tachyon.exchange"

	// DefaultPriceFeedEndpoint serves USD token prices
	DefaultPriceFeedEndpoint = "https://prices.tachyon.exchange"

	// DefaultVerifierContract is the on-chain account every intent
	// signature is bound to
	DefaultVerifierContract = "intents.tachyon.near"

	// DefaultPollingIntervalSeconds is how often tracked intents are re-polled
	DefaultPollingIntervalSeconds = 5

	// DefaultRequestTimeoutSeconds bounds every network call
	DefaultRequestTimeoutSeconds = 10

	// DefaultSettlementTimeoutSeconds bounds a blocking settlement wait
	DefaultSettlementTimeoutSeconds = 300

	// DefaultMetricsPort is the health/metrics server port
	DefaultMetricsPort = "8080"

	// DefaultPriceCacheTTLSeconds is the TTL for cached prices
	DefaultPriceCacheTTLSeconds = 300

	// Circuit breaker defaults for the verifier status source
	DefaultBreakerEnabled       = true
	DefaultBreakerThreshold     = 5
	DefaultBreakerWindowSeconds = 60
	DefaultBreakerResetSeconds  = 120
)

// BreakerConfig holds circuit breaker settings for a status source
type BreakerConfig struct {
	Enabled      bool
	Threshold    int
	Window       time.Duration
	ResetTimeout time.Duration
}

// LoggerConfig holds the configuration for logging
type LoggerConfig struct {
	Level    logger.Level
	Coloring bool
}

// Config holds the configuration for the intent engine
type Config struct {
	VerifierEndpoint  string
	VerifierContract  string
	IndexerEndpoint   string
	PriceFeedEndpoint string
	PollingInterval   time.Duration
	RequestTimeout    time.Duration
	SettlementTimeout time.Duration
	PriceCacheTTL     time.Duration
	MetricsPort       string
	AccountID         string
	PrivateKey        string
	Breaker           BreakerConfig
	LoggerConfig      LoggerConfig
}

// Load reads configuration from environment variables (prefix
// INTENT_ENGINE_) and an optional .intent-engine.yaml file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".intent-engine")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME")
	v.AddConfigPath(".")

	v.SetDefault("verifier_endpoint", DefaultVerifierEndpoint)
	v.SetDefault("verifier_contract", DefaultVerifierContract)
	v.SetDefault("indexer_endpoint", DefaultIndexerEndpoint)
	v.SetDefault("pricefeed_endpoint", DefaultPriceFeedEndpoint)
	v.SetDefault("polling_interval", DefaultPollingIntervalSeconds)
	v.SetDefault("request_timeout", DefaultRequestTimeoutSeconds)
	v.SetDefault("settlement_timeout", DefaultSettlementTimeoutSeconds)
	v.SetDefault("price_cache_ttl", DefaultPriceCacheTTLSeconds)
	v.SetDefault("metrics_port", DefaultMetricsPort)
	v.SetDefault("breaker_enabled", DefaultBreakerEnabled)
	v.SetDefault("breaker_threshold", DefaultBreakerThreshold)
	v.SetDefault("breaker_window", DefaultBreakerWindowSeconds)
	v.SetDefault("breaker_reset", DefaultBreakerResetSeconds)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_coloring", true)

	v.SetEnvPrefix("INTENT_ENGINE")
	v.AutomaticEnv()

	// Config file is optional
	_ = v.ReadInConfig()

	level, err := parseLogLevel(v.GetString("log_level"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		VerifierEndpoint:  v.GetString("verifier_endpoint"),
		VerifierContract:  v.GetString("verifier_contract"),
		IndexerEndpoint:   v.GetString("indexer_endpoint"),
		PriceFeedEndpoint: v.GetString("pricefeed_endpoint"),
		PollingInterval:   time.Duration(v.GetInt("polling_interval")) * time.Second,
		RequestTimeout:    time.Duration(v.GetInt("request_timeout")) * time.Second,
		SettlementTimeout: time.Duration(v.GetInt("settlement_timeout")) * time.Second,
		PriceCacheTTL:     time.Duration(v.GetInt("price_cache_ttl")) * time.Second,
		MetricsPort:       v.GetString("metrics_port"),
		AccountID:         v.GetString("account_id"),
		PrivateKey:        v.GetString("private_key"),
		Breaker: BreakerConfig{
			Enabled:      v.GetBool("breaker_enabled"),
			Threshold:    v.GetInt("breaker_threshold"),
			Window:       time.Duration(v.GetInt("breaker_window")) * time.Second,
			ResetTimeout: time.Duration(v.GetInt("breaker_reset")) * time.Second,
		},
		LoggerConfig: LoggerConfig{
			Level:    level,
			Coloring: v.GetBool("log_coloring"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.VerifierEndpoint == "" {
		return fmt.Errorf("verifier endpoint is required")
	}
	if cfg.PollingInterval <= 0 {
		return fmt.Errorf("polling interval must be positive")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

func parseLogLevel(s string) (logger.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return logger.DebugLevel, nil
	case "info", "":
		return logger.InfoLevel, nil
	case "notice":
		return logger.NoticeLevel, nil
	case "error":
		return logger.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("unknown log level: %q", s)
	}
}
