package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tachyon-hq/intent-engine/pkg/circuitbreaker"
	"github.com/tachyon-hq/intent-engine/pkg/config"
	"github.com/tachyon-hq/intent-engine/pkg/health"
	"github.com/tachyon-hq/intent-engine/pkg/indexer"
	"github.com/tachyon-hq/intent-engine/pkg/logger"
	"github.com/tachyon-hq/intent-engine/pkg/settlement"
	"github.com/tachyon-hq/intent-engine/pkg/signer"
	"github.com/tachyon-hq/intent-engine/pkg/tracking"
	"github.com/tachyon-hq/intent-engine/pkg/verifier"
)

var rootCmd = &cobra.Command{
	Use:   "intent-engine",
	Short: "A CLI for signing, submitting, and tracking cross-chain intents",
	Long: `intent-engine signs cross-chain intents, submits them to the verifier,
and tracks their settlement across chains.

Examples:
  intent-engine quote 100 USDC to NEAR
  intent-engine withdraw --asset usdc.tkn.near --symbol USDC --amount 25 --to ethereum --recipient 0x123...
  intent-engine status <intent-hash>
  intent-engine track`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

// newLogger builds the CLI logger from loaded configuration
func newLogger(cfg *config.Config, verbose bool) logger.Logger {
	level := cfg.LoggerConfig.Level
	if verbose {
		level = logger.DebugLevel
	}
	return logger.NewStdLogger(cfg.LoggerConfig.Coloring, level)
}

// newVerifierClient builds the verifier client from loaded configuration
func newVerifierClient(cfg *config.Config, log logger.Logger) verifier.Client {
	return verifier.NewHTTPClient(cfg.VerifierEndpoint, cfg.RequestTimeout, log)
}

// newIndexerClient builds the indexer fallback client, or nil when no
// indexer endpoint is configured
func newIndexerClient(cfg *config.Config, log logger.Logger) indexer.Client {
	if cfg.IndexerEndpoint == "" {
		return nil
	}
	return indexer.NewHTTPClient(cfg.IndexerEndpoint, cfg.RequestTimeout, log)
}

// newHealthServer builds the health and metrics server for daemon mode
func newHealthServer(cfg *config.Config, store *tracking.Store, breaker *circuitbreaker.CircuitBreaker) *health.Server {
	return health.NewServer(cfg.MetricsPort, store, breaker, cfg.VerifierEndpoint, cfg.IndexerEndpoint)
}

// newFacade wires the signing wallet and settlement facade. It fails
// when no account credentials are configured.
func newFacade(cfg *config.Config, log logger.Logger) (*settlement.Facade, error) {
	if cfg.AccountID == "" || cfg.PrivateKey == "" {
		return nil, fmt.Errorf("account_id and private_key must be configured to sign intents")
	}
	wallet, err := signer.NewKeyWallet(cfg.AccountID, cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}
	adapter := signer.NewAdapter(wallet)
	return settlement.New(adapter, newVerifierClient(cfg, log), cfg.VerifierContract, log,
		settlement.WithSettlementTimeout(cfg.SettlementTimeout),
	), nil
}
