package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tachyon-hq/intent-engine/pkg/config"
	"github.com/tachyon-hq/intent-engine/pkg/intent"
	"github.com/tachyon-hq/intent-engine/pkg/settlement"
)

var (
	withdrawAsset     string
	withdrawSymbol    string
	withdrawDecimals  int
	withdrawAmount    string
	withdrawFrom      string
	withdrawTo        string
	withdrawRecipient string
	estimateOnly      bool
	withdrawNoConfirm bool
)

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw an asset to a destination chain",
	Long: `Estimate the fee for a withdrawal, then sign, submit, and wait for it
to settle. Use --estimate-only to query the fee without submitting.

Examples:
  intent-engine withdraw --asset usdc.tkn.near --symbol USDC --amount 25 --to ethereum --recipient 0xAbC...
  intent-engine withdraw --asset zec.omft.near --symbol ZEC --decimals 8 --amount 0.5 --to zcash --recipient t1abc... --estimate-only`,
	Run: runWithdraw,
}

func init() {
	rootCmd.AddCommand(withdrawCmd)

	withdrawCmd.Flags().StringVar(&withdrawAsset, "asset", "", "Asset identifier (REQUIRED)")
	withdrawCmd.Flags().StringVar(&withdrawSymbol, "symbol", "", "Asset symbol for display (REQUIRED)")
	withdrawCmd.Flags().IntVar(&withdrawDecimals, "decimals", 6, "Asset decimals")
	withdrawCmd.Flags().StringVar(&withdrawAmount, "amount", "", "Amount to withdraw in human units (REQUIRED)")
	withdrawCmd.Flags().StringVar(&withdrawFrom, "from", "near", "Source chain")
	withdrawCmd.Flags().StringVar(&withdrawTo, "to", "", "Destination chain (REQUIRED)")
	withdrawCmd.Flags().StringVar(&withdrawRecipient, "recipient", "", "Destination address (REQUIRED)")
	withdrawCmd.Flags().BoolVar(&estimateOnly, "estimate-only", false, "Only estimate the fee, do not submit")
	withdrawCmd.Flags().BoolVarP(&withdrawNoConfirm, "yes", "y", false, "Skip confirmation prompt")

	_ = withdrawCmd.MarkFlagRequired("asset")
	_ = withdrawCmd.MarkFlagRequired("symbol")
	_ = withdrawCmd.MarkFlagRequired("amount")
	_ = withdrawCmd.MarkFlagRequired("to")
	_ = withdrawCmd.MarkFlagRequired("recipient")
}

func runWithdraw(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	log := newLogger(cfg, verbose)
	facade, err := newFacade(cfg, log)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	params := settlement.WithdrawalParams{
		AssetID:          withdrawAsset,
		Symbol:           withdrawSymbol,
		Decimals:         withdrawDecimals,
		Amount:           withdrawAmount,
		SourceChain:      withdrawFrom,
		DestinationChain: withdrawTo,
		Recipient:        withdrawRecipient,
		Creator:          cfg.AccountID,
	}

	ctx := context.Background()

	// Always estimate first so the user sees the fee before anything is
	// signed or submitted
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Estimating fee..."
		s.Start()
	}
	estimation, err := facade.EstimateFee(ctx, params)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if estimateOnly {
		if jsonOutput {
			jsonData, _ := json.MarshalIndent(estimation, "", "  ")
			fmt.Println(string(jsonData))
		} else {
			displayEstimation(estimation)
		}
		return
	}

	if !jsonOutput {
		displayEstimation(estimation)
		if !withdrawNoConfirm && !confirmWithdrawal() {
			fmt.Println("\nWithdrawal cancelled.")
			os.Exit(0)
		}
	}

	if !jsonOutput {
		s.Suffix = " Submitting withdrawal and waiting for settlement..."
		s.Start()
	}
	result, err := facade.ProcessWithdrawal(ctx, params)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displayWithdrawalResult(result)
}

func confirmWithdrawal() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nProceed with withdrawal? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

func displayEstimation(e *settlement.FeeEstimation) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                  WITHDRAWAL ESTIMATE")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Amount:   %s %s\n", formatUnits(e.Amount, e.Decimals), color.YellowString(e.Symbol))
	fmt.Printf("  Fee:      %s %s\n", formatUnits(e.Fee, e.Decimals), e.Symbol)
	fmt.Printf("  Received: %s %s\n", color.GreenString(formatUnits(e.ReceivedAmount, e.Decimals)), e.Symbol)

	fmt.Println("\n" + strings.Repeat("=", 60))
}

func displayWithdrawalResult(r *settlement.WithdrawalResult) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                  WITHDRAWAL RESULT")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Intent Hash: %s\n", color.CyanString(r.IntentHash))
	fmt.Printf("  Status:      %s\n", getColoredTxStatus(string(r.IntentTx.Status)))
	if r.IntentTx.TxHash != "" {
		fmt.Printf("  Intent Tx:   %s\n", color.HiBlackString(r.IntentTx.TxHash))
	}
	if r.DestinationTx != nil {
		fmt.Printf("  Destination: %s\n", string(r.DestinationTx.Status))
		if r.DestinationTx.TxHash != "" {
			fmt.Printf("  Dest Tx:     %s\n", color.HiBlackString(r.DestinationTx.TxHash))
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

// formatUnits renders a smallest-unit integer string in human units
func formatUnits(raw string, decimals int) string {
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return raw
	}
	return intent.FormatAmount(v, decimals)
}
