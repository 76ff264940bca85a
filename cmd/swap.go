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
	"github.com/tachyon-hq/intent-engine/pkg/models"
	"github.com/tachyon-hq/intent-engine/pkg/pricefeed"
	"github.com/tachyon-hq/intent-engine/pkg/quotes"
)

var (
	swapFromChain    string
	swapToChain      string
	swapRecipient    string
	swapSourceAsset  string
	swapDestAsset    string
	swapNoConfirm    bool
	swapNoWait       bool
	swapSrcDecimals  int
	swapDestDecimals int
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <source-token> to <dest-token>",
	Short: "Sign and submit a cross-chain swap intent",
	Long: `Quote a swap across the known solver set, build an intent bounded by
the best quote, then sign and submit it. By default the command blocks
until the intent settles.

Examples:
  intent-engine swap 100 USDC to NEAR --source-asset usdc.tkn.near --dest-asset wrap.near --recipient alice.near
  intent-engine swap 0.5 ETH to USDC --from eip155:1 --to near --source-asset eth.omft.near --dest-asset usdc.tkn.near --recipient alice.near --yes`,
	Args: cobra.MinimumNArgs(4),
	Run:  runSwapIntent,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().StringVar(&swapFromChain, "from", "near", "Source chain")
	swapCmd.Flags().StringVar(&swapToChain, "to", "near", "Destination chain")
	swapCmd.Flags().StringVar(&swapRecipient, "recipient", "", "Recipient address (REQUIRED)")
	swapCmd.Flags().StringVar(&swapSourceAsset, "source-asset", "", "Source asset identifier (REQUIRED)")
	swapCmd.Flags().StringVar(&swapDestAsset, "dest-asset", "", "Destination asset identifier (REQUIRED)")
	swapCmd.Flags().IntVar(&swapSrcDecimals, "source-decimals", 6, "Source token decimals")
	swapCmd.Flags().IntVar(&swapDestDecimals, "dest-decimals", 24, "Destination token decimals")
	swapCmd.Flags().BoolVarP(&swapNoConfirm, "yes", "y", false, "Skip confirmation prompt")
	swapCmd.Flags().BoolVar(&swapNoWait, "no-wait", false, "Submit without waiting for settlement")

	_ = swapCmd.MarkFlagRequired("recipient")
	_ = swapCmd.MarkFlagRequired("source-asset")
	_ = swapCmd.MarkFlagRequired("dest-asset")
}

func runSwapIntent(cmd *cobra.Command, args []string) {
	req, err := parseQuoteArgs(args, swapSrcDecimals, swapDestDecimals)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

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

	feed := pricefeed.NewFeed(
		pricefeed.NewHTTPSource(cfg.PriceFeedEndpoint, cfg.RequestTimeout),
		pricefeed.NewPriceCache(cfg.PriceCacheTTL),
		log,
	)
	selector := quotes.NewSelector(feed, nil, log)
	ctx := context.Background()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching quotes..."
		s.Start()
	}
	ranked, err := selector.GetQuotes(ctx, *req)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if len(ranked) == 0 {
		printError(fmt.Errorf("no quotes available for %s to %s", req.SourceSymbol, req.TargetSymbol))
		os.Exit(1)
	}
	best := ranked[0]

	if verbose {
		quoteJSON, _ := json.MarshalIndent(best, "", "  ")
		fmt.Printf("\nBest quote:\n%s\n", string(quoteJSON))
	}

	// The best quote's expected output becomes the destination floor
	msg, err := intent.Build(intent.BuildParams{
		Source: intent.TokenDescriptor{
			Chain:    swapFromChain,
			AssetID:  swapSourceAsset,
			Decimals: swapSrcDecimals,
		},
		Destination: intent.TokenDescriptor{
			Chain:    swapToChain,
			AssetID:  swapDestAsset,
			Decimals: swapDestDecimals,
		},
		Amount:        req.Amount,
		MinDestAmount: intent.FormatAmount(mustBigInt(best.ExpectedAmount), swapDestDecimals),
		Recipient:     swapRecipient,
		Creator:       cfg.AccountID,
		IntentType:    models.IntentTypeSwap,
	})
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if !jsonOutput {
		displaySwapIntent(msg, &best, req)
		if !swapNoConfirm && !confirmSwapIntent() {
			fmt.Println("\nSwap cancelled.")
			os.Exit(0)
		}
	}

	if !jsonOutput {
		s.Suffix = " Signing and submitting intent..."
		s.Start()
	}
	submitted, err := facade.SignAndSubmit(ctx, []models.IntentMessage{*msg})
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if swapNoWait {
		if jsonOutput {
			fmt.Printf("{\"intent_id\": %q, \"intent_hash\": %q}\n", msg.IntentID, submitted.IntentHash)
			return
		}
		color.Green("\nIntent submitted.")
		fmt.Printf("  Intent Hash: %s\n", color.CyanString(submitted.IntentHash))
		fmt.Println("\nYou can monitor settlement using:")
		color.Cyan("  intent-engine status %s\n", submitted.IntentHash)
		return
	}

	if !jsonOutput {
		s.Suffix = " Waiting for settlement..."
		s.Start()
	}
	settled, err := facade.WaitForIntentSettlement(ctx, submitted.IntentHash)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(settled, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Printf("\n  Intent Hash: %s\n", color.CyanString(submitted.IntentHash))
	fmt.Printf("  Status:      %s\n", getColoredTxStatus(string(settled.Status)))
	if settled.TxHash != "" {
		fmt.Printf("  Tx Hash:     %s\n", color.HiBlackString(settled.TxHash))
	}
	fmt.Println()
}

func displaySwapIntent(msg *models.IntentMessage, best *models.Quote, req *quotes.Request) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                      SWAP INTENT")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Intent ID:  %s\n", color.CyanString(msg.IntentID))
	fmt.Printf("  From:       %s %s on %s\n", req.Amount, color.YellowString(req.SourceSymbol), msg.Source.ChainID)
	fmt.Printf("  To:         ~%s %s on %s\n", formatUnits(best.ExpectedAmount, req.TargetDecimals),
		color.YellowString(req.TargetSymbol), msg.Destination.ChainID)
	fmt.Printf("  Solver:     %s (est. %ds)\n", best.Solver, best.EstimatedTimeSeconds)
	fmt.Printf("  Recipient:  %s\n", msg.Destination.RecipientAddress)
	fmt.Printf("  Deadline:   %s\n", time.Unix(msg.Deadline, 0).Format(time.RFC3339))

	fmt.Println("\n" + strings.Repeat("=", 60))
}

func mustBigInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return big.NewInt(0)
	}
	return v
}

func confirmSwapIntent() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nProceed with swap? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
