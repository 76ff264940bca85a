package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tachyon-hq/intent-engine/pkg/config"
	"github.com/tachyon-hq/intent-engine/pkg/models"
	"github.com/tachyon-hq/intent-engine/pkg/pricefeed"
	"github.com/tachyon-hq/intent-engine/pkg/quotes"
)

var (
	sourceDecimals int
	targetDecimals int
)

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <source-token> to <dest-token>",
	Short: "Get ranked solver quotes for a token pair",
	Long: `Compute candidate executions for a swap across the known solver set,
ranked by expected output. Quotes are estimates: real solver competition
decides the final output, so do not treat a quote as a commitment.

Examples:
  intent-engine quote 100 USDC to NEAR
  intent-engine quote 0.5 ETH to USDC --source-decimals 18 --dest-decimals 6
  intent-engine quote 100 USDC to NEAR --json`,
	Args: cobra.MinimumNArgs(4),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().IntVar(&sourceDecimals, "source-decimals", 6, "Source token decimals")
	quoteCmd.Flags().IntVar(&targetDecimals, "dest-decimals", 24, "Destination token decimals")
}

func runQuote(cmd *cobra.Command, args []string) {
	req, err := parseQuoteArgs(args, sourceDecimals, targetDecimals)
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
	feed := pricefeed.NewFeed(
		pricefeed.NewHTTPSource(cfg.PriceFeedEndpoint, cfg.RequestTimeout),
		pricefeed.NewPriceCache(cfg.PriceCacheTTL),
		log,
	)
	selector := quotes.NewSelector(feed, nil, log)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching quotes..."
		s.Start()
	}

	result, err := selector.GetQuotes(context.Background(), *req)
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

	displayQuotes(result, req)
}

// parseQuoteArgs parses "amount token to token" word style arguments
func parseQuoteArgs(args []string, srcDecimals, dstDecimals int) (*quotes.Request, error) {
	joined := strings.Join(args, " ")
	parts := strings.Fields(joined)
	if len(parts) != 4 || !strings.EqualFold(parts[2], "to") {
		return nil, fmt.Errorf("expected: quote <amount> <source-token> to <dest-token>, got %q", joined)
	}
	return &quotes.Request{
		Amount:         parts[0],
		SourceSymbol:   strings.ToUpper(parts[1]),
		SourceDecimals: srcDecimals,
		TargetSymbol:   strings.ToUpper(parts[3]),
		TargetDecimals: dstDecimals,
	}, nil
}

func displayQuotes(result []models.Quote, req *quotes.Request) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                        SOLVER QUOTES")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Pair:    %s %s to %s\n", req.Amount,
		color.YellowString(req.SourceSymbol), color.YellowString(req.TargetSymbol))

	for i, q := range result {
		marker := "  "
		if i == 0 {
			marker = color.GreenString("* ")
		}
		fmt.Printf("\n%s%s\n", marker, color.CyanString(q.Solver))
		fmt.Printf("    Expected:     %s (smallest units)\n", q.ExpectedAmount)
		fmt.Printf("    Fee:          %s (~$%.4f)\n", q.Fee, q.FeeUsd)
		fmt.Printf("    Price Impact: %.4f%%\n", q.PriceImpactPercent)
		fmt.Printf("    Est. Time:    %ds\n", q.EstimatedTimeSeconds)
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}
