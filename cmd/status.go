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
	"github.com/tachyon-hq/intent-engine/pkg/verifier"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status <intent-hash>",
	Short: "Check the settlement status of a submitted intent",
	Long: `Query the verifier for the per-transaction status of an intent by its
submission hash.

Examples:
  intent-engine status 0x1234...abcd
  intent-engine status 0x1234...abcd --watch
  intent-engine status 0x1234...abcd --watch --interval 10`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates continuously")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	intentHash := args[0]
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	log := newLogger(cfg, verbose)
	client := newVerifierClient(cfg, log)

	if watchStatus {
		watchIntentStatus(client, intentHash, jsonOutput)
	} else {
		checkIntentStatus(client, intentHash, jsonOutput)
	}
}

func checkIntentStatus(client verifier.Client, intentHash string, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking intent status..."
		s.Start()
	}

	status, err := client.GetStatus(context.Background(), intentHash)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(status, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayIntentStatus(status, intentHash)
	}
}

func watchIntentStatus(client verifier.Client, intentHash string, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}

	fmt.Printf("\nWatching intent %s\n", color.CyanString(intentHash))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	checkAndDisplayStatus(client, intentHash)

	for range ticker.C {
		checkAndDisplayStatus(client, intentHash)
	}
}

func checkAndDisplayStatus(client verifier.Client, intentHash string) {
	status, err := client.GetStatus(context.Background(), intentHash)
	if err != nil {
		color.Red("Error: %v", err)
		return
	}

	displayIntentStatus(status, intentHash)
}

func displayIntentStatus(status *verifier.TxStatusResult, intentHash string) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                       INTENT STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Intent Hash: %s\n", color.CyanString(intentHash))
	fmt.Printf("  Status:      %s\n", getColoredTxStatus(string(status.Status)))
	if status.TxHash != "" {
		fmt.Printf("  Tx Hash:     %s\n", color.HiBlackString(status.TxHash))
	}
	if status.AccountID != "" {
		fmt.Printf("  Resolver:    %s\n", status.AccountID)
	}
	if status.Error != "" {
		fmt.Printf("  Error:       %s\n", color.RedString(status.Error))
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func getColoredTxStatus(status string) string {
	switch strings.ToUpper(status) {
	case "SETTLED":
		return color.GreenString(status)
	case "PENDING", "TX_BROADCASTED":
		return color.YellowString(status)
	case "NOT_FOUND_OR_NOT_VALID":
		return color.RedString(status)
	default:
		return status
	}
}
