package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tachyon-hq/intent-engine/pkg/circuitbreaker"
	"github.com/tachyon-hq/intent-engine/pkg/config"
	"github.com/tachyon-hq/intent-engine/pkg/models"
	"github.com/tachyon-hq/intent-engine/pkg/tracking"
)

var (
	trackHash     string
	trackDeadline int64
	listOnly      bool
)

var trackCmd = &cobra.Command{
	Use:   "track [intent-id]",
	Short: "Track intent settlement in the background",
	Long: `Run the settlement tracker. With no arguments it resumes every
non-terminal intent from the last saved snapshot, polls them until they
settle, and serves health and metrics endpoints. With an intent ID and
--hash it additionally tracks that intent.

The tracked view is saved on shutdown and restored on the next run.

Examples:
  intent-engine track
  intent-engine track 4f1c... --hash 0xabc...
  intent-engine track --list`,
	Args: cobra.MaximumNArgs(1),
	Run:  runTrack,
}

func init() {
	rootCmd.AddCommand(trackCmd)

	trackCmd.Flags().StringVar(&trackHash, "hash", "", "Submission hash of the intent to track")
	trackCmd.Flags().Int64Var(&trackDeadline, "deadline", 0, "Intent deadline as a unix timestamp")
	trackCmd.Flags().BoolVar(&listOnly, "list", false, "Print the saved snapshot and exit")
}

func runTrack(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	snapshotPath, err := tracking.SnapshotPath()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	entries, err := tracking.LoadSnapshot(snapshotPath, cfg.AccountID)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if listOnly {
		displaySnapshot(entries, jsonOutput)
		return
	}

	log := newLogger(cfg, verbose)
	breaker := circuitbreaker.New(
		cfg.Breaker.Enabled,
		cfg.Breaker.Threshold,
		cfg.Breaker.Window,
		cfg.Breaker.ResetTimeout,
		log,
	)
	store := tracking.NewStore(
		newVerifierClient(cfg, log),
		newIndexerClient(cfg, log),
		breaker,
		cfg.PollingInterval,
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, entry := range entries {
		store.Resume(ctx, entry)
	}
	if len(args) == 1 {
		if trackHash == "" {
			printError(fmt.Errorf("--hash is required when tracking a specific intent"))
			os.Exit(1)
		}
		store.Track(ctx, &models.IntentMessage{IntentID: args[0], Deadline: trackDeadline}, trackHash)
	}

	healthServer := newHealthServer(cfg, store, breaker)
	go healthServer.Start()

	if !jsonOutput {
		fmt.Printf("\nTracking %d intents. Press Ctrl+C to stop.\n", len(store.GetTrackedIntents()))
		fmt.Printf("Health and metrics on port %s.\n\n", cfg.MetricsPort)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	store.StopAll()
	cancel()

	if err := store.SaveSnapshot(snapshotPath, cfg.AccountID); err != nil {
		printError(err)
		os.Exit(1)
	}
	if !jsonOutput {
		fmt.Printf("\nSaved tracked view to %s\n", snapshotPath)
	}
}

func displaySnapshot(entries []tracking.SnapshotEntry, jsonOutput bool) {
	if jsonOutput {
		statuses := make([]models.IntentStatus, 0, len(entries))
		for _, entry := range entries {
			statuses = append(statuses, entry.Status)
		}
		jsonData, _ := json.MarshalIndent(statuses, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if len(entries) == 0 {
		fmt.Println("\nNo tracked intents.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                      TRACKED INTENTS")
	fmt.Println(strings.Repeat("=", 70))

	for _, entry := range entries {
		st := entry.Status
		fmt.Printf("\n  %s\n", color.CyanString(st.IntentID))
		fmt.Printf("    State:   %s\n", getColoredIntentState(st.State))
		if st.IntentHash != "" {
			fmt.Printf("    Hash:    %s\n", color.HiBlackString(st.IntentHash))
		}
		if st.ResolverID != "" {
			fmt.Printf("    Resolver: %s\n", st.ResolverID)
		}
		if st.Error != "" {
			fmt.Printf("    Error:   %s\n", color.RedString(st.Error))
		}
		fmt.Printf("    Updated: %s\n", st.UpdatedAt.Format(time.RFC3339))
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func getColoredIntentState(state models.IntentState) string {
	switch state {
	case models.IntentStateCompleted:
		return color.GreenString(string(state))
	case models.IntentStateFailed, models.IntentStateExpired:
		return color.RedString(string(state))
	default:
		return color.YellowString(string(state))
	}
}
