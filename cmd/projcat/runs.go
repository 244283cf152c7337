package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	runsFormat string
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent scan runs",
	Long:  "List recent scan invocations with their roots and aggregate counts, newest first.",
	Run:   runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsFormat, "format", "human", "Output format (json, human)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "Maximum runs to show")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) {
	logger := newLogger(runsFormat)
	cfg := mustLoadConfig()

	db := mustOpenExisting(cfg, logger)
	defer db.Close()

	runs, err := db.RecentRuns(runsLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if runsFormat == "json" {
		printJSON(runs)
		return
	}

	if len(runs) == 0 {
		fmt.Println("No scans recorded yet.")
		return
	}

	for _, run := range runs {
		fmt.Printf("%s  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.RunID)
		fmt.Printf("  roots: %s\n", joinDisplay(run.Roots))
		fmt.Printf("  found %d, scanned %d dirs, pruned %d, skipped %d, took %s\n",
			run.DiscoveredCount, run.DirsScanned, run.PrunedCount, run.SkippedCount,
			run.FinishedAt.Sub(run.StartedAt).Round(10*time.Millisecond))
	}
}
