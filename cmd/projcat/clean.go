package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"projcat/internal/paths"
)

var (
	cleanFormat    string
	cleanOlderThan time.Duration
	cleanDryRun    bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove stale catalog entries",
	Long: `Remove projects whose last_scanned predates the cutoff; typically run
after directories have been deleted or moved. Use --dry-run to preview.`,
	Run: runClean,
}

func init() {
	cleanCmd.Flags().StringVar(&cleanFormat, "format", "human", "Output format (json, human)")
	cleanCmd.Flags().DurationVar(&cleanOlderThan, "older-than", 30*24*time.Hour,
		"Remove entries not seen by a scan within this duration")
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "Report what would be removed without removing")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) {
	logger := newLogger(cleanFormat)
	cfg := mustLoadConfig()

	db := mustOpenExisting(cfg, logger)
	defer db.Close()

	removed, err := db.Prune(time.Now().Add(-cleanOlderThan), cleanDryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cleanFormat == "json" {
		printJSON(struct {
			DryRun  bool     `json:"dryRun"`
			Removed []string `json:"removed"`
		}{cleanDryRun, removed})
		return
	}

	verb := "Removed"
	if cleanDryRun {
		verb = "Would remove"
	}
	fmt.Printf("%s %d stale entries\n", verb, len(removed))
	for _, p := range removed {
		fmt.Printf("  %s\n", paths.Display(p))
	}
}
