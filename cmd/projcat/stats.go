package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"projcat/internal/catalog"
	"projcat/internal/paths"
)

var statsFormat string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	Long:  "Display project counts by kind, total recorded visits, last scan time, and catalog size.",
	Run:   runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) {
	logger := newLogger(statsFormat)
	cfg := mustLoadConfig()

	db := mustOpenExisting(cfg, logger)
	defer db.Close()

	stats, size, err := db.Stats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if statsFormat == "json" {
		printJSON(struct {
			*catalog.Stats
			CatalogSizeBytes int64  `json:"catalogSizeBytes"`
			CatalogPath      string `json:"catalogPath"`
		}{stats, size, db.Path()})
		return
	}

	bold := color.New(color.Bold)
	_, _ = bold.Println("Catalog statistics")
	fmt.Printf("  Projects: %d\n", stats.TotalProjects)
	fmt.Printf("  Visits:   %d\n", stats.TotalVisits)
	if stats.LastScan != nil {
		fmt.Printf("  Last scan: %s\n", stats.LastScan.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("  Catalog:  %s (%d KiB)\n", paths.Display(db.Path()), size/1024)

	if len(stats.ByKind) > 0 {
		fmt.Println("  By kind:")
		kinds := make([]catalog.Kind, 0, len(stats.ByKind))
		for k := range stats.ByKind {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool {
			return stats.ByKind[kinds[i]] > stats.ByKind[kinds[j]]
		})
		for _, k := range kinds {
			fmt.Printf("    %-10s %d\n", k.Label(), stats.ByKind[k])
		}
	}
}
