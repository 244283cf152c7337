package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"projcat/internal/paths"
	"projcat/internal/rank"
)

var (
	searchFormat string
	searchLimit  int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy-search the catalog",
	Long: `Rank cataloged projects against a fuzzy query. Every character of the
query must appear in order somewhere in the project path; results are
ordered by match quality combined with visit frecency.`,
	Args: cobra.ExactArgs(1),
	Run:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchFormat, "format", "human", "Output format (json, human)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum results (default from config)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	logger := newLogger(searchFormat)
	cfg := mustLoadConfig()

	db := mustOpenExisting(cfg, logger)
	defer db.Close()

	candidates, err := db.AllProjects()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	scored := rank.Search(args[0], candidates, time.Now())
	limit := searchLimit
	if limit <= 0 {
		limit = cfg.Search.Limit
	}
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	if searchFormat == "json" {
		type hit struct {
			Path  string  `json:"path"`
			Kind  string  `json:"kind"`
			Score float64 `json:"score"`
		}
		hits := make([]hit, len(scored))
		for i, s := range scored {
			hits[i] = hit{Path: s.Record.Path, Kind: string(s.Record.Kind), Score: s.Score}
		}
		printJSON(hits)
		return
	}

	if len(scored) == 0 {
		fmt.Println("No matches.")
		return
	}

	kindColor := color.New(color.FgCyan)
	for _, s := range scored {
		fmt.Printf("%-50s ", paths.Display(s.Record.Path))
		_, _ = kindColor.Printf("%-8s", s.Record.Kind)
		fmt.Printf(" %.1f\n", s.Score)
	}
}
