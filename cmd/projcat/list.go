package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"projcat/internal/catalog"
	"projcat/internal/paths"
	"projcat/internal/storage"
)

var (
	listFormat    string
	listKind      string
	listLimit     int
	listMatch     string
	listPathsOnly bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cataloged projects",
	Long:  "List projects ordered by most recently scanned, optionally filtered by kind or a path/name substring.",
	Run:   runList,
}

func init() {
	listCmd.Flags().StringVar(&listFormat, "format", "human", "Output format (json, human)")
	listCmd.Flags().StringVar(&listKind, "kind", "", "Filter by project kind (rust, node, go, ...)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum results (0 = unlimited)")
	listCmd.Flags().StringVar(&listMatch, "match", "", "Filter by path/name substring")
	listCmd.Flags().BoolVar(&listPathsOnly, "paths-only", false, "Print bare paths, one per line")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) {
	logger := newLogger(listFormat)
	cfg := mustLoadConfig()

	db := mustOpenExisting(cfg, logger)
	defer db.Close()

	records, err := db.ListProjects(storage.ListOptions{
		Substring: listMatch,
		Kind:      catalog.Kind(listKind),
		Limit:     listLimit,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if listPathsOnly {
		for _, rec := range records {
			fmt.Println(rec.Path)
		}
		return
	}

	if listFormat == "json" {
		printJSON(records)
		return
	}

	printProjectTable(records)
}

func printProjectTable(records []catalog.ProjectRecord) {
	if len(records) == 0 {
		fmt.Println("No projects cataloged. Run: projcat scan <root>")
		return
	}

	kindColor := color.New(color.FgCyan)
	dim := color.New(color.Faint)
	for _, rec := range records {
		fmt.Printf("%-50s ", paths.Display(rec.Path))
		_, _ = kindColor.Printf("%-8s", rec.Kind)
		if rec.VisitCount > 0 {
			_, _ = dim.Printf(" %d visits", rec.VisitCount)
		}
		fmt.Println()
	}
}
