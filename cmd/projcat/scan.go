package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"projcat/internal/catalog"
	"projcat/internal/paths"
	"projcat/internal/scanner"
)

var (
	scanFormat     string
	scanRulesFile  string
	scanMaxDepth   int
	scanIndicators []string
	scanExclusions []string
)

var scanCmd = &cobra.Command{
	Use:   "scan [roots...]",
	Short: "Scan directory trees for projects",
	Long: `Walk the given roots (or the configured default roots) looking for
directories containing project indicators, and upsert every discovery
into the catalog. Rescanning is idempotent: visit history is preserved.`,
	Run: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFormat, "format", "human", "Output format (json, human)")
	scanCmd.Flags().StringVar(&scanRulesFile, "rules", "", "YAML rules file overriding indicators/exclusions")
	scanCmd.Flags().IntVar(&scanMaxDepth, "max-depth", 0, "Maximum depth below each root (default from config)")
	scanCmd.Flags().StringArrayVar(&scanIndicators, "indicator", nil, "Additional indicator pattern (repeatable)")
	scanCmd.Flags().StringArrayVar(&scanExclusions, "exclude", nil, "Additional exclusion pattern (repeatable)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) {
	logger := newLogger(scanFormat)
	cfg := mustLoadConfig()

	if scanRulesFile != "" {
		if err := cfg.ApplyRulesFile(scanRulesFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Scan.Indicators = append(cfg.Scan.Indicators, scanIndicators...)
	cfg.Scan.Exclusions = append(cfg.Scan.Exclusions, scanExclusions...)
	if scanMaxDepth > 0 {
		cfg.Scan.MaxDepth = scanMaxDepth
	}

	ruleSet, err := cfg.Rules()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	roots := args
	if len(roots) == 0 {
		roots = cfg.Scan.Roots
	}
	expanded := make([]string, len(roots))
	for i, r := range roots {
		e, err := paths.ExpandHome(r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		expanded[i] = e
	}

	db := mustOpenCatalog(cfg, logger)
	defer db.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := func(d catalog.Discovery, now time.Time) error {
		return db.UpsertProject(d, now)
	}

	start := time.Now()
	run, err := scanner.New(ruleSet, logger).Scan(ctx, expanded, sink)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// partial runs (cancelled mid-flight) are still recorded
	if err := db.InsertRun(run); err != nil {
		fmt.Fprintf(os.Stderr, "Error recording scan run: %v\n", err)
		os.Exit(1)
	}

	if scanFormat == "json" {
		printJSON(run)
		return
	}

	bold := color.New(color.Bold)
	_, _ = bold.Printf("Scan %s complete\n", run.RunID)
	fmt.Printf("  Roots:       %s\n", joinDisplay(run.Roots))
	fmt.Printf("  Discovered:  %d projects\n", run.DiscoveredCount)
	fmt.Printf("  Directories: %d scanned, %d pruned, %d skipped\n", run.DirsScanned, run.PrunedCount, run.SkippedCount)
	fmt.Printf("  Took:        %s\n", time.Since(start).Round(time.Millisecond))
}

func joinDisplay(ps []string) string {
	out := ""
	for i, p := range ps {
		if i > 0 {
			out += ", "
		}
		out += paths.Display(p)
	}
	return out
}
