package main

import (
	"github.com/spf13/cobra"

	"projcat/internal/version"
)

var (
	// dbFlag is the CLI --db flag value
	dbFlag string
)

var rootCmd = &cobra.Command{
	Use:   "projcat",
	Short: "projcat - project catalog and jumper",
	Long: `projcat scans directory trees for project roots (git repos, Cargo crates,
npm packages, Go modules, ...), keeps them in a persistent catalog, and
ranks them by fuzzy match and visit frecency so you can jump to any
project from your shell.`,
	Version: version.Info(),
}

func init() {
	rootCmd.SetVersionTemplate("projcat version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "",
		"Catalog database path (default: PROJCAT_DB or ~/.projcat/catalog.db)")
}
