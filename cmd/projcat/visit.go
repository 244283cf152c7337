package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"projcat/internal/cerrors"
	"projcat/internal/logging"
	"projcat/internal/shell"
)

var visitCmd = &cobra.Command{
	Use:   "visit <path>",
	Short: "Record a visit to a cataloged project",
	Long: `Increment the visit counter for a path. Uncataloged paths are silently
ignored: shell hooks call this on every directory change and must never
produce noise.`,
	Args: cobra.ExactArgs(1),
	Run:  runVisit,
}

func init() {
	rootCmd.AddCommand(visitCmd)
}

func runVisit(cmd *cobra.Command, args []string) {
	logger := logging.Discard()
	cfg := mustLoadConfig()

	path, err := cfg.ResolveCatalogPath(dbFlag)
	if err != nil {
		os.Exit(0) // nothing to track
	}

	db, err := openQuiet(path, logger)
	if err != nil {
		// a missing catalog is not an error for a hook
		if cerrors.IsCode(err, cerrors.CatalogMissing) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "projcat: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := shell.New(db, logger).RecordVisit(args[0], time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "projcat: %v\n", err)
		os.Exit(1)
	}
}
