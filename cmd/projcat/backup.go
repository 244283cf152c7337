package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup <file>",
	Short: "Write a compressed catalog snapshot",
	Long:  "Dump the catalog to a gzip-compressed SQL snapshot that restore can replay.",
	Args:  cobra.ExactArgs(1),
	Run:   runBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore the catalog from a snapshot",
	Long: `Replace the catalog contents with a snapshot written by backup. The
replacement is transactional: a failed restore leaves the catalog as it was.`,
	Args: cobra.ExactArgs(1),
	Run:  runRestore,
}

func init() {
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}

func runBackup(cmd *cobra.Command, args []string) {
	logger := newLogger("human")
	cfg := mustLoadConfig()

	db := mustOpenExisting(cfg, logger)
	defer db.Close()

	f, err := os.Create(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating backup file: %v\n", err)
		os.Exit(1)
	}

	if err := db.Dump(f); err != nil {
		f.Close()
		_ = os.Remove(args[0])
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Catalog backed up to %s\n", args[0])
}

func runRestore(cmd *cobra.Command, args []string) {
	logger := newLogger("human")
	cfg := mustLoadConfig()

	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening backup file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	db := mustOpenCatalog(cfg, logger)
	defer db.Close()

	if err := db.Restore(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Catalog restored from %s\n", args[0])
}
