package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"projcat/internal/logging"
	"projcat/internal/shell"
)

var jumpCmd = &cobra.Command{
	Use:   "jump <query>",
	Short: "Print the best-matching project path",
	Long: `Resolve a fuzzy query to the single best-matching cataloged path, record
a visit for it, and print the bare path on stdout. Intended to be wrapped
by the pj shell function: pj() { cd "$(projcat jump "$1")"; }`,
	Args: cobra.ExactArgs(1),
	Run:  runJump,
}

func init() {
	rootCmd.AddCommand(jumpCmd)
}

func runJump(cmd *cobra.Command, args []string) {
	// stdout must stay a bare path for cd, so logs are suppressed
	logger := logging.Discard()
	cfg := mustLoadConfig()

	db := mustOpenExisting(cfg, logger)
	defer db.Close()

	dest, err := shell.New(db, logger).Resolve(args[0], time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "projcat: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(dest)
}
