package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"projcat/internal/shell"
)

var hookCmd = &cobra.Command{
	Use:   "init <shell>",
	Short: "Print shell integration",
	Long: `Print the integration snippet for bash, zsh, or fish. Add to your rc file:

  eval "$(projcat init bash)"

This defines the pj jump function and records a visit on every directory
change.`,
	Args: cobra.ExactArgs(1),
	Run:  runHook,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

func runHook(cmd *cobra.Command, args []string) {
	script, err := shell.HookScript(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(script)
}
