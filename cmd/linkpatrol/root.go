// Package main provides the entry point for the linkpatrol CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for linkpatrol.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkpatrol",
		Short: "Broken link checker for websites",
		Long: `linkpatrol crawls a website breadth-first starting from a base URL,
stays on the starting host, and reports every internal link that is
broken: pages answering 4xx or 5xx, and pages that do not answer at all.

Every scan is recorded in a local history database, so past results can
be listed and compared against each other.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
