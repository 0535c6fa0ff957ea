package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/linkpatrol/linkpatrol/internal/config"
	"github.com/linkpatrol/linkpatrol/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [base-url]",
		Short: "List past scans recorded in the history database",
		Long: `History lists scans recorded in the local history database, newest first.

Each line shows the scan ID, the base URL, when the scan ran, how many
pages were visited, and how many broken links were found. Pass a base
URL to limit the listing to scans of that site.

Examples:
  # List all recorded scans
  linkpatrol history

  # List only scans of one site
  linkpatrol history https://example.com

  # Show the last five scans
  linkpatrol history -n 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 0,
		"Maximum number of scans to list (0 means all)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	var baseURL string
	if len(args) == 1 {
		baseURL = args[0]
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	scans, err := db.ListScans(cmd.Context(), baseURL, limit)
	if err != nil {
		return err
	}

	return printScanTable(cmd.OutOrStdout(), scans)
}

// printScanTable renders scan metadata as an aligned table.
func printScanTable(out io.Writer, scans []database.ScanMetadata) error {
	if len(scans) == 0 {
		_, err := fmt.Fprintln(out, "No scans recorded yet. Run 'linkpatrol scan <base-url>' first.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBASE URL\tDATE\tPAGES\tBROKEN\tSTATUS")
	for _, s := range scans {
		status := "complete"
		if s.Fatal != "" {
			status = "aborted"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\n",
			s.ID,
			s.BaseURL,
			s.StartedAt.Format("2006-01-02 15:04:05"),
			s.PagesVisited,
			s.BrokenCount,
			status,
		)
	}
	return w.Flush()
}
