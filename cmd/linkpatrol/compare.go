package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/linkpatrol/linkpatrol/internal/config"
	"github.com/linkpatrol/linkpatrol/internal/database"
	"github.com/linkpatrol/linkpatrol/internal/model"
)

// NewCompareCmd creates the compare command.
// It diffs the broken links of two stored scans.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <old-scan-id> <new-scan-id>",
		Short: "Compare the broken links of two recorded scans",
		Long: `Compare diffs the broken links of two scans from the history database.

The output groups links into three sections:
- Newly broken: broken in the new scan but not in the old one
- Fixed: broken in the old scan but fine in the new one
- Still broken: broken in both scans

Use 'linkpatrol history' to find scan IDs.

Examples:
  # Compare scan 3 against scan 7
  linkpatrol compare 3 7`,
		Args: cobra.ExactArgs(2),
		RunE: runCompareCmd,
	}

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	oldID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid scan ID %q: %w", args[0], err)
	}
	newID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid scan ID %q: %w", args[1], err)
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return runComparison(cmd, db, oldID, newID)
}

// runComparison loads both scans and prints the broken link diff.
func runComparison(cmd *cobra.Command, db *database.CrawlDB, oldID, newID int64) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	oldScan, oldBroken, err := loadScan(ctx, db, oldID)
	if err != nil {
		return err
	}
	newScan, newBroken, err := loadScan(ctx, db, newID)
	if err != nil {
		return err
	}

	if oldScan.BaseURL != newScan.BaseURL {
		fmt.Fprintf(cmd.OutOrStdout(),
			"Warning: comparing scans of different sites (%s vs %s)\n\n",
			oldScan.BaseURL, newScan.BaseURL)
	}

	oldSet := brokenSet(oldBroken)
	newSet := brokenSet(newBroken)

	var newlyBroken, stillBroken []model.Outcome
	for _, o := range newBroken {
		if _, ok := oldSet[o.Target]; ok {
			stillBroken = append(stillBroken, o)
		} else {
			newlyBroken = append(newlyBroken, o)
		}
	}
	var fixed []model.Outcome
	for _, o := range oldBroken {
		if _, ok := newSet[o.Target]; !ok {
			fixed = append(fixed, o)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Comparing scan %d (%s) with scan %d (%s)\n\n",
		oldID, oldScan.StartedAt.Format("2006-01-02 15:04:05"),
		newID, newScan.StartedAt.Format("2006-01-02 15:04:05"))

	printSection(out, "Newly broken", newlyBroken)
	printSection(out, "Fixed", fixed)
	printSection(out, "Still broken", stillBroken)

	fmt.Fprintf(out, "Summary: %d newly broken, %d fixed, %d still broken\n",
		len(newlyBroken), len(fixed), len(stillBroken))

	return nil
}

// loadScan fetches a scan's metadata and broken links, erroring on
// unknown IDs.
func loadScan(ctx context.Context, db *database.CrawlDB, id int64) (*database.ScanMetadata, []model.Outcome, error) {
	meta, err := db.GetScan(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if meta == nil {
		return nil, nil, fmt.Errorf("scan %d not found (use 'linkpatrol history' to list scans)", id)
	}

	broken, err := db.BrokenLinks(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return meta, broken, nil
}

// brokenSet indexes broken outcomes by target URL.
func brokenSet(outcomes []model.Outcome) map[string]model.Outcome {
	set := make(map[string]model.Outcome, len(outcomes))
	for _, o := range outcomes {
		set[o.Target] = o
	}
	return set
}

// printSection prints one diff section with its outcome lines.
func printSection(out io.Writer, title string, outcomes []model.Outcome) {
	fmt.Fprintf(out, "%s (%d):\n", title, len(outcomes))
	if len(outcomes) == 0 {
		fmt.Fprintln(out, "  none")
	}
	for _, o := range outcomes {
		if o.Referrer != "" {
			fmt.Fprintf(out, "  [%s] %s (linked from: %s)\n", o.StatusLabel(), o.Target, o.Referrer)
		} else {
			fmt.Fprintf(out, "  [%s] %s\n", o.StatusLabel(), o.Target)
		}
	}
	fmt.Fprintln(out)
}
