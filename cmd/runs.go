package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ozgoose/foilopt/internal/store"
)

var (
	runsDataDir   string
	keepLast      int
	olderThanDays int
	forceClean    bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage persisted optimization runs",
	Long: `Manage the run records and traces stored in the work directory,
including listing past runs and cleaning old ones.`,
}

var listRunsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all persisted runs",
	RunE:  runListRuns,
}

var cleanRunsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean old runs",
	Long: `Delete old run records based on a retention policy: keep only the
last N runs, or delete runs older than N days.`,
	RunE: runCleanRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(listRunsCmd)
	runsCmd.AddCommand(cleanRunsCmd)

	runsCmd.PersistentFlags().StringVar(&runsDataDir, "data-dir", "", "Run storage directory (default: work directory)")

	cleanRunsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the last N runs (0 = keep all)")
	cleanRunsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete runs older than N days (0 = no age limit)")
	cleanRunsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func runsStoreDir() string {
	if runsDataDir != "" {
		return runsDataDir
	}
	return cfg.WorkDir
}

func runListRuns(cmd *cobra.Command, args []string) error {
	runStore, err := store.NewFSStore(runsStoreDir())
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}

	records, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tTIMESTAMP\tGEOMETRY\tCL MAX\tALPHA\tEVALS\tSIZE")
	fmt.Fprintln(w, "------\t---------\t--------\t------\t-----\t-----\t----")

	for _, r := range records {
		size, err := getDirSize(filepath.Join(runsStoreDir(), "runs", r.ID))
		sizeStr := "unknown"
		if err == nil {
			sizeStr = formatBytes(size)
		}

		displayID := r.ID
		if len(displayID) > 12 {
			displayID = displayID[:12] + "..."
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\t%.2f\t%d\t%s\n",
			displayID,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.GeometryID,
			r.MaxLift,
			r.Alpha,
			r.Evals,
			sizeStr,
		)
	}
	w.Flush()

	fmt.Printf("\nTotal runs: %d\n", len(records))
	return nil
}

func runCleanRuns(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	runStore, err := store.NewFSStore(runsStoreDir())
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}

	records, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No runs to clean.")
		return nil
	}

	toDelete := selectRunsForDeletion(records, keepLast, olderThanDays)
	if len(toDelete) == 0 {
		fmt.Println("No runs match deletion criteria.")
		return nil
	}

	fmt.Printf("Found %d run(s) to delete:\n", len(toDelete))
	for _, r := range toDelete {
		displayID := r.ID
		if len(displayID) > 12 {
			displayID = displayID[:12] + "..."
		}
		fmt.Printf("  - %s (%s, Cl_max %.4f)\n",
			displayID, r.Timestamp.Format("2006-01-02 15:04:05"), r.MaxLift)
	}

	if !forceClean {
		fmt.Print("\nProceed with deletion? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	deleted := 0
	failed := 0
	for _, r := range toDelete {
		if err := runStore.DeleteRun(r.ID); err != nil {
			slog.Error("Failed to delete run", "runID", r.ID, "error", err)
			failed++
		} else {
			slog.Info("Deleted run", "runID", r.ID)
			deleted++
		}
	}

	fmt.Printf("\nDeleted %d run(s), %d failed.\n", deleted, failed)
	return nil
}

// selectRunsForDeletion applies the retention policy: age-based deletion
// first, then count-based trimming of the oldest remaining runs.
func selectRunsForDeletion(records []*store.RunRecord, keepLast, olderThanDays int) []*store.RunRecord {
	var toDelete []*store.RunRecord
	selected := make(map[string]bool)

	if olderThanDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -olderThanDays)
		for _, r := range records {
			if r.Timestamp.Before(cutoff) {
				toDelete = append(toDelete, r)
				selected[r.ID] = true
			}
		}
	}

	if keepLast > 0 && len(records) > keepLast {
		sorted := make([]*store.RunRecord, len(records))
		copy(sorted, records)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		})

		for _, r := range sorted[:len(sorted)-keepLast] {
			if !selected[r.ID] {
				toDelete = append(toDelete, r)
				selected[r.ID] = true
			}
		}
	}

	return toDelete
}

// getDirSize calculates the total size of a directory.
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
