package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ozgoose/foilopt/internal/report"
	"github.com/ozgoose/foilopt/internal/store"
)

var (
	reportDir      string
	reportFromRuns bool
	reportOut      string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Aggregate results into a scatter plot",
	Long: `Collects (xTE, S, max lift) triples either from the structured run
records in the work directory (the default) or by scanning a directory
of raw polar files, and renders them as a scatter plot.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDir, "dir", "", "Scan this directory of polar files instead of run records")
	reportCmd.Flags().BoolVar(&reportFromRuns, "from-runs", true, "Aggregate from persisted run records")
	reportCmd.Flags().StringVar(&reportOut, "out", "scatter.png", "Output PNG path")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	var ds *report.Dataset

	if reportDir != "" {
		scanned, err := report.ScanPolars(reportDir)
		if err != nil {
			return err
		}
		ds = scanned
	} else {
		runStore, err := store.NewFSStore(cfg.WorkDir)
		if err != nil {
			return err
		}
		records, err := runStore.ListRuns()
		if err != nil {
			return err
		}
		ds = report.FromRecords(records)
	}

	if err := report.Scatter(ds, reportOut); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d results)\n", reportOut, ds.Len())
	return nil
}
