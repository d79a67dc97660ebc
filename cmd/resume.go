package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ozgoose/foilopt/internal/store"
)

var resumeCmd = &cobra.Command{
	Use:   "resume [run-id]",
	Short: "Start a new run from a stored optimum",
	Long: `Loads a persisted run record and starts a fresh optimization using
its optimum as the initial guess. The original run's bounds, optimizer
and sweep settings are reused; the new run gets its own record.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	runStore, err := store.NewFSStore(cfg.WorkDir)
	if err != nil {
		return err
	}

	record, err := runStore.LoadRun(args[0])
	if err != nil {
		return err
	}

	// Carry the recorded run settings over the loaded config so the
	// continuation searches the same problem.
	cfg.Thickness = record.Config.Fixed.Thickness
	cfg.Chord = record.Config.Fixed.Chord
	cfg.XLE = record.Config.Fixed.XLE
	cfg.XTEMin = record.Config.XTEMin
	cfg.XTEMax = record.Config.XTEMax
	cfg.SMin = record.Config.SMin
	cfg.SMax = record.Config.SMax
	cfg.Sweep = record.Config.Sweep
	if record.Config.Optimizer != "" {
		cfg.Optimizer = record.Config.Optimizer
	}
	if record.Config.MaxIters > 0 {
		cfg.MaxIters = record.Config.MaxIters
	}

	fmt.Printf("Resuming from run %s at (xTE %.3f, S %.3f)\n", record.ID, record.XTE, record.S)
	return executeRun(cfg, record.XTE, record.S)
}
