package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ozgoose/foilopt/internal/config"
	"github.com/ozgoose/foilopt/internal/fit"
	"github.com/ozgoose/foilopt/internal/opt"
	"github.com/ozgoose/foilopt/internal/store"
	"github.com/ozgoose/foilopt/internal/xfoil"
)

var (
	optXTE0      float64
	optS0        float64
	optXTEMin    float64
	optXTEMax    float64
	optSMin      float64
	optSMax      float64
	optName      string
	optMaxIters  int
	optSeed      int64
	optWorkDir   string
	optSolverBin string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run one lift optimization",
	Long: `Searches the free shape parameters (trailing edge length and shape
factor) for maximum lift coefficient at the configured operating point,
and persists the run record and evaluation trace under the work directory.`,
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().Float64Var(&optXTE0, "xte0", 0, "Initial trailing edge length (default from config)")
	optimizeCmd.Flags().Float64Var(&optS0, "s0", 0, "Initial shape factor (default from config)")
	optimizeCmd.Flags().Float64Var(&optXTEMin, "xte-min", 0, "Lower trailing edge bound")
	optimizeCmd.Flags().Float64Var(&optXTEMax, "xte-max", 0, "Upper trailing edge bound")
	optimizeCmd.Flags().Float64Var(&optSMin, "s-min", 0, "Lower shape factor bound")
	optimizeCmd.Flags().Float64Var(&optSMax, "s-max", 0, "Upper shape factor bound")
	optimizeCmd.Flags().StringVar(&optName, "optimizer", "", "Optimizer: lbfgs or mayfly (default from config)")
	optimizeCmd.Flags().IntVar(&optMaxIters, "iters", 0, "Max optimizer iterations")
	optimizeCmd.Flags().Int64Var(&optSeed, "seed", 0, "Random seed for stochastic optimizers")
	optimizeCmd.Flags().StringVar(&optWorkDir, "work-dir", "", "Work directory for artifacts and records")
	optimizeCmd.Flags().StringVar(&optSolverBin, "xfoil", "", "XFOIL binary path")

	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	applyOptimizeFlags(cmd, cfg)
	return executeRun(cfg, cfg.XTE0, cfg.S0)
}

// applyOptimizeFlags folds explicitly set flags over the loaded config.
func applyOptimizeFlags(cmd *cobra.Command, c *config.Config) {
	if cmd.Flags().Changed("xte0") {
		c.XTE0 = optXTE0
	}
	if cmd.Flags().Changed("s0") {
		c.S0 = optS0
	}
	if cmd.Flags().Changed("xte-min") {
		c.XTEMin = optXTEMin
	}
	if cmd.Flags().Changed("xte-max") {
		c.XTEMax = optXTEMax
	}
	if cmd.Flags().Changed("s-min") {
		c.SMin = optSMin
	}
	if cmd.Flags().Changed("s-max") {
		c.SMax = optSMax
	}
	if cmd.Flags().Changed("optimizer") {
		c.Optimizer = optName
	}
	if cmd.Flags().Changed("iters") {
		c.MaxIters = optMaxIters
	}
	if cmd.Flags().Changed("seed") {
		c.Seed = optSeed
	}
	if cmd.Flags().Changed("work-dir") {
		c.WorkDir = optWorkDir
	}
	if cmd.Flags().Changed("xfoil") {
		c.SolverPath = optSolverBin
	}
}

// executeRun drives one full optimization from the given starting point
// and persists the outcome. Shared by optimize and resume.
func executeRun(c *config.Config, xte0, s0 float64) error {
	driver := xfoil.NewDriver(c.SolverPath)
	driver.Sweep = c.Sweep
	if c.SolverTimeoutSec > 0 {
		driver.Timeout = time.Duration(c.SolverTimeoutSec) * time.Second
	}

	evaluator := &fit.Evaluator{
		Fixed: fit.FixedParams{
			Thickness: c.Thickness,
			Chord:     c.Chord,
			XLE:       c.XLE,
		},
		Solver:        driver,
		WorkDir:       c.WorkDir,
		RoundDecimals: c.RoundDecimals,
	}

	optimizer, err := opt.New(c.Optimizer, c.MaxIters, c.FDStep, c.Seed)
	if err != nil {
		return err
	}

	runStore, err := store.NewFSStore(c.WorkDir)
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	trace, err := store.NewTraceWriter(c.WorkDir, runID)
	if err != nil {
		return err
	}
	defer trace.Close()

	onProgress := func(p fit.Progress) {
		if err := trace.Write(p); err != nil {
			slog.Warn("Failed to write trace entry", "runID", runID, "error", err)
		}
	}

	bounds := fit.Bounds{XTEMin: c.XTEMin, XTEMax: c.XTEMax, SMin: c.SMin, SMax: c.SMax}
	result, err := fit.Optimize(context.Background(), evaluator, optimizer, bounds, xte0, s0, onProgress)
	if err != nil {
		return err
	}

	record := store.NewRunRecord(runID, result, store.RunConfig{
		Fixed:     evaluator.Fixed,
		XTE0:      xte0,
		S0:        s0,
		XTEMin:    bounds.XTEMin,
		XTEMax:    bounds.XTEMax,
		SMin:      bounds.SMin,
		SMax:      bounds.SMax,
		Optimizer: c.Optimizer,
		MaxIters:  c.MaxIters,
		Sweep:     driver.Sweep,
	})
	if err := runStore.SaveRun(record); err != nil {
		return fmt.Errorf("failed to persist run record: %w", err)
	}

	fmt.Printf("Run %s complete: Cl_max %.4f at alpha %.2f deg\n", runID, result.MaxLift, result.Alpha)
	fmt.Printf("  geometry %s (xTE %.3f, S %.3f)\n", result.GeometryID, result.XTE, result.S)
	fmt.Printf("  %d evaluations (%d failed) in %s\n", result.Evals, result.Failures, result.Elapsed.Round(time.Millisecond))
	return nil
}
