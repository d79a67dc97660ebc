package xfoil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Solver runs the external flow solver against a coordinate file and
// accumulates a polar at polarPath. Implementations must remove any stale
// polar at that path before invoking the solver.
type Solver interface {
	Run(ctx context.Context, datPath, polarPath string) error
}

// Driver invokes the XFOIL binary as a blocking subprocess with a bounded
// wait. One Driver may serve many evaluations; each Run call keeps its
// scratch transcript next to the coordinate file it was given, so callers
// that need reentrancy hand every evaluation its own directory.
type Driver struct {
	// Binary is the solver executable path or name (resolved via PATH).
	Binary string

	// Sweep fixes the operating point written into every transcript.
	Sweep SweepSettings

	// Timeout bounds one solver invocation. Zero means no deadline.
	Timeout time.Duration
}

// NewDriver returns a Driver with the default sweep and a 2 minute
// per-invocation deadline.
func NewDriver(binary string) *Driver {
	return &Driver{
		Binary:  binary,
		Sweep:   DefaultSweep(),
		Timeout: 2 * time.Minute,
	}
}

// Run executes one polar accumulation. Any pre-existing polar at polarPath
// is deleted first so a diverged or partial re-run can never mix old and
// new sweep data. The solver's own console output is discarded; absence or
// corruption of the polar is detected by the parser, not here.
func (d *Driver) Run(ctx context.Context, datPath, polarPath string) error {
	// Stale-data invariant: delete before invocation, never detect after.
	if err := os.Remove(polarPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale polar %s: %w", polarPath, err)
	}

	transcriptPath := filepath.Join(filepath.Dir(datPath), "xfoil_input.txt")
	transcript := Transcript(datPath, polarPath, d.Sweep)
	if err := os.WriteFile(transcriptPath, []byte(transcript), 0644); err != nil {
		return fmt.Errorf("failed to write solver transcript: %w", err)
	}

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	in, err := os.Open(transcriptPath)
	if err != nil {
		return fmt.Errorf("failed to open solver transcript: %w", err)
	}
	defer in.Close()

	cmd := exec.CommandContext(ctx, d.Binary)
	cmd.Stdin = in
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start)

	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("solver exceeded %s deadline: %w", d.Timeout, ctx.Err())
	}
	if err != nil {
		return fmt.Errorf("solver invocation failed: %w", err)
	}

	slog.Debug("Solver run complete", "dat", datPath, "polar", polarPath, "elapsed", elapsed)
	return nil
}
