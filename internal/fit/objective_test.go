package fit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ozgoose/foilopt/internal/foil"
)

// liftSolver emulates the external solver: it decodes the free parameters
// from the coordinate file name and writes a polar whose peak lift is a
// smooth function of them, maximal at (xTE, S) = (2.1, 0.8).
type liftSolver struct {
	runs []string
}

func (s *liftSolver) Run(_ context.Context, datPath, polarPath string) error {
	s.runs = append(s.runs, filepath.Base(datPath))

	_, xTE, sf, err := foil.ParseName(datPath)
	if err != nil {
		return err
	}
	peak := 1.2 - 8*(xTE-2.1)*(xTE-2.1) - 20*(sf-0.8)*(sf-0.8)

	var b strings.Builder
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&b, "header %d\n", i+1)
	}
	fmt.Fprintf(&b, "  0.000  %.4f  0.00900\n", peak-0.5)
	fmt.Fprintf(&b, "  4.000  %.4f  0.01100\n", peak)
	fmt.Fprintf(&b, "  6.000  %.4f  0.01300\n", peak-0.1)

	return os.WriteFile(polarPath, []byte(b.String()), 0644)
}

// failingSolver always reports an invocation failure.
type failingSolver struct{}

func (failingSolver) Run(context.Context, string, string) error {
	return errors.New("solver exploded")
}

func newEvaluator(t *testing.T, solver interface {
	Run(context.Context, string, string) error
}) *Evaluator {
	t.Helper()
	return &Evaluator{
		Fixed:         FixedParams{Thickness: 22, Chord: 235, XLE: 2.468},
		Solver:        solver,
		WorkDir:       t.TempDir(),
		RoundDecimals: 3,
	}
}

func TestEvaluateRounding(t *testing.T) {
	solver := &liftSolver{}
	ev := newEvaluator(t, solver)

	// Jittered optimizer probes must collapse onto the rounded identity
	// before naming and generation.
	e1, err := ev.Evaluate(context.Background(), 2.1234567, 0.8001)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	e2, err := ev.Evaluate(context.Background(), 2.123, 0.800)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if e1.GeometryID != "p_2.468_2.123_0.8" {
		t.Errorf("GeometryID = %q, want rounded identity", e1.GeometryID)
	}
	if e1.GeometryID != e2.GeometryID {
		t.Errorf("Identities differ: %q vs %q", e1.GeometryID, e2.GeometryID)
	}

	// The solver saw the rounded geometry both times.
	for _, run := range solver.runs {
		if run != "p_2.468_2.123_0.8.dat" {
			t.Errorf("Solver invoked with %q, want rounded name", run)
		}
	}
}

func TestEvaluateNegatesLift(t *testing.T) {
	ev := newEvaluator(t, &liftSolver{})

	e, err := ev.Evaluate(context.Background(), 2.1, 0.8)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if e.MaxLift <= 0 {
		t.Fatalf("MaxLift = %g, want positive", e.MaxLift)
	}
	if e.Objective != -e.MaxLift {
		t.Errorf("Objective = %g, want %g", e.Objective, -e.MaxLift)
	}
	if e.Alpha != 4.0 {
		t.Errorf("Alpha = %g, want 4.0 (sweep peak)", e.Alpha)
	}
}

func TestEvaluateInstallsArtifacts(t *testing.T) {
	ev := newEvaluator(t, &liftSolver{})

	e, err := ev.Evaluate(context.Background(), 2.1, 0.8)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	for _, path := range []string{e.DatPath, e.PolarPath} {
		if filepath.Dir(path) != ev.WorkDir {
			t.Errorf("Artifact %q not installed in work dir", path)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Artifact missing: %v", err)
		}
	}

	// Session scratch directories are cleaned up.
	entries, err := os.ReadDir(filepath.Join(ev.WorkDir, "sessions"))
	if err == nil && len(entries) != 0 {
		t.Errorf("Expected no leftover sessions, found %d", len(entries))
	}
}

func TestEvaluateDegenerateFailsBeforeIO(t *testing.T) {
	solver := &liftSolver{}
	ev := newEvaluator(t, solver)

	// xTE*thickness >= chord - xLE*thickness: plateau inverted.
	_, err := ev.Evaluate(context.Background(), 9, 0.8)
	if err == nil {
		t.Fatal("Expected degeneracy error")
	}
	if !errors.Is(err, foil.ErrDegenerate) {
		t.Errorf("Expected DegeneracyError, got %T: %v", err, err)
	}

	if len(solver.runs) != 0 {
		t.Error("Solver must not run for degenerate parameters")
	}
	entries, err := os.ReadDir(ev.WorkDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("No file may be written for degenerate parameters, found %d entries", len(entries))
	}
}

func TestEvaluateSolverFailure(t *testing.T) {
	ev := newEvaluator(t, failingSolver{})

	if _, err := ev.Evaluate(context.Background(), 2.1, 0.8); err == nil {
		t.Error("Expected solver failure to surface")
	}
}
