package fit

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ozgoose/foilopt/internal/opt"
)

// Bounds is the search box for the free parameters.
type Bounds struct {
	XTEMin, XTEMax float64
	SMin, SMax     float64
}

// Progress reports one objective evaluation inside the optimization loop.
// Best and the best point always refer to an evaluation that actually
// happened, never to an initial placeholder.
type Progress struct {
	Evaluation int       `json:"evaluation"`
	XTE        float64   `json:"xTE"`
	S          float64   `json:"s"`
	Objective  float64   `json:"objective"`
	Best       float64   `json:"best"`
	BestXTE    float64   `json:"bestXTE"`
	BestS      float64   `json:"bestS"`
	Failed     bool      `json:"failed,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Result is the outcome of one optimization run.
type Result struct {
	XTE        float64       `json:"xTE"`
	S          float64       `json:"s"`
	MaxLift    float64       `json:"maxLift"`
	Alpha      float64       `json:"alpha"`
	GeometryID string        `json:"geometryId"`
	Evals      int           `json:"evals"`
	Failures   int           `json:"failures"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Optimize minimizes the negated-lift objective over the box, then
// re-evaluates once at the reported optimum to recover the outputs the
// scalar search discards (angle of attack, geometry identity). The second
// evaluation is a full extra solver run, accepted as a design cost.
//
// Solver or parse failures inside the loop feed the optimizer a
// conservative 0 objective instead of aborting the search; only failures
// at the final re-evaluation are fatal. onProgress, when non-nil, is
// called after every evaluation.
func Optimize(ctx context.Context, ev *Evaluator, optimizer opt.Optimizer, bounds Bounds, xTE0, s0 float64, onProgress func(Progress)) (*Result, error) {
	start := time.Now()

	evals := 0
	failures := 0

	// The first evaluation always becomes the best-so-far, so Best never
	// reports a value the loop did not produce.
	best := math.Inf(1)
	var bestXTE, bestS float64

	objective := func(x []float64) float64 {
		evals++

		value := 0.0
		e, err := ev.Evaluate(ctx, x[0], x[1])
		if err != nil {
			// The search continues on whatever scalar comes back; a zero
			// here can bias it, which is accepted rather than retried.
			failures++
			slog.Warn("Objective evaluation failed", "xTE", x[0], "s", x[1], "error", err)
		} else {
			value = e.Objective
		}

		if value < best {
			best = value
			bestXTE = ev.Round(x[0])
			bestS = ev.Round(x[1])
		}
		if onProgress != nil {
			onProgress(Progress{
				Evaluation: evals,
				XTE:        ev.Round(x[0]),
				S:          ev.Round(x[1]),
				Objective:  value,
				Best:       best,
				BestXTE:    bestXTE,
				BestS:      bestS,
				Failed:     err != nil,
				Timestamp:  time.Now(),
			})
		}
		return value
	}

	slog.Info("Starting optimization",
		"xTE0", xTE0, "s0", s0,
		"xTE_bounds", fmt.Sprintf("[%g, %g]", bounds.XTEMin, bounds.XTEMax),
		"s_bounds", fmt.Sprintf("[%g, %g]", bounds.SMin, bounds.SMax))

	bestX, bestF, err := optimizer.Run(objective,
		[]float64{xTE0, s0},
		[]float64{bounds.XTEMin, bounds.SMin},
		[]float64{bounds.XTEMax, bounds.SMax})
	if err != nil {
		return nil, fmt.Errorf("optimization failed: %w", err)
	}

	// Recover the auxiliary outputs at the optimum.
	final, err := ev.Evaluate(ctx, bestX[0], bestX[1])
	if err != nil {
		return nil, fmt.Errorf("re-evaluation at optimum failed: %w", err)
	}

	elapsed := time.Since(start)
	slog.Info("Optimization complete",
		"xTE", final.Params.XTE, "s", final.Params.S,
		"max_lift", final.MaxLift, "alpha", final.Alpha,
		"objective", bestF, "evals", evals, "failures", failures,
		"elapsed", elapsed)

	return &Result{
		XTE:        final.Params.XTE,
		S:          final.Params.S,
		MaxLift:    final.MaxLift,
		Alpha:      final.Alpha,
		GeometryID: final.GeometryID,
		Evals:      evals + 1,
		Failures:   failures,
		Elapsed:    elapsed,
	}, nil
}
