package opt

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

// LBFGSAdapter wraps gonum's L-BFGS quasi-Newton line-search method as a
// bounded minimizer. Gradients come from forward finite differences with a
// configurable step; box constraints are enforced by clamping every probe
// into the feasible region before evaluation, so the underlying method
// sees a flat extension of the objective outside the box.
type LBFGSAdapter struct {
	maxIters int
	fdStep   float64
}

// NewLBFGS creates the adapter. fdStep is the finite-difference step size;
// zero selects a default suited to objective values of order one.
func NewLBFGS(maxIters int, fdStep float64) *LBFGSAdapter {
	if fdStep == 0 {
		fdStep = 1e-4
	}
	return &LBFGSAdapter{maxIters: maxIters, fdStep: fdStep}
}

// Run executes the minimization. A best-so-far snapshot is kept across all
// probes, so even an unconverged or errored line search reports the best
// point actually evaluated rather than the method's final iterate.
func (a *LBFGSAdapter) Run(eval func([]float64) float64, x0, lower, upper []float64) ([]float64, float64, error) {
	bestX := clampVector(x0, lower, upper)
	bestF := math.Inf(1)

	wrapped := func(x []float64) float64 {
		cx := clampVector(x, lower, upper)
		f := eval(cx)
		if f < bestF {
			bestF = f
			bestX = cx
		}
		return f
	}

	problem := optimize.Problem{
		Func: wrapped,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, wrapped, x, &fd.Settings{Step: a.fdStep})
		},
	}

	settings := &optimize.Settings{
		MajorIterations: a.maxIters,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-8,
			Iterations: 10,
		},
	}

	result, err := optimize.Minimize(problem, append([]float64(nil), bestX...), settings, &optimize.LBFGS{})
	if err != nil {
		// Line-search breakdowns near a bound are routine for a clamped
		// objective; the best evaluated point still stands.
		if math.IsInf(bestF, 1) {
			return nil, 0, err
		}
		return bestX, bestF, nil
	}

	if f := result.F; f < bestF {
		bestF = f
		bestX = clampVector(result.X, lower, upper)
	}
	if math.IsInf(bestF, 1) {
		return nil, 0, errors.New("optimizer made no evaluations")
	}
	return bestX, bestF, nil
}
