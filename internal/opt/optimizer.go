// Package opt adapts external optimization libraries to a single
// bounded-minimizer interface. The objective is treated as an opaque,
// expensive scalar function; adapters never assume smoothness beyond what
// their underlying method requires.
package opt

import "fmt"

// Optimizer defines a bounded local minimization algorithm.
type Optimizer interface {
	// Run minimizes eval over the box [lower, upper] starting from x0.
	// Returns the best parameters found and their objective value.
	Run(eval func([]float64) float64, x0, lower, upper []float64) ([]float64, float64, error)
}

// New constructs an optimizer by name. Supported: "lbfgs" (bounded
// quasi-Newton line search with finite-difference gradients, the default)
// and "mayfly" (population-based global search).
func New(name string, maxIters int, fdStep float64, seed int64) (Optimizer, error) {
	switch name {
	case "", "lbfgs":
		return NewLBFGS(maxIters, fdStep), nil
	case "mayfly":
		return NewMayfly(maxIters, 20, seed), nil
	default:
		return nil, fmt.Errorf("unknown optimizer %q", name)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampVector returns x with every coordinate clamped into [lower, upper].
func clampVector(x, lower, upper []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = clamp(x[i], lower[i], upper[i])
	}
	return out
}
