package opt

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// MayflyAdapter wraps the external mayfly swarm library. The library only
// accepts scalar bounds shared by all dimensions, so the adapter searches
// the unit cube [0,1]^d and maps every probe affinely into the caller's
// box before evaluation.
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
}

// NewMayfly creates a mayfly optimizer adapter. The library requires a
// population of at least 20.
func NewMayfly(maxIters, popSize int, seed int64) *MayflyAdapter {
	if popSize < 20 {
		popSize = 20
	}
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
	}
}

// Run executes the swarm search. x0 is ignored beyond dimension checking:
// the population is seeded randomly across the whole box, which is the
// point of picking this adapter over the local quasi-Newton one.
func (m *MayflyAdapter) Run(eval func([]float64) float64, x0, lower, upper []float64) ([]float64, float64, error) {
	dim := len(lower)
	if len(upper) != dim || len(x0) != dim {
		return nil, 0, fmt.Errorf("bounds/start dimension mismatch: %d, %d, %d", len(x0), dim, len(upper))
	}

	denorm := func(u []float64) []float64 {
		x := make([]float64, dim)
		for i := range x {
			x[i] = lower[i] + clamp(u[i], 0, 1)*(upper[i]-lower[i])
		}
		return x
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = func(u []float64) float64 {
		return eval(denorm(u))
	}
	config.ProblemSize = dim
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.LowerBound = 0
	config.UpperBound = 1
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return nil, 0, fmt.Errorf("mayfly optimization failed: %w", err)
	}

	return denorm(result.GlobalBest.Position), result.GlobalBest.Cost, nil
}
