package opt

import (
	"math"
	"testing"
)

// Shifted sphere: minimum at (0.3, 0.7) inside the unit box.
func shiftedSphere(x []float64) float64 {
	dx := x[0] - 0.3
	dy := x[1] - 0.7
	return dx*dx + dy*dy
}

func TestLBFGSOnSphere(t *testing.T) {
	optimizer := NewLBFGS(100, 1e-6)

	x0 := []float64{0.5, 0.5}
	lower := []float64{0, 0}
	upper := []float64{1, 1}

	best, cost, err := optimizer.Run(shiftedSphere, x0, lower, upper)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if cost > 1e-6 {
		t.Errorf("Expected cost near 0, got %g", cost)
	}
	if math.Abs(best[0]-0.3) > 1e-3 || math.Abs(best[1]-0.7) > 1e-3 {
		t.Errorf("Best = %v, want near (0.3, 0.7)", best)
	}
}

func TestLBFGSRespectsBounds(t *testing.T) {
	// Unconstrained minimum at (-1, -1), outside the box: the result must
	// stay inside and sit on the nearest corner.
	obj := func(x []float64) float64 {
		dx := x[0] + 1
		dy := x[1] + 1
		return dx*dx + dy*dy
	}

	optimizer := NewLBFGS(100, 1e-6)
	best, _, err := optimizer.Run(obj, []float64{0.5, 0.5}, []float64{0, 0}, []float64{1, 1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for i, v := range best {
		if v < 0 || v > 1 {
			t.Errorf("best[%d] = %g escapes the box", i, v)
		}
	}
	if best[0] > 0.05 || best[1] > 0.05 {
		t.Errorf("Best = %v, want near the (0,0) corner", best)
	}
}

func TestMayflyOnSphere(t *testing.T) {
	optimizer := NewMayfly(100, 20, 42)

	best, cost, err := optimizer.Run(shiftedSphere,
		[]float64{0.5, 0.5}, []float64{0, 0}, []float64{1, 1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if cost > 0.05 {
		t.Errorf("Expected cost near 0, got %g", cost)
	}
	for i, v := range best {
		if v < 0 || v > 1 {
			t.Errorf("best[%d] = %g escapes the box", i, v)
		}
	}
}

func TestMayflyDeterministic(t *testing.T) {
	run := func() float64 {
		optimizer := NewMayfly(50, 20, 123)
		_, cost, err := optimizer.Run(shiftedSphere,
			[]float64{0.5, 0.5}, []float64{0, 0}, []float64{1, 1})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return cost
	}

	if c1, c2 := run(), run(); c1 != c2 {
		t.Errorf("Non-deterministic: %g vs %g for the same seed", c1, c2)
	}
}

func TestMayflyDimensionMismatch(t *testing.T) {
	optimizer := NewMayfly(10, 20, 1)
	if _, _, err := optimizer.Run(shiftedSphere,
		[]float64{0.5}, []float64{0, 0}, []float64{1, 1}); err == nil {
		t.Error("Expected dimension mismatch error")
	}
}

func TestNewByName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{name: ""},
		{name: "lbfgs"},
		{name: "mayfly"},
		{name: "annealing", wantErr: true},
	}

	for _, tt := range tests {
		o, err := New(tt.name, 10, 0, 1)
		if tt.wantErr {
			if err == nil {
				t.Errorf("New(%q): expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("New(%q) failed: %v", tt.name, err)
		}
		if o == nil {
			t.Errorf("New(%q) returned nil optimizer", tt.name)
		}
	}
}
