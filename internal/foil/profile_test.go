package foil

import (
	"errors"
	"math"
	"testing"
)

func validParams() Params {
	return Params{Thickness: 22, Chord: 235, XLE: 2.468, XTE: 2.143, S: 0.803}
}

func TestGenerateStationCount(t *testing.T) {
	g, err := Generate(validParams())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(g.Stations) != Stations {
		t.Fatalf("Expected %d stations, got %d", Stations, len(g.Stations))
	}

	// Strictly ascending implies uniqueness.
	for i := 1; i < len(g.Stations); i++ {
		if g.Stations[i].X <= g.Stations[i-1].X {
			t.Errorf("Stations not strictly ascending at %d: %.10f <= %.10f",
				i, g.Stations[i].X, g.Stations[i-1].X)
		}
	}

	const tol = 1e-12
	if math.Abs(g.Stations[0].X) > tol {
		t.Errorf("First station x = %g, want 0", g.Stations[0].X)
	}
	if math.Abs(g.Stations[len(g.Stations)-1].X-1) > tol {
		t.Errorf("Last station x = %g, want 1", g.Stations[len(g.Stations)-1].X)
	}
}

func TestGenerateEndpoints(t *testing.T) {
	g, err := Generate(validParams())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// Zero half-thickness at the leading edge, and the trailing-edge blend
	// closes the profile at x=1.
	if math.Abs(g.Stations[0].Y) > 1e-12 {
		t.Errorf("Leading edge y = %g, want 0", g.Stations[0].Y)
	}
	if math.Abs(g.Stations[len(g.Stations)-1].Y) > 1e-9 {
		t.Errorf("Trailing edge y = %g, want 0", g.Stations[len(g.Stations)-1].Y)
	}
}

func TestRegionContinuityAtBoundaries(t *testing.T) {
	p := validParams()
	v1, v2 := p.boundaries()

	// At each plateau boundary the neighboring blend formula must agree
	// with the plateau value within numerical tolerance.
	plateau := p.plateauY() / p.Chord

	nose := p.noseY(v1*p.Chord) / p.Chord
	if math.Abs(nose-plateau) > 1e-9 {
		t.Errorf("Nose blend at v1: %.12f, plateau: %.12f", nose, plateau)
	}

	tail := p.tailY(v2*p.Chord) / p.Chord
	if math.Abs(tail-plateau) > 1e-9 {
		t.Errorf("Tail blend at v2: %.12f, plateau: %.12f", tail, plateau)
	}
}

func TestGenerateDegenerateParams(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{
			name:   "plateau inverted",
			params: Params{Thickness: 22, Chord: 235, XLE: 6, XTE: 6, S: 0.5},
		},
		{
			name:   "leading edge extent exceeds chord",
			params: Params{Thickness: 22, Chord: 235, XLE: 12, XTE: 1, S: 0.5},
		},
		{
			name:   "zero trailing extent",
			params: Params{Thickness: 22, Chord: 235, XLE: 2, XTE: 0, S: 0.5},
		},
		{
			name:   "negative thickness",
			params: Params{Thickness: -1, Chord: 235, XLE: 2, XTE: 2, S: 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Generate(tt.params)
			if err == nil {
				t.Fatal("Expected degeneracy error, got nil")
			}
			if !errors.Is(err, ErrDegenerate) {
				t.Errorf("Expected DegeneracyError, got %T: %v", err, err)
			}
			if g != nil {
				t.Error("Expected nil geometry on degenerate params")
			}
		})
	}
}

func TestPlateauBoundariesAreStations(t *testing.T) {
	p := validParams()
	g, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	v1, v2 := p.boundaries()
	for _, want := range []float64{v1, v2} {
		found := false
		for _, pt := range g.Stations {
			if math.Abs(pt.X-want) < 1e-12 {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Boundary station %g missing from station list", want)
		}
	}
}

func TestReferenceCurveContinuous(t *testing.T) {
	p := validParams()
	curve, err := p.ReferenceCurve()
	if err != nil {
		t.Fatalf("ReferenceCurve failed: %v", err)
	}

	if len(curve) != 3*referenceSamples {
		t.Fatalf("Expected %d samples, got %d", 3*referenceSamples, len(curve))
	}

	// No jumps anywhere on the curve, including the two region joins. The
	// square-root nose start is the steepest segment, so the threshold is
	// sized to its first step rather than the plateau's.
	for i := 1; i < len(curve); i++ {
		if math.Abs(curve[i].Y-curve[i-1].Y) > 1e-2 {
			t.Fatalf("Discontinuity at sample %d: dy = %g", i, curve[i].Y-curve[i-1].Y)
		}
	}
}

func TestUpperLowerMirror(t *testing.T) {
	g, err := Generate(validParams())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	upper := g.Upper()
	lower := g.Lower()

	if math.Abs(upper[0].X-1) > 1e-12 {
		t.Errorf("Upper surface must start at the trailing edge, got x=%g", upper[0].X)
	}
	if math.Abs(lower[0].X) > 1e-12 {
		t.Errorf("Lower surface must start at the leading edge, got x=%g", lower[0].X)
	}

	for i := range lower {
		if lower[i].Y != -g.Stations[i].Y {
			t.Errorf("Lower y[%d] = %g, want %g", i, lower[i].Y, -g.Stations[i].Y)
		}
	}
}

func TestName(t *testing.T) {
	p := validParams()
	if got, want := p.Name(), "p_2.468_2.143_0.803"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}

	// Same parameters, same identity.
	if p.Name() != validParams().Name() {
		t.Error("Name() is not deterministic")
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name          string
		in            string
		xLE, xTE, s   float64
		expectFailure bool
	}{
		{name: "plain", in: "p_2.468_2.143_0.803", xLE: 2.468, xTE: 2.143, s: 0.803},
		{name: "with extension", in: "p_2_2.3_0.8.pol", xLE: 2, xTE: 2.3, s: 0.8},
		{name: "with directory", in: "work/p_2_2_0.5.dat", xLE: 2, xTE: 2, s: 0.5},
		{name: "missing prefix", in: "joukowsk.dat", expectFailure: true},
		{name: "too few fields", in: "p_1_2", expectFailure: true},
		{name: "non-numeric", in: "p_a_b_c", expectFailure: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xLE, xTE, s, err := ParseName(tt.in)
			if tt.expectFailure {
				if err == nil {
					t.Fatal("Expected parse error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseName failed: %v", err)
			}
			if xLE != tt.xLE || xTE != tt.xTE || s != tt.s {
				t.Errorf("ParseName = (%g, %g, %g), want (%g, %g, %g)",
					xLE, xTE, s, tt.xLE, tt.xTE, tt.s)
			}
		})
	}
}

func TestNameParseRoundTrip(t *testing.T) {
	p := validParams()
	xLE, xTE, s, err := ParseName(p.Name() + ".dat")
	if err != nil {
		t.Fatalf("ParseName failed: %v", err)
	}
	if xLE != p.XLE || xTE != p.XTE || s != p.S {
		t.Errorf("Round trip = (%g, %g, %g), want (%g, %g, %g)", xLE, xTE, s, p.XLE, p.XTE, p.S)
	}
}
