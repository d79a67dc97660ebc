// Package foil implements the Pollock aerofoil family: a symmetric profile
// whose half-thickness over the chord is a three-piece curve (square-root
// nose blend, flat plateau, cubic trailing-edge blend).
//
// Profile reference: https://www.desmos.com/calculator/vmy0t1wg7x
package foil

import (
	"math"
	"sort"
)

// Stations is the fixed chordwise point count of a persisted geometry.
// Four stations are reserved for the plateau boundaries and its third
// points; the remainder is split between the nose and tail regions.
const Stations = 50

// referenceSamples is the per-region resolution of the smooth reference
// curve used for plotting and continuity checks, not for persisted output.
const referenceSamples = 500

// Point is one (x, y) sample of a surface, normalized to unit chord.
type Point struct {
	X float64
	Y float64
}

// Geometry is a discretized Pollock profile. Stations are the upper-surface
// half-thickness samples in ascending x; the lower surface is the mirror
// image (y negated). Geometries are immutable once generated.
type Geometry struct {
	Name     string
	Params   Params
	Stations []Point
}

// noseY evaluates the leading-edge blend at unnormalized chordwise position
// x. It is zero at x=0 and reaches the plateau half-thickness t/2 at
// x = xLE*t.
func (p Params) noseY(x float64) float64 {
	ext := p.XLE * p.Thickness
	return (p.Thickness / 2) *
		(8*math.Sqrt(x)/(3*math.Sqrt(ext)) -
			2*x/ext +
			x*x/(3*ext*ext))
}

// tailY evaluates the trailing-edge blend at unnormalized x. It is t/2 at
// x = chord - xTE*t and zero at x = chord; S shifts the cubic's curvature.
func (p Params) tailY(x float64) float64 {
	ext := p.XTE * p.Thickness
	u := x - p.Chord + ext
	return (p.Thickness / 2) *
		(1 +
			(2*p.S-3)*(u*u)/(ext*ext) +
			2*(1-p.S)*(u*u*u)/(ext*ext*ext))
}

// plateauY is the constant mid-section half-thickness.
func (p Params) plateauY() float64 {
	return p.Thickness / 2
}

// boundaries returns the normalized plateau boundaries v1 and v2.
func (p Params) boundaries() (v1, v2 float64) {
	return p.XLE * p.Thickness / p.Chord, (p.Chord - p.XTE*p.Thickness) / p.Chord
}

// halfThickness evaluates the governing piecewise function at normalized
// chordwise position x and returns the unit-chord half-thickness. Region
// selection compares x against the plateau boundaries: at the boundaries
// themselves the blend formulas agree with the plateau value, so the
// choice there is immaterial for a valid parameter set.
func (p Params) halfThickness(x float64) float64 {
	v1, v2 := p.boundaries()
	xu := x * p.Chord
	switch {
	case x <= v1:
		return p.noseY(xu) / p.Chord
	case x >= v2:
		return p.tailY(xu) / p.Chord
	default:
		return p.plateauY() / p.Chord
	}
}

// Generate discretizes the profile into the fixed station count. It fails
// fast with a DegeneracyError before producing anything when the plateau
// region would be empty or inverted.
//
// Station layout (all normalized by chord, sorted ascending):
//   - the plateau boundaries v1 and v2 plus the plateau third points
//   - evenly spaced stations covering [0, v1) over the nose region
//   - evenly spaced stations covering (v2, 1] over the tail region
func Generate(p Params) (*Geometry, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	v1, v2 := p.boundaries()

	// 4 reserved stations, remainder split across the two blend regions.
	noseCount := Stations/2 - 4
	tailCount := Stations - 4 - noseCount

	xs := make([]float64, 0, Stations)
	xs = append(xs, v1, v1+(v2-v1)/3, v1+2*(v2-v1)/3, v2)

	step1 := v1 / float64(noseCount)
	xs = append(xs, linspace(0, v1-step1, noseCount)...)

	// The tail offset shares the nose divisor; the extra tail stations
	// tighten the spacing near the trailing edge.
	step2 := (1 - v2) / float64(noseCount)
	xs = append(xs, linspace(v2+step2, 1, tailCount)...)

	sort.Float64s(xs)

	stations := make([]Point, len(xs))
	for i, x := range xs {
		stations[i] = Point{X: x, Y: p.halfThickness(x)}
	}

	return &Geometry{
		Name:     p.Name(),
		Params:   p,
		Stations: stations,
	}, nil
}

// Upper returns the upper surface in solver order (trailing edge to leading
// edge, descending x).
func (g *Geometry) Upper() []Point {
	out := make([]Point, len(g.Stations))
	for i, pt := range g.Stations {
		out[len(g.Stations)-1-i] = pt
	}
	return out
}

// Lower returns the lower surface in solver order (leading edge to trailing
// edge, ascending x) with y negated.
func (g *Geometry) Lower() []Point {
	out := make([]Point, len(g.Stations))
	for i, pt := range g.Stations {
		out[i] = Point{X: pt.X, Y: -pt.Y}
	}
	return out
}

// ReferenceCurve samples each region of the continuous profile at high
// resolution and returns the concatenated upper-surface curve in ascending
// x. It is intended for plotting and continuity validation only; persisted
// geometries always use the fixed station count.
func (p Params) ReferenceCurve() ([]Point, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	v1, v2 := p.boundaries()
	out := make([]Point, 0, 3*referenceSamples)
	for _, x := range linspace(0, v1, referenceSamples) {
		out = append(out, Point{X: x, Y: p.noseY(x*p.Chord) / p.Chord})
	}
	for _, x := range linspace(v1, v2, referenceSamples) {
		out = append(out, Point{X: x, Y: p.plateauY() / p.Chord})
	}
	for _, x := range linspace(v2, 1, referenceSamples) {
		out = append(out, Point{X: x, Y: p.tailY(x*p.Chord) / p.Chord})
	}
	return out, nil
}

// linspace returns n evenly spaced values from a to b inclusive.
func linspace(a, b float64, n int) []float64 {
	if n == 1 {
		return []float64{a}
	}
	out := make([]float64, n)
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + float64(i)*step
	}
	out[n-1] = b
	return out
}
