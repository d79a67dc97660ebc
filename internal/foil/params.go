package foil

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Params holds the five shape parameters of a Pollock profile.
//
// Thickness and Chord are expressed in the same (arbitrary) unit; XLE and
// XTE are dimensionless factors scaling the leading- and trailing-edge
// blend extents, and S biases the curvature of the trailing-edge blend
// (S=0.5 gives a symmetric cubic).
type Params struct {
	Thickness float64 `json:"thickness"`
	Chord     float64 `json:"chord"`
	XLE       float64 `json:"xLE"`
	XTE       float64 `json:"xTE"`
	S         float64 `json:"s"`
}

// DegeneracyError reports a parameter combination that yields an empty or
// inverted plateau region. No file is ever written for such parameters.
type DegeneracyError struct {
	Params Params
	Reason string
}

func (e *DegeneracyError) Error() string {
	return fmt.Sprintf("degenerate profile parameters: %s (thickness=%g chord=%g xLE=%g xTE=%g s=%g)",
		e.Reason, e.Params.Thickness, e.Params.Chord, e.Params.XLE, e.Params.XTE, e.Params.S)
}

func (e *DegeneracyError) Is(target error) bool {
	_, ok := target.(*DegeneracyError)
	return ok
}

// ErrDegenerate can be used with errors.Is to detect degenerate parameters.
var ErrDegenerate = &DegeneracyError{}

// Validate checks the non-degeneracy invariants: both blend extents must lie
// strictly inside (0, chord) and the plateau must not be empty or inverted.
func (p Params) Validate() error {
	fail := func(reason string) error {
		return &DegeneracyError{Params: p, Reason: reason}
	}

	if p.Thickness <= 0 {
		return fail("thickness must be positive")
	}
	if p.Chord <= 0 {
		return fail("chord must be positive")
	}

	le := p.XLE * p.Thickness
	te := p.XTE * p.Thickness
	if le <= 0 || le >= p.Chord {
		return fail("leading-edge extent xLE*thickness outside (0, chord)")
	}
	if te <= 0 || te >= p.Chord {
		return fail("trailing-edge extent xTE*thickness outside (0, chord)")
	}
	if te >= p.Chord-le {
		return fail("plateau region empty or inverted (xTE*thickness >= chord - xLE*thickness)")
	}
	return nil
}

// Name derives the deterministic geometry identity from the parameter
// tuple. Identical parameters always map to the same identity, so
// re-generation overwrites the same files; callers must treat
// re-generation as destructive.
//
// The encoding doubles as the parsing key the result aggregator uses to
// recover (xTE, S) from artifact names, so the format is load-bearing.
func (p Params) Name() string {
	return "p_" + formatParam(p.XLE) + "_" + formatParam(p.XTE) + "_" + formatParam(p.S)
}

func formatParam(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseName recovers the free parameters embedded in a geometry identity of
// the form p_<xLE>_<xTE>_<S>. The base name may carry a file extension.
func ParseName(name string) (xLE, xTE, s float64, err error) {
	// Strip only the known artifact extensions; the encoded S value ends
	// in digits that a generic extension split would eat.
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, ".dat")
	base = strings.TrimSuffix(base, ".pol")
	rest, ok := strings.CutPrefix(base, "p_")
	if !ok {
		return 0, 0, 0, fmt.Errorf("geometry name %q: missing p_ prefix", name)
	}
	fields := strings.Split(rest, "_")
	if len(fields) != 3 {
		return 0, 0, 0, fmt.Errorf("geometry name %q: want 3 encoded parameters, got %d", name, len(fields))
	}

	vals := make([]float64, 3)
	for i, f := range fields {
		vals[i], err = strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("geometry name %q: bad parameter %q: %w", name, f, err)
		}
	}
	return vals[0], vals[1], vals[2], nil
}
