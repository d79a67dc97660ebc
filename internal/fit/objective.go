// Package fit composes geometry generation, the external solver and the
// polar parser into a scalar objective, and drives a bounded minimizer
// over it.
package fit

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ozgoose/foilopt/internal/foil"
	"github.com/ozgoose/foilopt/internal/xfoil"
)

// FixedParams are the shape parameters held constant across a run; only
// {xTE, S} are searched.
type FixedParams struct {
	Thickness float64 `json:"thickness"`
	Chord     float64 `json:"chord"`
	XLE       float64 `json:"xLE"`
}

// Evaluation is one full generate -> solve -> parse round trip.
type Evaluation struct {
	// Objective is the negated maximum lift coefficient: the outer search
	// minimizes, so maximizing lift means minimizing this.
	Objective float64 `json:"objective"`

	MaxLift float64 `json:"maxLift"`
	Alpha   float64 `json:"alpha"`

	// GeometryID is the deterministic identity derived from the rounded
	// parameters.
	GeometryID string `json:"geometryId"`

	Params    foil.Params `json:"params"`
	DatPath   string      `json:"datPath"`
	PolarPath string      `json:"polarPath"`
}

// Evaluator turns free parameters into an objective value. It is not
// memoized: evaluating the same rounded parameters twice re-runs the full
// pipeline, and re-generation overwrites the artifacts for that identity.
type Evaluator struct {
	Fixed  FixedParams
	Solver xfoil.Solver

	// WorkDir receives the per-identity .dat and .pol artifacts. Each
	// evaluation runs in its own session directory underneath, so
	// concurrent evaluators sharing a WorkDir cannot corrupt each other's
	// scratch files.
	WorkDir string

	// RoundDecimals is the precision free parameters are rounded to
	// before naming and generation. Rounding collapses optimizer probes
	// that differ only by floating-point jitter onto one identity.
	RoundDecimals int
}

// Round applies the evaluator's parameter rounding.
func (e *Evaluator) Round(v float64) float64 {
	scale := math.Pow(10, float64(e.RoundDecimals))
	return math.Round(v*scale) / scale
}

// Params assembles the full parameter set for given free parameters,
// rounding applied.
func (e *Evaluator) Params(xTE, s float64) foil.Params {
	return foil.Params{
		Thickness: e.Fixed.Thickness,
		Chord:     e.Fixed.Chord,
		XLE:       e.Fixed.XLE,
		XTE:       e.Round(xTE),
		S:         e.Round(s),
	}
}

// Evaluate runs the full pipeline for one free-parameter pair. Degenerate
// parameters fail before any file I/O; solver and parse failures surface
// as errors for the caller to map onto the conservative fallback.
func (e *Evaluator) Evaluate(ctx context.Context, xTE, s float64) (*Evaluation, error) {
	params := e.Params(xTE, s)
	geom, err := foil.Generate(params)
	if err != nil {
		return nil, err
	}

	// Scratch session: unique per evaluation, removed after the artifacts
	// are installed at their identity-derived stable paths.
	session := filepath.Join(e.WorkDir, "sessions", uuid.New().String())
	if err := os.MkdirAll(session, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	defer os.RemoveAll(session)

	datPath, err := geom.WriteDatFile(session)
	if err != nil {
		return nil, err
	}
	polarPath := filepath.Join(session, geom.Name+".pol")

	if err := e.Solver.Run(ctx, datPath, polarPath); err != nil {
		return nil, err
	}

	polar, err := xfoil.ParsePolar(polarPath)
	if err != nil {
		return nil, err
	}
	cl, alpha := polar.MaxLift()

	finalDat, err := e.install(datPath)
	if err != nil {
		return nil, err
	}
	finalPolar, err := e.install(polarPath)
	if err != nil {
		return nil, err
	}

	return &Evaluation{
		Objective:  -cl,
		MaxLift:    cl,
		Alpha:      alpha,
		GeometryID: geom.Name,
		Params:     params,
		DatPath:    finalDat,
		PolarPath:  finalPolar,
	}, nil
}

// install moves a session artifact to its stable per-identity path in the
// work directory, replacing any previous artifact for the same identity.
func (e *Evaluator) install(src string) (string, error) {
	dst := filepath.Join(e.WorkDir, filepath.Base(src))
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("failed to install artifact %s: %w", filepath.Base(src), err)
	}
	return dst, nil
}
