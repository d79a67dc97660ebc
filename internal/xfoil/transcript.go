// Package xfoil drives an external XFOIL binary against generated
// geometries and parses the polar output it produces. The solver is
// treated as an opaque subprocess: the command language, the coordinate
// file format and the polar layout are fixed by the tool itself.
package xfoil

import (
	"fmt"
	"strings"
)

// SweepSettings fixes the operating point for one polar accumulation run.
type SweepSettings struct {
	// Reynolds is the effective Reynolds number for viscous mode.
	Reynolds float64 `json:"reynolds" koanf:"reynolds"`

	// NCrit is the e^n transition criterion amplification factor.
	NCrit float64 `json:"nCrit" koanf:"ncrit"`

	// IterCap bounds the viscous solution iterations per angle.
	IterCap int `json:"iterCap" koanf:"iter_cap"`

	// AlphaStart, AlphaEnd and AlphaStep define the angle-of-attack sweep
	// in degrees.
	AlphaStart float64 `json:"alphaStart" koanf:"alpha_start"`
	AlphaEnd   float64 `json:"alphaEnd" koanf:"alpha_end"`
	AlphaStep  float64 `json:"alphaStep" koanf:"alpha_step"`
}

// DefaultSweep returns the standard operating point: Re 1e6, NCrit 9,
// 200 iterations, 0 to 6 degrees in 0.1 degree steps.
func DefaultSweep() SweepSettings {
	return SweepSettings{
		Reynolds:   1e6,
		NCrit:      9,
		IterCap:    200,
		AlphaStart: 0,
		AlphaEnd:   6,
		AlphaStep:  0.1,
	}
}

// Transcript builds the command sequence piped to the solver's standard
// input: load the coordinate file, smooth and re-panel the geometry,
// switch to viscous mode at the fixed Reynolds number and transition
// criterion, accumulate a polar to polarPath over the angle sweep, and
// quit. Blank lines answer the solver's interactive prompts.
func Transcript(datPath, polarPath string, sweep SweepSettings) string {
	var b strings.Builder

	fmt.Fprintf(&b, "LOAD %s\n", datPath)
	b.WriteString("MDES\n")
	b.WriteString("FILT\n")
	b.WriteString("EXEC\n")
	b.WriteString("\n")
	b.WriteString("PANE\n")
	b.WriteString("GDES\n")
	b.WriteString("CADD\n")
	b.WriteString("\n\n\n\n")
	b.WriteString("OPER\n")
	fmt.Fprintf(&b, "ITER %d\n", sweep.IterCap)
	fmt.Fprintf(&b, "VISC %g\n", sweep.Reynolds)
	b.WriteString("VPAR\n")
	fmt.Fprintf(&b, "N %g\n", sweep.NCrit)
	b.WriteString("\n")
	b.WriteString("PACC\n")
	fmt.Fprintf(&b, "%s\n", polarPath)
	b.WriteString("\n")
	fmt.Fprintf(&b, "ASEQ %g %g %g\n", sweep.AlphaStart, sweep.AlphaEnd, sweep.AlphaStep)
	b.WriteString("PACC\n")
	b.WriteString("QUIT\n")

	return b.String()
}
