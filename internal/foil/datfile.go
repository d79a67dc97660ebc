package foil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// WriteDat writes the solver coordinate file format:
//
//	<name>
//	<blank>
//	<upper surface, descending x, "x y" with 7 decimals>
//	<blank>
//	<lower surface, ascending x, y written with a leading minus sign>
//
// The format is fixed by the external solver and must be reproduced
// byte-for-byte for a given geometry.
func (g *Geometry) WriteDat(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\n\n", g.Name)
	for _, pt := range g.Upper() {
		fmt.Fprintf(bw, "%.7f %.7f\n", pt.X, pt.Y)
	}
	fmt.Fprintln(bw)
	for _, pt := range g.Stations {
		// The lower surface mirrors the upper; the minus sign is written
		// explicitly so a zero ordinate still reads as "-0.0000000".
		fmt.Fprintf(bw, "%.7f -%.7f\n", pt.X, pt.Y)
	}

	return bw.Flush()
}

// WriteDatFile persists the geometry as <dir>/<name>.dat. Re-generation
// with identical parameters overwrites the same file.
func (g *Geometry) WriteDatFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create geometry directory: %w", err)
	}

	path := filepath.Join(dir, g.Name+".dat")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create geometry file: %w", err)
	}
	defer f.Close()

	if err := g.WriteDat(f); err != nil {
		return "", fmt.Errorf("failed to write geometry file: %w", err)
	}
	return path, nil
}

// ReadDat parses a coordinate file back into its name and the two surfaces
// in file order. It accepts any surface lengths so externally produced
// files can be plotted too.
func ReadDat(r io.Reader) (name string, upper, lower []Point, err error) {
	sc := bufio.NewScanner(r)

	if !sc.Scan() {
		return "", nil, nil, fmt.Errorf("coordinate file is empty")
	}
	name = strings.TrimSpace(sc.Text())

	cur := &upper
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			// The blank after the name line is padding; the blank after the
			// upper surface switches to the lower surface.
			if len(upper) > 0 {
				cur = &lower
			}
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return "", nil, nil, fmt.Errorf("malformed coordinate line %q", line)
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return "", nil, nil, fmt.Errorf("bad x coordinate %q: %w", fields[0], err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return "", nil, nil, fmt.Errorf("bad y coordinate %q: %w", fields[1], err)
		}
		*cur = append(*cur, Point{X: x, Y: y})
	}
	if err := sc.Err(); err != nil {
		return "", nil, nil, fmt.Errorf("failed to read coordinate file: %w", err)
	}

	return name, upper, lower, nil
}
