package foil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteDatFormat(t *testing.T) {
	g, err := Generate(validParams())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var buf bytes.Buffer
	if err := g.WriteDat(&buf); err != nil {
		t.Fatalf("WriteDat failed: %v", err)
	}

	lines := strings.Split(buf.String(), "\n")

	if lines[0] != g.Name {
		t.Errorf("Line 1 = %q, want geometry name %q", lines[0], g.Name)
	}
	if lines[1] != "" {
		t.Errorf("Line 2 = %q, want blank", lines[1])
	}

	// Upper surface: Stations lines, then one blank separator.
	sep := 2 + Stations
	if lines[sep] != "" {
		t.Errorf("Expected blank separator at line %d, got %q", sep+1, lines[sep])
	}

	first := strings.Fields(lines[2])
	if len(first) != 2 {
		t.Fatalf("Coordinate line %q: want two fields", lines[2])
	}
	if first[0] != "1.0000000" {
		t.Errorf("Upper surface must start at the trailing edge, got x=%q", first[0])
	}

	// Lower surface ordinates carry an explicit minus sign, even at zero.
	lowerFirst := strings.Fields(lines[sep+1])
	if !strings.HasPrefix(lowerFirst[1], "-") {
		t.Errorf("Lower surface y %q missing minus sign", lowerFirst[1])
	}
	if lowerFirst[0] != "0.0000000" {
		t.Errorf("Lower surface must start at the leading edge, got x=%q", lowerFirst[0])
	}
}

func TestWriteDatDeterministic(t *testing.T) {
	var a, b bytes.Buffer

	for _, buf := range []*bytes.Buffer{&a, &b} {
		g, err := Generate(validParams())
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if err := g.WriteDat(buf); err != nil {
			t.Fatalf("WriteDat failed: %v", err)
		}
	}

	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("Identical parameters must produce byte-identical coordinate files")
	}
}

func TestWriteDatFileIdempotent(t *testing.T) {
	dir := t.TempDir()

	g, err := Generate(validParams())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	path1, err := g.WriteDatFile(dir)
	if err != nil {
		t.Fatalf("WriteDatFile failed: %v", err)
	}
	path2, err := g.WriteDatFile(dir)
	if err != nil {
		t.Fatalf("Second WriteDatFile failed: %v", err)
	}

	if path1 != path2 {
		t.Errorf("Re-generation must overwrite the same file: %q vs %q", path1, path2)
	}
	if filepath.Base(path1) != g.Name+".dat" {
		t.Errorf("File name %q, want %q", filepath.Base(path1), g.Name+".dat")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected a single geometry file, found %d entries", len(entries))
	}
}

func TestReadDatRoundTrip(t *testing.T) {
	g, err := Generate(validParams())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var buf bytes.Buffer
	if err := g.WriteDat(&buf); err != nil {
		t.Fatalf("WriteDat failed: %v", err)
	}

	name, upper, lower, err := ReadDat(&buf)
	if err != nil {
		t.Fatalf("ReadDat failed: %v", err)
	}

	if name != g.Name {
		t.Errorf("Name = %q, want %q", name, g.Name)
	}
	if len(upper) != Stations || len(lower) != Stations {
		t.Fatalf("Surface lengths = (%d, %d), want (%d, %d)", len(upper), len(lower), Stations, Stations)
	}

	// Written with 7 decimals, so compare against the rounded values.
	for i, pt := range lower {
		if pt.Y > 0 {
			t.Errorf("Lower surface y[%d] = %g, want <= 0", i, pt.Y)
		}
	}
}

func TestReadDatEmpty(t *testing.T) {
	if _, _, _, err := ReadDat(strings.NewReader("")); err == nil {
		t.Error("Expected error for empty coordinate file")
	}
}
