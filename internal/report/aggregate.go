// Package report aggregates produced polars into parameter/lift datasets
// and renders them with gonum/plot.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ozgoose/foilopt/internal/foil"
	"github.com/ozgoose/foilopt/internal/store"
	"github.com/ozgoose/foilopt/internal/xfoil"
)

// Dataset holds three parallel sequences: one (xTE, S, maxLift) triple per
// aggregated polar.
type Dataset struct {
	XTE  []float64
	S    []float64
	Lift []float64
}

// Len returns the number of aggregated triples.
func (d *Dataset) Len() int { return len(d.Lift) }

func (d *Dataset) append(xTE, s, lift float64) {
	d.XTE = append(d.XTE, xTE)
	d.S = append(d.S, s)
	d.Lift = append(d.Lift, lift)
}

// ScanPolars walks all polar files in dir, recovers each one's free
// parameters from the p_<xLE>_<xTE>_<S> name encoding and its maximum
// lift via the polar parser. Files whose names don't decode are skipped
// with a warning: the name format is a de facto protocol with the
// geometry generator, and a silent mismatch would otherwise surface as
// wrong data rather than an error.
func ScanPolars(dir string) (*Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read polar directory: %w", err)
	}

	ds := &Dataset{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pol") {
			continue
		}

		_, xTE, s, err := foil.ParseName(entry.Name())
		if err != nil {
			slog.Warn("Skipping polar with undecodable name", "file", entry.Name(), "error", err)
			continue
		}

		polar, err := xfoil.ParsePolar(filepath.Join(dir, entry.Name()))
		if err != nil {
			slog.Warn("Skipping unreadable polar", "file", entry.Name(), "error", err)
			continue
		}

		lift, _ := polar.MaxLift()
		ds.append(xTE, s, lift)
	}
	return ds, nil
}

// FromRecords builds a dataset from structured run records, the preferred
// source when a store is available: parameters come from the record
// itself, not from re-parsing artifact names.
func FromRecords(records []*store.RunRecord) *Dataset {
	ds := &Dataset{}
	for _, r := range records {
		ds.append(r.XTE, r.S, r.MaxLift)
	}
	return ds
}
