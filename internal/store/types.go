package store

import (
	"fmt"
	"time"

	"github.com/ozgoose/foilopt/internal/fit"
	"github.com/ozgoose/foilopt/internal/xfoil"
)

// RunConfig snapshots the settings a run was started with, enough to
// reproduce or resume it.
type RunConfig struct {
	Fixed     fit.FixedParams     `json:"fixed"`
	XTE0      float64             `json:"xTE0"`
	S0        float64             `json:"s0"`
	XTEMin    float64             `json:"xTEMin"`
	XTEMax    float64             `json:"xTEMax"`
	SMin      float64             `json:"sMin"`
	SMax      float64             `json:"sMax"`
	Optimizer string              `json:"optimizer"`
	MaxIters  int                 `json:"maxIters"`
	Sweep     xfoil.SweepSettings `json:"sweep"`
}

// RunRecord is the persisted outcome of one optimization run. It carries
// the optimal parameters explicitly; artifact names are derivable from
// GeometryID but never need to be parsed back.
type RunRecord struct {
	ID         string        `json:"id"`
	XTE        float64       `json:"xTE"`
	S          float64       `json:"s"`
	MaxLift    float64       `json:"maxLift"`
	Alpha      float64       `json:"alpha"`
	GeometryID string        `json:"geometryId"`
	Evals      int           `json:"evals"`
	Failures   int           `json:"failures"`
	Elapsed    time.Duration `json:"elapsed"`
	Timestamp  time.Time     `json:"timestamp"`
	Config     RunConfig     `json:"config"`
}

// NewRunRecord assembles a record from a pipeline result.
func NewRunRecord(id string, result *fit.Result, cfg RunConfig) *RunRecord {
	return &RunRecord{
		ID:         id,
		XTE:        result.XTE,
		S:          result.S,
		MaxLift:    result.MaxLift,
		Alpha:      result.Alpha,
		GeometryID: result.GeometryID,
		Evals:      result.Evals,
		Failures:   result.Failures,
		Elapsed:    result.Elapsed,
		Timestamp:  time.Now(),
		Config:     cfg,
	}
}

// Validate checks that a record has the fields every consumer relies on.
func (r *RunRecord) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "ID", Reason: "cannot be empty"}
	}
	if r.GeometryID == "" {
		return &ValidationError{Field: "GeometryID", Reason: "cannot be empty"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if r.Config.XTEMin >= r.Config.XTEMax {
		return &ValidationError{Field: "Config", Reason: "xTE bounds inverted"}
	}
	if r.Config.SMin >= r.Config.SMax {
		return &ValidationError{Field: "Config", Reason: "S bounds inverted"}
	}
	return nil
}

// ValidationError represents a run-record validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}
