// Package store persists optimization run records and evaluation traces.
//
// A run record is the structured {parameters, identity, result} produced
// at optimization time, so downstream consumers never have to re-derive
// parameters by string-splitting artifact names.
package store

// Store defines run-record persistence.
//
// Error handling conventions:
//   - Return nil on success
//   - Return ErrNotFound if a record doesn't exist (Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("...: %w", err)
type Store interface {
	// SaveRun atomically saves a run record. An existing record with the
	// same ID is overwritten.
	SaveRun(record *RunRecord) error

	// LoadRun retrieves a run record by ID.
	LoadRun(id string) (*RunRecord, error)

	// ListRuns returns all stored run records, corrupted entries skipped.
	ListRuns() ([]*RunRecord, error)

	// DeleteRun removes a run record and its associated artifacts
	// (run.json, trace.jsonl).
	DeleteRun(id string) error
}

// ErrNotFound is returned when a requested run record does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing run record.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "run record not found: " + e.RunID
	}
	return "run record not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
