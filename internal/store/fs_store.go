package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FSStore implements Store on the filesystem. Records live under
// <baseDir>/runs/<runID>/run.json next to their trace.jsonl.
//
// Atomic rename writes keep records intact across crashes; no locking is
// needed for concurrent use.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a filesystem-backed store rooted at baseDir,
// creating the directory if needed.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

func (fs *FSStore) runDir(id string) string {
	return filepath.Join(fs.baseDir, "runs", id)
}

func (fs *FSStore) recordPath(id string) string {
	return filepath.Join(fs.runDir(id), "run.json")
}

// SaveRun atomically saves a record via temp file + rename.
func (fs *FSStore) SaveRun(record *RunRecord) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if err := record.Validate(); err != nil {
		return err
	}

	dir := fs.runDir(record.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize run record: %w", err)
	}

	tempPath := fs.recordPath(record.ID) + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp run record: %w", err)
	}

	finalPath := fs.recordPath(record.ID)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename run record: %w", err)
	}

	slog.Debug("Run record saved", "runID", record.ID, "path", finalPath)
	return nil
}

// LoadRun retrieves a record by ID.
func (fs *FSStore) LoadRun(id string) (*RunRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("runID cannot be empty")
	}

	path := fs.recordPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{RunID: id}
		}
		return nil, fmt.Errorf("failed to read run record: %w", err)
	}

	var record RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to deserialize run record: %w", err)
	}
	return &record, nil
}

// ListRuns returns all stored records, skipping unreadable entries.
func (fs *FSStore) ListRuns() ([]*RunRecord, error) {
	runsDir := filepath.Join(fs.baseDir, "runs")

	entries, err := os.ReadDir(runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*RunRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	records := []*RunRecord{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		record, err := fs.LoadRun(entry.Name())
		if err != nil {
			slog.Warn("Skipping unreadable run record", "runID", entry.Name(), "error", err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// DeleteRun removes a record and its trace.
func (fs *FSStore) DeleteRun(id string) error {
	if id == "" {
		return fmt.Errorf("runID cannot be empty")
	}

	dir := fs.runDir(id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &NotFoundError{RunID: id}
	} else if err != nil {
		return fmt.Errorf("failed to stat run directory: %w", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove run directory: %w", err)
	}
	slog.Debug("Run record deleted", "runID", id)
	return nil
}
