package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobState represents the lifecycle state of an optimization job.
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
	StateCancelled JobState = "cancelled"
)

// JobConfig carries the per-job overrides a client may submit. Zero
// fields fall back to the server's configuration defaults.
type JobConfig struct {
	XTE0      float64 `json:"xTE0,omitempty"`
	S0        float64 `json:"s0,omitempty"`
	XTEMin    float64 `json:"xTEMin,omitempty"`
	XTEMax    float64 `json:"xTEMax,omitempty"`
	SMin      float64 `json:"sMin,omitempty"`
	SMax      float64 `json:"sMax,omitempty"`
	Optimizer string  `json:"optimizer,omitempty"`
	MaxIters  int     `json:"maxIters,omitempty"`
	Seed      int64   `json:"seed,omitempty"`
}

// Job represents one optimization run owned by the server.
type Job struct {
	ID     string    `json:"id"`
	State  JobState  `json:"state"`
	Config JobConfig `json:"config"`

	// Best-so-far outputs, updated while the job runs.
	BestLift    float64 `json:"bestLift"`
	XTE         float64 `json:"xTE"`
	S           float64 `json:"s"`
	Alpha       float64 `json:"alpha"`
	GeometryID  string  `json:"geometryId,omitempty"`
	Evaluations int     `json:"evaluations"`
	Failures    int     `json:"failures"`

	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Error     string     `json:"error,omitempty"`

	cancel func()
}

// snapshot returns a copy of the job safe to read and encode outside the
// manager's lock. The cancel hook stays with the managed original.
func (j *Job) snapshot() *Job {
	c := *j
	c.cancel = nil
	return &c
}

// JobManager owns all jobs and their event broadcaster.
type JobManager struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	broadcaster *EventBroadcaster
}

// NewJobManager creates an empty job manager.
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:        make(map[string]*Job),
		broadcaster: NewEventBroadcaster(),
	}
}

// CreateJob registers a new pending job and returns a snapshot of it. The
// worker mutates the managed original through UpdateJob only.
func (jm *JobManager) CreateJob(config JobConfig) *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        uuid.New().String(),
		State:     StatePending,
		Config:    config,
		StartTime: time.Now(),
	}
	jm.jobs[job.ID] = job

	slog.Info("Job created", "jobID", job.ID, "optimizer", config.Optimizer)
	return job.snapshot()
}

// GetJob retrieves a snapshot of a job by ID. Callers may read and encode
// it freely while the worker keeps updating the original.
func (jm *JobManager) GetJob(id string) (*Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, ok := jm.jobs[id]
	if !ok {
		return nil, false
	}
	return job.snapshot(), true
}

// ListJobs returns snapshots of all known jobs.
func (jm *JobManager) ListJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]*Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		jobs = append(jobs, job.snapshot())
	}
	return jobs
}

// UpdateJob applies fn to a job under the manager's lock.
func (jm *JobManager) UpdateJob(id string, fn func(*Job)) bool {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, ok := jm.jobs[id]
	if !ok {
		return false
	}
	fn(job)
	return true
}

// CancelJob requests cancellation of a running or pending job.
func (jm *JobManager) CancelJob(id string) bool {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, ok := jm.jobs[id]
	if !ok {
		return false
	}
	if job.State != StatePending && job.State != StateRunning {
		return false
	}
	if job.cancel != nil {
		job.cancel()
	}
	slog.Info("Job cancellation requested", "jobID", id)
	return true
}
