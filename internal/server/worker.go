package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/ozgoose/foilopt/internal/fit"
	"github.com/ozgoose/foilopt/internal/opt"
	"github.com/ozgoose/foilopt/internal/store"
	"github.com/ozgoose/foilopt/internal/xfoil"
)

// runJob executes one optimization job to completion. It is started as a
// goroutine by the create handler and owns all job state transitions
// after pending.
func (s *Server) runJob(job *Job) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.jobManager.UpdateJob(job.ID, func(j *Job) {
		j.State = StateRunning
		j.StartTime = time.Now()
		j.cancel = cancel
	})

	metricJobsRunning.Inc()
	defer metricJobsRunning.Dec()

	slog.Info("Starting optimization job", "jobID", job.ID)

	driver := xfoil.NewDriver(s.cfg.SolverPath)
	driver.Sweep = s.cfg.Sweep
	if s.cfg.SolverTimeoutSec > 0 {
		driver.Timeout = time.Duration(s.cfg.SolverTimeoutSec) * time.Second
	}

	evaluator := &fit.Evaluator{
		Fixed: fit.FixedParams{
			Thickness: s.cfg.Thickness,
			Chord:     s.cfg.Chord,
			XLE:       s.cfg.XLE,
		},
		Solver:        driver,
		WorkDir:       s.cfg.WorkDir,
		RoundDecimals: s.cfg.RoundDecimals,
	}

	optimizer, err := opt.New(job.Config.Optimizer, job.Config.MaxIters, s.cfg.FDStep, job.Config.Seed)
	if err != nil {
		s.markJobFailed(job.ID, err)
		return
	}

	trace, err := store.NewTraceWriter(s.cfg.WorkDir, job.ID)
	if err != nil {
		s.markJobFailed(job.ID, err)
		return
	}
	defer trace.Close()

	start := time.Now()
	onProgress := func(p fit.Progress) {
		metricEvaluationsTotal.Inc()
		if p.Failed {
			metricEvaluationFailures.Inc()
		}
		if err := trace.Write(p); err != nil {
			slog.Warn("Failed to write trace entry", "jobID", job.ID, "error", err)
		}

		var event ProgressEvent
		s.jobManager.UpdateJob(job.ID, func(j *Job) {
			j.Evaluations = p.Evaluation
			if p.Failed {
				j.Failures++
			}
			j.XTE = p.BestXTE
			j.S = p.BestS
			j.BestLift = -p.Best

			eps := 0.0
			if elapsed := time.Since(start).Seconds(); elapsed > 0 {
				eps = float64(j.Evaluations) / elapsed
			}
			event = ProgressEvent{
				JobID:       j.ID,
				State:       j.State,
				Evaluations: j.Evaluations,
				Failures:    j.Failures,
				BestLift:    j.BestLift,
				XTE:         j.XTE,
				S:           j.S,
				EPS:         eps,
				Timestamp:   p.Timestamp,
			}
		})
		s.jobManager.broadcaster.Broadcast(event)
	}

	bounds := fit.Bounds{
		XTEMin: job.Config.XTEMin,
		XTEMax: job.Config.XTEMax,
		SMin:   job.Config.SMin,
		SMax:   job.Config.SMax,
	}
	result, err := fit.Optimize(ctx, evaluator, optimizer, bounds, job.Config.XTE0, job.Config.S0, onProgress)
	if err != nil {
		if ctx.Err() != nil {
			s.markJobCancelled(job.ID)
			return
		}
		s.markJobFailed(job.ID, err)
		return
	}

	endTime := time.Now()
	s.jobManager.UpdateJob(job.ID, func(j *Job) {
		j.State = StateCompleted
		j.XTE = result.XTE
		j.S = result.S
		j.BestLift = result.MaxLift
		j.Alpha = result.Alpha
		j.GeometryID = result.GeometryID
		j.Evaluations = result.Evals
		j.Failures = result.Failures
		j.EndTime = &endTime
	})
	metricJobDuration.Observe(result.Elapsed.Seconds())

	record := store.NewRunRecord(job.ID, result, store.RunConfig{
		Fixed:     evaluator.Fixed,
		XTE0:      job.Config.XTE0,
		S0:        job.Config.S0,
		XTEMin:    bounds.XTEMin,
		XTEMax:    bounds.XTEMax,
		SMin:      bounds.SMin,
		SMax:      bounds.SMax,
		Optimizer: job.Config.Optimizer,
		MaxIters:  job.Config.MaxIters,
		Sweep:     driver.Sweep,
	})
	if err := s.store.SaveRun(record); err != nil {
		slog.Error("Failed to persist run record", "jobID", job.ID, "error", err)
	}

	if updated, ok := s.jobManager.GetJob(job.ID); ok {
		s.jobManager.broadcaster.Broadcast(ProgressEvent{
			JobID:       updated.ID,
			State:       updated.State,
			Evaluations: updated.Evaluations,
			Failures:    updated.Failures,
			BestLift:    updated.BestLift,
			XTE:         updated.XTE,
			S:           updated.S,
			Timestamp:   endTime,
		})
	}

	slog.Info("Optimization job completed",
		"jobID", job.ID,
		"max_lift", result.MaxLift, "alpha", result.Alpha,
		"xTE", result.XTE, "s", result.S,
		"evals", result.Evals, "elapsed", result.Elapsed)
}

// markJobFailed moves a job to the failed state.
func (s *Server) markJobFailed(jobID string, err error) {
	endTime := time.Now()
	s.jobManager.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})

	if job, ok := s.jobManager.GetJob(jobID); ok {
		s.jobManager.broadcaster.Broadcast(ProgressEvent{
			JobID:       job.ID,
			State:       StateFailed,
			Evaluations: job.Evaluations,
			Failures:    job.Failures,
			BestLift:    job.BestLift,
			Timestamp:   endTime,
		})
	}

	slog.Error("Optimization job failed", "jobID", jobID, "error", err)
}

// markJobCancelled moves a job to the cancelled state.
func (s *Server) markJobCancelled(jobID string) {
	endTime := time.Now()
	s.jobManager.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})

	if job, ok := s.jobManager.GetJob(jobID); ok {
		s.jobManager.broadcaster.Broadcast(ProgressEvent{
			JobID:       job.ID,
			State:       StateCancelled,
			Evaluations: job.Evaluations,
			Failures:    job.Failures,
			BestLift:    job.BestLift,
			Timestamp:   endTime,
		})
	}

	slog.Info("Optimization job cancelled", "jobID", jobID)
}
