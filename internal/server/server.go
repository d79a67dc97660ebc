// Package server exposes optimization runs as HTTP jobs: submit free
// parameter searches, watch their progress over SSE, and fetch persisted
// results and plots.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ozgoose/foilopt/internal/config"
	"github.com/ozgoose/foilopt/internal/report"
	"github.com/ozgoose/foilopt/internal/store"
)

// Server is the HTTP front end over the optimization pipeline.
type Server struct {
	cfg        *config.Config
	store      *store.FSStore
	jobManager *JobManager
	server     *http.Server
}

// NewServer creates a server rooted at the configured work directory.
func NewServer(cfg *config.Config) (*Server, error) {
	st, err := store.NewFSStore(cfg.WorkDir)
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:        cfg,
		store:      st,
		jobManager: NewJobManager(),
	}, nil
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
	}

	slog.Info("Starting HTTP server", "addr", s.cfg.Addr)
	return s.server.ListenAndServe()
}

// Handler builds the route tree with logging and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/v1/jobs", s.handleJobs)
	mux.HandleFunc("/api/v1/jobs/", s.handleJobsWithID)
	mux.HandleFunc("/api/v1/runs", s.handleListRuns)
	mux.HandleFunc("/api/v1/scatter.png", s.handleScatter)
	mux.Handle("/metrics", promhttp.Handler())

	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleIndex describes the service.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "foilopt",
		"endpoints": []string{
			"POST /api/v1/jobs",
			"GET /api/v1/jobs",
			"GET /api/v1/jobs/{id}/status",
			"GET /api/v1/jobs/{id}/stream",
			"GET /api/v1/jobs/{id}/trace",
			"POST /api/v1/jobs/{id}/cancel",
			"GET /api/v1/runs",
			"GET /api/v1/scatter.png",
			"GET /metrics",
		},
	})
}

// handleJobs handles /api/v1/jobs
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateJob(w, r)
	case http.MethodGet:
		s.handleListJobs(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleJobsWithID handles /api/v1/jobs/:id/*
func (s *Server) handleJobsWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}

	jobID := parts[0]

	switch {
	case len(parts) == 1 || parts[1] == "status":
		s.handleGetJobStatus(w, r, jobID)
	case parts[1] == "stream":
		s.handleJobStream(w, r, jobID)
	case parts[1] == "trace":
		s.handleGetJobTrace(w, r, jobID)
	case parts[1] == "cancel":
		s.handleCancelJob(w, r, jobID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleCreateJob handles POST /api/v1/jobs
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var jc JobConfig
	if err := json.NewDecoder(r.Body).Decode(&jc); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	// Unset fields fall back to the server configuration.
	if jc.XTE0 == 0 {
		jc.XTE0 = s.cfg.XTE0
	}
	if jc.S0 == 0 {
		jc.S0 = s.cfg.S0
	}
	if jc.XTEMin == 0 {
		jc.XTEMin = s.cfg.XTEMin
	}
	if jc.XTEMax == 0 {
		jc.XTEMax = s.cfg.XTEMax
	}
	if jc.SMin == 0 {
		jc.SMin = s.cfg.SMin
	}
	if jc.SMax == 0 {
		jc.SMax = s.cfg.SMax
	}
	if jc.Optimizer == "" {
		jc.Optimizer = s.cfg.Optimizer
	}
	if jc.MaxIters <= 0 {
		jc.MaxIters = s.cfg.MaxIters
	}
	if jc.Seed == 0 {
		jc.Seed = s.cfg.Seed
	}

	if jc.XTEMin >= jc.XTEMax {
		http.Error(w, "xTE bounds inverted", http.StatusBadRequest)
		return
	}
	if jc.SMin >= jc.SMax {
		http.Error(w, "S bounds inverted", http.StatusBadRequest)
		return
	}

	job := s.jobManager.CreateJob(jc)
	go s.runJob(job)

	writeJSON(w, http.StatusCreated, job)
}

// handleListJobs handles GET /api/v1/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.jobManager.ListJobs())
}

// handleGetJobStatus handles GET /api/v1/jobs/:id/status
func (s *Server) handleGetJobStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	end := time.Now()
	if job.EndTime != nil {
		end = *job.EndTime
	}
	elapsed := end.Sub(job.StartTime)

	eps := 0.0
	if elapsed.Seconds() > 0 {
		eps = float64(job.Evaluations) / elapsed.Seconds()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"job":            job,
		"elapsedSeconds": elapsed.Seconds(),
		"eps":            eps,
	})
}

// handleGetJobTrace handles GET /api/v1/jobs/:id/trace
func (s *Server) handleGetJobTrace(w http.ResponseWriter, r *http.Request, jobID string) {
	if _, exists := s.jobManager.GetJob(jobID); !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	trace, err := store.ReadTrace(s.cfg.WorkDir, jobID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read trace: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, trace)
}

// handleCancelJob handles POST /api/v1/jobs/:id/cancel
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request, jobID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.jobManager.CancelJob(jobID) {
		http.Error(w, "Job not found or not cancellable", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "cancelling"})
}

// handleListRuns handles GET /api/v1/runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListRuns()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list runs: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// handleScatter handles GET /api/v1/scatter.png, rendering the scatter of
// all persisted runs.
func (s *Server) handleScatter(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListRuns()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list runs: %v", err), http.StatusInternalServerError)
		return
	}

	ds := report.FromRecords(records)
	if ds.Len() == 0 {
		http.Error(w, "No completed runs to plot", http.StatusNotFound)
		return
	}

	tmp, err := os.CreateTemp("", "foilopt-scatter-*.png")
	if err != nil {
		http.Error(w, "Failed to create plot file", http.StatusInternalServerError)
		return
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	if err := report.Scatter(ds, tmp.Name()); err != nil {
		http.Error(w, fmt.Sprintf("Failed to render scatter: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, tmp.Name())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// corsMiddleware adds CORS headers for browser clients.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs every request with its duration.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"duration", time.Since(start))
	})
}
