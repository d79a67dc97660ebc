package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ozgoose/foilopt/internal/server"
)

var serverURL string

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Query server jobs",
	Long: `Queries the job server for status information.
If no job-id is provided, lists all jobs.
If a job-id is provided, shows detailed status for that job.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listServerJobs(fmt.Sprintf("%s/api/v1/jobs", serverURL))
	}
	return getServerJobStatus(fmt.Sprintf("%s/api/v1/jobs/%s/status", serverURL, args[0]), args[0])
}

func listServerJobs(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var jobs []server.Job
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	fmt.Printf("Found %d job(s):\n\n", len(jobs))
	for _, job := range jobs {
		fmt.Printf("Job ID: %s\n", job.ID)
		fmt.Printf("  State: %s\n", job.State)
		fmt.Printf("  Optimizer: %s\n", job.Config.Optimizer)
		if job.BestLift > 0 {
			fmt.Printf("  Cl_max: %.4f (xTE %.3f, S %.3f)\n", job.BestLift, job.XTE, job.S)
		}
		fmt.Println()
	}
	return nil
}

func getServerJobStatus(url, jobID string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("job not found: %s", jobID)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var status struct {
		Job            server.Job `json:"job"`
		ElapsedSeconds float64    `json:"elapsedSeconds"`
		EPS            float64    `json:"eps"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	job := status.Job
	fmt.Printf("Job: %s\n", job.ID)
	fmt.Printf("State: %s\n", job.State)
	fmt.Println()

	fmt.Println("Configuration:")
	fmt.Printf("  Start: (xTE %.3f, S %.3f)\n", job.Config.XTE0, job.Config.S0)
	fmt.Printf("  Bounds: xTE [%.3f, %.3f], S [%.3f, %.3f]\n",
		job.Config.XTEMin, job.Config.XTEMax, job.Config.SMin, job.Config.SMax)
	fmt.Printf("  Optimizer: %s (%d iterations)\n", job.Config.Optimizer, job.Config.MaxIters)
	fmt.Println()

	fmt.Println("Progress:")
	fmt.Printf("  Evaluations: %d (%d failed)\n", job.Evaluations, job.Failures)
	if job.BestLift > 0 {
		fmt.Printf("  Cl_max: %.4f at alpha %.2f deg\n", job.BestLift, job.Alpha)
		fmt.Printf("  Optimum: (xTE %.3f, S %.3f)\n", job.XTE, job.S)
	}
	if job.GeometryID != "" {
		fmt.Printf("  Geometry: %s\n", job.GeometryID)
	}

	elapsed := time.Duration(status.ElapsedSeconds * float64(time.Second))
	fmt.Printf("  Elapsed: %s\n", elapsed.Round(time.Millisecond))
	if status.EPS > 0 {
		fmt.Printf("  Throughput: %.2f evaluations/sec\n", status.EPS)
	}

	if job.Error != "" {
		fmt.Printf("\nError: %s\n", job.Error)
	}
	return nil
}
