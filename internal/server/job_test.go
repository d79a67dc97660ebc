package server

import (
	"testing"
	"time"
)

func TestJobManagerCreateAndGet(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(JobConfig{Optimizer: "lbfgs", MaxIters: 10})
	if job.ID == "" {
		t.Fatal("Job ID is empty")
	}
	if job.State != StatePending {
		t.Errorf("New job state = %s, want pending", job.State)
	}

	got, ok := jm.GetJob(job.ID)
	if !ok {
		t.Fatal("GetJob did not find created job")
	}
	if got.Config.Optimizer != "lbfgs" {
		t.Errorf("Config lost: %+v", got.Config)
	}

	if _, ok := jm.GetJob("nope"); ok {
		t.Error("GetJob found a job that does not exist")
	}
}

func TestJobManagerListAndUpdate(t *testing.T) {
	jm := NewJobManager()
	a := jm.CreateJob(JobConfig{})
	jm.CreateJob(JobConfig{})

	if len(jm.ListJobs()) != 2 {
		t.Fatalf("ListJobs returned %d jobs, want 2", len(jm.ListJobs()))
	}

	ok := jm.UpdateJob(a.ID, func(j *Job) {
		j.State = StateRunning
		j.Evaluations = 7
	})
	if !ok {
		t.Fatal("UpdateJob failed for existing job")
	}

	got, _ := jm.GetJob(a.ID)
	if got.State != StateRunning || got.Evaluations != 7 {
		t.Errorf("Update not applied: %+v", got)
	}

	if jm.UpdateJob("nope", func(j *Job) {}) {
		t.Error("UpdateJob succeeded for missing job")
	}
}

func TestJobManagerReturnsSnapshots(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(JobConfig{})

	before, _ := jm.GetJob(job.ID)
	listed := jm.ListJobs()

	jm.UpdateJob(job.ID, func(j *Job) {
		j.State = StateRunning
		j.Evaluations = 3
	})

	// Copies handed out earlier must not see the later mutation.
	if before.State != StatePending || before.Evaluations != 0 {
		t.Errorf("GetJob result mutated after UpdateJob: %+v", before)
	}
	if listed[0].State != StatePending {
		t.Errorf("ListJobs result mutated after UpdateJob: %+v", listed[0])
	}

	after, _ := jm.GetJob(job.ID)
	if after.State != StateRunning || after.Evaluations != 3 {
		t.Errorf("Fresh snapshot missing update: %+v", after)
	}
}

func TestJobManagerConcurrentReadsDuringUpdates(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(JobConfig{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			jm.UpdateJob(job.ID, func(j *Job) {
				j.State = StateRunning
				j.Evaluations = i
				j.BestLift += 0.001
			})
		}
	}()

	// Status-style readers race the updater; snapshots keep this safe.
	for i := 0; i < 1000; i++ {
		if j, ok := jm.GetJob(job.ID); ok {
			_ = j.State
			_ = j.Evaluations
			_ = j.BestLift
		}
		for _, j := range jm.ListJobs() {
			_ = j.State
		}
	}
	<-done
}

func TestJobManagerCancel(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(JobConfig{})
	cancelled := false
	jm.UpdateJob(job.ID, func(j *Job) {
		j.State = StateRunning
		j.cancel = func() { cancelled = true }
	})

	if !jm.CancelJob(job.ID) {
		t.Fatal("CancelJob failed for running job")
	}
	if !cancelled {
		t.Error("Cancel function was not invoked")
	}

	// Terminal jobs are not cancellable.
	jm.UpdateJob(job.ID, func(j *Job) { j.State = StateCompleted })
	if jm.CancelJob(job.ID) {
		t.Error("CancelJob succeeded for completed job")
	}
	if jm.CancelJob("nope") {
		t.Error("CancelJob succeeded for missing job")
	}
}

func TestBroadcasterDeliversToSubscribers(t *testing.T) {
	eb := NewEventBroadcaster()

	ch := eb.Subscribe("job-1")
	defer eb.CleanupJob("job-1")

	event := ProgressEvent{JobID: "job-1", State: StateRunning, Evaluations: 3, BestLift: 1.1, Timestamp: time.Now()}
	eb.Broadcast(event)

	select {
	case got := <-ch:
		if got.Evaluations != 3 || got.BestLift != 1.1 {
			t.Errorf("Received event mismatch: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("Event not delivered")
	}
}

func TestBroadcasterReplaysLastEvent(t *testing.T) {
	eb := NewEventBroadcaster()
	defer eb.CleanupJob("job-1")

	eb.Broadcast(ProgressEvent{JobID: "job-1", Evaluations: 5, Timestamp: time.Now()})

	// A client arriving after the fact still gets the latest state.
	ch := eb.Subscribe("job-1")
	select {
	case got := <-ch:
		if got.Evaluations != 5 {
			t.Errorf("Replayed event mismatch: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("Last event not replayed to new subscriber")
	}
}

func TestBroadcasterUnsubscribeClosesChannel(t *testing.T) {
	eb := NewEventBroadcaster()

	ch := eb.Subscribe("job-1")
	eb.Unsubscribe("job-1", ch)

	if _, open := <-ch; open {
		t.Error("Channel still open after unsubscribe")
	}
}
