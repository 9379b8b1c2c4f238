package jobs

import (
	"sync/atomic"
	"testing"
	"time"
)

func waitForIdle(t *testing.T, jm *JobManager) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		jm.mu.Lock()
		running := jm.running
		jm.mu.Unlock()
		if !running {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Job manager did not become idle in time")
}

func TestRunJob(t *testing.T) {
	jm := NewManager()

	var ran atomic.Bool
	jm.Register("test-job", func(ctx JobContext) {
		ran.Store(true)
	})

	if err := jm.RunJob("test-job", nil); err != nil {
		t.Fatalf("RunJob returned an error: %v", err)
	}
	waitForIdle(t, jm)

	if !ran.Load() {
		t.Error("Job task did not run")
	}

	statuses := jm.GetStatus()
	if len(statuses) != 1 {
		t.Fatalf("Expected 1 status entry, got %d", len(statuses))
	}
	if statuses[0].Status != "success" {
		t.Errorf("Expected status 'success', got '%s'", statuses[0].Status)
	}
}

func TestRunJobUnknown(t *testing.T) {
	jm := NewManager()
	if err := jm.RunJob("missing", nil); err == nil {
		t.Error("Expected an error for an unknown job name")
	}
}

func TestRunJobSingleFlight(t *testing.T) {
	jm := NewManager()

	release := make(chan struct{})
	jm.Register("slow-job", func(ctx JobContext) {
		<-release
	})
	jm.Register("other-job", func(ctx JobContext) {})

	if err := jm.RunJob("slow-job", nil); err != nil {
		t.Fatalf("RunJob returned an error: %v", err)
	}
	if err := jm.RunJob("other-job", nil); err == nil {
		t.Error("Expected an error while another job is running")
	}

	close(release)
	waitForIdle(t, jm)
}

func TestRunJobPanicRecovery(t *testing.T) {
	jm := NewManager()
	jm.Register("panicky", func(ctx JobContext) {
		panic("boom")
	})

	if err := jm.RunJob("panicky", nil); err != nil {
		t.Fatalf("RunJob returned an error: %v", err)
	}
	waitForIdle(t, jm)

	statuses := jm.GetStatus()
	if statuses[0].Status != "failed" {
		t.Errorf("Expected status 'failed' after panic, got '%s'", statuses[0].Status)
	}
}
