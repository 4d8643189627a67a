package pipeline

import (
	"context"
	"testing"
	"time"

	"marketminds/internal/types"
)

// blockingRunner blocks until released so tests can observe the running state.
type blockingRunner struct {
	release chan struct{}
	stats   *types.RunStats
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{
		release: make(chan struct{}),
		stats:   &types.RunStats{SuccessCount: 1},
	}
}

func (r *blockingRunner) Run(ctx context.Context, days int) *types.RunStats {
	<-r.release
	return r.stats
}

func waitForPhase(t *testing.T, status func() types.RunStatus, want types.RunPhase) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if status().Phase == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("Timed out waiting for phase %s, currently %s", want, status().Phase)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestTriggerIngestionSingleFlight(t *testing.T) {
	ingestion := newBlockingRunner()
	sentimentRun := newBlockingRunner()
	coord := NewCoordinator(ingestion, sentimentRun, 0)

	got := coord.TriggerIngestion(30)
	if got.Phase != types.PhaseStarted {
		t.Fatalf("Expected started, got %s", got.Phase)
	}
	waitForPhase(t, coord.IngestionStatus, types.PhaseRunning)

	// A second trigger while running reports the in-flight run.
	got = coord.TriggerIngestion(30)
	if got.Phase != types.PhaseRunning {
		t.Errorf("Expected running for concurrent trigger, got %s", got.Phase)
	}

	close(ingestion.release)
	waitForPhase(t, coord.IngestionStatus, types.PhaseCompleted)

	status := coord.IngestionStatus()
	if status.LastStats == nil || status.LastStats.SuccessCount != 1 {
		t.Errorf("Expected last stats from finished run, got %+v", status.LastStats)
	}
}

func TestTriggersAreIndependent(t *testing.T) {
	ingestion := newBlockingRunner()
	sentimentRun := newBlockingRunner()
	coord := NewCoordinator(ingestion, sentimentRun, 0)

	coord.TriggerIngestion(30)
	waitForPhase(t, coord.IngestionStatus, types.PhaseRunning)

	// An in-flight ingestion does not block a sentiment run.
	got := coord.TriggerSentiment(30)
	if got.Phase != types.PhaseStarted {
		t.Errorf("Expected sentiment trigger to start, got %s", got.Phase)
	}

	close(ingestion.release)
	close(sentimentRun.release)
	waitForPhase(t, coord.IngestionStatus, types.PhaseCompleted)
	waitForPhase(t, coord.SentimentStatus, types.PhaseCompleted)
}

// instantRunner completes immediately, recording how many times it ran.
type instantRunner struct {
	runs int
}

func (r *instantRunner) Run(ctx context.Context, days int) *types.RunStats {
	r.runs++
	return &types.RunStats{}
}

func TestRunScheduled(t *testing.T) {
	ingestion := &instantRunner{}
	sentimentRun := &instantRunner{}
	coord := NewCoordinator(ingestion, sentimentRun, time.Minute)

	coord.RunScheduled(30, 30)

	if ingestion.runs != 1 || sentimentRun.runs != 1 {
		t.Errorf("Expected one run of each, got %d/%d", ingestion.runs, sentimentRun.runs)
	}
	if coord.IngestionStatus().Phase != types.PhaseCompleted {
		t.Errorf("Expected ingestion completed, got %s", coord.IngestionStatus().Phase)
	}
	if coord.SentimentStatus().Phase != types.PhaseCompleted {
		t.Errorf("Expected sentiment completed, got %s", coord.SentimentStatus().Phase)
	}
}
