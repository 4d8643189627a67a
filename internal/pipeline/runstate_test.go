package pipeline

import (
	"sync"
	"testing"

	"marketminds/internal/types"
)

func TestRunStateLifecycle(t *testing.T) {
	s := NewRunState()

	if got := s.Status(); got.Phase != types.PhaseIdle {
		t.Errorf("Expected idle before first run, got %s", got.Phase)
	}

	if !s.TryBegin() {
		t.Fatal("Expected TryBegin to succeed on idle state")
	}
	if got := s.Status(); got.Phase != types.PhaseRunning {
		t.Errorf("Expected running after TryBegin, got %s", got.Phase)
	}
	if s.TryBegin() {
		t.Error("Expected second TryBegin to fail while running")
	}

	stats := &types.RunStats{SuccessCount: 5}
	s.Finish(stats)

	got := s.Status()
	if got.Phase != types.PhaseCompleted {
		t.Errorf("Expected completed after Finish, got %s", got.Phase)
	}
	if got.LastStats == nil || got.LastStats.SuccessCount != 5 {
		t.Errorf("Expected last stats retained, got %+v", got.LastStats)
	}

	// The slot is reusable after Finish.
	if !s.TryBegin() {
		t.Error("Expected TryBegin to succeed after Finish")
	}
}

func TestRunStateSingleFlight(t *testing.T) {
	s := NewRunState()

	const attempts = 50
	var wg sync.WaitGroup
	results := make(chan bool, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.TryBegin()
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for ok := range results {
		if ok {
			wins++
		}
	}
	if wins != 1 {
		t.Errorf("Expected exactly one concurrent TryBegin to win, got %d", wins)
	}
}
