package pipeline

import (
	"testing"
	"time"
)

func TestNextTriggerSameDay(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("Failed to load timezone: %v", err)
	}

	s := NewScheduler(17, 30, ist, func() {})

	now := time.Date(2024, 3, 5, 10, 0, 0, 0, ist)
	next := s.nextTrigger(now)

	want := time.Date(2024, 3, 5, 17, 30, 0, 0, ist)
	if !next.Equal(want) {
		t.Errorf("Expected %v, got %v", want, next)
	}
}

func TestNextTriggerRollsToNextDay(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("Failed to load timezone: %v", err)
	}

	s := NewScheduler(17, 30, ist, func() {})

	// Exactly at the trigger instant the next run is tomorrow.
	at := time.Date(2024, 3, 5, 17, 30, 0, 0, ist)
	next := s.nextTrigger(at)
	want := time.Date(2024, 3, 6, 17, 30, 0, 0, ist)
	if !next.Equal(want) {
		t.Errorf("Expected %v, got %v", want, next)
	}

	// Past the trigger instant too.
	next = s.nextTrigger(at.Add(time.Minute))
	if !next.Equal(want) {
		t.Errorf("Expected %v, got %v", want, next)
	}
}

func TestNextTriggerConvertsTimezone(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("Failed to load timezone: %v", err)
	}

	s := NewScheduler(17, 30, ist, func() {})

	// 13:00 UTC is 18:30 IST, one hour past the trigger.
	now := time.Date(2024, 3, 5, 13, 0, 0, 0, time.UTC)
	next := s.nextTrigger(now)

	want := time.Date(2024, 3, 6, 17, 30, 0, 0, ist)
	if !next.Equal(want) {
		t.Errorf("Expected %v, got %v", want, next)
	}
}

func TestSchedulerStop(t *testing.T) {
	s := NewScheduler(23, 59, time.UTC, func() {})
	s.Start()

	done := make(chan struct{})
	go func() {
		s.Stop()
		s.Stop() // safe to call twice
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Scheduler did not stop in time")
	}
}
