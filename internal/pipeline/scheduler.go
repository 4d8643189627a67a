package pipeline

import (
	"context"
	"sync"
	"time"

	"marketminds/internal/logger"
)

// Scheduler fires a run function once per day at a fixed local time,
// intended for shortly after market close. Stopping the scheduler cancels
// future triggers without touching an in-flight run.
type Scheduler struct {
	hour   int
	minute int
	loc    *time.Location
	run    func()

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	// now is swapped out in tests.
	now func() time.Time
}

func NewScheduler(hour, minute int, loc *time.Location, run func()) *Scheduler {
	return &Scheduler{
		hour:   hour,
		minute: minute,
		loc:    loc,
		run:    run,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		now:    time.Now,
	}
}

// Start launches the trigger loop.
func (s *Scheduler) Start() {
	next := s.nextTrigger(s.now())
	logger.Info(context.Background(), "Pipeline scheduled",
		"at", next.Format("15:04"),
		"timezone", s.loc.String(),
		"first_run", next.Format(time.RFC3339),
	)
	go s.loop()
}

func (s *Scheduler) loop() {
	defer close(s.done)

	for {
		now := s.now()
		timer := time.NewTimer(s.nextTrigger(now).Sub(now))

		select {
		case <-timer.C:
			s.run()
		case <-s.stop:
			timer.Stop()
			return
		}
	}
}

// Stop cancels future triggers and waits for the loop to exit. Safe to call
// more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
	logger.Info(context.Background(), "Pipeline scheduler stopped")
}

// nextTrigger returns the next daily trigger instant strictly after now.
func (s *Scheduler) nextTrigger(now time.Time) time.Time {
	now = now.In(s.loc)
	candidate := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, s.loc)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}
