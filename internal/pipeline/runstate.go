package pipeline

import (
	"sync"

	"marketminds/internal/types"
)

// RunState is the single-flight guard for one orchestrator kind. The mutex
// makes TryBegin an atomic check-and-set: two near-simultaneous triggers can
// never both observe "not running" and proceed.
type RunState struct {
	mu      sync.Mutex
	running bool
	last    *types.RunStats
}

func NewRunState() *RunState {
	return &RunState{}
}

// TryBegin claims the run slot. It returns false when a run is already in
// flight, in which case the caller must not start another.
func (s *RunState) TryBegin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false
	}
	s.running = true
	return true
}

// Finish releases the run slot and records the run's stats.
func (s *RunState) Finish(stats *types.RunStats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	s.last = stats
}

// Status reports the externally visible run state together with the stats of
// the last finished run.
func (s *RunState) Status() types.RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.running:
		return types.RunStatus{Phase: types.PhaseRunning, LastStats: s.last}
	case s.last != nil:
		return types.RunStatus{Phase: types.PhaseCompleted, LastStats: s.last}
	default:
		return types.RunStatus{Phase: types.PhaseIdle}
	}
}
