package pipeline

import (
	"context"
	"time"

	"marketminds/internal/interfaces"
	"marketminds/internal/logger"
	"marketminds/internal/types"
)

// Coordinator owns the single-flight state for both orchestrator kinds and
// is the surface a trigger (scheduler, API handler, CLI) talks to. One
// ingestion run and one sentiment run may be in flight at a time,
// independently of each other.
type Coordinator struct {
	ingestion interfaces.IngestionRunner
	sentiment interfaces.SentimentRunner

	ingestState    *RunState
	sentimentState *RunState

	runTimeout time.Duration
}

func NewCoordinator(ingestion interfaces.IngestionRunner, sentimentRunner interfaces.SentimentRunner, runTimeout time.Duration) *Coordinator {
	return &Coordinator{
		ingestion:      ingestion,
		sentiment:      sentimentRunner,
		ingestState:    NewRunState(),
		sentimentState: NewRunState(),
		runTimeout:     runTimeout,
	}
}

// TriggerIngestion starts an ingestion run in the background. If one is
// already in flight it reports the in-progress status instead of starting a
// second run.
func (c *Coordinator) TriggerIngestion(days int) types.RunStatus {
	if !c.ingestState.TryBegin() {
		return c.ingestState.Status()
	}

	go func() {
		ctx, cancel := c.runContext()
		defer cancel()
		c.ingestState.Finish(c.ingestion.Run(ctx, days))
	}()

	return types.RunStatus{Phase: types.PhaseStarted}
}

// TriggerSentiment starts a sentiment run in the background under the same
// single-flight rules.
func (c *Coordinator) TriggerSentiment(daysBack int) types.RunStatus {
	if !c.sentimentState.TryBegin() {
		return c.sentimentState.Status()
	}

	go func() {
		ctx, cancel := c.runContext()
		defer cancel()
		c.sentimentState.Finish(c.sentiment.Run(ctx, daysBack))
	}()

	return types.RunStatus{Phase: types.PhaseStarted}
}

// RunScheduled executes a full scheduled pass synchronously: ingestion
// followed by sentiment, each skipped (not queued) when already in flight.
func (c *Coordinator) RunScheduled(lookbackDays, sentimentDaysBack int) {
	ctx, cancel := c.runContext()
	defer cancel()

	if c.ingestState.TryBegin() {
		c.ingestState.Finish(c.ingestion.Run(ctx, lookbackDays))
	} else {
		logger.Warn(ctx, "Scheduled trigger skipped, ingestion already running")
	}

	if c.sentimentState.TryBegin() {
		c.sentimentState.Finish(c.sentiment.Run(ctx, sentimentDaysBack))
	} else {
		logger.Warn(ctx, "Scheduled trigger skipped, sentiment run already running")
	}
}

// IngestionStatus reports {idle|running|completed} plus last-run stats.
func (c *Coordinator) IngestionStatus() types.RunStatus {
	return c.ingestState.Status()
}

// SentimentStatus reports {idle|running|completed} plus last-run stats.
func (c *Coordinator) SentimentStatus() types.RunStatus {
	return c.sentimentState.Status()
}

// runContext bounds a run with the configured overall deadline. There is no
// mid-run cancellation beyond it; triggers can only prevent new runs.
func (c *Coordinator) runContext() (context.Context, context.CancelFunc) {
	if c.runTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.runTimeout)
}
