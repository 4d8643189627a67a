package interfaces

import (
	"context"

	"marketminds/internal/types"
)

// IngestionRunner executes one full ingestion pass over the tracked
// universe. Run never returns an error: per-asset failures are folded into
// the stats, and an unrecoverable setup problem is reported via Stats.Error.
type IngestionRunner interface {
	Run(ctx context.Context, lookbackDays int) *types.RunStats
}

// SentimentRunner scores pending headlines and recomputes the daily
// aggregates for a trailing window.
type SentimentRunner interface {
	Run(ctx context.Context, daysBack int) *types.RunStats
}
