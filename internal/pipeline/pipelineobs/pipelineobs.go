package pipelineobs

import (
	"context"
	"time"

	"marketminds/internal/interfaces"
	"marketminds/internal/logger"
	"marketminds/internal/trace"
	"marketminds/internal/types"
)

type observableIngestion struct {
	runner interfaces.IngestionRunner
}

var _ interfaces.IngestionRunner = (*observableIngestion)(nil)

// WrapIngestion wraps an ingestion runner with logging and tracing.
func WrapIngestion(runner interfaces.IngestionRunner) interfaces.IngestionRunner {
	return &observableIngestion{runner: runner}
}

func (oi *observableIngestion) Run(ctx context.Context, lookbackDays int) *types.RunStats {
	ctx, span := trace.StartSpan(ctx, "pipeline.ingestion")
	defer span.End()

	start := time.Now()
	stats := oi.runner.Run(ctx, lookbackDays)

	logger.Info(ctx, "Ingestion run finished",
		"assets", stats.TotalAssets,
		"success", stats.SuccessCount,
		"failed", stats.FailureCount,
		"price_records", stats.PriceRecords,
		"headline_records", stats.HeadlineRecords,
		"error", stats.Error,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return stats
}

type observableSentiment struct {
	runner interfaces.SentimentRunner
}

var _ interfaces.SentimentRunner = (*observableSentiment)(nil)

// WrapSentiment wraps a sentiment runner with logging and tracing.
func WrapSentiment(runner interfaces.SentimentRunner) interfaces.SentimentRunner {
	return &observableSentiment{runner: runner}
}

func (os *observableSentiment) Run(ctx context.Context, daysBack int) *types.RunStats {
	ctx, span := trace.StartSpan(ctx, "pipeline.sentiment")
	defer span.End()

	start := time.Now()
	stats := os.runner.Run(ctx, daysBack)

	logger.Info(ctx, "Sentiment run finished",
		"headlines_scored", stats.HeadlinesScored,
		"daily_records", stats.DailyRecords,
		"assets", stats.TotalAssets,
		"error", stats.Error,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return stats
}
