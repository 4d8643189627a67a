package pipeline

import (
	"context"
	"time"

	"gorm.io/gorm"

	"marketminds/internal/db"
	"marketminds/internal/ingest"
	"marketminds/internal/interfaces"
	"marketminds/internal/logger"
	"marketminds/internal/sentiment"
	"marketminds/internal/trace"
	"marketminds/internal/types"
)

// maxScoreIterations caps the backlog-draining loop so a sentiment run
// terminates even while headlines keep arriving.
const maxScoreIterations = 10

// defaultScoreBatchLimit is the per-iteration scoring batch size.
const defaultScoreBatchLimit = 100

// Sentiment runs the two-phase sentiment pass: bounded iterative scoring of
// the unscored backlog, then daily aggregate recomputation over a trailing
// window for every tracked asset.
type Sentiment struct {
	db         *gorm.DB
	scorer     *sentiment.ScoringService
	aggregator *sentiment.DailyAggregator
	batchLimit int
}

var _ interfaces.SentimentRunner = (*Sentiment)(nil)

func NewSentiment(gdb *gorm.DB, scorer *sentiment.ScoringService, aggregator *sentiment.DailyAggregator, batchLimit int) *Sentiment {
	if batchLimit <= 0 {
		batchLimit = defaultScoreBatchLimit
	}
	return &Sentiment{
		db:         gdb,
		scorer:     scorer,
		aggregator: aggregator,
		batchLimit: batchLimit,
	}
}

// Run never returns an error to its caller; a fatal problem (scorer
// mismatch, persistence failure) stops the run and is reported through
// Stats.Error for the operator.
func (p *Sentiment) Run(ctx context.Context, daysBack int) *types.RunStats {
	ctx, span := trace.StartSpan(ctx, "sentiment.Run")
	defer span.End()

	stats := &types.RunStats{StartedAt: time.Now()}
	logger.Info(ctx, "Starting sentiment run", "days_back", daysBack)

	scored, err := p.scoreAllPending(ctx)
	stats.HeadlinesScored = scored
	if err != nil {
		logger.ErrorWithErr(ctx, "Sentiment scoring failed", err)
		stats.Error = "scoring failed: " + err.Error()
		return stats
	}

	var assets []db.Asset
	if err := p.db.Find(&assets).Error; err != nil {
		stats.Error = "failed to load tracked assets: " + err.Error()
		return stats
	}
	stats.TotalAssets = len(assets)

	end := ingest.DateOf(time.Now())
	start := end.AddDate(0, 0, -daysBack)

	for _, asset := range assets {
		persisted, err := p.aggregator.ProcessDateRange(ctx, asset.Symbol, start, end)
		stats.DailyRecords += persisted
		if err != nil {
			// Persistence problems need operator intervention; stop here
			// rather than grind through the rest of the universe.
			logger.ErrorWithErr(ctx, "Aggregation failed", err, "symbol", asset.Symbol)
			stats.FailureCount++
			stats.Error = "aggregation failed for " + asset.Symbol + ": " + err.Error()
			return stats
		}
		stats.SuccessCount++
		logger.Debug(ctx, "Aggregates recomputed", "symbol", asset.Symbol, "persisted", persisted)
	}

	logger.Info(ctx, "Sentiment run complete",
		"headlines_scored", stats.HeadlinesScored,
		"daily_records", stats.DailyRecords,
		"assets", stats.TotalAssets,
	)
	return stats
}

// scoreAllPending drains the unscored backlog in batches. It stops when a
// batch comes back short (backlog empty) or after maxScoreIterations,
// whichever is first.
func (p *Sentiment) scoreAllPending(ctx context.Context) (int, error) {
	total := 0
	for i := 0; i < maxScoreIterations; i++ {
		scored, err := p.scorer.ScorePending(ctx, p.batchLimit)
		if err != nil {
			return total, err
		}
		total += scored
		if scored < p.batchLimit {
			break
		}
	}
	return total, nil
}
