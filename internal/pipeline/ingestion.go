package pipeline

import (
	"context"
	"time"

	"gorm.io/gorm"

	"marketminds/internal/db"
	"marketminds/internal/ingest"
	"marketminds/internal/interfaces"
	"marketminds/internal/logger"
	"marketminds/internal/trace"
	"marketminds/internal/types"
)

// Ingestion drives the price and headline fetchers across every tracked
// asset. Assets are processed strictly sequentially to respect upstream
// throttling, and each one is fault-isolated: a failure is counted and the
// run moves on to the next asset.
type Ingestion struct {
	db            *gorm.DB
	priceFetcher  *ingest.PriceFetcher
	priceStore    *ingest.PriceStore
	headlineFetch *ingest.HeadlineFetcher
	headlineStore *ingest.HeadlineStore

	newsLookbackDays int
	newsPageSize     int

	// OnComplete, when set, is invoked after every asset regardless of
	// outcome. Panics inside it are recovered and logged, never propagated.
	OnComplete func(symbol string, ok bool)
}

var _ interfaces.IngestionRunner = (*Ingestion)(nil)

// IngestionParams collects the collaborators of an ingestion run.
type IngestionParams struct {
	DB               *gorm.DB
	PriceFetcher     *ingest.PriceFetcher
	PriceStore       *ingest.PriceStore
	HeadlineFetcher  *ingest.HeadlineFetcher
	HeadlineStore    *ingest.HeadlineStore
	NewsLookbackDays int
	NewsPageSize     int
}

func NewIngestion(p IngestionParams) *Ingestion {
	return &Ingestion{
		db:               p.DB,
		priceFetcher:     p.PriceFetcher,
		priceStore:       p.PriceStore,
		headlineFetch:    p.HeadlineFetcher,
		headlineStore:    p.HeadlineStore,
		newsLookbackDays: p.NewsLookbackDays,
		newsPageSize:     p.NewsPageSize,
	}
}

// Run executes one ingestion pass over all tracked assets and returns the
// run statistics. It never returns an error: per-asset failures are folded
// into the counters, and an empty universe ends the run early with the
// problem recorded in Stats.Error.
func (p *Ingestion) Run(ctx context.Context, lookbackDays int) *types.RunStats {
	ctx, span := trace.StartSpan(ctx, "ingestion.Run")
	defer span.End()

	stats := &types.RunStats{StartedAt: time.Now()}
	logger.Info(ctx, "Starting ingestion run", "lookback_days", lookbackDays)

	var assets []db.Asset
	if err := p.db.Find(&assets).Error; err != nil {
		logger.ErrorWithErr(ctx, "Failed to load tracked assets", err)
		stats.Error = "failed to load tracked assets: " + err.Error()
		return stats
	}

	stats.TotalAssets = len(assets)
	if len(assets) == 0 {
		logger.Warn(ctx, "No assets to process, seed the asset table first")
		stats.Error = "no assets to process"
		return stats
	}

	for _, asset := range assets {
		ok := p.processAsset(ctx, asset, lookbackDays, stats)
		if ok {
			stats.SuccessCount++
		} else {
			stats.FailureCount++
		}
		p.notifyComplete(ctx, asset.Symbol, ok)
	}

	logger.Info(ctx, "Ingestion run complete",
		"success", stats.SuccessCount,
		"failed", stats.FailureCount,
		"price_records", stats.PriceRecords,
		"headline_records", stats.HeadlineRecords,
	)
	return stats
}

// processAsset fetches and stores prices then headlines for one asset. Any
// error marks the asset failed without aborting the run.
func (p *Ingestion) processAsset(ctx context.Context, asset db.Asset, lookbackDays int, stats *types.RunStats) bool {
	symbol := asset.Symbol
	logger.Info(ctx, "Processing asset", "symbol", symbol, "name", asset.Name)

	bars, err := p.priceFetcher.Fetch(ctx, symbol, lookbackDays)
	if err != nil {
		logger.ErrorWithErr(ctx, "Asset failed during price fetch", err, "symbol", symbol)
		return false
	}
	priceCount, err := p.priceStore.Store(symbol, bars)
	if err != nil {
		logger.ErrorWithErr(ctx, "Asset failed during price store", err, "symbol", symbol)
		return false
	}
	stats.PriceRecords += priceCount

	articles, err := p.headlineFetch.Fetch(ctx, symbol, p.newsLookbackDays, p.newsPageSize)
	if err != nil {
		logger.ErrorWithErr(ctx, "Asset failed during headline fetch", err, "symbol", symbol)
		return false
	}
	headlineCount, err := p.headlineStore.Store(ctx, symbol, articles)
	if err != nil {
		logger.ErrorWithErr(ctx, "Asset failed during headline store", err, "symbol", symbol)
		return false
	}
	stats.HeadlineRecords += headlineCount

	logger.Info(ctx, "Asset completed", "symbol", symbol, "prices", priceCount, "headlines", headlineCount)
	return true
}

func (p *Ingestion) notifyComplete(ctx context.Context, symbol string, ok bool) {
	if p.OnComplete == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "Completion callback panicked", "symbol", symbol, "panic", r)
		}
	}()
	p.OnComplete(symbol, ok)
}
