package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketminds/internal/db"
	"marketminds/internal/ingest"
	"marketminds/internal/logger"
	"marketminds/internal/pipeline"
	"marketminds/internal/pipeline/pipelineobs"
	"marketminds/internal/sentiment"
	"marketminds/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx)
	must(err)

	loc, err := time.LoadLocation(cfg.Market.Timezone)
	must(err)

	gdb, err := db.Open(cfg.Database.DSN)
	must(err)

	cache := initializeCache(ctx, cfg)
	if cache != nil {
		defer cache.Close()
	}

	priceSource, priceName, err := initializePriceSource(ctx, cfg)
	must(err)

	newsSource, newsName, newsDisabled := initializeNewsSource(ctx, cfg)

	scorer, err := initializeScorer(ctx, cfg)
	must(err)

	ingestion := pipelineobs.WrapIngestion(pipeline.NewIngestion(pipeline.IngestionParams{
		DB:               gdb,
		PriceFetcher:     ingest.NewPriceFetcher(priceSource, priceName, cfg.Market.Exchange, cfg.Throttle(), loc),
		PriceStore:       ingest.NewPriceStore(gdb),
		HeadlineFetcher:  ingest.NewHeadlineFetcher(newsSource, newsName, cache, newsDisabled),
		HeadlineStore:    ingest.NewHeadlineStore(gdb),
		NewsLookbackDays: cfg.News.LookbackDays,
		NewsPageSize:     cfg.News.PageSize,
	}))

	sentimentRun := pipelineobs.WrapSentiment(pipeline.NewSentiment(gdb,
		sentiment.NewScoringService(gdb, scorer),
		sentiment.NewDailyAggregator(gdb),
		cfg.Scoring.BatchLimit))

	coord := pipeline.NewCoordinator(ingestion, sentimentRun, cfg.RunTimeout())

	// Daily trigger a couple of hours after market close, when providers
	// have settled EOD data.
	scheduler := pipeline.NewScheduler(cfg.Market.CloseHour+2, cfg.Pipeline.ScheduleMinute, loc, func() {
		coord.RunScheduled(cfg.Prices.LookbackDays, cfg.Pipeline.SentimentDaysBack)
	})
	scheduler.Start()
	defer scheduler.Stop()

	if cfg.Pipeline.RunOnStart {
		go coord.RunScheduled(cfg.Prices.LookbackDays, cfg.Pipeline.SentimentDaysBack)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	logger.Info(ctx, "Pipeline daemon started",
		"exchange", cfg.Market.Exchange,
		"prices", cfg.Prices.Source,
		"news", cfg.News.Source,
		"scoring", cfg.Scoring.Provider)

	<-sigc
	logger.Info(ctx, "Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = trace.Shutdown(shutdownCtx)
}
