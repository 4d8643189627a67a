package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"marketminds/internal/errs"
	"marketminds/internal/ingest"
	"marketminds/internal/interfaces"
	"marketminds/internal/logger"
	"marketminds/internal/scoring/lexicon"
	"marketminds/internal/scoring/remote"
	"marketminds/internal/scoring/scoringobs"
	"marketminds/internal/sources/kite"
	"marketminds/internal/sources/newsapi"
	"marketminds/internal/sources/scraper"
	"marketminds/internal/sources/yahoo"
	"marketminds/internal/store"
	"marketminds/internal/trace"

	"github.com/joho/godotenv"
)

const scraperTimeout = 30 * time.Second

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// initializePriceSource builds the configured price provider. The Kite
// provider needs credentials and an instrument dump; Yahoo needs nothing.
func initializePriceSource(ctx context.Context, cfg *store.Config) (interfaces.PriceSource, string, error) {
	switch cfg.Prices.Source {
	case "KITE":
		apiKey := os.Getenv("KITE_API_KEY")
		accessToken := os.Getenv("KITE_ACCESS_TOKEN")
		if apiKey == "" || accessToken == "" {
			return nil, "", fmt.Errorf("prices.source is KITE but KITE_API_KEY or KITE_ACCESS_TOKEN is unset")
		}

		src := kite.NewSource(apiKey, accessToken)
		if err := src.LoadInstruments(ctx); err != nil {
			return nil, "", err
		}
		logger.Info(ctx, "Using Kite Connect for price data")
		return src, "kite", nil

	default:
		logger.Info(ctx, "Using Yahoo Finance for price data")
		return yahoo.NewSource(), "yahoo", nil
	}
}

// initializeNewsSource builds the configured headline provider. With the
// hosted API selected but no key configured, the provider is soft-disabled
// rather than failing startup: headlines are optional enrichment.
func initializeNewsSource(ctx context.Context, cfg *store.Config) (interfaces.NewsSource, string, bool) {
	switch cfg.News.Source {
	case "SCRAPER":
		logger.Info(ctx, "Using portal scraper for headlines")
		return scraper.NewSource(scraperTimeout), "scraper", false

	default:
		apiKey := cfg.NewsAPIKey()
		if apiKey == "" {
			logger.Warn(ctx, "No news API key configured - headline ingestion disabled", "env", cfg.News.APIKeyEnv)
			return nil, "newsapi", true
		}
		logger.Info(ctx, "Using hosted news API for headlines")
		return newsapi.NewSource(apiKey), "newsapi", false
	}
}

// initializeScorer builds the configured sentiment scorer, probes it once,
// and wraps it with observability. The scorer is chosen here, at startup,
// so a misconfigured remote endpoint fails fast instead of surfacing
// mid-run.
func initializeScorer(ctx context.Context, cfg *store.Config) (interfaces.SentimentScorer, error) {
	var scorer interfaces.SentimentScorer
	switch cfg.Scoring.Provider {
	case "REMOTE":
		scorer = remote.NewScorer(cfg.Scoring.Endpoint)
	default:
		scorer = lexicon.NewScorer()
	}

	if err := scorer.Ping(ctx); err != nil {
		return nil, &errs.ModelNotLoadedError{Model: scorer.Name(), Err: err}
	}
	logger.Info(ctx, "Sentiment scorer ready", "provider", scorer.Name())

	return scoringobs.Wrap(scorer), nil
}

// initializeCache connects the article cache when Redis is configured.
// Returns nil when it is not; fetchers treat a nil cache as a pass-through.
func initializeCache(ctx context.Context, cfg *store.Config) *ingest.ArticleCache {
	if cfg.Redis.URL == "" {
		logger.Info(ctx, "No Redis configured - article caching disabled")
		return nil
	}

	cache, err := ingest.NewArticleCache(cfg.Redis.URL)
	if err != nil {
		logger.Warn(ctx, "Failed to connect article cache - continuing without it", "error", err)
		return nil
	}
	logger.Info(ctx, "Article cache connected")
	return cache
}
