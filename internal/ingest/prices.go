package ingest

import (
	"errors"
	"fmt"
	"time"

	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"marketminds/internal/db"
	"marketminds/internal/errs"
	"marketminds/internal/interfaces"
	"marketminds/internal/logger"
	"marketminds/internal/types"
)

// maxFetchAttempts caps retries against the price provider.
const maxFetchAttempts = 3

// PriceFetcher retrieves OHLCV history for one symbol with bounded
// retry/backoff. Calls to the provider are spaced by the configured throttle
// to stay under its rate limits.
type PriceFetcher struct {
	source     interfaces.PriceSource
	sourceName string
	normalizer SymbolNormalizer
	loc        *time.Location
	limiter    *rate.Limiter

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

// NewPriceFetcher builds a fetcher for the given provider. throttle is the
// minimum spacing between provider calls; zero disables throttling.
func NewPriceFetcher(source interfaces.PriceSource, sourceName, exchange string, throttle time.Duration, loc *time.Location) *PriceFetcher {
	limit := rate.Inf
	if throttle > 0 {
		limit = rate.Every(throttle)
	}
	return &PriceFetcher{
		source:     source,
		sourceName: sourceName,
		normalizer: SymbolNormalizer{Exchange: exchange},
		loc:        loc,
		limiter:    rate.NewLimiter(limit, 1),
		sleep:      time.Sleep,
	}
}

// Fetch returns up to lookbackDays of daily bars for symbol, in ascending
// date order. An empty provider result fails immediately: the provider has
// nothing for this symbol and retrying will not change that. Transport
// errors are retried with exponential backoff; exhausting the attempt cap
// surfaces an ExternalAPIError wrapping the last cause. Nothing is written
// on any failure path.
func (f *PriceFetcher) Fetch(ctx context.Context, symbol string, lookbackDays int) ([]types.PriceBar, error) {
	querySymbol := f.normalizer.Normalize(symbol)
	end := time.Now().In(f.loc)
	start := end.AddDate(0, 0, -lookbackDays)

	var lastErr error
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		logger.Info(ctx, "Fetching OHLCV", "symbol", querySymbol, "attempt", attempt+1)

		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		bars, err := f.source.Query(ctx, querySymbol, start, end)
		if err == nil {
			if len(bars) == 0 {
				return nil, &errs.ExternalAPIError{
					API:     f.sourceName,
					Message: fmt.Sprintf("no data returned for %s", querySymbol),
				}
			}
			logger.Info(ctx, "Fetched OHLCV", "symbol", querySymbol, "rows", len(bars))
			return bars, nil
		}

		lastErr = err
		logger.Warn(ctx, "Price fetch attempt failed", "symbol", querySymbol, "attempt", attempt+1, "error", err)
		if attempt < maxFetchAttempts-1 {
			f.sleep(time.Duration(1<<attempt) * time.Second)
		}
	}

	return nil, &errs.ExternalAPIError{
		API:     f.sourceName,
		Message: fmt.Sprintf("failed after %d attempts: %v", maxFetchAttempts, lastErr),
		Err:     lastErr,
	}
}

// PriceStore idempotently persists fetched bars keyed by (symbol, date).
type PriceStore struct {
	db *gorm.DB
}

func NewPriceStore(gdb *gorm.DB) *PriceStore {
	return &PriceStore{db: gdb}
}

// Store upserts the batch in a single transaction: existing rows have their
// OHLCV fields overwritten, missing ones are inserted. Returns the number of
// rows processed (inserted + updated). A mid-batch failure rolls back the
// whole batch.
func (s *PriceStore) Store(symbol string, bars []types.PriceBar) (int, error) {
	count := 0

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, bar := range bars {
			day := DateOf(bar.Date)

			var existing db.Price
			err := tx.Where("symbol = ? AND date = ?", symbol, day).First(&existing).Error
			switch {
			case err == nil:
				existing.Open = decimal.NewFromFloat(bar.Open)
				existing.High = decimal.NewFromFloat(bar.High)
				existing.Low = decimal.NewFromFloat(bar.Low)
				existing.Close = decimal.NewFromFloat(bar.Close)
				existing.Volume = bar.Volume
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				record := db.Price{
					Symbol: symbol,
					Date:   day,
					Open:   decimal.NewFromFloat(bar.Open),
					High:   decimal.NewFromFloat(bar.High),
					Low:    decimal.NewFromFloat(bar.Low),
					Close:  decimal.NewFromFloat(bar.Close),
					Volume: bar.Volume,
				}
				if err := tx.Create(&record).Error; err != nil {
					return err
				}
			default:
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// DateOf truncates a timestamp to its calendar date, normalized to UTC so
// (symbol, date) lookups compare equal regardless of source timezone.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
