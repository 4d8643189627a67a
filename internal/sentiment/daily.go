package sentiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"marketminds/internal/db"
	"marketminds/internal/errs"
	"marketminds/internal/ingest"
	"marketminds/internal/logger"
	"marketminds/internal/types"
)

// maxAggregationRangeDays caps a single date-range recomputation so a bad
// input cannot turn the closed-range loop into a runaway.
const maxAggregationRangeDays = 366

// DailyAggregator computes and idempotently upserts one sentiment aggregate
// per (symbol, date).
type DailyAggregator struct {
	db *gorm.DB
}

func NewDailyAggregator(gdb *gorm.DB) *DailyAggregator {
	return &DailyAggregator{db: gdb}
}

// ComputeForDate aggregates the scored headlines for (symbol, day). With no
// scored headlines it returns the explicit no-data summary (count 0), which
// callers must distinguish from a genuinely neutral average before
// persisting anything.
func (a *DailyAggregator) ComputeForDate(symbol string, day time.Time) (types.DailySummary, error) {
	day = ingest.DateOf(day)

	var rows []db.Headline
	err := a.db.
		Where("symbol = ? AND date = ? AND sentiment_score IS NOT NULL", symbol, day).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return types.DailySummary{}, err
	}

	if len(rows) == 0 {
		return types.DailySummary{}, nil
	}

	var sum float64
	topIdx := 0
	topAbs := -1.0
	for i, row := range rows {
		score, _ := row.SentimentScore.Decimal.Float64()
		sum += score
		// Strict inequality keeps the first occurrence on ties.
		if abs := math.Abs(score); abs > topAbs {
			topAbs = abs
			topIdx = i
		}
	}

	avg := math.Round(sum/float64(len(rows))*10000) / 10000
	return types.DailySummary{
		AvgSentiment:  avg,
		HeadlineCount: len(rows),
		TopHeadline:   rows[topIdx].Title,
	}, nil
}

// Store upserts the aggregate for (symbol, day), overwriting an existing row
// in place.
func (a *DailyAggregator) Store(symbol string, day time.Time, summary types.DailySummary) error {
	day = ingest.DateOf(day)

	var existing db.DailySentiment
	err := a.db.Where("symbol = ? AND date = ?", symbol, day).First(&existing).Error
	switch {
	case err == nil:
		existing.AvgSentiment = decimal.NewFromFloat(summary.AvgSentiment)
		existing.HeadlineCount = summary.HeadlineCount
		existing.TopHeadline = summary.TopHeadline
		return a.db.Save(&existing).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		record := db.DailySentiment{
			Symbol:        symbol,
			Date:          day,
			AvgSentiment:  decimal.NewFromFloat(summary.AvgSentiment),
			HeadlineCount: summary.HeadlineCount,
			TopHeadline:   summary.TopHeadline,
		}
		return a.db.Create(&record).Error
	default:
		return err
	}
}

// ComputeAndStore computes the aggregate for (symbol, day) and persists it
// only when there is data. A no-data result never overwrites a previously
// stored aggregate. Returns nil when nothing was persisted.
func (a *DailyAggregator) ComputeAndStore(symbol string, day time.Time) (*types.DailySummary, error) {
	summary, err := a.ComputeForDate(symbol, day)
	if err != nil {
		return nil, err
	}
	if summary.HeadlineCount == 0 {
		return nil, nil
	}
	if err := a.Store(symbol, day, summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ProcessDateRange recomputes aggregates for every date in the closed range
// [start, end], persisting each non-empty result, and returns how many were
// persisted. The range is validated before iterating.
func (a *DailyAggregator) ProcessDateRange(ctx context.Context, symbol string, start, end time.Time) (int, error) {
	start = ingest.DateOf(start)
	end = ingest.DateOf(end)

	if end.Before(start) {
		return 0, &errs.DataValidationError{
			Field:   "date_range",
			Message: fmt.Sprintf("end %s before start %s", end.Format("2006-01-02"), start.Format("2006-01-02")),
		}
	}
	if days := int(end.Sub(start).Hours() / 24); days > maxAggregationRangeDays {
		return 0, &errs.DataValidationError{
			Field:   "date_range",
			Message: fmt.Sprintf("range of %d days exceeds cap of %d", days, maxAggregationRangeDays),
		}
	}

	count := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		summary, err := a.ComputeAndStore(symbol, day)
		if err != nil {
			return count, err
		}
		if summary != nil {
			count++
		}
	}

	logger.Debug(ctx, "Recomputed daily aggregates", "symbol", symbol, "persisted", count)
	return count, nil
}
