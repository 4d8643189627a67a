package sentiment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"marketminds/internal/db"
	"marketminds/internal/errs"
)

func seedScored(t *testing.T, gdb *gorm.DB, symbol string, day time.Time, entries map[string]float64) {
	t.Helper()
	for title, score := range entries {
		row := db.Headline{
			Symbol: symbol,
			Date:   day,
			Title:  title,
			SentimentScore: decimal.NullDecimal{
				Decimal: decimal.NewFromFloat(score),
				Valid:   true,
			},
		}
		if err := gdb.Create(&row).Error; err != nil {
			t.Fatalf("Failed to seed scored headline: %v", err)
		}
	}
}

func TestComputeForDate(t *testing.T) {
	gdb := testDB(t)
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	seedScored(t, gdb, "RELIANCE.NS", day, map[string]float64{
		"mildly positive": 0.5,
		"strongly bad":    -0.8,
		"neutral":         0.0,
	})
	// Unscored rows on the same day are excluded from the aggregate.
	seedHeadlines(t, gdb, "RELIANCE.NS", day, "pending headline")

	agg := NewDailyAggregator(gdb)
	summary, err := agg.ComputeForDate("RELIANCE.NS", day)
	if err != nil {
		t.Fatalf("ComputeForDate failed: %v", err)
	}

	if summary.HeadlineCount != 3 {
		t.Errorf("Expected 3 scored headlines, got %d", summary.HeadlineCount)
	}
	if summary.AvgSentiment != -0.1 {
		t.Errorf("Expected average -0.1, got %f", summary.AvgSentiment)
	}
	// Top headline is the one with the largest absolute score.
	if summary.TopHeadline != "strongly bad" {
		t.Errorf("Expected top headline 'strongly bad', got %q", summary.TopHeadline)
	}
}

func TestComputeForDateNoData(t *testing.T) {
	gdb := testDB(t)
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	agg := NewDailyAggregator(gdb)
	summary, err := agg.ComputeForDate("RELIANCE.NS", day)
	if err != nil {
		t.Fatalf("ComputeForDate failed: %v", err)
	}
	if summary.HeadlineCount != 0 {
		t.Errorf("Expected count 0 for empty day, got %d", summary.HeadlineCount)
	}
}

func TestComputeAndStorePreservesExisting(t *testing.T) {
	gdb := testDB(t)
	agg := NewDailyAggregator(gdb)
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	seedScored(t, gdb, "TCS.NS", day, map[string]float64{"good day": 0.6})

	stored, err := agg.ComputeAndStore("TCS.NS", day)
	if err != nil {
		t.Fatalf("ComputeAndStore failed: %v", err)
	}
	if stored == nil || stored.HeadlineCount != 1 {
		t.Fatalf("Expected persisted summary, got %+v", stored)
	}

	// Remove the headline and recompute: the no-data result must not
	// overwrite the stored aggregate.
	if err := gdb.Where("symbol = ?", "TCS.NS").Delete(&db.Headline{}).Error; err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	stored, err = agg.ComputeAndStore("TCS.NS", day)
	if err != nil {
		t.Fatalf("Second ComputeAndStore failed: %v", err)
	}
	if stored != nil {
		t.Errorf("Expected nil for no-data recompute, got %+v", stored)
	}

	var row db.DailySentiment
	if err := gdb.Where("symbol = ? AND date = ?", "TCS.NS", day).First(&row).Error; err != nil {
		t.Fatalf("Expected original aggregate to survive: %v", err)
	}
	if row.HeadlineCount != 1 {
		t.Errorf("Expected preserved count 1, got %d", row.HeadlineCount)
	}
}

func TestStoreOverwritesInPlace(t *testing.T) {
	gdb := testDB(t)
	agg := NewDailyAggregator(gdb)
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	seedScored(t, gdb, "INFY.NS", day, map[string]float64{"first": 0.3})
	if _, err := agg.ComputeAndStore("INFY.NS", day); err != nil {
		t.Fatalf("ComputeAndStore failed: %v", err)
	}

	seedScored(t, gdb, "INFY.NS", day, map[string]float64{"second stronger": -0.9})
	if _, err := agg.ComputeAndStore("INFY.NS", day); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	var rows []db.DailySentiment
	if err := gdb.Where("symbol = ?", "INFY.NS").Find(&rows).Error; err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 aggregate row, got %d", len(rows))
	}
	if rows[0].HeadlineCount != 2 {
		t.Errorf("Expected recomputed count 2, got %d", rows[0].HeadlineCount)
	}
	if rows[0].TopHeadline != "second stronger" {
		t.Errorf("Expected top headline updated, got %q", rows[0].TopHeadline)
	}
}

func TestProcessDateRange(t *testing.T) {
	gdb := testDB(t)
	agg := NewDailyAggregator(gdb)

	d1 := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)
	seedScored(t, gdb, "RELIANCE.NS", d1, map[string]float64{"a": 0.2})
	seedScored(t, gdb, "RELIANCE.NS", d3, map[string]float64{"b": -0.4})

	persisted, err := agg.ProcessDateRange(context.Background(), "RELIANCE.NS", d1, d3)
	if err != nil {
		t.Fatalf("ProcessDateRange failed: %v", err)
	}
	// Three days in the closed range, one of them empty.
	if persisted != 2 {
		t.Errorf("Expected 2 persisted aggregates, got %d", persisted)
	}
}

func TestProcessDateRangeValidation(t *testing.T) {
	gdb := testDB(t)
	agg := NewDailyAggregator(gdb)
	ctx := context.Background()

	start := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	_, err := agg.ProcessDateRange(ctx, "RELIANCE.NS", start, start.AddDate(0, 0, -1))
	var valErr *errs.DataValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Expected DataValidationError for inverted range, got %T", err)
	}

	_, err = agg.ProcessDateRange(ctx, "RELIANCE.NS", start, start.AddDate(0, 0, 400))
	if !errors.As(err, &valErr) {
		t.Fatalf("Expected DataValidationError for oversized range, got %T", err)
	}

	// A single-day range is valid.
	if _, err := agg.ProcessDateRange(ctx, "RELIANCE.NS", start, start); err != nil {
		t.Errorf("Expected single-day range to be valid, got %v", err)
	}
}
