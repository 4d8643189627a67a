package sentiment

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"marketminds/internal/db"
	"marketminds/internal/errs"
)

// fakeScorer returns fixed per-text scores, or a scripted error/mismatch.
type fakeScorer struct {
	score   float64
	err     error
	short   bool // return one score too few
	batches [][]string
}

func (f *fakeScorer) Name() string { return "fake" }

func (f *fakeScorer) Ping(ctx context.Context) error { return nil }

func (f *fakeScorer) Score(ctx context.Context, texts []string) ([]float64, error) {
	f.batches = append(f.batches, texts)
	if f.err != nil {
		return nil, f.err
	}
	n := len(texts)
	if f.short {
		n--
	}
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = f.score
	}
	return scores, nil
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	return gdb
}

func seedAsset(t *testing.T, gdb *gorm.DB, symbol string) {
	t.Helper()
	if err := gdb.Create(&db.Asset{Symbol: symbol, AssetType: "stock"}).Error; err != nil {
		t.Fatalf("Failed to seed asset: %v", err)
	}
}

func seedHeadlines(t *testing.T, gdb *gorm.DB, symbol string, day time.Time, titles ...string) {
	t.Helper()
	for _, title := range titles {
		row := db.Headline{Symbol: symbol, Date: day, Title: title}
		if err := gdb.Create(&row).Error; err != nil {
			t.Fatalf("Failed to seed headline: %v", err)
		}
	}
}

func countScored(t *testing.T, gdb *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := gdb.Model(&db.Headline{}).Where("sentiment_score IS NOT NULL").Count(&n).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	return n
}

func TestScorePending(t *testing.T) {
	gdb := testDB(t)
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	seedHeadlines(t, gdb, "RELIANCE.NS", day, "a", "b", "c")

	svc := NewScoringService(gdb, &fakeScorer{score: 0.75})
	scored, err := svc.ScorePending(context.Background(), 100)
	if err != nil {
		t.Fatalf("ScorePending failed: %v", err)
	}
	if scored != 3 {
		t.Errorf("Expected 3 scored, got %d", scored)
	}
	if n := countScored(t, gdb); n != 3 {
		t.Errorf("Expected 3 rows written, got %d", n)
	}

	// Scored rows must not be picked up again.
	scored, err = svc.ScorePending(context.Background(), 100)
	if err != nil {
		t.Fatalf("Second ScorePending failed: %v", err)
	}
	if scored != 0 {
		t.Errorf("Expected 0 on second pass, got %d", scored)
	}
}

func TestScorePendingRespectsLimit(t *testing.T) {
	gdb := testDB(t)
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedHeadlines(t, gdb, "TCS.NS", day, string(rune('a'+i)))
	}

	svc := NewScoringService(gdb, &fakeScorer{score: 0.1})
	scored, err := svc.ScorePending(context.Background(), 2)
	if err != nil {
		t.Fatalf("ScorePending failed: %v", err)
	}
	if scored != 2 {
		t.Errorf("Expected limit of 2 respected, got %d", scored)
	}
	if n := countScored(t, gdb); n != 2 {
		t.Errorf("Expected 2 rows written, got %d", n)
	}
}

func TestScoreBatchLengthMismatch(t *testing.T) {
	gdb := testDB(t)
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	seedHeadlines(t, gdb, "INFY.NS", day, "a", "b")

	svc := NewScoringService(gdb, &fakeScorer{score: 0.5, short: true})
	_, err := svc.ScorePending(context.Background(), 100)

	var valErr *errs.DataValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Expected DataValidationError, got %T: %v", err, err)
	}
	if n := countScored(t, gdb); n != 0 {
		t.Errorf("Expected no partial writes on mismatch, got %d", n)
	}
}

func TestScoreSymbolForceRescore(t *testing.T) {
	gdb := testDB(t)
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	seedAsset(t, gdb, "RELIANCE.NS")
	seedAsset(t, gdb, "TCS.NS")
	seedHeadlines(t, gdb, "RELIANCE.NS", day, "a", "b")
	seedHeadlines(t, gdb, "TCS.NS", day, "c")

	svc := NewScoringService(gdb, &fakeScorer{score: 0.2})
	if _, err := svc.ScoreSymbol(context.Background(), "RELIANCE.NS", false); err != nil {
		t.Fatalf("Initial scoring failed: %v", err)
	}

	// Without force, nothing is left for this symbol.
	scored, err := svc.ScoreSymbol(context.Background(), "RELIANCE.NS", false)
	if err != nil {
		t.Fatalf("ScoreSymbol failed: %v", err)
	}
	if scored != 0 {
		t.Errorf("Expected 0 without force, got %d", scored)
	}

	// With force, both rows are rescored; the other symbol stays untouched.
	rescore := NewScoringService(gdb, &fakeScorer{score: -0.9})
	scored, err = rescore.ScoreSymbol(context.Background(), "RELIANCE.NS", true)
	if err != nil {
		t.Fatalf("Force rescore failed: %v", err)
	}
	if scored != 2 {
		t.Errorf("Expected 2 rescored, got %d", scored)
	}

	var row db.Headline
	if err := gdb.Where("symbol = ?", "RELIANCE.NS").First(&row).Error; err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	want := decimal.NewFromFloat(-0.9)
	if !row.SentimentScore.Decimal.Equal(want) {
		t.Errorf("Expected rescored value %s, got %s", want, row.SentimentScore.Decimal)
	}

	var other db.Headline
	if err := gdb.Where("symbol = ?", "TCS.NS").First(&other).Error; err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if other.SentimentScore.Valid {
		t.Error("Expected other symbol to stay unscored")
	}
}

func TestScoreSymbolUnknownAsset(t *testing.T) {
	gdb := testDB(t)

	svc := NewScoringService(gdb, &fakeScorer{score: 0.2})
	_, err := svc.ScoreSymbol(context.Background(), "GHOST.NS", false)

	var notFound *errs.AssetNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected AssetNotFoundError, got %T: %v", err, err)
	}
	if notFound.Symbol != "GHOST.NS" {
		t.Errorf("Expected symbol in error, got %s", notFound.Symbol)
	}
}
