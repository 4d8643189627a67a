package sentiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"marketminds/internal/db"
	"marketminds/internal/errs"
	"marketminds/internal/interfaces"
	"marketminds/internal/logger"
)

// ScoringService batches unscored headlines through the sentiment scorer and
// writes the resulting scores back. Already-scored rows are excluded from
// future passes unless a rescore is forced.
type ScoringService struct {
	db     *gorm.DB
	scorer interfaces.SentimentScorer
}

func NewScoringService(gdb *gorm.DB, scorer interfaces.SentimentScorer) *ScoringService {
	return &ScoringService{db: gdb, scorer: scorer}
}

// ScorePending scores up to limit headlines with an absent score and returns
// how many were scored.
func (s *ScoringService) ScorePending(ctx context.Context, limit int) (int, error) {
	var pending []db.Headline
	if err := s.db.Where("sentiment_score IS NULL").Order("id").Limit(limit).Find(&pending).Error; err != nil {
		return 0, err
	}

	if len(pending) == 0 {
		logger.Info(ctx, "No pending headlines to score")
		return 0, nil
	}

	return s.scoreBatch(ctx, pending)
}

// ScoreSymbol scores all headlines for one tracked symbol. With forceRescore
// set, already-scored rows are rescored too.
func (s *ScoringService) ScoreSymbol(ctx context.Context, symbol string, forceRescore bool) (int, error) {
	var asset db.Asset
	if err := s.db.Where("symbol = ?", symbol).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, &errs.AssetNotFoundError{Symbol: symbol}
		}
		return 0, err
	}

	query := s.db.Where("symbol = ?", symbol)
	if !forceRescore {
		query = query.Where("sentiment_score IS NULL")
	}

	var headlines []db.Headline
	if err := query.Order("id").Find(&headlines).Error; err != nil {
		return 0, err
	}

	if len(headlines) == 0 {
		return 0, nil
	}

	return s.scoreBatch(ctx, headlines)
}

// scoreBatch sends the titles through the scorer and persists one score per
// row, in order. A length mismatch means the scorer dropped or duplicated
// inputs; that must fail loudly rather than silently misattribute scores,
// so nothing is written.
func (s *ScoringService) scoreBatch(ctx context.Context, rows []db.Headline) (int, error) {
	logger.Info(ctx, "Scoring headlines", "count", len(rows), "scorer", s.scorer.Name())

	texts := make([]string, len(rows))
	for i, row := range rows {
		texts[i] = row.Title
	}

	scores, err := s.scorer.Score(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(scores) != len(rows) {
		return 0, &errs.DataValidationError{
			Field:   "sentiment_score",
			Message: fmt.Sprintf("scorer returned %d scores for %d headlines", len(scores), len(rows)),
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			rows[i].SentimentScore = decimal.NullDecimal{
				Decimal: decimal.NewFromFloat(scores[i]).Round(4),
				Valid:   true,
			}
			if err := tx.Save(&rows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info(ctx, "Scored headlines", "count", len(rows))
	return len(rows), nil
}
