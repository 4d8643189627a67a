package db

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset is a tracked financial instrument (stock or crypto). Assets are
// created by the seeding step and are read-only to the pipeline.
type Asset struct {
	Symbol    string `gorm:"primaryKey;size:20"`
	Name      string `gorm:"size:100"`
	AssetType string `gorm:"size:20"` // stock or crypto
}

// Price is one day of OHLCV data for an asset. Exactly one row exists per
// (symbol, date); a re-fetch overwrites values in place.
type Price struct {
	ID     uint            `gorm:"primaryKey"`
	Symbol string          `gorm:"size:20;uniqueIndex:uq_price_symbol_date;index:idx_prices_symbol_date"`
	Date   time.Time       `gorm:"type:date;uniqueIndex:uq_price_symbol_date;index:idx_prices_symbol_date"`
	Open   decimal.Decimal `gorm:"type:decimal(15,4)"`
	High   decimal.Decimal `gorm:"type:decimal(15,4)"`
	Low    decimal.Decimal `gorm:"type:decimal(15,4)"`
	Close  decimal.Decimal `gorm:"type:decimal(15,4)"`
	Volume int64
}

// Headline is a news headline attached to an asset. SentimentScore starts
// NULL and is written exactly once by the scoring service.
type Headline struct {
	ID             uint                `gorm:"primaryKey"`
	Symbol         string              `gorm:"size:20;index:idx_headlines_symbol_date"`
	Date           time.Time           `gorm:"type:date;index:idx_headlines_symbol_date"`
	Title          string              `gorm:"size:500"`
	Source         string              `gorm:"size:100"`
	URL            string              `gorm:"size:1000"`
	SentimentScore decimal.NullDecimal `gorm:"type:decimal(5,4)"`
}

// DailySentiment is the per-(symbol, date) sentiment aggregate used as a
// model feature. Recomputation overwrites the row in place.
type DailySentiment struct {
	ID            uint            `gorm:"primaryKey"`
	Symbol        string          `gorm:"size:20;uniqueIndex:uq_daily_sentiment_symbol_date"`
	Date          time.Time       `gorm:"type:date;uniqueIndex:uq_daily_sentiment_symbol_date"`
	AvgSentiment  decimal.Decimal `gorm:"type:decimal(5,4)"`
	HeadlineCount int
	TopHeadline   string `gorm:"size:500"`
}
