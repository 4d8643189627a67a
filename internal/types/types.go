package types

import "time"

// PriceBar is one day of OHLCV data as returned by a price source.
type PriceBar struct {
	Date                   time.Time
	Open, High, Low, Close float64
	Volume                 int64
}

// Article is a raw news article as returned by a news source, before
// persistence. PublishedAt keeps the provider's original string so cached
// payloads round-trip unchanged.
type Article struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// NewsQuery describes one search against a news source.
type NewsQuery struct {
	Query        string
	Language     string
	SortBy       string
	PageSize     int
	LookbackDays int
}

// RunStats captures the outcome of one orchestrator run. It is reset at the
// start of every run and is never persisted across restarts.
type RunStats struct {
	StartedAt       time.Time `json:"started_at"`
	TotalAssets     int       `json:"total_assets"`
	SuccessCount    int       `json:"success_count"`
	FailureCount    int       `json:"failure_count"`
	PriceRecords    int       `json:"price_records"`
	HeadlineRecords int       `json:"headline_records"`
	HeadlinesScored int       `json:"headlines_scored"`
	DailyRecords    int       `json:"daily_records"`
	Error           string    `json:"error,omitempty"`
}

// DailySummary is the computed aggregate for one (symbol, date) before
// persistence. A zero HeadlineCount means "no data", which callers must not
// confuse with a genuinely neutral average.
type DailySummary struct {
	AvgSentiment  float64
	HeadlineCount int
	TopHeadline   string
}

// RunPhase is the externally visible state of an orchestrator.
type RunPhase string

const (
	PhaseIdle      RunPhase = "idle"
	PhaseStarted   RunPhase = "started"
	PhaseRunning   RunPhase = "running"
	PhaseCompleted RunPhase = "completed"
)

// RunStatus is what a control surface sees when it asks about a run.
type RunStatus struct {
	Phase     RunPhase  `json:"status"`
	LastStats *RunStats `json:"stats,omitempty"`
}
