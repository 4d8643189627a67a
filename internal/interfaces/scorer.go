package interfaces

import "context"

// SentimentScorer scores headline texts. Score is order-preserving and must
// return exactly one score in [-1, 1] per input text. Ping is the startup
// capability probe; a backend that fails it is never used mid-run.
type SentimentScorer interface {
	Score(ctx context.Context, texts []string) ([]float64, error)
	Ping(ctx context.Context) error
	Name() string
}
