package scoringobs

import (
	"context"

	"marketminds/internal/interfaces"
	"marketminds/internal/logger"
	"marketminds/internal/trace"
)

// observableScorer wraps a SentimentScorer with logging and tracing
type observableScorer struct {
	scorer interfaces.SentimentScorer
}

// Compile-time interface check
var _ interfaces.SentimentScorer = (*observableScorer)(nil)

// Wrap wraps a scorer with observability middleware
func Wrap(scorer interfaces.SentimentScorer) interfaces.SentimentScorer {
	return &observableScorer{scorer: scorer}
}

func (os *observableScorer) Name() string {
	return os.scorer.Name()
}

func (os *observableScorer) Ping(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "scorer.Ping")
	defer span.End()

	if err := os.scorer.Ping(ctx); err != nil {
		logger.ErrorWithErr(ctx, "Scorer probe failed", err, "scorer", os.scorer.Name())
		return err
	}

	logger.Info(ctx, "Scorer probe succeeded", "scorer", os.scorer.Name())
	return nil
}

func (os *observableScorer) Score(ctx context.Context, texts []string) ([]float64, error) {
	ctx, span := trace.StartSpan(ctx, "scorer.Score")
	defer span.End()

	timer := logger.StartOperation(ctx, "score_batch", "scorer", os.scorer.Name(), "batch_size", len(texts))

	scores, err := os.scorer.Score(ctx, texts)
	if err != nil {
		timer.EndWithError(err)
		return nil, err
	}

	timer.End("scores", len(scores))
	return scores, nil
}
