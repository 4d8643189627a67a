package remote

import (
	"context"
	"fmt"
	"time"

	"marketminds/internal/api"
	"marketminds/internal/trace"
)

// Scorer calls an external sentiment scoring service over HTTP. The service
// wraps the actual model (FinBERT or similar); the pipeline treats it as an
// opaque order-preserving function from texts to scores in [-1, 1].
type Scorer struct {
	client *api.Client
}

func NewScorer(endpoint string) *Scorer {
	return &Scorer{
		client: api.NewClient(
			api.WithBaseURL(endpoint),
			api.WithTimeout(60*time.Second),
			api.WithLogging(true),
		),
	}
}

func (s *Scorer) Name() string { return "remote" }

// Ping is the startup capability probe. Bootstrap calls it once and refuses
// to use this backend if it fails, instead of discovering the problem
// mid-run.
func (s *Scorer) Ping(ctx context.Context) error {
	_, err := s.client.GET(ctx, "/health")
	return err
}

type scoreRequest struct {
	Texts []string `json:"texts"`
}

type scoreResponse struct {
	Scores []float64 `json:"scores"`
}

// Score sends the batch to the scoring service and returns its scores
// verbatim; length validation against the inputs is the caller's job.
func (s *Scorer) Score(ctx context.Context, texts []string) ([]float64, error) {
	ctx, span := trace.StartSpan(ctx, "remote-scorer-call")
	defer span.End()

	resp, err := s.client.POST(ctx, "/score", scoreRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("scoring service call failed: %w", err)
	}

	var parsed scoreResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return nil, err
	}

	return parsed.Scores, nil
}
