package lexicon

import (
	"context"
	"strings"

	"marketminds/internal/logger"
)

// Scorer is the built-in sentiment backend: a deterministic weighted-lexicon
// scorer over financial headline vocabulary. It exists so the pipeline keeps
// producing features when no remote scoring service is deployed, and is
// selected explicitly by configuration, never as a runtime fallback.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

func (s *Scorer) Name() string { return "lexicon" }

// Ping always succeeds; the lexicon is in-process.
func (s *Scorer) Ping(ctx context.Context) error {
	logger.Debug(ctx, "Lexicon scorer probed")
	return nil
}

// Score returns one score in [-1, 1] per text, in order.
func (s *Scorer) Score(ctx context.Context, texts []string) ([]float64, error) {
	scores := make([]float64, len(texts))
	for i, text := range texts {
		scores[i] = scoreText(text)
	}
	return scores, nil
}

// Term weights tuned for market headlines. Intensity ~1 marks strongly
// directional words, ~0.5 mildly directional ones.
var termWeights = map[string]float64{
	"surge": 1.0, "soar": 1.0, "rally": 0.9, "record": 0.7, "beat": 0.8,
	"beats": 0.8, "jump": 0.8, "jumps": 0.8, "gain": 0.6, "gains": 0.6,
	"rise": 0.5, "rises": 0.5, "up": 0.4, "upgrade": 0.9, "upgraded": 0.9,
	"profit": 0.6, "growth": 0.6, "strong": 0.6, "bullish": 0.9,
	"outperform": 0.8, "buy": 0.5, "dividend": 0.4, "expansion": 0.5,
	"wins": 0.7, "approval": 0.6,

	"plunge": -1.0, "crash": -1.0, "plummet": -1.0, "slump": -0.9,
	"tumble": -0.9, "tumbles": -0.9, "fall": -0.5, "falls": -0.5,
	"drop": -0.6, "drops": -0.6, "down": -0.4, "downgrade": -0.9,
	"downgraded": -0.9, "loss": -0.7, "losses": -0.7, "weak": -0.6,
	"bearish": -0.9, "underperform": -0.8, "sell": -0.5, "miss": -0.8,
	"misses": -0.8, "fraud": -1.0, "probe": -0.7, "lawsuit": -0.7,
	"default": -0.9, "bankruptcy": -1.0, "layoffs": -0.8, "recall": -0.7,
}

// negations flip the sign of the term that follows them.
var negations = map[string]bool{
	"not": true, "no": true, "never": true, "without": true,
}

// scoreText averages matched term weights, giving an empty or unmatched
// headline a neutral 0.
func scoreText(text string) float64 {
	words := strings.Fields(strings.ToLower(text))

	var sum float64
	matched := 0
	negate := false

	for _, word := range words {
		word = strings.Trim(word, ".,!?;:'\"()[]")
		if negations[word] {
			negate = true
			continue
		}

		weight, ok := termWeights[word]
		if !ok {
			negate = false
			continue
		}
		if negate {
			weight = -weight
			negate = false
		}

		sum += weight
		matched++
	}

	if matched == 0 {
		return 0
	}

	score := sum / float64(matched)
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}
