package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestScoreRoundTrip(t *testing.T) {
	var gotTexts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/score":
			var req scoreRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("Bad request body: %v", err)
			}
			gotTexts = req.Texts
			json.NewEncoder(w).Encode(scoreResponse{Scores: []float64{0.8, -0.3}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	s := NewScorer(server.URL)
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	scores, err := s.Score(ctx, []string{"good news", "bad news"})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if len(gotTexts) != 2 || gotTexts[0] != "good news" {
		t.Errorf("Unexpected texts forwarded: %v", gotTexts)
	}
	if len(scores) != 2 || scores[0] != 0.8 || scores[1] != -0.3 {
		t.Errorf("Unexpected scores: %v", scores)
	}
}

func TestPingFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s := NewScorer(server.URL)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("Expected Ping to fail against an unhealthy service")
	}
}

func TestScoreServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	s := NewScorer(server.URL)
	if _, err := s.Score(context.Background(), []string{"x"}); err == nil {
		t.Fatal("Expected error from failing service")
	}
}
