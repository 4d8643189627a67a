package newsapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"marketminds/internal/api"
	"marketminds/internal/interfaces"
	"marketminds/internal/types"
)

const everythingBaseURL = "https://newsapi.org"

// Source searches headlines through the NewsAPI "everything" endpoint.
type Source struct {
	client *api.Client
	apiKey string
	now    func() time.Time
}

var _ interfaces.NewsSource = (*Source)(nil)

func NewSource(apiKey string) *Source {
	return &Source{
		client: api.NewClient(
			api.WithBaseURL(everythingBaseURL),
			api.WithTimeout(30*time.Second),
		),
		apiKey: apiKey,
		now:    time.Now,
	}
}

type searchResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Search runs q against /v2/everything. Provider-side failures surface the
// upstream code and message in the returned error so the caller can tell a
// quota rejection from a transient one.
func (s *Source) Search(ctx context.Context, q types.NewsQuery) ([]types.Article, error) {
	params := url.Values{}
	params.Set("q", q.Query)
	params.Set("language", q.Language)
	params.Set("sortBy", q.SortBy)
	params.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.LookbackDays > 0 {
		from := s.now().UTC().AddDate(0, 0, -q.LookbackDays)
		params.Set("from", from.Format("2006-01-02"))
	}
	params.Set("apiKey", s.apiKey)

	resp, err := s.client.GET(ctx, "/v2/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return nil, err
	}
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("newsapi %s: %s", parsed.Code, parsed.Message)
	}

	articles := make([]types.Article, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		articles = append(articles, types.Article{
			Title:       a.Title,
			Source:      a.Source.Name,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
	}
	return articles, nil
}
