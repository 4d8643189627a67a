package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"marketminds/internal/db"
	"marketminds/internal/errs"
	"marketminds/internal/interfaces"
	"marketminds/internal/logger"
	"marketminds/internal/types"
)

// removedPlaceholder is what the news provider substitutes for withdrawn
// article titles; such rows carry no signal and are skipped.
const removedPlaceholder = "[Removed]"

// Storage column limits for headline rows.
const (
	maxTitleLen  = 500
	maxSourceLen = 100
	maxURLLen    = 1000
)

// marketContextTerms narrow the news search to market-relevant coverage of
// the base symbol.
const marketContextTerms = `(stock OR market OR finance OR "price" OR NSE OR BSE OR India OR Nifty OR Sensex)`

// HeadlineFetcher retrieves news articles for one symbol through a 24h cache
// that conserves the quota-limited upstream API. With no credential
// configured it is soft-disabled: fetches return an empty list without
// error, since news enrichment is optional.
type HeadlineFetcher struct {
	source     interfaces.NewsSource
	sourceName string
	cache      *ArticleCache
	disabled   bool
}

// NewHeadlineFetcher builds a fetcher. cache may be nil (no caching);
// disabled soft-disables fetching entirely.
func NewHeadlineFetcher(source interfaces.NewsSource, sourceName string, cache *ArticleCache, disabled bool) *HeadlineFetcher {
	return &HeadlineFetcher{
		source:     source,
		sourceName: sourceName,
		cache:      cache,
		disabled:   disabled,
	}
}

// Fetch returns recent articles for symbol, serving from cache when a fresh
// entry exists. Cache failures degrade to a miss/no-op. Provider errors are
// classified: quota exhaustion becomes a RateLimitError with a retry-after
// hint, anything else an ExternalAPIError.
func (f *HeadlineFetcher) Fetch(ctx context.Context, symbol string, lookbackDays, pageSize int) ([]types.Article, error) {
	if f.disabled {
		logger.Warn(ctx, "News source not configured, skipping headlines", "symbol", symbol)
		return []types.Article{}, nil
	}

	cacheKey := fmt.Sprintf("headlines:%s:%d", symbol, lookbackDays)
	if f.cache != nil {
		if articles, ok := f.cache.Get(ctx, cacheKey); ok {
			logger.Info(ctx, "Headline cache hit", "symbol", symbol)
			return articles, nil
		}
	}

	logger.Info(ctx, "Fetching headlines", "symbol", symbol, "source", f.sourceName)

	query := fmt.Sprintf(`"%s" AND %s`, BaseSymbol(symbol), marketContextTerms)
	articles, err := f.source.Search(ctx, types.NewsQuery{
		Query:        query,
		Language:     "en",
		SortBy:       "relevancy",
		PageSize:     pageSize,
		LookbackDays: lookbackDays,
	})
	if err != nil {
		return nil, f.classify(err)
	}

	logger.Info(ctx, "Fetched headlines", "symbol", symbol, "count", len(articles))

	if f.cache != nil && len(articles) > 0 {
		f.cache.Set(ctx, cacheKey, articles)
	}

	return articles, nil
}

// classify maps a provider error onto the pipeline error taxonomy by
// message content, the only signal the provider gives.
func (f *HeadlineFetcher) classify(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "rate") || strings.Contains(msg, "limit") {
		return errs.NewRateLimitError(f.sourceName, time.Hour)
	}
	return &errs.ExternalAPIError{API: f.sourceName, Message: err.Error(), Err: err}
}

// HeadlineStore deduplicates and persists fetched articles.
type HeadlineStore struct {
	db *gorm.DB

	// now is swapped out in tests to pin the publish-date fallback.
	now func() time.Time
}

func NewHeadlineStore(gdb *gorm.DB) *HeadlineStore {
	return &HeadlineStore{db: gdb, now: time.Now}
}

// Store inserts the articles that are new for symbol and returns how many
// were inserted. An article is skipped when its title is empty or the
// provider's removed-placeholder, or when a headline with the same
// (symbol, title) already exists — even if the url or date differ. The
// sentiment score is left absent for the scoring service.
func (s *HeadlineStore) Store(ctx context.Context, symbol string, articles []types.Article) (int, error) {
	count := 0

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, article := range articles {
			if article.Title == "" || article.Title == removedPlaceholder {
				continue
			}

			title := truncate(article.Title, maxTitleLen)

			var existing db.Headline
			err := tx.Where("symbol = ? AND title = ?", symbol, title).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			record := db.Headline{
				Symbol: symbol,
				Date:   s.publishDate(ctx, article),
				Title:  title,
				Source: truncate(article.Source, maxSourceLen),
				URL:    truncate(article.URL, maxURLLen),
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// publishDate parses the provider timestamp, falling back to the current
// date when it is missing or unparsable.
func (s *HeadlineStore) publishDate(ctx context.Context, article types.Article) time.Time {
	parsed, err := time.Parse(time.RFC3339, article.PublishedAt)
	if err != nil {
		logger.Debug(ctx, "Unparsable publish date, using today", "published_at", article.PublishedAt, "title", article.Title)
		return DateOf(s.now())
	}
	return DateOf(parsed)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
