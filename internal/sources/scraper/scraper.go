package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"marketminds/internal/interfaces"
	"marketminds/internal/logger"
	"marketminds/internal/types"
)

// Source scrapes headlines from Indian financial news portals. It is the
// keyless alternative to the hosted news API: slower and noisier, but it
// keeps the headline pipeline alive when no API key is configured.
type Source struct {
	sites   []site
	timeout time.Duration
}

var _ interfaces.NewsSource = (*Source)(nil)

// site describes one portal: where to search and which CSS selectors
// extract a headline from the result page.
type site struct {
	name       string
	baseURL    string
	searchPath string // "{symbol}" is replaced with the lowercased term
	container  string
	title      string
	link       string
	published  string
	pause      time.Duration
}

func NewSource(timeout time.Duration) *Source {
	return &Source{
		sites: []site{
			{
				name:       "MoneyControl",
				baseURL:    "https://www.moneycontrol.com",
				searchPath: "/news/tags/{symbol}.html",
				container:  "li.clearfix",
				title:      "h2 a, h3 a",
				link:       "h2 a, h3 a",
				published:  "span.ago",
				pause:      2 * time.Second,
			},
			{
				name:       "EconomicTimes",
				baseURL:    "https://economictimes.indiatimes.com",
				searchPath: "/topic/{symbol}",
				container:  "div.story-box",
				title:      "a",
				link:       "a",
				published:  "time",
				pause:      2 * time.Second,
			},
		},
		timeout: timeout,
	}
}

// Search scrapes every configured site for the quoted term in q.Query and
// merges the results. A site that fails is logged and skipped so one blocked
// portal does not empty the whole result set.
func (s *Source) Search(ctx context.Context, q types.NewsQuery) ([]types.Article, error) {
	term := searchTerm(q.Query)
	perSite := q.PageSize / len(s.sites)
	if perSite < 1 {
		perSite = 1
	}

	articles := []types.Article{}
	for _, st := range s.sites {
		found, err := s.scrapeSite(ctx, st, term, perSite)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to scrape site", err, "site", st.name, "term", term)
			continue
		}
		articles = append(articles, found...)
		time.Sleep(st.pause)
	}

	logger.Info(ctx, "Headline scraping completed", "term", term, "articles", len(articles))
	return articles, nil
}

func (s *Source) scrapeSite(ctx context.Context, st site, term string, max int) ([]types.Article, error) {
	articles := []types.Article{}

	c := colly.NewCollector(
		colly.AllowedDomains(domainOf(st.baseURL)),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	c.OnHTML(st.container, func(e *colly.HTMLElement) {
		if len(articles) >= max {
			return
		}

		title := strings.TrimSpace(e.ChildText(st.title))
		if title == "" {
			return
		}

		link := e.ChildAttr(st.link, "href")
		if link == "" {
			return
		}
		if !strings.HasPrefix(link, "http") {
			link = st.baseURL + link
		}

		articles = append(articles, types.Article{
			Title:       title,
			Source:      st.name,
			URL:         link,
			PublishedAt: strings.TrimSpace(e.ChildText(st.published)),
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Scraping error", err, "site", st.name, "url", r.Request.URL.String())
	})

	searchURL := st.baseURL + strings.ReplaceAll(st.searchPath, "{symbol}", strings.ToLower(term))
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", searchURL, err)
	}
	c.Wait()

	return articles, nil
}

// searchTerm pulls the quoted phrase out of a news query string. Queries are
// built as `"SYMBOL" AND (...)` for the hosted API; the portals only want
// the symbol itself.
func searchTerm(query string) string {
	first := strings.Index(query, `"`)
	if first < 0 {
		return query
	}
	rest := query[first+1:]
	second := strings.Index(rest, `"`)
	if second < 0 {
		return query
	}
	return rest[:second]
}

func domainOf(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
