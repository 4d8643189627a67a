package yahoo

import (
	"context"
	"fmt"
	"time"

	"marketminds/internal/api"
	"marketminds/internal/interfaces"
	"marketminds/internal/types"
)

const chartBaseURL = "https://query1.finance.yahoo.com"

// Source fetches daily OHLCV bars from the Yahoo Finance chart API. It is
// the default price provider: keyless, and it understands the .NS/.BO
// suffixed symbols the normalizer produces as well as crypto pairs.
type Source struct {
	client *api.Client
}

var _ interfaces.PriceSource = (*Source)(nil)

func NewSource() *Source {
	return &Source{
		client: api.NewClient(
			api.WithBaseURL(chartBaseURL),
			api.WithTimeout(30*time.Second),
		),
	}
}

// chartResponse mirrors the subset of the chart API payload the pipeline
// reads. Quote fields are pointer slices because Yahoo emits null for
// missing candles.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Query returns the daily bars for providerSymbol in [start, end], ascending
// by date. Days Yahoo reports as null are dropped rather than zero-filled.
func (s *Source) Query(ctx context.Context, providerSymbol string, start, end time.Time) ([]types.PriceBar, error) {
	url := fmt.Sprintf("/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		providerSymbol, start.Unix(), end.Unix())

	resp, err := s.client.GET(ctx, url, api.YahooFinanceHeaders())
	if err != nil {
		return nil, err
	}

	var parsed chartResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return nil, err
	}

	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error %s: %s", parsed.Chart.Error.Code, parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 {
		return []types.PriceBar{}, nil
	}

	result := parsed.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return []types.PriceBar{}, nil
	}
	quote := result.Indicators.Quote[0]

	bars := make([]types.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || quote.Open[i] == nil || quote.High[i] == nil ||
			quote.Low[i] == nil || quote.Close[i] == nil {
			continue
		}

		bar := types.PriceBar{
			Date:  time.Unix(ts, 0).UTC(),
			Open:  *quote.Open[i],
			High:  *quote.High[i],
			Low:   *quote.Low[i],
			Close: *quote.Close[i],
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}
		bars = append(bars, bar)
	}

	return bars, nil
}
