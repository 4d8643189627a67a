package kite

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"marketminds/internal/ingest"
	"marketminds/internal/interfaces"
	"marketminds/internal/logger"
	"marketminds/internal/types"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

const dayInterval = "day"

// Source fetches daily candles through the Kite Connect historical data API.
// Kite addresses instruments by numeric token rather than symbol, so the
// source keeps a tradingsymbol -> token map loaded from the instrument dump.
type Source struct {
	kc *kiteconnect.Client

	tokensMu sync.RWMutex
	tokens   map[string]int
}

var _ interfaces.PriceSource = (*Source)(nil)

func NewSource(apiKey, accessToken string) *Source {
	kc := kiteconnect.New(apiKey)
	kc.SetAccessToken(accessToken)
	return &Source{kc: kc, tokens: make(map[string]int)}
}

// LoadInstruments downloads the instrument dump and builds the token map.
// Call once at startup; Query fails for symbols the map does not contain.
func (s *Source) LoadInstruments(ctx context.Context) error {
	instruments, err := s.kc.GetInstruments()
	if err != nil {
		return fmt.Errorf("failed to load instrument dump: %w", err)
	}

	tokens := make(map[string]int, len(instruments))
	for _, inst := range instruments {
		tokens[tokenKey(inst.Exchange, inst.Tradingsymbol)] = inst.InstrumentToken
	}

	s.tokensMu.Lock()
	s.tokens = tokens
	s.tokensMu.Unlock()

	logger.Info(ctx, "Loaded Kite instrument dump", "instruments", len(tokens))
	return nil
}

// Query returns daily bars for providerSymbol in [start, end]. The provider
// symbol carries the Yahoo-style exchange suffix; it is translated back to a
// Kite (exchange, tradingsymbol) pair before the token lookup.
func (s *Source) Query(ctx context.Context, providerSymbol string, start, end time.Time) ([]types.PriceBar, error) {
	token, err := s.lookupToken(providerSymbol)
	if err != nil {
		return nil, err
	}

	candles, err := s.kc.GetHistoricalData(token, dayInterval, start, end, false, false)
	if err != nil {
		return nil, fmt.Errorf("historical data request failed for %s: %w", providerSymbol, err)
	}

	bars := make([]types.PriceBar, 0, len(candles))
	for _, c := range candles {
		bars = append(bars, types.PriceBar{
			Date:   c.Date.Time.UTC(),
			Open:   c.Open,
			High:   c.High,
			Low:    c.Low,
			Close:  c.Close,
			Volume: int64(c.Volume),
		})
	}
	return bars, nil
}

func (s *Source) lookupToken(providerSymbol string) (int, error) {
	exchange := "NSE"
	if strings.HasSuffix(providerSymbol, ".BO") {
		exchange = "BSE"
	}
	key := tokenKey(exchange, ingest.BaseSymbol(providerSymbol))

	s.tokensMu.RLock()
	token, ok := s.tokens[key]
	s.tokensMu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("no instrument token for %s", providerSymbol)
	}
	return token, nil
}

func tokenKey(exchange, tradingsymbol string) string {
	return exchange + ":" + tradingsymbol
}
