package ingest

import "strings"

// Suffixes the upstream price provider recognizes for Indian exchanges.
const (
	suffixNSE = ".NS"
	suffixBSE = ".BO"
)

// cryptoMarker tags crypto pairs quoted in USD, which pass through
// normalization unchanged (e.g. "BTC-USD").
const cryptoMarker = "-USD"

// SymbolNormalizer maps a logical symbol to the query form the price
// provider expects for the active exchange.
type SymbolNormalizer struct {
	Exchange string // NSE or BSE
}

// Normalize returns the provider-specific query symbol. Already-suffixed
// symbols and crypto pairs pass through unchanged; everything else gets the
// suffix for the configured exchange. Total: no input is rejected.
func (n SymbolNormalizer) Normalize(symbol string) string {
	if strings.HasSuffix(symbol, suffixNSE) || strings.HasSuffix(symbol, suffixBSE) {
		return symbol
	}
	if strings.Contains(symbol, cryptoMarker) {
		return symbol
	}
	if n.Exchange == "BSE" {
		return symbol + suffixBSE
	}
	return symbol + suffixNSE
}

// BaseSymbol strips the market suffix for use in news search queries
// ("RELIANCE.NS" -> "RELIANCE").
func BaseSymbol(symbol string) string {
	symbol = strings.TrimSuffix(symbol, suffixNSE)
	return strings.TrimSuffix(symbol, suffixBSE)
}
