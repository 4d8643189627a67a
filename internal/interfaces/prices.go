package interfaces

import (
	"context"
	"time"

	"marketminds/internal/types"
)

// PriceSource fetches OHLCV history from an upstream provider. The symbol is
// already in provider form (market suffix applied). Implementations return
// bars in ascending date order and never write any state.
type PriceSource interface {
	Query(ctx context.Context, providerSymbol string, start, end time.Time) ([]types.PriceBar, error)
}
