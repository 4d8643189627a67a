package interfaces

import (
	"context"

	"marketminds/internal/types"
)

// NewsSource searches an upstream news provider for recent articles.
type NewsSource interface {
	Search(ctx context.Context, q types.NewsQuery) ([]types.Article, error)
}
