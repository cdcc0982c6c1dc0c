package search

import (
	"context"

	"github.com/kailas-cloud/reliefqa/internal/domain/fetch"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/endpoint"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/query"
)

// Fetcher runs a built query against ReliefWeb (optionally through the cache).
type Fetcher interface {
	Fetch(ctx context.Context, q query.SearchQuery, ep endpoint.Endpoint) fetch.Result
}
