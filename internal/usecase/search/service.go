package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reliefqa/internal/domain"
	"github.com/kailas-cloud/reliefqa/internal/domain/fetch"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/endpoint"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/query"
	"github.com/kailas-cloud/reliefqa/internal/logger"
)

// Service builds ReliefWeb queries and fetches their records.
type Service struct {
	builder *query.Builder
	fetcher Fetcher
}

// New creates a search service.
func New(builder *query.Builder, fetcher Fetcher) *Service {
	return &Service{builder: builder, fetcher: fetcher}
}

// Search builds the query for ep and runs it. Errors are returned only for
// requests that cannot be built; fetch failures come back as fetch.NoData.
func (s *Service) Search(
	ctx context.Context, ep endpoint.Endpoint, params query.Params,
) (query.SearchQuery, fetch.Result, error) {
	if !ep.IsValid() {
		return query.SearchQuery{}, fetch.Result{}, fmt.Errorf("%w: %q", domain.ErrUnknownEndpoint, ep)
	}

	q, err := s.builder.Build(ep, params)
	if err != nil {
		return query.SearchQuery{}, fetch.Result{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	res := s.fetcher.Fetch(ctx, q, ep)
	if res.IsNoData() {
		logger.FromContext(ctx).Info("Search returned no data", zap.String("endpoint", string(ep)))
	}

	return q, res, nil
}
