package reliefqa

import (
	"context"

	"github.com/kailas-cloud/reliefqa/internal/domain/conversation"
	"github.com/kailas-cloud/reliefqa/internal/domain/fetch"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/endpoint"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/query"
	healthuc "github.com/kailas-cloud/reliefqa/internal/usecase/health"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, ep endpoint.Endpoint, params query.Params) (query.SearchQuery, fetch.Result, error)
}

func (m *mockSearchUC) Search(
	ctx context.Context, ep endpoint.Endpoint, params query.Params,
) (query.SearchQuery, fetch.Result, error) {
	return m.searchFn(ctx, ep, params)
}

// --- chatUseCase mock ---

type mockChatUC struct {
	createFn func(ctx context.Context) (*conversation.Session, error)
	getFn    func(ctx context.Context, id string) (*conversation.Session, error)
	resetFn  func(ctx context.Context, id string) error
	askFn    func(ctx context.Context, id, q string) (conversation.ExchangeResult, error)
}

func (m *mockChatUC) CreateSession(ctx context.Context) (*conversation.Session, error) {
	return m.createFn(ctx)
}

func (m *mockChatUC) GetSession(ctx context.Context, id string) (*conversation.Session, error) {
	return m.getFn(ctx, id)
}

func (m *mockChatUC) ResetSession(ctx context.Context, id string) error {
	return m.resetFn(ctx, id)
}

func (m *mockChatUC) Ask(ctx context.Context, id, q string) (conversation.ExchangeResult, error) {
	return m.askFn(ctx, id, q)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }
