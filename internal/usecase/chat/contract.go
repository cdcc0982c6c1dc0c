package chat

import (
	"context"

	"github.com/kailas-cloud/reliefqa/internal/domain/conversation"
	"github.com/kailas-cloud/reliefqa/internal/domain/document"
	"github.com/kailas-cloud/reliefqa/internal/domain/fetch"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/endpoint"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/entity"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/query"
)

// SessionRepository stores chat sessions.
type SessionRepository interface {
	Create(ctx context.Context) (*conversation.Session, error)
	Get(ctx context.Context, id string) (*conversation.Session, error)
	Delete(ctx context.Context, id string) error
}

// Searcher builds and runs a ReliefWeb query.
type Searcher interface {
	Search(ctx context.Context, ep endpoint.Endpoint, params query.Params) (query.SearchQuery, fetch.Result, error)
}

// Summarizer writes a cited answer from fetched documents.
type Summarizer interface {
	Answer(ctx context.Context, question, previousAnswer string, docs []document.Record) (string, error)
}

// IntentRefiner rewrites a follow-up question into a standalone search query.
type IntentRefiner interface {
	Refine(ctx context.Context, history []conversation.Turn, question string) (string, error)
}

// EntityExtractor finds locations, disaster types and years in search text.
type EntityExtractor interface {
	ExtractEntities(ctx context.Context, text string) ([]entity.Entity, error)
}

// GroundednessGrader scores from 1 to 5 how well an answer is supported by its documents.
type GroundednessGrader interface {
	Groundedness(ctx context.Context, answer string, docs []document.Record) (int, error)
}
