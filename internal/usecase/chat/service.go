package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reliefqa/internal/domain"
	"github.com/kailas-cloud/reliefqa/internal/domain/conversation"
	"github.com/kailas-cloud/reliefqa/internal/domain/document"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/endpoint"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/entity"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/query"
	"github.com/kailas-cloud/reliefqa/internal/logger"
	"github.com/kailas-cloud/reliefqa/internal/metrics"
)

// Apology is returned when no answer can be produced.
const Apology = "Sorry, I cannot help you with your query."

// Service answers questions inside chat sessions.
type Service struct {
	sessions   SessionRepository
	searcher   Searcher
	summarizer Summarizer
	refiner    IntentRefiner
	entities   EntityExtractor
	grader     GroundednessGrader
	endpoint   endpoint.Endpoint
	limit      int
	now        func() time.Time
}

// Config holds chat behaviour settings.
type Config struct {
	Endpoint endpoint.Endpoint // default reports
	Limit    int               // 0 = endpoint default

	// Optional steps; nil disables them.
	Entities EntityExtractor
	Grader   GroundednessGrader
}

// New creates a chat service. refiner can be nil to search with the raw question.
func New(
	sessions SessionRepository,
	searcher Searcher,
	summarizer Summarizer,
	refiner IntentRefiner,
	cfg Config,
) *Service {
	ep := cfg.Endpoint
	if ep == "" {
		ep = endpoint.Reports
	}
	return &Service{
		sessions:   sessions,
		searcher:   searcher,
		summarizer: summarizer,
		refiner:    refiner,
		entities:   cfg.Entities,
		grader:     cfg.Grader,
		endpoint:   ep,
		limit:      cfg.Limit,
		now:        time.Now,
	}
}

// CreateSession starts an empty conversation.
func (s *Service) CreateSession(ctx context.Context) (*conversation.Session, error) {
	sess, err := s.sessions.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// GetSession returns a conversation by ID.
func (s *Service) GetSession(ctx context.Context, id string) (*conversation.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// ResetSession drops a conversation and its history.
func (s *Service) ResetSession(ctx context.Context, id string) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Ask answers question within the session. Follow-ups are first refined against
// the history. A previous answer sharing any keyword with the refined text is
// returned as is; otherwise ReliefWeb is searched and the documents summarized.
// Search or model failures produce the Apology and leave the history untouched.
func (s *Service) Ask(ctx context.Context, sessionID, question string) (conversation.ExchangeResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return conversation.ExchangeResult{}, domain.ErrEmptyQuestion
	}

	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return conversation.ExchangeResult{}, err
	}
	ctx = logger.With(ctx, zap.String("session_id", sessionID))

	steps := conversation.Steps{
		Produce: func(prior []conversation.Turn, text string) conversation.Produced {
			return s.produce(ctx, prior, question, text)
		},
	}
	if s.refiner != nil {
		steps.Refine = func(prior []conversation.Turn, q string) string {
			return s.refine(ctx, prior, q)
		}
	}
	res := sess.ExchangeWith(question, s.now().UTC(), steps)

	metrics.AnswersTotal.WithLabelValues(string(res.Outcome)).Inc()
	logger.FromContext(ctx).Info("Question answered",
		zap.String("outcome", string(res.Outcome)),
		zap.Int("documents", len(res.Documents)),
	)

	return res, nil
}

// produce handles a cache miss: search with text, summarize for question, grade.
func (s *Service) produce(ctx context.Context, prior []conversation.Turn, question, text string) conversation.Produced {
	log := logger.FromContext(ctx)
	fallback := conversation.Produced{Answer: Apology}

	params := s.params(ctx, text)
	_, res, err := s.searcher.Search(ctx, s.endpoint, params)
	if err != nil {
		log.Warn("Search failed", zap.Error(err))
		return fallback
	}
	if res.IsNoData() {
		log.Info("No data for question", zap.String("diagnostic", res.Diagnostic()))
		return fallback
	}
	if res.Empty() {
		log.Info("Search returned no documents", zap.String("keyword", params.Keyword))
		return fallback
	}

	var previous string
	if len(prior) > 0 {
		previous = prior[len(prior)-1].Answer()
	}

	answer, err := s.summarizer.Answer(ctx, question, previous, res.Records())
	if err != nil {
		log.Warn("Summarization failed", zap.Error(err))
		return fallback
	}

	return conversation.Produced{
		Answer:       answer,
		Documents:    res.Records(),
		Groundedness: s.grade(ctx, answer, res.Records()),
		OK:           true,
	}
}

// refine rewrites a follow-up into standalone search text. The first question
// and refinement errors keep the raw question.
func (s *Service) refine(ctx context.Context, prior []conversation.Turn, question string) string {
	if len(prior) == 0 {
		return question
	}
	refined, err := s.refiner.Refine(ctx, prior, question)
	if err != nil {
		logger.FromContext(ctx).Warn("Intent refinement failed, using raw question", zap.Error(err))
		return question
	}
	if refined == "" {
		return question
	}
	logger.FromContext(ctx).Debug("Refined question", zap.String("query", refined))
	return refined
}

// params turns search text into query parameters, narrowed by extracted
// entities when an extractor is configured.
func (s *Service) params(ctx context.Context, text string) query.Params {
	p := query.Params{Keyword: text, Limit: s.limit}
	if s.entities == nil {
		return p
	}
	ents, err := s.entities.ExtractEntities(ctx, text)
	if err != nil {
		logger.FromContext(ctx).Warn("Entity extraction failed, searching by text", zap.Error(err))
		return p
	}
	return entity.Apply(p, ents)
}

// grade returns the groundedness score, 0 when grading is off or fails.
func (s *Service) grade(ctx context.Context, answer string, docs []document.Record) int {
	if s.grader == nil {
		return 0
	}
	score, err := s.grader.Groundedness(ctx, answer, docs)
	if err != nil {
		logger.FromContext(ctx).Warn("Groundedness check failed", zap.Error(err))
		return 0
	}
	metrics.AnswerGroundedness.Observe(float64(score))
	return score
}
