package conversation

import (
	"sync"
	"time"

	"github.com/kailas-cloud/reliefqa/internal/domain/document"
)

// Outcome is the terminal state of a question exchange.
type Outcome string

// Exchange outcomes.
const (
	// OutcomeCached means a prior answer was reused.
	OutcomeCached Outcome = "cached"
	// OutcomeFresh means the answer was produced and appended to history.
	OutcomeFresh Outcome = "fresh"
	// OutcomeFallback means production failed; nothing was appended.
	OutcomeFallback Outcome = "fallback"
)

// Produced is what a cache miss handler returns.
type Produced struct {
	Answer    string
	Documents []document.Record
	// Groundedness is the 1-5 support score of Answer; 0 when not scored.
	Groundedness int
	// OK=false marks a degraded answer (e.g. apology text) that must not enter history.
	OK bool
}

// ExchangeResult describes how a question was answered.
type ExchangeResult struct {
	Outcome      Outcome
	Answer       string
	Query        string
	Keywords     Keywords
	Documents    []document.Record
	Groundedness int
}

// Steps are the callbacks of one exchange. Refine is optional.
type Steps struct {
	// Refine rewrites the question into standalone search text. An empty result
	// keeps the question.
	Refine func(prior []Turn, question string) string
	// Produce answers a cache miss for the (refined) text.
	Produce func(prior []Turn, text string) Produced
}

// Session owns one conversation's history.
// Exchanges run one at a time; history reads only wait for lookups and appends.
type Session struct {
	id        string
	createdAt time.Time

	exchange sync.Mutex
	mu       sync.RWMutex
	history  *History
}

// NewSession creates an empty session.
func NewSession(id string, createdAt time.Time) *Session {
	return &Session{id: id, createdAt: createdAt, history: NewHistory()}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Turns returns a snapshot of the history.
func (s *Session) Turns() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Turns()
}

// Len returns the number of turns.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Len()
}

// Exchange answers question without refinement. See ExchangeWith.
func (s *Session) Exchange(question string, now time.Time, produce func(prior []Turn) Produced) ExchangeResult {
	return s.ExchangeWith(question, now, Steps{
		Produce: func(prior []Turn, _ string) Produced { return produce(prior) },
	})
}

// ExchangeWith answers a question: refine, lookup with the refined text, and on a
// miss produce + append. Exchanges on one session are serialized, so a question
// always sees every earlier answer.
func (s *Session) ExchangeWith(question string, now time.Time, steps Steps) ExchangeResult {
	s.exchange.Lock()
	defer s.exchange.Unlock()

	prior := s.Turns()

	text := question
	if steps.Refine != nil {
		if refined := steps.Refine(prior, question); refined != "" {
			text = refined
		}
	}
	kw := ExtractKeywords(text)

	s.mu.RLock()
	t, hit := s.history.LookupTurn(text)
	s.mu.RUnlock()
	if hit {
		return ExchangeResult{
			Outcome:      OutcomeCached,
			Answer:       t.answer,
			Query:        text,
			Keywords:     kw,
			Documents:    t.Documents(),
			Groundedness: t.groundedness,
		}
	}

	p := steps.Produce(prior, text)
	if !p.OK {
		return ExchangeResult{Outcome: OutcomeFallback, Answer: p.Answer, Query: text, Keywords: kw}
	}

	turn := NewTurn(question, p.Answer, p.Documents, now)
	turn.query = text
	turn.keywords = kw
	turn.groundedness = p.Groundedness

	s.mu.Lock()
	s.history.Append(turn)
	s.mu.Unlock()

	return ExchangeResult{
		Outcome:      OutcomeFresh,
		Answer:       p.Answer,
		Query:        text,
		Keywords:     kw,
		Documents:    turn.Documents(),
		Groundedness: p.Groundedness,
	}
}
