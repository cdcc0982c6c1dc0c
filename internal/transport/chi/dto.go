package chi

import (
	"time"

	"github.com/kailas-cloud/reliefqa/internal/domain/conversation"
	"github.com/kailas-cloud/reliefqa/internal/domain/document"
	"github.com/kailas-cloud/reliefqa/internal/domain/fetch"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/endpoint"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/query"
	domusage "github.com/kailas-cloud/reliefqa/internal/domain/usage"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeSessionNotFound  ErrorCode = "session_not_found"
	ErrorCodeUnknownEndpoint  ErrorCode = "unknown_endpoint"
	ErrorCodeLLMProviderError ErrorCode = "llm_provider_error"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// AskRequest is the body of POST /sessions/{id}/questions.
type AskRequest struct {
	Question string `json:"question"`
}

// AnswerResponse describes how a question was answered.
type AnswerResponse struct {
	Answer       string            `json:"answer"`
	Outcome      string            `json:"outcome"`
	Query        string            `json:"query"`
	Keywords     []string          `json:"keywords"`
	Documents    []document.Record `json:"documents"`
	Groundedness int               `json:"groundedness,omitempty"` // 1-5, omitted when not scored
}

// TurnResponse is one question/answer pair of a session.
type TurnResponse struct {
	Question     string            `json:"question"`
	Query        string            `json:"query"`
	Answer       string            `json:"answer"`
	Keywords     []string          `json:"keywords"`
	AskedAt      time.Time         `json:"asked_at"`
	Documents    []document.Record `json:"documents"`
	Groundedness int               `json:"groundedness,omitempty"`
}

// SessionResponse is a chat session with its history.
type SessionResponse struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Turns     []TurnResponse `json:"turns"`
}

// SearchResponse is the result of POST /search/{endpoint}.
type SearchResponse struct {
	Endpoint   endpoint.Endpoint `json:"endpoint"`
	Query      query.SearchQuery `json:"query"`
	NoData     bool              `json:"no_data"`
	Diagnostic string            `json:"diagnostic,omitempty"`
	Records    []document.Record `json:"records"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

// BudgetResponse is the token budget state of a usage period.
type BudgetResponse struct {
	TokensLimit     int64     `json:"tokens_limit"`
	TokensRemaining int64     `json:"tokens_remaining"`
	IsExhausted     bool      `json:"is_exhausted"`
	ResetsAt        time.Time `json:"resets_at"`
}

// UsageResponse is the body of GET /usage.
type UsageResponse struct {
	Period      string         `json:"period"`
	PeriodStart time.Time      `json:"period_start"`
	PeriodEnd   time.Time      `json:"period_end"`
	TokensUsed  int64          `json:"tokens_used"`
	Budget      BudgetResponse `json:"budget"`
}

func usageToResponse(r domusage.Report) UsageResponse {
	return UsageResponse{
		Period:      string(r.Period),
		PeriodStart: time.UnixMilli(r.PeriodStart).UTC(),
		PeriodEnd:   time.UnixMilli(r.PeriodEnd).UTC(),
		TokensUsed:  r.TokensUsed,
		Budget: BudgetResponse{
			TokensLimit:     r.Budget.Limit,
			TokensRemaining: r.Budget.Remaining,
			IsExhausted:     r.Budget.Exhausted,
			ResetsAt:        time.UnixMilli(r.Budget.ResetsAt).UTC(),
		},
	}
}

func answerToResponse(res conversation.ExchangeResult) AnswerResponse {
	return AnswerResponse{
		Answer:       res.Answer,
		Outcome:      string(res.Outcome),
		Query:        res.Query,
		Keywords:     res.Keywords.Sorted(),
		Documents:    nonNilRecords(res.Documents),
		Groundedness: res.Groundedness,
	}
}

func sessionToResponse(s *conversation.Session) SessionResponse {
	turns := s.Turns()
	resp := SessionResponse{
		ID:        s.ID(),
		CreatedAt: s.CreatedAt(),
		Turns:     make([]TurnResponse, len(turns)),
	}
	for i, t := range turns {
		resp.Turns[i] = TurnResponse{
			Question:     t.Question(),
			Query:        t.Query(),
			Answer:       t.Answer(),
			Keywords:     t.Keywords().Sorted(),
			AskedAt:      t.AskedAt(),
			Documents:    nonNilRecords(t.Documents()),
			Groundedness: t.Groundedness(),
		}
	}
	return resp
}

func searchToResponse(ep endpoint.Endpoint, q query.SearchQuery, res fetch.Result) SearchResponse {
	return SearchResponse{
		Endpoint:   ep,
		Query:      q,
		NoData:     res.IsNoData(),
		Diagnostic: res.Diagnostic(),
		Records:    nonNilRecords(res.Records()),
	}
}

func nonNilRecords(r []document.Record) []document.Record {
	if r == nil {
		return []document.Record{}
	}
	return r
}
