package reliefqa

import (
	"github.com/kailas-cloud/reliefqa/internal/domain/conversation"
	"github.com/kailas-cloud/reliefqa/internal/domain/document"
	"github.com/kailas-cloud/reliefqa/internal/domain/fetch"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/endpoint"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/query"
)

// Endpoint names a ReliefWeb API endpoint.
type Endpoint = endpoint.Endpoint

// Supported endpoints.
const (
	Reports   = endpoint.Reports
	Disasters = endpoint.Disasters
)

// Params are the search parameters. Nil pointers add no filter.
type Params = query.Params

// Record is one normalized ReliefWeb document.
type Record = document.Record

// String returns a pointer to s for optional Params fields.
func String(s string) *string { return query.String(s) }

// Outcome tells how a chat question was answered.
type Outcome string

// Outcome constants.
const (
	OutcomeCached   Outcome = "cached"
	OutcomeFresh    Outcome = "fresh"
	OutcomeFallback Outcome = "fallback"
)

// SearchResult is the outcome of a raw search.
type SearchResult struct {
	Query      string // request body in diagnostic layout
	NoData     bool
	Diagnostic string
	Records    []Record
}

// Answer is the reply to a chat question.
type Answer struct {
	Text string
	// Query is the text the answer was looked up and searched by: the refined
	// question when intent refinement is on.
	Query     string
	Outcome   Outcome
	Keywords  []string
	Documents []Record
	// Groundedness is the 1-5 support score, 0 when not checked.
	Groundedness int
}

// Turn is one answered question of a session.
type Turn struct {
	Question     string
	Query        string
	Answer       string
	Keywords     []string
	Groundedness int
}

func searchResultFrom(q query.SearchQuery, res fetch.Result) SearchResult {
	return SearchResult{
		Query:      q.String(),
		NoData:     res.IsNoData(),
		Diagnostic: res.Diagnostic(),
		Records:    res.Records(),
	}
}

func answerFrom(res conversation.ExchangeResult) Answer {
	return Answer{
		Text:         res.Answer,
		Query:        res.Query,
		Outcome:      Outcome(res.Outcome),
		Keywords:     res.Keywords.Sorted(),
		Documents:    res.Documents,
		Groundedness: res.Groundedness,
	}
}

func turnsFrom(turns []conversation.Turn) []Turn {
	out := make([]Turn, len(turns))
	for i, t := range turns {
		out[i] = Turn{
			Question:     t.Question(),
			Query:        t.Query(),
			Answer:       t.Answer(),
			Keywords:     t.Keywords().Sorted(),
			Groundedness: t.Groundedness(),
		}
	}
	return out
}
