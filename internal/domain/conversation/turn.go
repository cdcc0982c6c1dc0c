package conversation

import (
	"slices"
	"time"

	"github.com/kailas-cloud/reliefqa/internal/domain/document"
)

// Turn is one answered question. Turns are never mutated after being appended.
type Turn struct {
	question     string
	query        string
	answer       string
	keywords     Keywords
	documents    []document.Record
	groundedness int
	askedAt      time.Time
}

// NewTurn creates a Turn, deriving the keyword set from the question.
func NewTurn(question, answer string, docs []document.Record, askedAt time.Time) Turn {
	return Turn{
		question:  question,
		query:     question,
		answer:    answer,
		keywords:  ExtractKeywords(question),
		documents: slices.Clone(docs),
		askedAt:   askedAt,
	}
}

// Question returns the user's question.
func (t Turn) Question() string { return t.question }

// Query returns the text the turn was searched and indexed by: the refined
// question, or the question itself.
func (t Turn) Query() string { return t.query }

// Groundedness returns the 1-5 support score of the answer, 0 when not scored.
func (t Turn) Groundedness() int { return t.groundedness }

// Answer returns the assistant's answer.
func (t Turn) Answer() string { return t.answer }

// Keywords returns the token set of Query.
func (t Turn) Keywords() Keywords { return t.keywords }

// Documents returns the records the answer was based on.
func (t Turn) Documents() []document.Record { return slices.Clone(t.documents) }

// AskedAt returns when the question was answered.
func (t Turn) AskedAt() time.Time { return t.askedAt }
