package entity

import (
	"strings"

	"github.com/kailas-cloud/reliefqa/internal/domain/search/query"
)

// Type is the kind of a named entity found in a question.
type Type string

// Entity types understood by the query mapping.
const (
	Location     Type = "location"
	DisasterType Type = "disaster_type"
	Year         Type = "year"
)

// Valid reports whether t is a known entity type.
func (t Type) Valid() bool {
	switch t {
	case Location, DisasterType, Year:
		return true
	default:
		return false
	}
}

// Entity is a typed span of a question, e.g. {location, Sudan}.
type Entity struct {
	Type  Type
	Value string
}

// New normalizes the type name and trims the value. ok is false for unknown
// types and empty values.
func New(typ, value string) (Entity, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(typ)))
	v := strings.TrimSpace(value)
	if !t.Valid() || v == "" {
		return Entity{}, false
	}
	return Entity{Type: t, Value: v}, true
}

// Keyword joins the entity values in order: [sudan, conflict, 2024] gives
// "sudan conflict 2024".
func Keyword(entities []Entity) string {
	parts := make([]string, 0, len(entities))
	for _, e := range entities {
		parts = append(parts, e.Value)
	}
	return strings.Join(parts, " ")
}

// Apply narrows p with the extracted entities. With no entities p is returned
// unchanged. Otherwise the keyword becomes the joined entity values, the first
// location fills Country, the first disaster type fills DisasterType, and the
// first four-digit year becomes a full-year date range unless p already has
// date bounds.
func Apply(p query.Params, entities []Entity) query.Params {
	if len(entities) == 0 {
		return p
	}
	p.Keyword = Keyword(entities)

	for _, e := range entities {
		switch e.Type {
		case Location:
			if p.Country == nil {
				p.Country = query.String(e.Value)
			}
		case DisasterType:
			if p.DisasterType == nil {
				p.DisasterType = query.String(e.Value)
			}
		case Year:
			if p.DateFrom == nil && p.DateTo == nil && isYear(e.Value) {
				p.DateFrom = query.String(e.Value + "-01-01")
				p.DateTo = query.String(e.Value + "-12-31")
			}
		}
	}
	return p
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
