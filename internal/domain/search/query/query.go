package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/kailas-cloud/reliefqa/internal/domain/search/endpoint"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/filter"
)

// DefaultAppName identifies this client to the ReliefWeb API.
const DefaultAppName = "myapp"

// Text is the full-text part of a search query.
type Text struct {
	Value    string `json:"value"`
	Operator string `json:"operator,omitempty"`
}

// Fields lists the document fields the API should return.
type Fields struct {
	Include []string `json:"include"`
}

// SearchQuery is the ReliefWeb request body. Field order is the wire order.
type SearchQuery struct {
	AppName string        `json:"appname"`
	Query   Text          `json:"query"`
	Filter  filter.Filter `json:"filter"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
	Fields  Fields        `json:"fields"`
	Preset  string        `json:"preset,omitempty"`
	Profile string        `json:"profile,omitempty"`
	Sort    []string      `json:"sort,omitempty"`
}

// MarshalCompact encodes the query as compact JSON without HTML escaping.
func (q *SearchQuery) MarshalCompact() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(q); err != nil {
		return nil, fmt.Errorf("encode search query: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// String renders the query as {"key": value, "key2": value2}: double quotes with a
// space after every separator. Diagnostics embed this form.
func (q *SearchQuery) String() string {
	raw, err := q.MarshalCompact()
	if err != nil {
		return "{}"
	}
	return layout(raw, func(lit []byte) string { return string(lit) })
}

// Literal renders the query in the same layout with literal-style strings:
// single-quoted, switching to double quotes when the value contains a single
// quote and no double quote. NoData diagnostics are derived from this form.
func (q *SearchQuery) Literal() string {
	raw, err := q.MarshalCompact()
	if err != nil {
		return "{}"
	}
	return layout(raw, func(lit []byte) string {
		var s string
		if err := json.Unmarshal(lit, &s); err != nil {
			return string(lit)
		}
		return quoteLiteral(s)
	})
}

// layout inserts a space after ':' and ',' outside of string literals and
// passes every string literal (quotes included) through lit.
func layout(raw []byte, lit func([]byte) string) string {
	var out strings.Builder
	out.Grow(len(raw) + len(raw)/4)
	for i := 0; i < len(raw); i++ {
		b := raw[i]
		if b != '"' {
			out.WriteByte(b)
			if b == ':' || b == ',' {
				out.WriteByte(' ')
			}
			continue
		}
		end := i + 1
		for end < len(raw) && raw[end] != '"' {
			if raw[end] == '\\' {
				end++
			}
			end++
		}
		if end >= len(raw) {
			out.Write(raw[i:])
			break
		}
		out.WriteString(lit(raw[i : end+1]))
		i = end
	}
	return out.String()
}

func quoteLiteral(s string) string {
	quote := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var b strings.Builder
	b.WriteRune(quote)
	for _, r := range s {
		switch {
		case r == quote || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case unicode.IsPrint(r):
			b.WriteRune(r)
		case r < 0x100:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r < 0x10000:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
	}
	b.WriteRune(quote)
	return b.String()
}

// Builder turns Params into endpoint-specific SearchQuery bodies.
type Builder struct {
	appName string
}

// NewBuilder creates a Builder. An empty appName falls back to DefaultAppName.
func NewBuilder(appName string) *Builder {
	if appName == "" {
		appName = DefaultAppName
	}
	return &Builder{appName: appName}
}

var reportFields = []string{
	"title", "body", "url", "source", "date", "format", "status", "primary_country", "id",
}

var disasterFields = []string{
	"name", "date", "url", "id", "status", "glide", "country",
}

// Build dispatches to the endpoint-specific builder.
func (b *Builder) Build(ep endpoint.Endpoint, p Params) (SearchQuery, error) {
	switch ep {
	case endpoint.Reports:
		return b.Reports(p)
	case endpoint.Disasters:
		return b.Disasters(p)
	default:
		return SearchQuery{}, fmt.Errorf("unknown endpoint %q", ep)
	}
}

// Reports builds a query for the reports endpoint.
// Condition order: date.created range, disaster.id, format.name.
func (b *Builder) Reports(p Params) (SearchQuery, error) {
	if err := p.Validate(); err != nil {
		return SearchQuery{}, err
	}

	var conds []filter.Condition
	if p.hasDateRange() {
		conds = append(conds, dateRange("date.created", *p.DateFrom, *p.DateTo))
	}
	conds = appendValue(conds, "disaster.id", p.DisasterID)
	conds = appendValue(conds, "format.name", p.Format)

	f, err := filter.NewImplicit(conds...)
	if err != nil {
		return SearchQuery{}, fmt.Errorf("build reports filter: %w", err)
	}

	q := SearchQuery{
		AppName: b.appName,
		Query:   Text{Value: p.Keyword, Operator: filter.OperatorAnd},
		Filter:  f,
		Limit:   limitOrDefault(p.Limit, endpoint.Reports),
		Offset:  p.Offset,
		Fields:  Fields{Include: append([]string(nil), reportFields...)},
		Preset:  "latest",
		Profile: "list",
	}
	if p.Sort != nil {
		q.Sort = []string{*p.Sort}
	}
	return q, nil
}

// Disasters builds a query for the disasters endpoint.
// Condition order: date.event range, status, country.name, type.name, id.
func (b *Builder) Disasters(p Params) (SearchQuery, error) {
	if err := p.Validate(); err != nil {
		return SearchQuery{}, err
	}

	var conds []filter.Condition
	if p.hasDateRange() {
		conds = append(conds, dateRange("date.event", *p.DateFrom, *p.DateTo))
	}
	conds = appendValue(conds, "status", p.Status)
	conds = appendValue(conds, "country.name", p.Country)
	conds = appendValue(conds, "type.name", p.DisasterType)
	conds = appendValue(conds, "id", p.DisasterID)

	f, err := filter.New(filter.OperatorAnd, conds...)
	if err != nil {
		return SearchQuery{}, fmt.Errorf("build disasters filter: %w", err)
	}

	include := append([]string(nil), disasterFields...)
	if p.IncludeDescription {
		include = append(include, "description")
	}

	q := SearchQuery{
		AppName: b.appName,
		Query:   Text{Value: p.Keyword},
		Filter:  f,
		Limit:   limitOrDefault(p.Limit, endpoint.Disasters),
		Offset:  p.Offset,
		Fields:  Fields{Include: include},
	}
	if p.Sort != nil {
		q.Sort = []string{*p.Sort}
	}
	return q, nil
}

func dateRange(field, from, to string) filter.Condition {
	c, _ := filter.NewRange(field, filter.Range{
		From: ConvertToISO8601(from),
		To:   ConvertToISO8601(to),
	})
	return c
}

func appendValue(conds []filter.Condition, field string, v *string) []filter.Condition {
	if v == nil {
		return conds
	}
	c, _ := filter.NewValue(field, *v)
	return append(conds, c)
}

func limitOrDefault(limit int, ep endpoint.Endpoint) int {
	if limit == 0 {
		return ep.DefaultLimit()
	}
	return limit
}
