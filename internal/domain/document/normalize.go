package document

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/reliefqa/internal/domain/search/endpoint"
)

// Envelope is the ReliefWeb search response.
type Envelope struct {
	TotalCount int     `json:"totalCount"`
	Count      int     `json:"count"`
	Data       []Entry `json:"data"`
}

// Entry is a single item of the envelope's data array.
type Entry struct {
	ID     json.RawMessage            `json:"id,omitempty"`
	Fields map[string]json.RawMessage `json:"fields"`
	// Order lists the field names as the API sent them.
	Order []string `json:"-"`
}

// UnmarshalJSON decodes an entry and records its field order.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID     json.RawMessage `json:"id,omitempty"`
		Fields json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = Entry{ID: aux.ID}
	if len(aux.Fields) == 0 {
		return nil
	}
	if err := json.Unmarshal(aux.Fields, &e.Fields); err != nil {
		return fmt.Errorf("decode entry fields: %w", err)
	}
	order, err := objectKeys(aux.Fields)
	if err != nil {
		return fmt.Errorf("decode entry fields: %w", err)
	}
	e.Order = order
	return nil
}

// URL returns the entry's fields.url, or "" when absent or not a string.
func (e Entry) URL() string {
	raw, ok := e.Fields["url"]
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// DecodeEnvelope parses a raw search response.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// Normalize flattens the envelope into records, one per data entry, in response order.
// bodies is index-aligned with env.Data; missing or nil entries yield an empty body.
func Normalize(env Envelope, ep endpoint.Endpoint, bodies [][]string) []Record {
	records := make([]Record, len(env.Data))
	for i, entry := range env.Data {
		var body []string
		if i < len(bodies) {
			body = bodies[i]
		}
		records[i] = newRecord(entry.Fields, entry.Order, ep, body)
	}
	return records
}
