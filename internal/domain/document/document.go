package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/reliefqa/internal/domain/search/endpoint"
)

// Reserved keys added on top of the API fields.
const (
	KeyEndpoint = "endpoint"
	KeyBody     = "body"
)

// Record is one normalized search hit (immutable value object).
// API fields are kept verbatim as raw JSON, in the order the API sent them.
type Record struct {
	fields   map[string]json.RawMessage
	order    []string
	endpoint endpoint.Endpoint
	body     []string
}

// NewRecord creates a Record with its fields in key order. A nil body becomes an empty one.
func NewRecord(fields map[string]json.RawMessage, ep endpoint.Endpoint, body []string) Record {
	return newRecord(fields, nil, ep, body)
}

// newRecord keeps the keys listed in order first, then any remaining keys sorted.
func newRecord(fields map[string]json.RawMessage, order []string, ep endpoint.Endpoint, body []string) Record {
	if body == nil {
		body = []string{}
	}
	cloned := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		cloned[k] = v
	}
	return Record{fields: cloned, order: fieldOrder(cloned, order), endpoint: ep, body: slices.Clone(body)}
}

func fieldOrder(fields map[string]json.RawMessage, order []string) []string {
	keys := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, k := range order {
		if _, ok := fields[k]; ok && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// Endpoint returns the search endpoint that produced the record.
func (r Record) Endpoint() endpoint.Endpoint { return r.endpoint }

// Body returns the extracted paragraph texts in document order.
func (r Record) Body() []string { return slices.Clone(r.body) }

// Fields returns a copy of the raw API fields.
func (r Record) Fields() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}

// Field returns a single raw field and whether it was present.
func (r Record) Field(name string) (json.RawMessage, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// ID returns the document id as text.
func (r Record) ID() string { return r.text("id") }

// Title returns the report title, or the disaster name.
func (r Record) Title() string {
	if t := r.text("title"); t != "" {
		return t
	}
	return r.text("name")
}

// URL returns the canonical ReliefWeb page.
func (r Record) URL() string { return r.text("url") }

// Source returns the publishing organisations, comma separated.
func (r Record) Source() string { return r.text("source") }

// Format returns the report format names.
func (r Record) Format() string { return r.text("format") }

// Status returns the publication or disaster status.
func (r Record) Status() string { return r.text("status") }

// PrimaryCountry returns the primary country name.
func (r Record) PrimaryCountry() string { return r.text("primary_country") }

// Date returns the most relevant date: created, then event, then original.
func (r Record) Date() string {
	raw, ok := r.fields["date"]
	if !ok {
		return ""
	}
	var dates map[string]string
	if err := json.Unmarshal(raw, &dates); err != nil {
		return nameOf(raw)
	}
	for _, k := range []string{"created", "event", "original"} {
		if v := dates[k]; v != "" {
			return v
		}
	}
	return ""
}

func (r Record) text(key string) string {
	raw, ok := r.fields[key]
	if !ok {
		return ""
	}
	return nameOf(raw)
}

// nameOf flattens ReliefWeb field shapes to text: strings and numbers as-is,
// objects by their "name", arrays joined with ", ".
func nameOf(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	var obj struct {
		Name string `json:"name"`
	}
	if json.Unmarshal(raw, &obj) == nil && obj.Name != "" {
		return obj.Name
	}
	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if v := nameOf(item); v != "" {
				parts = append(parts, v)
			}
		}
		return strings.Join(parts, ", ")
	}
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return strconv.FormatBool(b)
	}
	return ""
}

// MarshalJSON flattens API fields, endpoint and body into one object.
// API fields keep their order; endpoint and body come last.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, k := range fieldOrder(r.fields, r.order) {
		if k == KeyEndpoint || k == KeyBody {
			continue
		}
		if err := writeMember(&buf, k, r.fields[k]); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
	}
	ep, err := json.Marshal(r.endpoint)
	if err != nil {
		return nil, fmt.Errorf("encode record endpoint: %w", err)
	}
	if err := writeMember(&buf, KeyEndpoint, ep); err != nil {
		return nil, err
	}
	body := r.body
	if body == nil {
		body = []string{}
	}
	rawBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode record body: %w", err)
	}
	buf.WriteByte(',')
	if err := writeMember(&buf, KeyBody, rawBody); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value json.RawMessage) error {
	k, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("encode record key: %w", err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	if err := json.Compact(buf, value); err != nil {
		return fmt.Errorf("encode record field %q: %w", key, err)
	}
	return nil
}

// UnmarshalJSON restores a Record from its flattened form.
func (r *Record) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	order, err := objectKeys(data)
	if err != nil {
		return fmt.Errorf("decode record: %w", err)
	}

	var ep endpoint.Endpoint
	if raw, ok := flat[KeyEndpoint]; ok {
		if err := json.Unmarshal(raw, &ep); err != nil {
			return fmt.Errorf("decode record endpoint: %w", err)
		}
		delete(flat, KeyEndpoint)
	}

	body := []string{}
	if raw, ok := flat[KeyBody]; ok {
		if err := json.Unmarshal(raw, &body); err != nil {
			return fmt.Errorf("decode record body: %w", err)
		}
		delete(flat, KeyBody)
	}
	if flat == nil {
		flat = map[string]json.RawMessage{}
	}

	*r = Record{fields: flat, order: fieldOrder(flat, order), endpoint: ep, body: body}
	return nil
}

// objectKeys lists the member names of a JSON object in document order.
// Null yields no keys.
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("want object, got %v", tok)
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
