package searchcache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reliefqa/internal/db"
	"github.com/kailas-cloud/reliefqa/internal/domain/document"
	"github.com/kailas-cloud/reliefqa/internal/domain/fetch"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/endpoint"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/query"
)

type mockFetcher struct {
	result fetch.Result
	calls  int
}

func (m *mockFetcher) Fetch(_ context.Context, _ query.SearchQuery, _ endpoint.Endpoint) fetch.Result {
	m.calls++
	return m.result
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	deleted []string
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockKVStore) Del(_ context.Context, key string) error {
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func sampleRecords() []document.Record {
	return []document.Record{
		document.NewRecord(map[string]json.RawMessage{
			"id":    json.RawMessage(`1`),
			"title": json.RawMessage(`"Quake sitrep"`),
		}, endpoint.Reports, []string{"Magnitude 7.8."}),
		document.NewRecord(map[string]json.RawMessage{
			"id":    json.RawMessage(`2`),
			"title": json.RawMessage(`"Quake update"`),
		}, endpoint.Reports, nil),
	}
}

func sampleQuery(t *testing.T, keyword string) query.SearchQuery {
	t.Helper()
	q, err := query.NewBuilder("").Reports(query.Params{Keyword: keyword})
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	return q
}

func newTestCachedFetcher(inner *mockFetcher, ms *mockKVStore) *CachedFetcher {
	return New(inner, ms, Config{TTL: time.Hour, Logger: zap.NewNop()})
}
