// Package redis backs the search-result cache and the LLM token budget with
// Redis or Valkey, talking to the server through rueidis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/reliefqa/internal/db"
)

var _ db.Store = (*Store)(nil)

// defaultClientName tags reliefqa connections in CLIENT LIST.
const defaultClientName = "reliefqa"

// Readiness polling starts fast and backs off to maxReadyPoll.
const (
	minReadyPoll = 100 * time.Millisecond
	maxReadyPoll = time.Second
)

// ErrNoAddrs is returned by NewStore without a server address.
var ErrNoAddrs = errors.New("redis: at least one address is required")

// Config holds connection parameters. Cached query results and budget
// counters share one logical database.
type Config struct {
	Addrs      []string
	Username   string
	Password   string
	DB         int
	ClientName string
}

// Store is the cache and counter backend.
type Store struct {
	client rueidis.Client
}

// NewStore dials the server. Client-side caching stays off: cached answers
// are short-lived and written by a single process.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, ErrNoAddrs
	}
	name := cfg.ClientName
	if name == "" {
		name = defaultClientName
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		ClientName:   name,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to cache %v: %w", cfg.Addrs, err)
	}
	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close releases the connections.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings until the server answers or timeout expires. The last
// ping failure is reported alongside the deadline.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	poll := minReadyPoll
	var lastErr error
	for {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("cache not ready (last ping: %v): %w", lastErr, ctx.Err())
			}
			return fmt.Errorf("cache not ready: %w", ctx.Err())
		case <-time.After(poll):
		}
		if lastErr = s.Ping(ctx); lastErr == nil {
			return nil
		}
		poll = min(poll*2, maxReadyPoll)
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}
