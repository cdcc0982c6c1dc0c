// Package session keeps chat sessions in process memory.
package session

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/reliefqa/internal/domain"
	"github.com/kailas-cloud/reliefqa/internal/domain/conversation"
	"github.com/kailas-cloud/reliefqa/internal/metrics"
)

// DefaultMaxSessions bounds the store when no limit is configured.
const DefaultMaxSessions = 1000

// Repo implements usecase/chat.SessionRepository.
// Sessions live for the process lifetime; the oldest is evicted past maxSessions.
type Repo struct {
	mu          sync.RWMutex
	sessions    map[string]*list.Element
	order       *list.List // oldest at front
	maxSessions int
	now         func() time.Time
	newID       func() string
}

// New creates a session repository.
func New(maxSessions int) *Repo {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Repo{
		sessions:    make(map[string]*list.Element),
		order:       list.New(),
		maxSessions: maxSessions,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Create starts an empty session.
func (r *Repo) Create(_ context.Context) (*conversation.Session, error) {
	s := conversation.NewSession(r.newID(), r.now().UTC())

	r.mu.Lock()
	defer r.mu.Unlock()

	for r.order.Len() >= r.maxSessions {
		r.evictOldest()
	}
	r.sessions[s.ID()] = r.order.PushBack(s)
	metrics.ActiveSessions.Set(float64(r.order.Len()))

	return s, nil
}

// Get returns a session by ID.
func (r *Repo) Get(_ context.Context, id string) (*conversation.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	el, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return el.Value.(*conversation.Session), nil
}

// Delete drops a session and its history.
func (r *Repo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	el, ok := r.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	r.order.Remove(el)
	delete(r.sessions, id)
	metrics.ActiveSessions.Set(float64(r.order.Len()))
	return nil
}

// Len returns the number of live sessions.
func (r *Repo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.order.Len()
}

func (r *Repo) evictOldest() {
	front := r.order.Front()
	if front == nil {
		return
	}
	r.order.Remove(front)
	delete(r.sessions, front.Value.(*conversation.Session).ID())
}
