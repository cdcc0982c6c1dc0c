package reliefqa

import (
	"errors"

	"github.com/kailas-cloud/reliefqa/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery     = domain.ErrInvalidQuery
	ErrUnknownEndpoint  = domain.ErrUnknownEndpoint
	ErrEmptyQuestion    = domain.ErrEmptyQuestion
	ErrSessionNotFound  = domain.ErrSessionNotFound
	ErrLLMProviderError = domain.ErrLLMProviderError

	// ErrLLMNotConfigured is returned by chat calls on a client built without WithLLM.
	ErrLLMNotConfigured = errors.New("reliefqa: llm not configured (use WithLLM)")
)
