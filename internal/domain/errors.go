package domain

import "errors"

var (
	// ErrInvalidQuery signals search parameters that cannot be built into a query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrUnknownEndpoint signals an unsupported ReliefWeb endpoint.
	ErrUnknownEndpoint = errors.New("unknown endpoint")
	// ErrEmptyQuestion signals a blank chat question.
	ErrEmptyQuestion = errors.New("question is required")
	// ErrSessionNotFound signals a missing chat session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrLLMProviderError signals a language model provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
	// ErrLLMQuotaExceeded signals an exhausted language model token budget.
	ErrLLMQuotaExceeded = errors.New("llm token budget exceeded")
	// ErrBodyFetch signals a failed article page download.
	ErrBodyFetch = errors.New("body fetch failed")
)

// KeyPrefix namespaces every key this service writes to the cache store.
const KeyPrefix = "reliefqa:"
