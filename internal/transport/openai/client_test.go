package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reliefqa/internal/domain"
	"github.com/kailas-cloud/reliefqa/internal/domain/conversation"
	"github.com/kailas-cloud/reliefqa/internal/domain/document"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/endpoint"
	"github.com/kailas-cloud/reliefqa/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

// chatServer replies to /chat/completions with reply and records the last request.
func chatServer(t *testing.T, reply string, got *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if got != nil {
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, got); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}

		resp := openai.ChatCompletionResponse{
			ID:     "cmpl-1",
			Object: "chat.completion",
			Model:  "test-model",
			Choices: []openai.ChatCompletionChoice{{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
				FinishReason: openai.FinishReasonStop,
			}},
			Usage: openai.Usage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(baseURL string) *Client {
	return NewClient(&Config{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "test-model",
		Timeout: 5 * time.Second,
		Logger:  zap.NewNop(),
	})
}

func sampleDocs() []document.Record {
	return []document.Record{
		document.NewRecord(map[string]json.RawMessage{
			"title": json.RawMessage(`"Sudan floods sitrep"`),
			"url":   json.RawMessage(`"https://reliefweb.int/report/1"`),
		}, endpoint.Reports, []string{"Thousands displaced."}),
	}
}

func TestAnswer_InitialPrompt(t *testing.T) {
	var req openai.ChatCompletionRequest
	server := chatServer(t, "Floods displaced thousands [Sudan floods sitrep].", &req)

	got, err := newTestClient(server.URL).Answer(context.Background(), "floods in Sudan", "", sampleDocs())
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if got != "Floods displaced thousands [Sudan floods sitrep]." {
		t.Errorf("unexpected answer: %q", got)
	}

	if req.Model != "test-model" {
		t.Errorf("model = %q", req.Model)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(req.Messages))
	}
	system, user := req.Messages[0], req.Messages[1]
	if system.Role != openai.ChatMessageRoleSystem || user.Role != openai.ChatMessageRoleUser {
		t.Errorf("roles = %q, %q", system.Role, user.Role)
	}
	if !strings.Contains(system.Content, "Sudan floods sitrep") || !strings.Contains(system.Content, "Thousands displaced.") {
		t.Errorf("documents missing from system prompt: %q", system.Content)
	}
	if strings.Contains(system.Content, "previous answer") {
		t.Errorf("initial prompt must not mention a previous answer")
	}
	if user.Content != "floods in Sudan" {
		t.Errorf("user content = %q", user.Content)
	}
}

func TestAnswer_ChainPrompt(t *testing.T) {
	var req openai.ChatCompletionRequest
	server := chatServer(t, "More detail.", &req)

	_, err := newTestClient(server.URL).Answer(context.Background(), "what about Chad", "Earlier answer.", sampleDocs())
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if !strings.Contains(req.Messages[0].Content, "previous answer") {
		t.Errorf("chain prompt should reference the previous answer: %q", req.Messages[0].Content)
	}
	if req.Messages[1].Content != "Earlier answer.\nUser's question: what about Chad" {
		t.Errorf("user content = %q", req.Messages[1].Content)
	}
}

func TestAnswer_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error": {"message": "invalid api key", "type": "auth"}}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Answer(context.Background(), "q", "", sampleDocs())
	if !errors.Is(err, domain.ErrLLMProviderError) {
		t.Fatalf("expected ErrLLMProviderError, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("error should carry the provider message: %v", err)
	}
}

func TestAnswer_EmptyCompletion(t *testing.T) {
	server := chatServer(t, "   ", nil)

	_, err := newTestClient(server.URL).Answer(context.Background(), "q", "", nil)
	if !errors.Is(err, domain.ErrLLMProviderError) {
		t.Fatalf("expected ErrLLMProviderError for empty completion, got %v", err)
	}
}

func TestAnswer_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	_, err := newTestClient(server.URL).Answer(context.Background(), "q", "", nil)
	if !errors.Is(err, domain.ErrLLMProviderError) {
		t.Fatalf("expected ErrLLMProviderError, got %v", err)
	}
}

func TestRefine(t *testing.T) {
	var req openai.ChatCompletionRequest
	server := chatServer(t, "Output: \"flood response in Chad\"", &req)

	history := []conversation.Turn{
		conversation.NewTurn("floods in Sudan", "Floods displaced thousands.", nil, time.Now()),
	}
	got, err := newTestClient(server.URL).Refine(context.Background(), history, "and in Chad?")
	if err != nil {
		t.Fatalf("Refine failed: %v", err)
	}
	if got != "flood response in Chad" {
		t.Errorf("refined query = %q", got)
	}

	transcript := req.Messages[1].Content
	for _, want := range []string{"Human: floods in Sudan", "AI: Floods displaced thousands.", "Human: and in Chad?"} {
		if !strings.Contains(transcript, want) {
			t.Errorf("transcript missing %q:\n%s", want, transcript)
		}
	}
}

func TestCleanQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"flood Chad", "flood Chad"},
		{"  Output: flood Chad \n", "flood Chad"},
		{`"flood Chad"`, "flood Chad"},
		{"'flood Chad'", "flood Chad"},
	}
	for _, tt := range tests {
		if got := cleanQuery(tt.in); got != tt.want {
			t.Errorf("cleanQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"object": "list", "data": [{"id": "test-model", "object": "model"}]}`)
	}))
	defer server.Close()

	if err := newTestClient(server.URL).HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}
}

func TestHealthCheck_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if err := newTestClient(server.URL).HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestExtractDetail(t *testing.T) {
	if got := extractDetail([]byte(`{"detail": "quota exceeded"}`)); got != "quota exceeded" {
		t.Errorf("detail = %q", got)
	}
	if got := extractDetail([]byte(`{"message": "Unauthorized"}`)); got != "Unauthorized" {
		t.Errorf("message = %q", got)
	}
	if got := extractDetail([]byte(`not json`)); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

type mockBudget struct {
	checkErr error
	recorded int64
}

func (m *mockBudget) Check(context.Context) error { return m.checkErr }
func (m *mockBudget) Record(tokens int64)        { m.recorded += tokens }

func TestAnswer_RecordsTokenUsage(t *testing.T) {
	server := chatServer(t, "answer", nil)
	b := &mockBudget{}
	c := NewClient(&Config{APIKey: "test-key", BaseURL: server.URL, Model: "test-model", Budget: b})

	if _, err := c.Answer(context.Background(), "q", "", sampleDocs()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.recorded != 120 {
		t.Errorf("recorded = %d, want 120", b.recorded)
	}
}

func TestAnswer_BudgetExhausted(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Budget:  &mockBudget{checkErr: domain.ErrLLMQuotaExceeded},
	})

	_, err := c.Answer(context.Background(), "q", "", sampleDocs())
	if !errors.Is(err, domain.ErrLLMQuotaExceeded) {
		t.Fatalf("expected ErrLLMQuotaExceeded, got %v", err)
	}
	if called {
		t.Error("provider must not be called when the budget is spent")
	}
}
