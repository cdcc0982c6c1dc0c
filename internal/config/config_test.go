package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_InvalidChatEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.Chat.Endpoint = "jobs"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown chat endpoint")
	}

	expected := `chat.endpoint must be "reports" or "disasters", got "jobs"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidChatEndpoints(t *testing.T) {
	for _, ep := range []string{"reports", "disasters"} {
		t.Run("endpoint="+ep, func(t *testing.T) {
			cfg := validConfig()
			cfg.Chat.Endpoint = ep
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for %q: %v", ep, err)
			}
		})
	}
}

func TestValidate_Temperature(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Temperature = 2.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for temperature out of range")
	}
}

func TestValidate_NegativeChatLimit(t *testing.T) {
	cfg := validConfig()
	cfg.Chat.Limit = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative chat limit")
	}
}

func TestValidate_CacheEnabledWithoutAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Enabled = true

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing cache addrs")
	}

	cfg.Cache.Addrs = []string{"localhost:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_CacheDisabledNeedsNoAddrs(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Budget(t *testing.T) {
	tests := []struct {
		name    string
		budget  BudgetConfig
		wantErr bool
	}{
		{"warn", BudgetConfig{DailyTokenLimit: 1000, Action: "warn"}, false},
		{"reject", BudgetConfig{MonthlyTokenLimit: 1000, Action: "reject"}, false},
		{"unknown action", BudgetConfig{Action: "block"}, true},
		{"negative limit", BudgetConfig{DailyTokenLimit: -1, Action: "warn"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.LLM.Budget = tt.budget
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("expected WriteTimeoutSec=120, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.ReliefWeb.BaseURL != "https://api.reliefweb.int/v1" {
		t.Errorf("unexpected BaseURL %q", cfg.ReliefWeb.BaseURL)
	}
	if cfg.ReliefWeb.AppName != "myapp" {
		t.Errorf("expected AppName='myapp', got %q", cfg.ReliefWeb.AppName)
	}
	if cfg.ReliefWeb.TimeoutSec != 30 {
		t.Errorf("expected TimeoutSec=30, got %d", cfg.ReliefWeb.TimeoutSec)
	}
	if cfg.ReliefWeb.BodyConcurrency != 4 {
		t.Errorf("expected BodyConcurrency=4, got %d", cfg.ReliefWeb.BodyConcurrency)
	}
	if !strings.HasPrefix(cfg.ReliefWeb.UserAgent, "reliefqa/") {
		t.Errorf("unexpected UserAgent %q", cfg.ReliefWeb.UserAgent)
	}
	if cfg.LLM.Model != "mistral-large-latest" {
		t.Errorf("unexpected model %q", cfg.LLM.Model)
	}
	if cfg.LLM.Budget.Action != "warn" || cfg.LLM.Budget.Enabled() {
		t.Errorf("unexpected budget defaults: %+v", cfg.LLM.Budget)
	}
	if cfg.Chat.Endpoint != "reports" {
		t.Errorf("expected Endpoint='reports', got %q", cfg.Chat.Endpoint)
	}
	if cfg.Chat.MaxSessions != 1000 {
		t.Errorf("expected MaxSessions=1000, got %d", cfg.Chat.MaxSessions)
	}
	if cfg.Cache.TTLSec != 3600 {
		t.Errorf("expected TTLSec=3600, got %d", cfg.Cache.TTLSec)
	}
	if cfg.Cache.KeyPrefix != "reliefqa:" {
		t.Errorf("expected KeyPrefix='reliefqa:', got %q", cfg.Cache.KeyPrefix)
	}
	if cfg.Cache.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Cache.ReadinessTimeout)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		ReliefWeb: ReliefWebConfig{BaseURL: "http://mirror", AppName: "relief-bot", BodyConcurrency: 8},
		Chat:      ChatConfig{Endpoint: "disasters", MaxSessions: 10},
		Cache:     CacheConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.ReliefWeb.BaseURL != "http://mirror" || cfg.ReliefWeb.AppName != "relief-bot" {
		t.Errorf("reliefweb overridden: %+v", cfg.ReliefWeb)
	}
	if cfg.ReliefWeb.BodyConcurrency != 8 {
		t.Errorf("expected BodyConcurrency=8, got %d", cfg.ReliefWeb.BodyConcurrency)
	}
	if cfg.Chat.Endpoint != "disasters" || cfg.Chat.MaxSessions != 10 {
		t.Errorf("chat overridden: %+v", cfg.Chat)
	}
	if cfg.Cache.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Cache.KeyPrefix)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("RELIEFQA_TEST_KEY", "secret")

	tests := []struct {
		in, want string
	}{
		{"key: ${RELIEFQA_TEST_KEY}", "key: secret"},
		{"key: ${RELIEFQA_TEST_KEY:-fallback}", "key: secret"},
		{"key: ${RELIEFQA_TEST_MISSING:-fallback}", "key: fallback"},
		{"key: ${RELIEFQA_TEST_MISSING}", "key: "},
		{"key: plain", "key: plain"},
	}
	for _, tt := range tests {
		if got := string(expandEnvVars([]byte(tt.in))); got != tt.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	t.Setenv("RELIEFQA_TEST_LLM_KEY", "sk-test")

	data := []byte(`
http:
  port: 9090
llm:
  api_key: ${RELIEFQA_TEST_LLM_KEY}
  temperature: 0.2
  refine_intent: true
  extract_entities: true
  check_groundedness: true
chat:
  endpoint: disasters
  limit: 3
cache:
  enabled: true
  addrs: ["localhost:6379"]
auth:
  api_keys: ["k1", "k2"]
cors:
  allowed_origins: ["http://localhost:3000"]
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if cfg.LLM.APIKey != "sk-test" || !cfg.LLM.RefineIntent || cfg.LLM.Temperature != 0.2 {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if !cfg.LLM.ExtractEntities || !cfg.LLM.CheckGroundedness {
		t.Errorf("llm steps = entities:%v groundedness:%v", cfg.LLM.ExtractEntities, cfg.LLM.CheckGroundedness)
	}
	if cfg.Chat.Endpoint != "disasters" || cfg.Chat.Limit != 3 {
		t.Errorf("chat = %+v", cfg.Chat)
	}
	if !cfg.Cache.Enabled || len(cfg.Cache.Addrs) != 1 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if len(cfg.Auth.APIKeys) != 2 || len(cfg.CORS.AllowedOrigins) != 1 {
		t.Errorf("auth/cors = %+v %+v", cfg.Auth, cfg.CORS)
	}
	if cfg.ReliefWeb.BaseURL != "https://api.reliefweb.int/v1" {
		t.Errorf("defaults not applied: %q", cfg.ReliefWeb.BaseURL)
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("http:\n  port: 0\n"))
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Fatalf("expected invalid config error, got %v", err)
	}

	_, err = Parse([]byte("http: [unterminated"))
	if err == nil || !strings.Contains(err.Error(), "failed to parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoad_ShippedConfigs(t *testing.T) {
	for _, env := range []string{"local", "prod"} {
		t.Run(env, func(t *testing.T) {
			if _, err := Load(env); err != nil {
				t.Fatalf("Load(%q): %v", env, err)
			}
		})
	}
}
