package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/reliefqa/internal/version"
)

// Config holds the reliefqa API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	ReliefWeb ReliefWebConfig `yaml:"reliefweb"`
	LLM       LLMConfig       `yaml:"llm"`
	Chat      ChatConfig      `yaml:"chat"`
	Cache     CacheConfig     `yaml:"cache"`
	Auth      AuthConfig      `yaml:"auth"`
	CORS      CORSConfig      `yaml:"cors"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// CORSConfig holds browser origin settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// ReliefWebConfig holds ReliefWeb API settings.
type ReliefWebConfig struct {
	BaseURL         string `yaml:"base_url"`
	AppName         string `yaml:"appname"`
	TimeoutSec      int    `yaml:"timeout_sec"`
	BodyConcurrency int    `yaml:"body_concurrency"` // parallel page downloads per search
	UserAgent       string `yaml:"user_agent"`
}

// LLMConfig holds the OpenAI-compatible chat model settings.
type LLMConfig struct {
	APIKey       string       `yaml:"api_key"`
	BaseURL      string       `yaml:"base_url"`
	Model        string       `yaml:"model"`
	Temperature  float32      `yaml:"temperature"`
	RefineIntent bool         `yaml:"refine_intent"`
	// ExtractEntities maps locations, disaster types and years in a question onto search filters.
	ExtractEntities bool `yaml:"extract_entities"`
	// CheckGroundedness scores every fresh answer against its documents.
	CheckGroundedness bool         `yaml:"check_groundedness"`
	TimeoutSec        int          `yaml:"timeout_sec"`
	Budget            BudgetConfig `yaml:"budget"`
}

// BudgetConfig holds LLM token limits. Zero limits are unlimited.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"`
	Action            string `yaml:"action"` // warn, reject (default: warn)
}

// Enabled reports whether any limit is set.
func (b BudgetConfig) Enabled() bool {
	return b.DailyTokenLimit > 0 || b.MonthlyTokenLimit > 0
}

// ChatConfig holds chat session settings.
type ChatConfig struct {
	Endpoint    string `yaml:"endpoint"` // reports, disasters (default: reports)
	Limit       int    `yaml:"limit"`    // 0 = endpoint default
	MaxSessions int    `yaml:"max_sessions"`
}

// CacheConfig holds the search-result cache settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config bytes, expanding ${VAR} references, then applies
// defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120 // answers wait on search, page fetches and the LLM
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.ReliefWeb.BaseURL == "" {
		c.ReliefWeb.BaseURL = "https://api.reliefweb.int/v1"
	}
	if c.ReliefWeb.AppName == "" {
		c.ReliefWeb.AppName = "myapp"
	}
	if c.ReliefWeb.TimeoutSec <= 0 {
		c.ReliefWeb.TimeoutSec = 30
	}
	if c.ReliefWeb.BodyConcurrency <= 0 {
		c.ReliefWeb.BodyConcurrency = 4
	}
	if c.ReliefWeb.UserAgent == "" {
		c.ReliefWeb.UserAgent = version.UserAgent()
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://api.mistral.ai/v1"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "mistral-large-latest"
	}
	if c.LLM.TimeoutSec <= 0 {
		c.LLM.TimeoutSec = 60
	}
	if c.LLM.Budget.Action == "" {
		c.LLM.Budget.Action = "warn"
	}
	if c.Chat.Endpoint == "" {
		c.Chat.Endpoint = "reports"
	}
	if c.Chat.MaxSessions <= 0 {
		c.Chat.MaxSessions = 1000
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 3600
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "reliefqa:"
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Chat.Endpoint {
	case "reports", "disasters":
		// ok
	default:
		return fmt.Errorf("chat.endpoint must be \"reports\" or \"disasters\", got %q", c.Chat.Endpoint)
	}
	if c.Chat.Limit < 0 {
		return fmt.Errorf("chat.limit must not be negative, got %d", c.Chat.Limit)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %g", c.LLM.Temperature)
	}
	if c.LLM.Budget.DailyTokenLimit < 0 || c.LLM.Budget.MonthlyTokenLimit < 0 {
		return fmt.Errorf("llm.budget limits must not be negative")
	}
	switch c.LLM.Budget.Action {
	case "warn", "reject":
		// ok
	default:
		return fmt.Errorf("llm.budget.action must be \"warn\" or \"reject\", got %q", c.LLM.Budget.Action)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache is enabled")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
