package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env            string
	ServiceName    string
	ServiceVersion string

	GeminiKey string
	OpenAIKey string
	GroqKey   string

	RedisURL string

	OtelExporterOTLPEndpoint string
	OtelExporterOTLPHeaders  string
	SentryDSN                string

	Port string

	Generation GenerationConfig
	Limits     LimitsConfig
}

type GenerationConfig struct {
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

type LimitsConfig struct {
	MaxBodyBytes       int64 `yaml:"max_body_bytes"`
	MaxRecipeChars     int   `yaml:"max_recipe_chars"`
	RateLimitPerMinute int   `yaml:"rate_limit_per_minute"`
	RateLimitBurst     int   `yaml:"rate_limit_burst"`
}

// ProviderKeys carries one credential per supported generation provider.
type ProviderKeys struct {
	Gemini string
	OpenAI string
	Groq   string
}

const (
	DefaultProvider           = "gemini"
	DefaultMaxBodyBytes       = 64 << 10
	DefaultMaxRecipeChars     = 20000
	DefaultRateLimitPerMinute = 30
)

func Load() (*Config, error) {
	cfg := &Config{
		Env:                      os.Getenv("ENV"),
		ServiceName:              os.Getenv("SERVICE_NAME"),
		ServiceVersion:           os.Getenv("SERVICE_VERSION"),
		GeminiKey:                os.Getenv("GEMINI_API_KEY"),
		OpenAIKey:                os.Getenv("OPENAI_API_KEY"),
		GroqKey:                  os.Getenv("GROQ_API_KEY"),
		RedisURL:                 os.Getenv("REDIS_URL"),
		OtelExporterOTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelExporterOTLPHeaders:  os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
		SentryDSN:                os.Getenv("SENTRY_DSN"),
		Port:                     os.Getenv("PORT"),
		Generation: GenerationConfig{
			Provider: os.Getenv("GENERATION_PROVIDER"),
			Model:    os.Getenv("GENERATION_MODEL"),
			BaseURL:  os.Getenv("GENERATION_BASE_URL"),
		},
	}

	if err := cfg.loadEnvNumbers(); err != nil {
		return nil, err
	}

	// Load from YAML file if available
	if err := cfg.LoadFromYAML("config.yaml"); err != nil {
		return nil, fmt.Errorf("failed to load YAML config: %w", err)
	}

	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "thermochef"
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "1.0.0"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	cfg.SetGenerationDefaults()
	cfg.SetLimitsDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadEnvNumbers() error {
	if v := os.Getenv("GENERATION_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GENERATION_TIMEOUT: %w", err)
		}
		c.Generation.Timeout = d
	}
	if v := os.Getenv("MAX_RECIPE_CHARS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MAX_RECIPE_CHARS: %w", err)
		}
		c.Limits.MaxRecipeChars = n
	}
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
		}
		// 0 disables limiting, so remember that it was set explicitly
		if n == 0 {
			n = -1
		}
		c.Limits.RateLimitPerMinute = n
	}
	return nil
}

func (c *Config) LoadFromYAML(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File not found is not an error
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlConfig struct {
		Generation GenerationConfig `yaml:"generation"`
		Limits     struct {
			MaxBodyBytes       int64 `yaml:"max_body_bytes"`
			MaxRecipeChars     int   `yaml:"max_recipe_chars"`
			RateLimitPerMinute *int  `yaml:"rate_limit_per_minute"`
			RateLimitBurst     int   `yaml:"rate_limit_burst"`
		} `yaml:"limits"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlConfig.Generation.Provider != "" {
		c.Generation.Provider = yamlConfig.Generation.Provider
	}
	if yamlConfig.Generation.Model != "" {
		c.Generation.Model = yamlConfig.Generation.Model
	}
	if yamlConfig.Generation.BaseURL != "" {
		c.Generation.BaseURL = yamlConfig.Generation.BaseURL
	}
	if yamlConfig.Generation.Timeout > 0 {
		c.Generation.Timeout = yamlConfig.Generation.Timeout
	}
	if yamlConfig.Limits.MaxBodyBytes > 0 {
		c.Limits.MaxBodyBytes = yamlConfig.Limits.MaxBodyBytes
	}
	if yamlConfig.Limits.MaxRecipeChars > 0 {
		c.Limits.MaxRecipeChars = yamlConfig.Limits.MaxRecipeChars
	}
	// An explicit 0 switches limiting off, same as RATE_LIMIT_PER_MINUTE=0.
	if n := yamlConfig.Limits.RateLimitPerMinute; n != nil {
		if *n <= 0 {
			c.Limits.RateLimitPerMinute = -1
		} else {
			c.Limits.RateLimitPerMinute = *n
		}
	}
	if yamlConfig.Limits.RateLimitBurst > 0 {
		c.Limits.RateLimitBurst = yamlConfig.Limits.RateLimitBurst
	}

	return nil
}

func (c *Config) SetGenerationDefaults() {
	c.Generation.Provider = strings.ToLower(strings.TrimSpace(c.Generation.Provider))
	if c.Generation.Provider == "" {
		c.Generation.Provider = DefaultProvider
	}
	if c.Generation.Timeout <= 0 {
		c.Generation.Timeout = 60 * time.Second
	}
}

// SetLimitsDefaults fills unset limits. A negative rate limit means limiting was
// explicitly switched off and is normalised to 0.
func (c *Config) SetLimitsDefaults() {
	if c.Limits.MaxBodyBytes <= 0 {
		c.Limits.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Limits.MaxRecipeChars <= 0 {
		c.Limits.MaxRecipeChars = DefaultMaxRecipeChars
	}
	switch {
	case c.Limits.RateLimitPerMinute < 0:
		c.Limits.RateLimitPerMinute = 0
	case c.Limits.RateLimitPerMinute == 0:
		c.Limits.RateLimitPerMinute = DefaultRateLimitPerMinute
	}
	if c.Limits.RateLimitBurst <= 0 {
		c.Limits.RateLimitBurst = c.Limits.RateLimitPerMinute
	}
}

// Keys returns the configured provider credentials.
func (c *Config) Keys() ProviderKeys {
	return ProviderKeys{
		Gemini: c.GeminiKey,
		OpenAI: c.OpenAIKey,
		Groq:   c.GroqKey,
	}
}

// GenerationAPIKey returns the credential of the selected provider, or "" when it is not set.
func (c *Config) GenerationAPIKey() string {
	switch c.Generation.Provider {
	case "openai":
		return c.OpenAIKey
	case "groq":
		return c.GroqKey
	default:
		return c.GeminiKey
	}
}

// CredentialEnvVar names the environment variable the selected provider reads its key from.
func (c *Config) CredentialEnvVar() string {
	switch c.Generation.Provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "groq":
		return "GROQ_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// OTLPHeaders parses OTEL_EXPORTER_OTLP_HEADERS ("k1=v1,k2=v2").
func (c *Config) OTLPHeaders() map[string]string {
	if c.OtelExporterOTLPHeaders == "" {
		return nil
	}
	headers := make(map[string]string)
	for _, pair := range strings.Split(c.OtelExporterOTLPHeaders, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return headers
}

// validate only rejects settings the server cannot run with. A missing credential
// is deliberately not an error: the convert endpoint reports it per request instead.
func (c *Config) validate() error {
	switch c.Generation.Provider {
	case "gemini", "openai", "groq":
	default:
		return fmt.Errorf("unsupported generation provider %q", c.Generation.Provider)
	}
	if c.Limits.MaxBodyBytes < 1024 {
		return fmt.Errorf("limits.max_body_bytes must be at least 1024")
	}
	return nil
}
