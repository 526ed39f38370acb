package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadGenerationConfig(t *testing.T) {
	configContent := `generation:
  provider: openai
  model: gpt-4o-mini
  timeout: 30s
limits:
  max_recipe_chars: 500
  rate_limit_per_minute: 5`

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.yaml")

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	cfg := &Config{}
	err = cfg.LoadFromYAML(configPath)
	if err != nil {
		t.Fatalf("Failed to load YAML config: %v", err)
	}

	if cfg.Generation.Provider != "openai" {
		t.Errorf("Expected provider to be 'openai', got '%s'", cfg.Generation.Provider)
	}
	if cfg.Generation.Model != "gpt-4o-mini" {
		t.Errorf("Expected model to be 'gpt-4o-mini', got '%s'", cfg.Generation.Model)
	}
	if cfg.Generation.Timeout != 30*time.Second {
		t.Errorf("Expected timeout 30s, got %v", cfg.Generation.Timeout)
	}
	if cfg.Limits.MaxRecipeChars != 500 {
		t.Errorf("Expected max_recipe_chars 500, got %d", cfg.Limits.MaxRecipeChars)
	}
	if cfg.Limits.RateLimitPerMinute != 5 {
		t.Errorf("Expected rate_limit_per_minute 5, got %d", cfg.Limits.RateLimitPerMinute)
	}
}

func TestLoadGenerationConfigPartial(t *testing.T) {
	configContent := `generation:
  provider: groq`

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config_partial.yaml")

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	cfg := &Config{}
	if err := cfg.LoadFromYAML(configPath); err != nil {
		t.Fatalf("Failed to load YAML config: %v", err)
	}
	cfg.SetGenerationDefaults()
	cfg.SetLimitsDefaults()

	if cfg.Generation.Provider != "groq" {
		t.Errorf("Expected provider to be 'groq', got '%s'", cfg.Generation.Provider)
	}
	if cfg.Generation.Timeout != 60*time.Second {
		t.Errorf("Expected default timeout, got %v", cfg.Generation.Timeout)
	}
	if cfg.Limits.MaxRecipeChars != DefaultMaxRecipeChars {
		t.Errorf("Expected default max recipe chars, got %d", cfg.Limits.MaxRecipeChars)
	}
	if cfg.Limits.RateLimitBurst != DefaultRateLimitPerMinute {
		t.Errorf("Expected burst to follow the per-minute limit, got %d", cfg.Limits.RateLimitBurst)
	}
}

func TestGenerationDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.SetGenerationDefaults()

	if cfg.Generation.Provider != "gemini" {
		t.Errorf("Expected provider to be 'gemini' (default), got '%s'", cfg.Generation.Provider)
	}
}

func TestRateLimitExplicitlyDisabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")

	cfg := &Config{}
	if err := cfg.loadEnvNumbers(); err != nil {
		t.Fatalf("loadEnvNumbers failed: %v", err)
	}
	cfg.SetLimitsDefaults()

	if cfg.Limits.RateLimitPerMinute != 0 {
		t.Errorf("Expected rate limiting disabled, got %d", cfg.Limits.RateLimitPerMinute)
	}
}

func TestYAMLRateLimitExplicitlyDisabled(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("limits:\n  rate_limit_per_minute: 0\n"), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	cfg := &Config{}
	if err := cfg.LoadFromYAML(configPath); err != nil {
		t.Fatalf("Failed to load YAML config: %v", err)
	}
	cfg.SetLimitsDefaults()

	if cfg.Limits.RateLimitPerMinute != 0 {
		t.Errorf("Expected rate limiting disabled, got %d", cfg.Limits.RateLimitPerMinute)
	}
}

func TestYAMLRateLimitOmittedKeepsEnv(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "12")
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("limits:\n  max_recipe_chars: 400\n"), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	cfg := &Config{}
	if err := cfg.loadEnvNumbers(); err != nil {
		t.Fatalf("loadEnvNumbers failed: %v", err)
	}
	if err := cfg.LoadFromYAML(configPath); err != nil {
		t.Fatalf("Failed to load YAML config: %v", err)
	}
	cfg.SetLimitsDefaults()

	if cfg.Limits.RateLimitPerMinute != 12 {
		t.Errorf("Expected env rate limit 12, got %d", cfg.Limits.RateLimitPerMinute)
	}
}

func TestLoadEnvNumbersInvalid(t *testing.T) {
	t.Setenv("MAX_RECIPE_CHARS", "lots")

	cfg := &Config{}
	if err := cfg.loadEnvNumbers(); err == nil {
		t.Error("Expected error for invalid MAX_RECIPE_CHARS, got nil")
	}
}

func TestGenerationAPIKey(t *testing.T) {
	cfg := &Config{GeminiKey: "g", OpenAIKey: "o", GroqKey: "q"}

	tests := []struct {
		provider string
		key      string
		envVar   string
	}{
		{"gemini", "g", "GEMINI_API_KEY"},
		{"openai", "o", "OPENAI_API_KEY"},
		{"groq", "q", "GROQ_API_KEY"},
	}
	for _, tt := range tests {
		cfg.Generation.Provider = tt.provider
		if got := cfg.GenerationAPIKey(); got != tt.key {
			t.Errorf("GenerationAPIKey() for %s = %q, want %q", tt.provider, got, tt.key)
		}
		if got := cfg.CredentialEnvVar(); got != tt.envVar {
			t.Errorf("CredentialEnvVar() for %s = %q, want %q", tt.provider, got, tt.envVar)
		}
	}
}

func TestLoadWithoutCredential(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load should not fail without a credential: %v", err)
	}
	if cfg.GenerationAPIKey() != "" {
		t.Errorf("Expected empty credential, got %q", cfg.GenerationAPIKey())
	}
}

func TestValidateUnknownProvider(t *testing.T) {
	cfg := &Config{Generation: GenerationConfig{Provider: "bard"}}
	cfg.SetLimitsDefaults()
	if err := cfg.validate(); err == nil {
		t.Error("Expected error for unknown provider, got nil")
	}
}

func TestOTLPHeaders(t *testing.T) {
	cfg := &Config{OtelExporterOTLPHeaders: "Authorization=Basic abc, x-scope = tenant"}
	headers := cfg.OTLPHeaders()

	if headers["Authorization"] != "Basic abc" {
		t.Errorf("Expected Authorization header, got %q", headers["Authorization"])
	}
	if headers["x-scope"] != "tenant" {
		t.Errorf("Expected x-scope header, got %q", headers["x-scope"])
	}
}

func TestLoadConfigFileNotFound(t *testing.T) {
	cfg := &Config{}
	err := cfg.LoadFromYAML("non_existent_file.yaml")

	if err != nil {
		t.Errorf("Expected no error for non-existent file, got: %v", err)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	configContent := `generation:
  provider: openai
  invalid_yaml: [unclosed`

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config_invalid.yaml")

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	cfg := &Config{}
	if err := cfg.LoadFromYAML(configPath); err == nil {
		t.Error("Expected error for invalid YAML, got nil")
	}
}
