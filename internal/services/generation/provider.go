package generation

import (
	"context"
	"errors"
)

// ProviderType represents the hosted model service used for conversions
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOpenAI ProviderType = "openai"
	ProviderGroq   ProviderType = "groq"
)

// Default models per provider, used when no model is configured.
const (
	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGroqModel   = "llama-3.3-70b-versatile"
)

var (
	ErrMissingAPIKey       = errors.New("generation: API key not set")
	ErrUnsupportedProvider = errors.New("generation: unsupported provider")
)

// Generator turns a prompt into the model's text output. One call, no streaming.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
