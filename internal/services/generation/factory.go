package generation

import (
	"fmt"
	"net/http"

	"github.com/socialchef/thermochef/internal/config"
	"github.com/socialchef/thermochef/internal/httpclient"
)

// NewProvider creates the generator selected by cfg.Provider (gemini by default).
// It returns ErrMissingAPIKey when the selected provider has no credential.
func NewProvider(cfg config.GenerationConfig, keys config.ProviderKeys) (Generator, error) {
	client := httpclient.InstrumentedClient
	if cfg.Timeout > 0 {
		client = httpclient.NewInstrumentedClient(cfg.Timeout)
	}
	return newProvider(cfg, keys, client)
}

func newProvider(cfg config.GenerationConfig, keys config.ProviderKeys, client *http.Client) (Generator, error) {
	switch ProviderType(cfg.Provider) {
	case ProviderGemini, "":
		if keys.Gemini == "" {
			return nil, ErrMissingAPIKey
		}
		return NewGeminiProvider(keys.Gemini, cfg.Model, cfg.BaseURL, client), nil
	case ProviderOpenAI:
		if keys.OpenAI == "" {
			return nil, ErrMissingAPIKey
		}
		return NewOpenAIProvider(keys.OpenAI, cfg.Model, cfg.BaseURL, client), nil
	case ProviderGroq:
		if keys.Groq == "" {
			return nil, ErrMissingAPIKey
		}
		return NewGroqProvider(keys.Groq, cfg.Model, cfg.BaseURL, client), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}
}
