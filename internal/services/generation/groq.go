package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/socialchef/thermochef/internal/httpclient"
)

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqProvider implements Generator against Groq's OpenAI-compatible API
type GroqProvider struct {
	client *goopenai.Client
	model  string
}

// NewGroqProvider creates a Groq provider.
func NewGroqProvider(apiKey, model, baseURL string, client *http.Client) *GroqProvider {
	if model == "" {
		model = DefaultGroqModel
	}
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}
	if client == nil {
		client = httpclient.InstrumentedClient
	}

	cfg := goopenai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = client

	return &GroqProvider{client: goopenai.NewClientWithConfig(cfg), model: model}
}

func (p *GroqProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(httpclient.WithProvider(ctx, "Groq"), goopenai.ChatCompletionRequest{
		Model: p.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("Groq API error (status %d): %w", apiErr.HTTPStatusCode, err)
		}
		var reqErr *goopenai.RequestError
		if errors.As(err, &reqErr) {
			return "", fmt.Errorf("Groq API error (status %d): %w", reqErr.HTTPStatusCode, err)
		}
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
