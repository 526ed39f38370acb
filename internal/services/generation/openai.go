package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/socialchef/thermochef/internal/httpclient"
)

// OpenAIProvider implements Generator with the official OpenAI SDK
type OpenAIProvider struct {
	client *openaisdk.Client
	model  string
}

// NewOpenAIProvider creates an OpenAI provider. SDK retries are disabled: a failed
// call surfaces immediately.
func NewOpenAIProvider(apiKey, model, baseURL string, client *http.Client) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if client == nil {
		client = httpclient.InstrumentedClient
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(client),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	c := openaisdk.NewClient(opts...)
	return &OpenAIProvider{client: &c, model: model}
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Chat.Completions.New(httpclient.WithProvider(ctx, "OpenAI"), openaisdk.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
	})
	if err != nil {
		var apiErr *openaisdk.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("OpenAI API error (status %d): %w", apiErr.StatusCode, err)
		}
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
