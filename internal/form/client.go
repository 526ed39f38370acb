package form

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ConvertPath is the endpoint the form posts to, relative to the base URL.
const ConvertPath = "/api/convert"

// HTTPClient implements Converter against a running conversion endpoint.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, client *http.Client) *HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type convertRequest struct {
	RecipeText string `json:"recipeText"`
}

type convertResponse struct {
	ThermomixSteps string `json:"thermomixSteps"`
	Error          string `json:"error"`
}

// Convert posts the recipe and returns the converted steps. A non-2xx response becomes
// an error carrying the server's message, or the status code when there is none.
func (c *HTTPClient) Convert(ctx context.Context, recipeText string) (string, error) {
	body, err := json.Marshal(convertRequest{RecipeText: recipeText})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ConvertPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var out convertResponse
	decodeErr := json.Unmarshal(respBody, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && out.Error != "" {
			return "", errors.New(out.Error)
		}
		return "", fmt.Errorf("HTTP error! status: %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}
	return out.ThermomixSteps, nil
}
