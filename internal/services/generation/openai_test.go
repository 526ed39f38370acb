package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatCompletionJSON = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "test-model",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": "1. Chop 5 sec / speed 5"}
	}]
}`

func TestOpenAIProvider_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body["model"])
		msgs, ok := body["messages"].([]any)
		require.True(t, ok)
		require.Len(t, msgs, 1)
		msg := msgs[0].(map[string]any)
		assert.Equal(t, "user", msg["role"])
		assert.Equal(t, "the prompt", msg["content"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletionJSON))
	}))
	defer server.Close()

	p := NewOpenAIProvider("sk-test", "test-model", server.URL+"/v1/", server.Client())
	out, err := p.Generate(context.Background(), "the prompt")

	require.NoError(t, err)
	assert.Equal(t, "1. Chop 5 sec / speed 5", out)
}

func TestOpenAIProvider_NoRetryOnServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider("sk-test", "", server.URL+"/v1/", server.Client())
	_, err := p.Generate(context.Background(), "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "OpenAI API error (status 500)")
	assert.Equal(t, 1, calls)
}
