package form

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Convert(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/convert", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "boil eggs", req["recipeText"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"thermomixSteps":"1. Boil 10 min / Varoma / speed 1"}`))
	}))
	defer server.Close()

	steps, err := NewHTTPClient(server.URL+"/", server.Client()).Convert(context.Background(), "boil eggs")

	require.NoError(t, err)
	assert.Equal(t, "1. Boil 10 min / Varoma / speed 1", steps)
}

func TestHTTPClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Recipe text is required in the request body."}`))
	}))
	defer server.Close()

	_, err := NewHTTPClient(server.URL, server.Client()).Convert(context.Background(), "")

	require.Error(t, err)
	assert.Equal(t, "Recipe text is required in the request body.", err.Error())
}

func TestHTTPClient_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	_, err := NewHTTPClient(server.URL, server.Client()).Convert(context.Background(), "x")

	require.Error(t, err)
	assert.Equal(t, "HTTP error! status: 502", err.Error())
}

func TestHTTPClient_ErrorWithoutMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := NewHTTPClient(server.URL, server.Client()).Convert(context.Background(), "x")

	require.Error(t, err)
	assert.Equal(t, "HTTP error! status: 500", err.Error())
}

func TestHTTPClient_InvalidSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := NewHTTPClient(server.URL, server.Client()).Convert(context.Background(), "x")
	assert.Error(t, err)
}
