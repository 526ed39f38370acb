package sentry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPMiddleware_RecoversPanic(t *testing.T) {
	h := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/convert", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
}

func TestHTTPMiddleware_PassesThrough(t *testing.T) {
	h := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusTeapot {
		t.Errorf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}
}

func TestInitWithoutDSN(t *testing.T) {
	if err := Init("", "test", "thermochef", "1.0.0"); err != nil {
		t.Errorf("expected nil error without DSN, got %v", err)
	}
	// Uninitialised client: capturing must be a silent no-op
	CaptureException(context.Background(), errors.New("upstream failed"), map[string]string{"provider": "gemini"})
	CaptureException(context.Background(), nil, nil)
}
