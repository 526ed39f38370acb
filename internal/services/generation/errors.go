package generation

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/socialchef/thermochef/internal/errors"
)

// Provider error classes.
const (
	ErrorTypeRateLimit       = "rate_limit"
	ErrorTypeCreditExhausted = "credit_exhausted"
	ErrorTypeServerError     = "server_error"
	ErrorTypeClientError     = "client_error"
	ErrorTypeTimeout         = "timeout"
	ErrorTypeUnknown         = "unknown"
)

// ProviderError represents a classified error from a generation provider
type ProviderError struct {
	Type     string
	Message  string
	Provider string
}

func (e *ProviderError) Error() string {
	return e.Message
}

var classifiers = []struct {
	kind    string
	markers []string
}{
	{ErrorTypeRateLimit, []string{"status 429", "http 429", "rate limit", "too many requests", "resource_exhausted"}},
	{ErrorTypeCreditExhausted, []string{"status 402", "http 402", "insufficient credit", "insufficient_quota", "credit exhausted", "billing"}},
	{ErrorTypeServerError, []string{"status 5", "http 5", "server error", "internal error", "unavailable"}},
	{ErrorTypeClientError, []string{"status 4", "http 4", "bad request", "unauthorized", "forbidden", "api key not valid"}},
}

// ClassifyError maps a provider failure onto a coarse class. The result is only used
// for logs and metric attributes; it never changes what the client sees.
func ClassifyError(err error, provider string) *ProviderError {
	if err == nil {
		return nil
	}

	msg := err.Error()
	classify := func(kind string) *ProviderError {
		return &ProviderError{Type: kind, Message: msg, Provider: provider}
	}

	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(strings.ToLower(msg), "deadline exceeded") {
		return classify(ErrorTypeTimeout)
	}

	lower := strings.ToLower(msg)
	for _, c := range classifiers[:2] {
		if containsAny(lower, c.markers) {
			return classify(c.kind)
		}
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch {
		case appErr.StatusCode >= 500:
			return classify(ErrorTypeServerError)
		case appErr.StatusCode >= 400:
			return classify(ErrorTypeClientError)
		}
	}

	for _, c := range classifiers[2:] {
		if containsAny(lower, c.markers) {
			return classify(c.kind)
		}
	}

	return classify(ErrorTypeUnknown)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
