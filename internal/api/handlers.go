package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/socialchef/thermochef/internal/config"
	apperrors "github.com/socialchef/thermochef/internal/errors"
	"github.com/socialchef/thermochef/internal/logger"
	"github.com/socialchef/thermochef/internal/metrics"
	"github.com/socialchef/thermochef/internal/middleware"
	"github.com/socialchef/thermochef/internal/sentry"
	"github.com/socialchef/thermochef/internal/services/ai"
	"github.com/socialchef/thermochef/internal/services/generation"
)

// Client facing messages. Changing them changes the public contract.
const (
	msgMissingAPIKey    = "Server configuration error: API Key not set."
	msgUnsupportedMedia = "Unsupported Media Type: Content-Type must be application/json"
	msgBodyTooLarge     = "Request body too large."
	msgRecipeRequired   = "Recipe text is required in the request body."
	msgRecipeTooLong    = "Recipe text is too long. Please shorten it and try again."
	msgConversionFailed = "AI failed to convert the recipe. It might not be a valid recipe format or is too ambiguous."
	msgUnexpected       = "An unexpected error occurred on the server while converting the recipe."
)

// logSnippetLength bounds how much of a refused recipe ends up in the logs.
const logSnippetLength = 100

type Server struct {
	cfg       *config.Config
	generator generation.Generator
}

func NewServer(cfg *config.Config, generator generation.Generator) *Server {
	return &Server{
		cfg:       cfg,
		generator: generator,
	}
}

type ConvertRequest struct {
	RecipeText *string `json:"recipeText"`
}

type ConvertResponse struct {
	ThermomixSteps string `json:"thermomixSteps"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// HandleConvert is mounted for every method; it answers preflight requests itself.
func (s *Server) HandleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, apperrors.NewMethodNotAllowedError(r.Method))
		return
	}

	ctx := r.Context()
	log := logger.FromContext(ctx)
	startTime := time.Now()
	outcome := "success"
	defer func() {
		attrs := metric.WithAttributes(
			attribute.String("outcome", outcome),
			attribute.String("provider", s.provider()),
		)
		metrics.ConversionsTotal.Add(ctx, 1, attrs)
		metrics.ConversionDuration.Record(ctx, time.Since(startTime).Seconds(), attrs)
	}()

	if s.generator == nil || s.cfg.GenerationAPIKey() == "" {
		outcome = "misconfigured"
		log.ErrorContext(ctx, "generation API key not set", "env_var", s.cfg.CredentialEnvVar(), logger.WithTraceContext(ctx))
		writeError(w, r, apperrors.NewConfigurationError(msgMissingAPIKey, "API_KEY_MISSING"))
		return
	}

	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		outcome = "invalid_request"
		writeError(w, r, apperrors.NewUnsupportedMediaTypeError(msgUnsupportedMedia))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes()))
	if err != nil {
		outcome = "invalid_request"
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, apperrors.NewPayloadTooLargeError(msgBodyTooLarge, "BODY_TOO_LARGE"))
			return
		}
		writeError(w, r, apperrors.NewValidationError(msgRecipeRequired, "RECIPE_TEXT_REQUIRED", ""))
		return
	}

	var req ConvertRequest
	if err := json.Unmarshal(body, &req); err != nil || req.RecipeText == nil || strings.TrimSpace(*req.RecipeText) == "" {
		outcome = "invalid_request"
		writeError(w, r, apperrors.NewValidationError(msgRecipeRequired, "RECIPE_TEXT_REQUIRED", "Paste a recipe into the form."))
		return
	}
	recipeText := *req.RecipeText

	if utf8.RuneCountInString(strings.TrimSpace(recipeText)) > s.maxRecipeChars() {
		outcome = "invalid_request"
		writeError(w, r, apperrors.NewPayloadTooLargeError(msgRecipeTooLong, "RECIPE_TEXT_TOO_LONG"))
		return
	}

	output, err := s.generator.Generate(ctx, ai.BuildConversionPrompt(recipeText))
	if err != nil {
		outcome = "generation_error"
		providerErr := generation.ClassifyError(err, s.provider())
		log.ErrorContext(ctx, "recipe conversion failed",
			"error", err,
			"provider", s.provider(),
			"error_type", providerErr.Type,
			logger.WithTraceContext(ctx),
		)
		sentry.CaptureException(ctx, err, map[string]string{
			"provider":   s.provider(),
			"error_type": providerErr.Type,
			"request_id": middleware.RequestIDFromContext(ctx),
		})
		writeError(w, r, apperrors.NewRecipeGenerationError(msgUnexpected, "GENERATION_FAILED", err))
		return
	}

	if ai.IsRefusal(output) {
		outcome = "refused"
		log.WarnContext(ctx, "AI could not convert recipe",
			"input_snippet", ai.Snippet(recipeText, logSnippetLength),
			"provider", s.provider(),
		)
		writeError(w, r, apperrors.NewConversionError(msgConversionFailed, "CONVERSION_REFUSED"))
		return
	}

	writeJSON(w, http.StatusOK, ConvertResponse{ThermomixSteps: strings.TrimSpace(output)})
}

func (s *Server) provider() string {
	if s.cfg.Generation.Provider == "" {
		return config.DefaultProvider
	}
	return s.cfg.Generation.Provider
}

func (s *Server) maxBodyBytes() int64 {
	if s.cfg.Limits.MaxBodyBytes > 0 {
		return s.cfg.Limits.MaxBodyBytes
	}
	return config.DefaultMaxBodyBytes
}

func (s *Server) maxRecipeChars() int {
	if s.cfg.Limits.MaxRecipeChars > 0 {
		return s.cfg.Limits.MaxRecipeChars
	}
	return config.DefaultMaxRecipeChars
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError renders only the public message of err. Code, kind and recovery hint stay in the logs.
func writeError(w http.ResponseWriter, r *http.Request, err *apperrors.AppError) {
	logger.FromContext(r.Context()).DebugContext(r.Context(), "request rejected",
		"status", err.StatusCode,
		"error_type", string(err.Type),
		"error_code", err.Code(),
		"retryable", err.IsRetryable(),
		"recovery", err.RecoverySuggestion(),
	)
	writeJSON(w, err.StatusCode, ErrorResponse{Error: err.Message})
}
