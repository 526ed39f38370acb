package errors

import (
	"fmt"
	"net/http"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	ErrorTypeValidation       ErrorType = "VALIDATION_ERROR"
	ErrorTypeMethod           ErrorType = "METHOD_NOT_ALLOWED"
	ErrorTypeMediaType        ErrorType = "UNSUPPORTED_MEDIA_TYPE"
	ErrorTypePayloadTooLarge  ErrorType = "PAYLOAD_TOO_LARGE"
	ErrorTypeConfiguration    ErrorType = "CONFIGURATION_ERROR"
	ErrorTypeConversion       ErrorType = "CONVERSION_ERROR"
	ErrorTypeRecipeGeneration ErrorType = "RECIPE_GENERATION_ERROR"
	ErrorTypeRateLimit        ErrorType = "RATE_LIMIT_ERROR"
)

// AppError represents a structured error for the application.
// Only Message is ever shown to API callers; Err stays server side.
type AppError struct {
	Type          ErrorType `json:"type"`
	Message       string    `json:"message"`
	StatusCode    int       `json:"statusCode"`
	ErrorCode     string    `json:"errorCode"`
	IsOperational bool      `json:"isOperational"`
	Recovery      string    `json:"recoverySuggestion,omitempty"`
	Err           error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Code returns the application-specific error code
func (e *AppError) Code() string {
	return e.ErrorCode
}

// RecoverySuggestion returns the suggestion on how to recover from the error
func (e *AppError) RecoverySuggestion() string {
	return e.Recovery
}

// IsRetryable reports whether the caller may reasonably try the same request again later
func (e *AppError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeRateLimit:
		return true
	case ErrorTypeRecipeGeneration:
		return e.StatusCode >= 500
	default:
		return false
	}
}

// NewValidationError creates a new validation error (400)
func NewValidationError(message string, errorCode string, suggestion string) *AppError {
	return &AppError{
		Type:          ErrorTypeValidation,
		Message:       message,
		StatusCode:    http.StatusBadRequest,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      suggestion,
	}
}

// NewMethodNotAllowedError creates a new wrong-method error (405)
func NewMethodNotAllowedError(method string) *AppError {
	return &AppError{
		Type:          ErrorTypeMethod,
		Message:       fmt.Sprintf("Method %s Not Allowed", method),
		StatusCode:    http.StatusMethodNotAllowed,
		ErrorCode:     "METHOD_NOT_ALLOWED",
		IsOperational: true,
		Recovery:      "Send the request with POST.",
	}
}

// NewUnsupportedMediaTypeError creates a new content type error (415)
func NewUnsupportedMediaTypeError(message string) *AppError {
	return &AppError{
		Type:          ErrorTypeMediaType,
		Message:       message,
		StatusCode:    http.StatusUnsupportedMediaType,
		ErrorCode:     "UNSUPPORTED_MEDIA_TYPE",
		IsOperational: true,
		Recovery:      "Set Content-Type: application/json.",
	}
}

// NewPayloadTooLargeError creates a new size limit error (413)
func NewPayloadTooLargeError(message string, errorCode string) *AppError {
	return &AppError{
		Type:          ErrorTypePayloadTooLarge,
		Message:       message,
		StatusCode:    http.StatusRequestEntityTooLarge,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      "Shorten the recipe text.",
	}
}

// NewConfigurationError creates a new server configuration error (500)
func NewConfigurationError(message string, errorCode string) *AppError {
	return &AppError{
		Type:          ErrorTypeConfiguration,
		Message:       message,
		StatusCode:    http.StatusInternalServerError,
		ErrorCode:     errorCode,
		IsOperational: false,
		Recovery:      "Set the provider API key in the server environment.",
	}
}

// NewConversionError creates a new error for output the model declined to produce (400)
func NewConversionError(message string, errorCode string) *AppError {
	return &AppError{
		Type:          ErrorTypeConversion,
		Message:       message,
		StatusCode:    http.StatusBadRequest,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      "Paste a complete recipe with ingredients and instructions.",
	}
}

// NewRateLimitError creates a new rate limit error (429)
func NewRateLimitError(message string, errorCode string, suggestion string) *AppError {
	return &AppError{
		Type:          ErrorTypeRateLimit,
		Message:       message,
		StatusCode:    http.StatusTooManyRequests,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      suggestion,
	}
}

// NewRecipeGenerationError creates a new recipe generation error (500)
func NewRecipeGenerationError(message string, errorCode string, err error) *AppError {
	return &AppError{
		Type:          ErrorTypeRecipeGeneration,
		Message:       message,
		StatusCode:    http.StatusInternalServerError,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      "Try again in a moment.",
		Err:           err,
	}
}
