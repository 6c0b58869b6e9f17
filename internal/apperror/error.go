// Package apperror provides structured, code-tagged errors so callers can
// branch on failure kind instead of parsing messages.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// AppError implements the error interface and carries a machine-readable
// code alongside the wrapped cause.
type AppError struct {
	Code       Code      `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"statusCode"`
	Context    string    `json:"context,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	cause      error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Context)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *AppError) Unwrap() error {
	return e.cause
}

// Is implements errors.Is for comparison by code
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError with the given code and options
func New(code Code, opts ...Option) *AppError {
	err := &AppError{
		Code:       code,
		Message:    messages[code],
		StatusCode: defaultStatusCode(code),
		Timestamp:  time.Now(),
	}

	for _, opt := range opts {
		opt(err)
	}

	if err.Message == "" {
		err.Message = string(code)
	}

	return err
}

// Option is a functional option for AppError
type Option func(*AppError)

// WithMessage sets a custom message
func WithMessage(message string) Option {
	return func(e *AppError) {
		e.Message = message
	}
}

// WithContext adds context information
func WithContext(context string) Option {
	return func(e *AppError) {
		e.Context = context
	}
}

// WithStatusCode sets a custom HTTP status code
func WithStatusCode(statusCode int) Option {
	return func(e *AppError) {
		e.StatusCode = statusCode
	}
}

// WithCause wraps an underlying error
func WithCause(cause error) Option {
	return func(e *AppError) {
		e.cause = cause
	}
}

// Wrap wraps a standard error into an AppError, preserving an existing
// AppError unchanged apart from missing context.
func Wrap(err error, code Code, context string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if context != "" && appErr.Context == "" {
			appErr.Context = context
		}
		return appErr
	}

	return New(code, WithContext(context), WithCause(err))
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode extracts the error code from an error
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknownError
}

// defaultStatusCode determines the HTTP status code for an error code
func defaultStatusCode(code Code) int {
	switch {
	case strings.Contains(string(code), "NOT_FOUND"):
		return http.StatusNotFound

	case strings.Contains(string(code), "INVALID"):
		return http.StatusBadRequest

	case strings.Contains(string(code), "UNAVAILABLE"),
		strings.Contains(string(code), "CONNECTION"),
		code == CodeCircuitOpen:
		return http.StatusServiceUnavailable

	case code == CodePoolLookupFailed,
		code == CodePriceExtractionFailed,
		code == CodePriceResolutionFailed,
		code == CodeContractCallFailed,
		code == CodeEthereumRPCError:
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
