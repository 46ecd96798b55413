// Package errors provides custom error types for the stockagent API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import (
	"fmt"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound      = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail    = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrDuplicateUsername = &AppError{Code: "DUPLICATE_USERNAME", Message: "A user with this username already exists", StatusCode: http.StatusConflict}
)

// Trade errors.
var (
	ErrTradeNotFound    = &AppError{Code: "TRADE_NOT_FOUND", Message: "Trade not found", StatusCode: http.StatusNotFound}
	ErrInvalidTradeSide = &AppError{Code: "INVALID_TRADE_SIDE", Message: "Trade side must be buy or sell", StatusCode: http.StatusBadRequest}
)

// Favorite errors.
var (
	ErrFavoriteNotFound  = &AppError{Code: "FAVORITE_NOT_FOUND", Message: "Favorite not found", StatusCode: http.StatusNotFound}
	ErrDuplicateFavorite = &AppError{Code: "DUPLICATE_FAVORITE", Message: "Ticker is already in favorites", StatusCode: http.StatusConflict}
)

// Market data errors. ErrRateLimited is the fail-fast quota error; use
// RateLimited to attach the retry-after estimate for the caller.
var (
	ErrRateLimited = &AppError{Code: "RATE_LIMIT_EXCEEDED", Message: "Market data quota exhausted", StatusCode: http.StatusTooManyRequests}
)

// RateLimited creates a rate-limit error carrying the estimated number of
// seconds until the next upstream call is admitted.
func RateLimited(retryAfterSeconds float64) *AppError {
	return &AppError{
		Code:       ErrRateLimited.Code,
		Message:    fmt.Sprintf("Market data quota exhausted, retry in %.1fs", retryAfterSeconds),
		StatusCode: ErrRateLimited.StatusCode,
	}
}
