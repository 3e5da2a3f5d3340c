// Package errors provides custom error types for the FinHelp backend.
// All service-layer errors should use AppError so responses stay consistent
// and never leak internal details to clients.
package errors

import "net/http"

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

// Authentication errors.
var (
	ErrUnauthorized         = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials   = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrProviderSignInFailed = &AppError{Code: "PROVIDER_SIGNIN_FAILED", Message: "Sign-in with the external provider failed", StatusCode: http.StatusUnauthorized}
)

// Registration errors.
var (
	ErrEmailAlreadyInUse  = &AppError{Code: "EMAIL_IN_USE", Message: "An account with this email already exists", StatusCode: http.StatusConflict}
	ErrWeakPassword       = &AppError{Code: "WEAK_PASSWORD", Message: "Password must be at least 6 characters", StatusCode: http.StatusBadRequest}
	ErrRegistrationFailed = &AppError{Code: "REGISTRATION_FAILED", Message: "Registration failed, please try again", StatusCode: http.StatusInternalServerError}
)

// Store errors.
var (
	ErrWriteFailed         = &AppError{Code: "WRITE_FAILED", Message: "The write could not be completed", StatusCode: http.StatusBadGateway}
	ErrSubscriptionFailed  = &AppError{Code: "SUBSCRIPTION_ERROR", Message: "The live transaction feed failed", StatusCode: http.StatusBadGateway}
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)
