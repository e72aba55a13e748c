package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable codes. Every failure leaving the core maps to one of these.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeExecutionFailed   = "EXECUTION_FAILED"
	CodeBundleFailed      = "BUNDLE_FAILED"
	CodeBundleTimeout     = "BUNDLE_TIMEOUT"
	CodeStatusCheckFailed = "STATUS_CHECK_FAILED"
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeRateLimited       = "RATE_LIMITED"
	CodeInternal          = "INTERNAL_ERROR"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// CodeOf returns the code of the first AppError in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ---- Request validation (surfaced before any bundle exists) ----

// Validation returns a VALIDATION_ERROR with the given message.
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return Validation("Amount must be greater than zero")
}

func ErrInvalidSignature() *AppError {
	return Validation("Forward request signature does not match signer")
}

func ErrInsufficientFunds() *AppError {
	return New(CodeInsufficientFunds, "Token balances do not cover the requested amount", http.StatusPaymentRequired)
}

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Bundle lifecycle (terminal) ----

func ErrExecutionFailed(err error) *AppError {
	return Wrap(CodeExecutionFailed, "Bundle submission failed", http.StatusBadGateway, err)
}

// ErrBundleFailed carries the failing transaction's relayer status and reason.
func ErrBundleFailed(status, reason string) *AppError {
	msg := fmt.Sprintf("Bundle transaction %s", status)
	if reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, reason)
	}
	return New(CodeBundleFailed, msg, http.StatusUnprocessableEntity)
}

func ErrBundleTimeout(attempts int) *AppError {
	return New(CodeBundleTimeout, fmt.Sprintf("Bundle unresolved after %d status checks", attempts), http.StatusGatewayTimeout)
}

func ErrStatusCheckFailed(err error) *AppError {
	return Wrap(CodeStatusCheckFailed, "Bundle status could not be retrieved", http.StatusBadGateway, err)
}

// ---- Authentication & rate limiting ----

func ErrInvalidToken() *AppError {
	return New(CodeUnauthorized, "Invalid or expired token", http.StatusUnauthorized)
}

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimited, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure ----

func ErrDatabaseError(err error) *AppError {
	return Wrap(CodeInternal, "Internal database error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap(CodeInternal, "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as an INTERNAL_ERROR.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}
