package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New(CodeInsufficientFunds, "Insufficient funds", http.StatusPaymentRequired),
			expected: "[INSUFFICIENT_FUNDS] Insufficient funds",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap(CodeInternal, "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[INTERNAL_ERROR] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap(CodeInternal, "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New(CodeValidation, "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"Validation", Validation("bad input"), CodeValidation, 400},
		{"InvalidAmount", ErrInvalidAmount(), CodeValidation, 400},
		{"InvalidSignature", ErrInvalidSignature(), CodeValidation, 400},
		{"InsufficientFunds", ErrInsufficientFunds(), CodeInsufficientFunds, 402},
		{"NotFound", ErrNotFound("Payment"), CodeNotFound, 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestBundleErrors(t *testing.T) {
	inner := fmt.Errorf("relayer: 503")
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"ExecutionFailed", ErrExecutionFailed(inner), CodeExecutionFailed, 502},
		{"BundleFailed", ErrBundleFailed("Reverted", "out of gas"), CodeBundleFailed, 422},
		{"BundleTimeout", ErrBundleTimeout(60), CodeBundleTimeout, 504},
		{"StatusCheckFailed", ErrStatusCheckFailed(inner), CodeStatusCheckFailed, 502},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestErrBundleFailed_Message(t *testing.T) {
	assert.Equal(t, "Bundle transaction Reverted: out of gas", ErrBundleFailed("Reverted", "out of gas").Message)
	assert.Equal(t, "Bundle transaction Cancelled", ErrBundleFailed("Cancelled", "").Message)
}

func TestSystemErrors(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")
	dbErr := ErrDatabaseError(inner)
	assert.Equal(t, CodeInternal, dbErr.Code)
	assert.Equal(t, 500, dbErr.HTTPStatus)
	assert.True(t, errors.Is(dbErr, inner))

	encErr := ErrEncryptionFailure(inner)
	assert.Equal(t, CodeInternal, encErr.Code)
	assert.Equal(t, 500, encErr.HTTPStatus)
}

func TestAuthAndRateLimitErrors(t *testing.T) {
	assert.Equal(t, CodeUnauthorized, ErrInvalidToken().Code)
	assert.Equal(t, 401, ErrInvalidToken().HTTPStatus)
	assert.Equal(t, CodeRateLimited, ErrRateLimitExceeded().Code)
	assert.Equal(t, 429, ErrRateLimitExceeded().HTTPStatus)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeBundleTimeout, CodeOf(fmt.Errorf("poll: %w", ErrBundleTimeout(60))))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("opaque")))
}
